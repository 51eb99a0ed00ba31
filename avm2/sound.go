package avm2

import "github.com/lantern-player/lantern/heap"

// SoundBackend is the host capability a SoundObject drives. The engine
// never touches audio data itself.
type SoundBackend interface {
	Play(startMillis float64, loops int) error
	Stop()
	Position() float64
	Length() float64
	SetVolume(v float64)
}

// SoundObject wraps a host sound handle so bytecode can start, stop,
// and inspect playback through property access.
type SoundObject struct {
	ScriptObject
	Backend SoundBackend
	playing bool
}

// NewSound allocates a sound wrapper over a host backend.
func (d *Domain) NewSound(backend SoundBackend) (heap.Value, *SoundObject) {
	o := &SoundObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		Backend:      backend,
	}
	return d.Alloc(o), o
}

// Play starts playback at an offset, looping the given number of times.
func (o *SoundObject) Play(startMillis float64, loops int) error {
	if o.Backend == nil {
		return nil
	}
	if err := o.Backend.Play(startMillis, loops); err != nil {
		return err
	}
	o.playing = true
	return nil
}

// Stop halts playback.
func (o *SoundObject) Stop() {
	if o.Backend != nil {
		o.Backend.Stop()
	}
	o.playing = false
}

// Playing reports whether Play succeeded more recently than Stop.
func (o *SoundObject) Playing() bool { return o.playing }

func (o *SoundObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if m.HasName && o.Backend != nil {
		switch m.Name {
		case "position":
			return heap.FromFloat(o.Backend.Position()), nil
		case "length":
			return heap.FromFloat(o.Backend.Length()), nil
		}
	}
	return o.ScriptObject.GetProperty(act, recv, m)
}
