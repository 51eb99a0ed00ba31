package player

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/lantern-player/lantern/abc"
	"github.com/lantern-player/lantern/avm1"
	"github.com/lantern-player/lantern/avm2"
	"github.com/lantern-player/lantern/dist"
	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/solstore"
)

// Player owns one movie's runtime state: the shared object space, one
// engine context per machine, the stage dispatcher, and the backing
// stores. It is not safe for concurrent use; callers drive it from a
// single frame loop.
type Player struct {
	cfg *Config
	log commonlog.Logger

	Space  *heap.ObjectSpace
	AVM1   *avm1.Context
	Domain *avm2.Domain

	act   *avm2.Activation
	units *dist.ContentStore
	sols  *solstore.Store

	stageVal heap.Value
	stage    *avm2.DispatcherObject

	frame      uint64
	queue      []frameAction
	width      int
	height     int
	fullScreen bool
}

// frameAction is one unit of queued script work, run at the next tick.
type frameAction struct {
	code []byte
	clip display.Node
}

// New builds a player from a configuration. The shared object database
// is opened only when the configuration names one.
func New(cfg *Config) (*Player, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	space := heap.NewObjectSpace()
	if cfg.Runtime.GCThreshold > 0 {
		space.SetGCThreshold(cfg.Runtime.GCThreshold)
	}

	p := &Player{
		cfg:    cfg,
		log:    commonlog.GetLogger("lantern.player"),
		Space:  space,
		AVM1:   avm1.NewContext(space, uint8(cfg.Movie.SwfVersion)),
		Domain: avm2.NewDomain(space),
		units:  dist.NewContentStore(),
		width:  cfg.Movie.Width,
		height: cfg.Movie.Height,
	}
	p.AVM1.MaxRecursion = cfg.Runtime.MaxRecursion
	p.Domain.MaxRecursion = cfg.Runtime.MaxRecursion
	p.act = p.Domain.NewActivation()
	p.stageVal, p.stage = p.Domain.NewDispatcher(heap.Null)

	// The stage and anything reachable from it must survive collection
	// for the player's whole lifetime.
	space.AddRoots(p)

	if cfg.Storage.Database != "" {
		sols, err := solstore.Open(cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("player: open shared object store: %w", err)
		}
		p.sols = sols
	}
	return p, nil
}

// Close releases the shared object database, if open.
func (p *Player) Close() error {
	p.Space.RemoveRoots(p)
	if p.sols != nil {
		return p.sols.Close()
	}
	return nil
}

// Roots marks the stage so the dispatcher and its listeners persist
// across collections.
func (p *Player) Roots(mark func(heap.Handle)) {
	heap.MarkValue(p.stageVal, mark)
}

// Stage returns the stage dispatcher's script value.
func (p *Player) Stage() heap.Value { return p.stageVal }

// StageDispatcher returns the stage's listener surface, for system event
// registration.
func (p *Player) StageDispatcher() *avm2.DispatcherObject { return p.stage }

// Frame returns the number of completed ticks.
func (p *Player) Frame() uint64 { return p.frame }

// ----------------------------------------------------------------------------
// Unit loading
// ----------------------------------------------------------------------------

// LoadUnit decodes an encoded unit, caches it by content address, and
// runs its entry script. Loading the same bytes twice reuses the decoded
// unit but still re-runs the script.
func (p *Player) LoadUnit(data []byte) (dist.Digest, error) {
	f, d, err := p.units.Intern(data)
	if err != nil {
		return dist.Digest{}, fmt.Errorf("player: load unit: %w", err)
	}
	tu := abc.NewTranslationUnit(f)
	if _, err := p.Domain.RunScript(tu, f.ScriptInit); err != nil {
		return d, fmt.Errorf("player: unit %s entry script: %w", d, err)
	}
	return d, nil
}

// Units returns the content store holding every decoded unit.
func (p *Player) Units() *dist.ContentStore { return p.units }

// ----------------------------------------------------------------------------
// Frame loop
// ----------------------------------------------------------------------------

// QueueActions schedules a legacy action block to run on the next tick,
// with clip as its starting target.
func (p *Player) QueueActions(code []byte, clip display.Node) {
	p.queue = append(p.queue, frameAction{code: code, clip: clip})
}

// Tick runs every queued action for this frame, then collects garbage if
// the space has grown past its threshold. A script error is logged and
// dropped; one broken frame script must not stall the movie.
func (p *Player) Tick() {
	pending := p.queue
	p.queue = nil
	for _, a := range pending {
		if _, err := p.AVM1.RunActions(a.code, a.clip); err != nil {
			p.log.Errorf("frame %d script error: %s", p.frame, err)
		}
	}
	p.frame++

	if p.Space.NeedsCollect() {
		stats := p.Space.Collect()
		p.log.Debugf("frame %d gc: %d marked, %d swept in %s", p.frame, stats.Marked, stats.Swept, stats.Duration)
	}
}

// ----------------------------------------------------------------------------
// System events
// ----------------------------------------------------------------------------

// Resize records the new stage size and fires a resize event at the
// stage. Resize events do not bubble and cannot be cancelled.
func (p *Player) Resize(width, height int) error {
	p.width = width
	p.height = height
	ev := avm2.NewEvent(avm2.EventTypeResize, false, false)
	_, err := p.act.DispatchEvent(p.stageVal, ev)
	return err
}

// SetFullScreen flips display state and fires a fullScreen event carrying
// the new state.
func (p *Player) SetFullScreen(on bool) error {
	if p.fullScreen == on {
		return nil
	}
	p.fullScreen = on
	ev := avm2.NewEvent(avm2.EventTypeFullScreen, true, false)
	ev.Payload = avm2.FullScreenPayload{FullScreen: on}
	_, err := p.act.DispatchEvent(p.stageVal, ev)
	return err
}

// StageSize returns the current stage dimensions.
func (p *Player) StageSize() (width, height int) { return p.width, p.height }

// FullScreen reports the current display state.
func (p *Player) FullScreen() bool { return p.fullScreen }

// ----------------------------------------------------------------------------
// Shared objects
// ----------------------------------------------------------------------------

// ErrNoStorage is returned by shared object calls when the configuration
// named no database.
var ErrNoStorage = errors.New("player: no shared object store configured")

// SaveSharedObject serializes a script value and persists it under the
// movie's name.
func (p *Player) SaveSharedObject(name string, v heap.Value) error {
	if p.sols == nil {
		return ErrNoStorage
	}
	data, err := p.act.EncodeJSON(v, heap.Undefined, "")
	if err != nil {
		return fmt.Errorf("player: save shared object %q: %w", name, err)
	}
	return p.sols.Save(p.cfg.Movie.Name, name, data)
}

// LoadSharedObject returns the serialized form of a stored shared
// object. A missing name reports solstore.ErrNotFound.
func (p *Player) LoadSharedObject(name string) (string, error) {
	if p.sols == nil {
		return "", ErrNoStorage
	}
	return p.sols.Load(p.cfg.Movie.Name, name)
}
