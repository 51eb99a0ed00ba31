package avm2

import "github.com/lantern-player/lantern/heap"

// DictionaryObject keys entries by object identity instead of by name.
// Primitive keys fall back to the regular dynamic table. With weak keys
// the object references do not keep their keys alive: after a sweep the
// collector calls SweepWeak and dead entries vanish.
type DictionaryObject struct {
	ScriptObject
	weakKeys bool
	order    []heap.Handle
	entries  map[heap.Handle]heap.Value
}

// NewDictionary allocates a dictionary.
func (d *Domain) NewDictionary(weakKeys bool) (heap.Value, *DictionaryObject) {
	o := &DictionaryObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		weakKeys:     weakKeys,
		entries:      make(map[heap.Handle]heap.Value),
	}
	return d.Alloc(o), o
}

// GetKey reads the entry for an object key.
func (o *DictionaryObject) GetKey(key heap.Value) heap.Value {
	if !key.IsObject() {
		return heap.Undefined
	}
	if v, ok := o.entries[key.Object()]; ok {
		return v
	}
	return heap.Undefined
}

// SetKey stores an entry under an object key.
func (o *DictionaryObject) SetKey(key, v heap.Value) {
	if !key.IsObject() {
		return
	}
	h := key.Object()
	if _, ok := o.entries[h]; !ok {
		o.order = append(o.order, h)
	}
	o.entries[h] = v
}

// DeleteKey removes an entry, reporting whether it existed.
func (o *DictionaryObject) DeleteKey(key heap.Value) bool {
	if !key.IsObject() {
		return false
	}
	h := key.Object()
	if _, ok := o.entries[h]; !ok {
		return false
	}
	o.dropKey(h)
	return true
}

func (o *DictionaryObject) dropKey(h heap.Handle) {
	delete(o.entries, h)
	for i, existing := range o.order {
		if existing == h {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}

// Len returns the number of object-keyed entries.
func (o *DictionaryObject) Len() int { return len(o.entries) }

// Trace marks values always, and keys only when they are held strongly.
func (o *DictionaryObject) Trace(mark func(heap.Handle)) {
	o.ScriptObject.Trace(mark)
	for h, v := range o.entries {
		if !o.weakKeys {
			mark(h)
		}
		heap.MarkValue(v, mark)
	}
}

// SweepWeak drops entries whose weak keys died in the last collection.
func (o *DictionaryObject) SweepWeak(alive func(heap.Handle) bool) {
	if !o.weakKeys {
		return
	}
	for i := 0; i < len(o.order); {
		h := o.order[i]
		if !alive(h) {
			delete(o.entries, h)
			o.order = append(o.order[:i], o.order[i+1:]...)
			continue
		}
		i++
	}
}

func (o *DictionaryObject) NextIndex(cur int) int {
	if cur < 0 {
		cur = 0
	}
	if cur < len(o.order)+len(o.dynOrder) {
		return cur + 1
	}
	return 0
}

func (o *DictionaryObject) NameAt(d *Domain, i int) heap.Value {
	i--
	if i < 0 {
		return heap.Undefined
	}
	if i < len(o.order) {
		return heap.FromObject(o.order[i])
	}
	i -= len(o.order)
	if i < len(o.dynOrder) {
		return d.Str(o.dynOrder[i])
	}
	return heap.Undefined
}

func (o *DictionaryObject) ValueAt(act *Activation, recv heap.Value, i int) (heap.Value, error) {
	i--
	if i < 0 {
		return heap.Undefined, nil
	}
	if i < len(o.order) {
		return o.entries[o.order[i]], nil
	}
	i -= len(o.order)
	if i < len(o.dynOrder) {
		v, _ := o.getDynamic(o.dynOrder[i])
		return v, nil
	}
	return heap.Undefined, nil
}
