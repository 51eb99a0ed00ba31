package heap

// ---------------------------------------------------------------------------
// WeakRegistry: references that do not keep their target alive
// ---------------------------------------------------------------------------

// WeakRef holds a handle that does not contribute to reachability. After a
// collection in which the target died, Get returns 0.
type WeakRef struct {
	target Handle
}

// Get returns the target handle, or 0 if it has been collected.
func (w *WeakRef) Get() Handle { return w.target }

// IsAlive reports whether the target has not been collected.
func (w *WeakRef) IsAlive() bool { return w.target != 0 }

// WeakRegistry tracks every weak reference in a space so the collector can
// clear the dead ones after a sweep.
type WeakRegistry struct {
	refs []*WeakRef
}

// NewWeakRegistry creates an empty registry.
func NewWeakRegistry() *WeakRegistry {
	return &WeakRegistry{}
}

// NewRef creates and tracks a weak reference to target.
func (r *WeakRegistry) NewRef(target Handle) *WeakRef {
	ref := &WeakRef{target: target}
	r.refs = append(r.refs, ref)
	return ref
}

// Len returns the number of tracked references, cleared ones included.
func (r *WeakRegistry) Len() int { return len(r.refs) }

// sweep clears references to dead targets and drops long-cleared entries.
func (r *WeakRegistry) sweep(alive func(Handle) bool) {
	kept := r.refs[:0]
	for _, ref := range r.refs {
		if ref.target != 0 && !alive(ref.target) {
			ref.target = 0
		}
		if ref.target != 0 {
			kept = append(kept, ref)
		}
	}
	r.refs = kept
}
