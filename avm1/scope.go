package avm1

import "github.com/lantern-player/lantern/heap"

// ScopeClass tags what a scope frame wraps.
type ScopeClass uint8

const (
	// ScopeGlobal wraps the global object; the root of every chain.
	ScopeGlobal ScopeClass = iota
	// ScopeTarget wraps a clip's variable bag; untargeted writes land
	// on the innermost one.
	ScopeTarget
	// ScopeLocal is a function call's own variable frame.
	ScopeLocal
	// ScopeWith is pushed by the with action.
	ScopeWith
)

// Scope is one frame of the variable lookup chain. The node for a
// function's defining scope is immutable and shared by every call that
// closes over it; a fresh local node is pushed per call.
type Scope struct {
	parent *Scope
	class  ScopeClass
	values heap.Value
}

// NewGlobalScope roots a chain at the context's global object.
func NewGlobalScope(ctx *Context) *Scope {
	return &Scope{class: ScopeGlobal, values: heap.FromObject(ctx.Globals())}
}

// NewTargetScope pushes a clip variable frame.
func NewTargetScope(parent *Scope, clip heap.Value) *Scope {
	return &Scope{parent: parent, class: ScopeTarget, values: clip}
}

// NewLocalScope pushes a fresh call frame backed by a new plain object.
func NewLocalScope(ctx *Context, parent *Scope) *Scope {
	frame := ctx.Alloc(NewScriptObject(heap.Undefined))
	return &Scope{parent: parent, class: ScopeLocal, values: frame}
}

// NewWithScope pushes an arbitrary object as a frame.
func NewWithScope(parent *Scope, obj heap.Value) *Scope {
	return &Scope{parent: parent, class: ScopeWith, values: obj}
}

// Parent returns the enclosing frame, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Class returns the frame's tag.
func (s *Scope) Class() ScopeClass { return s.class }

// Values returns the frame's backing object value.
func (s *Scope) Values() heap.Value { return s.values }

func (s *Scope) object(ctx *Context) Object {
	return ctx.ObjectOf(s.values)
}

// Resolve walks the chain innermost-out for a variable, reporting whether
// any frame defined it.
func (s *Scope) Resolve(act *Activation, name string) (heap.Value, bool, error) {
	for cur := s; cur != nil; cur = cur.parent {
		o := cur.object(act.ctx)
		if o == nil {
			continue
		}
		if hasOnChain(act.ctx, o, name) {
			v, err := o.Get(act, cur.values, name)
			return v, true, err
		}
	}
	return heap.Undefined, false, nil
}

// SetVar stores an untargeted variable write: the innermost frame that
// already defines the name is updated; otherwise the write lands on the
// innermost target frame, or the global object when there is none.
func (s *Scope) SetVar(act *Activation, name string, v heap.Value) error {
	var fallback *Scope
	for cur := s; cur != nil; cur = cur.parent {
		o := cur.object(act.ctx)
		if o == nil {
			continue
		}
		if hasOnChain(act.ctx, o, name) {
			return o.Set(act, cur.values, name, v)
		}
		if fallback == nil && (cur.class == ScopeTarget || cur.class == ScopeGlobal) {
			fallback = cur
		}
	}
	if fallback != nil {
		if o := fallback.object(act.ctx); o != nil {
			return o.Set(act, fallback.values, name, v)
		}
	}
	return nil
}

// Define installs a local on this frame regardless of outer definitions.
func (s *Scope) Define(ctx *Context, name string, v heap.Value) {
	if o := s.object(ctx); o != nil {
		o.SetOwn(ctx, name, v)
	}
}

// DeleteVar removes the innermost definition of name, reporting success.
func (s *Scope) DeleteVar(ctx *Context, name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		o := cur.object(ctx)
		if o == nil {
			continue
		}
		if HasOwn(ctx, o, name) {
			return o.Delete(ctx, name)
		}
	}
	return false
}

// hasOnChain reports whether name resolves on o or its prototype chain.
func hasOnChain(ctx *Context, o Object, name string) bool {
	for i := 0; o != nil && i < protoChainLimit; i++ {
		if HasOwn(ctx, o, name) {
			return true
		}
		o = ctx.ObjectOf(o.Proto())
	}
	return false
}

// Trace marks every frame object on the chain.
func (s *Scope) Trace(mark func(heap.Handle)) {
	for cur := s; cur != nil; cur = cur.parent {
		heap.MarkValue(cur.values, mark)
	}
}
