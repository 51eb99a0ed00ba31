package avm1

import "github.com/lantern-player/lantern/heap"

// SuperObject is the proxy bound to super inside a method body. Property
// lookups resolve starting the given number of levels above the real
// receiver's prototype, while getters and methods found there run with
// this bound to the real receiver. Writes and deletes through super are
// ignored.
type SuperObject struct {
	this  heap.Value
	depth int
}

// NewSuperObject builds the proxy for a receiver. depth 1 is an ordinary
// method call; constructor dispatch adds one more level.
func NewSuperObject(this heap.Value, depth int) *SuperObject {
	return &SuperObject{this: this, depth: depth}
}

// This returns the real receiver.
func (s *SuperObject) This() heap.Value { return s.this }

// start returns the object lookups begin at: the receiver's prototype
// chain advanced depth-1 extra levels.
func (s *SuperObject) start(ctx *Context) Object {
	o := ctx.ObjectOf(s.this)
	for i := 0; i < s.depth && o != nil; i++ {
		o = ctx.ObjectOf(o.Proto())
	}
	return o
}

// Constructor returns the function invoked by a super() call, resolved
// from the lookup start point.
func (s *SuperObject) Constructor(act *Activation) (*FunctionObject, error) {
	o := s.start(act.ctx)
	if o == nil {
		return nil, nil
	}
	v, err := StdGet(act, o, s.this, "__constructor__")
	if err != nil {
		return nil, err
	}
	return act.ctx.FunctionOf(v), nil
}

func (s *SuperObject) GetOwn(ctx *Context, name string) (*Property, bool) {
	if o := s.start(ctx); o != nil {
		return o.GetOwn(ctx, name)
	}
	return nil, false
}

func (s *SuperObject) SetOwn(ctx *Context, name string, v heap.Value) {}

func (s *SuperObject) Define(name string, v heap.Value, attr Attr) {}

func (s *SuperObject) AddAccessor(name string, getter, setter heap.Value, attr Attr) {}

func (s *SuperObject) Delete(ctx *Context, name string) bool { return false }

func (s *SuperObject) Keys() []string { return nil }

// Proto reports no prototype of its own; Get resolves through the
// receiver's chain instead.
func (s *SuperObject) Proto() heap.Value { return heap.Undefined }

func (s *SuperObject) SetProto(v heap.Value) {}

// Get resolves above the receiver but binds getters to the receiver.
func (s *SuperObject) Get(act *Activation, this heap.Value, name string) (heap.Value, error) {
	o := s.start(act.ctx)
	if o == nil {
		return heap.Undefined, nil
	}
	return StdGet(act, o, s.this, name)
}

// Set through super is a no-op.
func (s *SuperObject) Set(act *Activation, this heap.Value, name string, v heap.Value) error {
	return nil
}

func (s *SuperObject) Trace(mark func(heap.Handle)) {
	heap.MarkValue(s.this, mark)
}
