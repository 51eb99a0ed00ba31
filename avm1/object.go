package avm1

import (
	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// Attr is the per-property attribute bitset.
type Attr uint8

const (
	// DontEnum hides the property from enumeration.
	DontEnum Attr = 1 << iota
	// DontDelete makes the property survive delete.
	DontDelete
	// ReadOnly makes writes anywhere on the lookup chain fail silently.
	ReadOnly
)

// Property is one slot on an object: either a plain value or an accessor
// pair.
type Property struct {
	Value  heap.Value
	Getter heap.Value
	Setter heap.Value
	Attr   Attr

	accessor bool
}

// IsAccessor reports whether the slot holds a getter/setter pair rather
// than a value.
func (p *Property) IsAccessor() bool { return p.accessor }

// ---------------------------------------------------------------------------
// Object capability interface
// ---------------------------------------------------------------------------

// Object is the capability interface every script-visible object variant
// implements. Property lookups that miss locally walk the single prototype
// link; mutation through a descendant never writes a prototype's slot.
//
// Types embedding ScriptObject must redefine Get, Set, GetOwn, and SetOwn
// if they override any one of them; promoted methods do not see the outer
// type.
type Object interface {
	heap.Traceable

	GetOwn(ctx *Context, name string) (*Property, bool)
	SetOwn(ctx *Context, name string, v heap.Value)
	Define(name string, v heap.Value, attr Attr)
	AddAccessor(name string, getter, setter heap.Value, attr Attr)
	Delete(ctx *Context, name string) bool
	Keys() []string
	Proto() heap.Value
	SetProto(v heap.Value)

	Get(act *Activation, this heap.Value, name string) (heap.Value, error)
	Set(act *Activation, this heap.Value, name string, v heap.Value) error
}

// protoChainLimit keeps a cyclic __proto__ assignment from hanging lookup.
const protoChainLimit = 256

// StdGet is the standard lookup: search own slots, then the prototype
// chain; a getter found at any level runs with this bound to the original
// receiver; a miss yields undefined.
func StdGet(act *Activation, o Object, this heap.Value, name string) (heap.Value, error) {
	ctx := act.ctx
	cur := o
	for i := 0; cur != nil && i < protoChainLimit; i++ {
		if p, ok := cur.GetOwn(ctx, name); ok {
			if p.IsAccessor() {
				if f := ctx.FunctionOf(p.Getter); f != nil {
					return f.Call(act, name, this, nil)
				}
				return heap.Undefined, nil
			}
			return p.Value, nil
		}
		cur = ctx.ObjectOf(cur.Proto())
	}
	return heap.Undefined, nil
}

// StdSet is the standard write: a setter anywhere on the chain runs with
// this bound to the receiver; a writable data slot anywhere on the chain
// causes an own slot to be created or overwritten on the receiver, never
// on a prototype; a read-only slot anywhere on the chain makes the write
// fail silently.
func StdSet(act *Activation, o Object, this heap.Value, name string, v heap.Value) error {
	ctx := act.ctx
	cur := o
	for i := 0; cur != nil && i < protoChainLimit; i++ {
		if p, ok := cur.GetOwn(ctx, name); ok {
			if p.IsAccessor() {
				if f := ctx.FunctionOf(p.Setter); f != nil {
					_, err := f.Call(act, name, this, []heap.Value{v})
					return err
				}
				return nil
			}
			if p.Attr&ReadOnly != 0 {
				return nil
			}
			o.SetOwn(ctx, name, v)
			return nil
		}
		cur = ctx.ObjectOf(cur.Proto())
	}
	o.SetOwn(ctx, name, v)
	return nil
}

// HasOwn reports whether an object has an own slot with the given name.
func HasOwn(ctx *Context, o Object, name string) bool {
	_, ok := o.GetOwn(ctx, name)
	return ok
}

// ---------------------------------------------------------------------------
// ScriptObject: the plain dynamic object
// ---------------------------------------------------------------------------

// ScriptObject is the base dynamic object: insertion-ordered named slots
// plus a single prototype link. All other variants embed it.
type ScriptObject struct {
	proto heap.Value
	order []string
	props map[string]*Property
}

// NewScriptObject creates an object with the given prototype value.
func NewScriptObject(proto heap.Value) *ScriptObject {
	return &ScriptObject{proto: proto, props: make(map[string]*Property)}
}

// lookupKey maps a requested name to the stored key, folding ASCII case
// for movies older than version 7.
func (o *ScriptObject) lookupKey(ctx *Context, name string) (string, bool) {
	if _, ok := o.props[name]; ok {
		return name, true
	}
	if ctx != nil && ctx.CaseSensitive() {
		return "", false
	}
	want := wstr.FromUTF8(name)
	for _, k := range o.order {
		if wstr.FromUTF8(k).EqualFold(want) {
			return k, true
		}
	}
	return "", false
}

func (o *ScriptObject) GetOwn(ctx *Context, name string) (*Property, bool) {
	if k, ok := o.lookupKey(ctx, name); ok {
		return o.props[k], true
	}
	return nil, false
}

// SetOwn creates or overwrites an own data slot, honoring ReadOnly and
// preserving existing attributes and insertion position.
func (o *ScriptObject) SetOwn(ctx *Context, name string, v heap.Value) {
	if k, ok := o.lookupKey(ctx, name); ok {
		p := o.props[k]
		if p.Attr&ReadOnly != 0 {
			return
		}
		p.Value = v
		p.accessor = false
		p.Getter = heap.Undefined
		p.Setter = heap.Undefined
		return
	}
	o.Define(name, v, 0)
}

// Define installs an own data slot with explicit attributes, replacing
// any existing slot of the same exact name.
func (o *ScriptObject) Define(name string, v heap.Value, attr Attr) {
	if p, ok := o.props[name]; ok {
		p.Value = v
		p.Attr = attr
		p.accessor = false
		return
	}
	o.props[name] = &Property{Value: v, Attr: attr}
	o.order = append(o.order, name)
}

// AddAccessor installs an own getter/setter slot.
func (o *ScriptObject) AddAccessor(name string, getter, setter heap.Value, attr Attr) {
	p, ok := o.props[name]
	if !ok {
		p = &Property{}
		o.props[name] = p
		o.order = append(o.order, name)
	}
	p.Value = heap.Undefined
	p.Getter = getter
	p.Setter = setter
	p.Attr = attr
	p.accessor = true
}

// Delete removes an own slot unless DontDelete forbids it, reporting
// whether a slot was removed.
func (o *ScriptObject) Delete(ctx *Context, name string) bool {
	k, ok := o.lookupKey(ctx, name)
	if !ok {
		return false
	}
	if o.props[k].Attr&DontDelete != 0 {
		return false
	}
	delete(o.props, k)
	for i, existing := range o.order {
		if existing == k {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns enumerable own slot names in insertion order.
func (o *ScriptObject) Keys() []string {
	keys := make([]string, 0, len(o.order))
	for _, k := range o.order {
		if o.props[k].Attr&DontEnum == 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Proto returns the prototype link.
func (o *ScriptObject) Proto() heap.Value { return o.proto }

// SetProto replaces the prototype link.
func (o *ScriptObject) SetProto(v heap.Value) { o.proto = v }

func (o *ScriptObject) Get(act *Activation, this heap.Value, name string) (heap.Value, error) {
	return StdGet(act, o, this, name)
}

func (o *ScriptObject) Set(act *Activation, this heap.Value, name string, v heap.Value) error {
	return StdSet(act, o, this, name, v)
}

func (o *ScriptObject) Trace(mark func(heap.Handle)) {
	heap.MarkValue(o.proto, mark)
	for _, p := range o.props {
		heap.MarkValue(p.Value, mark)
		heap.MarkValue(p.Getter, mark)
		heap.MarkValue(p.Setter, mark)
	}
}
