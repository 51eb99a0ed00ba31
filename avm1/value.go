package avm1

import (
	"math"

	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// ---------------------------------------------------------------------------
// Coercions
//
// Coercions never fail with a script error; impossible conversions yield
// NaN, undefined, or false per context. Several rules switch on the
// activation's effective container version: older movies coerce undefined
// and null to zero, compare strings by number, and fold property-name
// case.
// ---------------------------------------------------------------------------

// ToBool coerces per legacy boolean rules. Before version 5, strings are
// parsed as numbers first, so the empty string and "0" are both false.
func ToBool(ctx *Context, swfVersion uint8, v heap.Value) bool {
	switch {
	case v == heap.True:
		return true
	case v == heap.False, v.IsUndefined(), v.IsNull():
		return false
	case v.IsNumber():
		f := v.NumberValue()
		return f != 0 && !math.IsNaN(f)
	case v.IsString():
		s := ctx.WStrOf(v)
		if swfVersion < 5 {
			f := wstr.ParseNumber(s)
			return f != 0 && !math.IsNaN(f)
		}
		return !s.IsEmpty()
	default:
		return true
	}
}

// ToBool coerces with the activation's effective version.
func (act *Activation) ToBool(v heap.Value) bool {
	return ToBool(act.ctx, act.swfVersion, v)
}

// ToNumber coerces to a double. Objects run their valueOf hook; a hook
// that fails or returns a non-primitive yields NaN.
func (act *Activation) ToNumber(v heap.Value) (float64, error) {
	switch {
	case v.IsNumber():
		return v.NumberValue(), nil
	case v == heap.True:
		return 1, nil
	case v == heap.False:
		return 0, nil
	case v.IsUndefined(), v.IsNull():
		if act.swfVersion >= 7 {
			return math.NaN(), nil
		}
		return 0, nil
	case v.IsString():
		return wstr.ParseNumber(act.ctx.WStrOf(v)), nil
	default:
		prim, err := act.valuePrimitive(v)
		if err != nil {
			return 0, err
		}
		if prim.IsObject() {
			return math.NaN(), nil
		}
		return act.ToNumber(prim)
	}
}

// ToString coerces to a string. Objects run their toString hook; without
// one they print as a fixed type tag.
func (act *Activation) ToString(v heap.Value) (string, error) {
	switch {
	case v.IsString():
		return act.ctx.WStrOf(v).String(), nil
	case v.IsNumber():
		return wstr.FormatFloat(v.NumberValue()), nil
	case v == heap.True:
		return "true", nil
	case v == heap.False:
		return "false", nil
	case v.IsNull():
		return "null", nil
	case v.IsUndefined():
		if act.swfVersion < 7 {
			return "", nil
		}
		return "undefined", nil
	}
	o := act.ctx.ObjectOf(v)
	if o == nil {
		return "undefined", nil
	}
	hook, err := o.Get(act, v, "toString")
	if err != nil {
		return "", err
	}
	if f := act.ctx.FunctionOf(hook); f != nil {
		res, err := f.Call(act, "toString", v, nil)
		if err != nil {
			return "", err
		}
		if res.IsString() {
			return act.ctx.WStrOf(res).String(), nil
		}
	}
	if _, ok := o.(*FunctionObject); ok {
		return "[type Function]", nil
	}
	return "[type Object]", nil
}

// valuePrimitive runs an object's valueOf hook, returning the value
// unchanged when it is already primitive or the hook yields nothing
// usable.
func (act *Activation) valuePrimitive(v heap.Value) (heap.Value, error) {
	o := act.ctx.ObjectOf(v)
	if o == nil {
		return v, nil
	}
	if b, ok := o.(*boxedValue); ok {
		return b.prim, nil
	}
	hook, err := o.Get(act, v, "valueOf")
	if err != nil {
		return heap.Undefined, err
	}
	f := act.ctx.FunctionOf(hook)
	if f == nil {
		return v, nil
	}
	res, err := f.Call(act, "valueOf", v, nil)
	if err != nil {
		return heap.Undefined, err
	}
	if res.IsObject() {
		return v, nil
	}
	return res, nil
}

// boxedValue wraps a primitive where an object receiver is required.
type boxedValue struct {
	ScriptObject
	prim heap.Value
}

func (b *boxedValue) Trace(mark func(heap.Handle)) {
	b.ScriptObject.Trace(mark)
	heap.MarkValue(b.prim, mark)
}

// ToObject coerces to an object reference, boxing primitives.
func (act *Activation) ToObject(v heap.Value) (heap.Value, Object) {
	if o := act.ctx.ObjectOf(v); o != nil {
		return v, o
	}
	b := &boxedValue{
		ScriptObject: *NewScriptObject(heap.FromObject(act.ctx.protos.object)),
		prim:         v,
	}
	bv := act.ctx.Alloc(b)
	return bv, b
}

// ToInt32 coerces with ECMA modular wrapping.
func (act *Activation) ToInt32(v heap.Value) (int32, error) {
	f, err := act.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return wrapInt32(f), nil
}

func wrapInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(uint64(int64(math.Trunc(f)))))
}

// primToString renders a primitive without hook dispatch; objects get
// their fixed type tag. Used where no activation is available.
func primToString(ctx *Context, v heap.Value) string {
	switch {
	case v.IsString():
		return ctx.WStrOf(v).String()
	case v.IsNumber():
		return wstr.FormatFloat(v.NumberValue())
	case v == heap.True:
		return "true"
	case v == heap.False:
		return "false"
	case v.IsNull():
		return "null"
	case v.IsUndefined():
		return "undefined"
	default:
		return "[type Object]"
	}
}

// abstractEquals implements the loose-equality rules used by the newer
// equality action: null and undefined are mutually equal, mixed types
// compare numerically, objects compare by identity unless one side is
// primitive.
func (act *Activation) abstractEquals(a, b heap.Value) (bool, error) {
	if (a.IsUndefined() || a.IsNull()) && (b.IsUndefined() || b.IsNull()) {
		return true, nil
	}
	if a.IsUndefined() || a.IsNull() || b.IsUndefined() || b.IsNull() {
		return false, nil
	}
	if a.IsObject() && b.IsObject() {
		return a.Object() == b.Object(), nil
	}
	if a.IsString() && b.IsString() {
		return act.ctx.WStrOf(a).Equal(act.ctx.WStrOf(b)), nil
	}
	if a.IsObject() {
		prim, err := act.valuePrimitive(a)
		if err != nil || prim == a {
			return false, err
		}
		return act.abstractEquals(prim, b)
	}
	if b.IsObject() {
		prim, err := act.valuePrimitive(b)
		if err != nil || prim == b {
			return false, err
		}
		return act.abstractEquals(a, prim)
	}
	x, err := act.ToNumber(a)
	if err != nil {
		return false, err
	}
	y, err := act.ToNumber(b)
	if err != nil {
		return false, err
	}
	return x == y, nil
}

// abstractLess implements the relational rule: two strings compare by
// code units, anything else numerically, with NaN making the comparison
// undefined (treated as false by the branch actions).
func (act *Activation) abstractLess(a, b heap.Value) (heap.Value, error) {
	ap, err := act.valuePrimitive(a)
	if err != nil {
		return heap.Undefined, err
	}
	bp, err := act.valuePrimitive(b)
	if err != nil {
		return heap.Undefined, err
	}
	if ap.IsString() && bp.IsString() {
		as, bs := act.ctx.WStrOf(ap), act.ctx.WStrOf(bp)
		return heap.FromBool(lessUnits(as, bs)), nil
	}
	x, err := act.ToNumber(ap)
	if err != nil {
		return heap.Undefined, err
	}
	y, err := act.ToNumber(bp)
	if err != nil {
		return heap.Undefined, err
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return heap.Undefined, nil
	}
	return heap.FromBool(x < y), nil
}

func lessUnits(a, b wstr.WStr) bool {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if a.At(i) != b.At(i) {
			return a.At(i) < b.At(i)
		}
	}
	return a.Len() < b.Len()
}
