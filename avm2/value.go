package avm2

import (
	"math"

	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// Coercions. Unlike the older VM these do not switch on container
// version; the only coercion that can fail is coercion to a class type,
// which raises a typed error.

// ToBoolean never fails.
func (d *Domain) ToBoolean(v heap.Value) bool {
	switch {
	case v == heap.True:
		return true
	case v == heap.False, v.IsUndefined(), v.IsNull():
		return false
	case v.IsNumber():
		f := v.NumberValue()
		return f != 0 && !math.IsNaN(f)
	case v.IsString():
		return d.Space.Strings().Get(v.Str()).Len() > 0
	default:
		return true
	}
}

// ToNumber coerces to a double; objects run their valueOf hook.
func (act *Activation) ToNumber(v heap.Value) (float64, error) {
	switch {
	case v.IsNumber():
		return v.NumberValue(), nil
	case v == heap.True:
		return 1, nil
	case v == heap.False, v.IsNull():
		return 0, nil
	case v.IsUndefined():
		return math.NaN(), nil
	case v.IsString():
		s := act.domain.Space.Strings().Get(v.Str())
		if s.IsEmpty() {
			return 0, nil
		}
		return wstr.ParseNumber(s), nil
	}
	prim, err := act.toPrimitive(v)
	if err != nil {
		return 0, err
	}
	if prim.IsObject() {
		return math.NaN(), nil
	}
	return act.ToNumber(prim)
}

// ToString coerces to a string; objects run their toString hook and
// fall back to a class-tagged form.
func (act *Activation) ToString(v heap.Value) (string, error) {
	switch {
	case v.IsString():
		return act.domain.GoString(v), nil
	case v.IsNumber():
		return wstr.FormatFloat(v.NumberValue()), nil
	case v == heap.True:
		return "true", nil
	case v == heap.False:
		return "false", nil
	case v.IsNull():
		return "null", nil
	case v.IsUndefined():
		return "undefined", nil
	}
	o := act.domain.Resolve(v)
	if o == nil {
		return "undefined", nil
	}
	hook, err := o.GetProperty(act, v, PublicMultiname("toString"))
	if err == nil {
		if f, ok := act.domain.Resolve(hook).(*FunctionObject); ok {
			res, err := f.Call(act, v, nil)
			if err != nil {
				return "", err
			}
			if res.IsString() {
				return act.domain.GoString(res), nil
			}
		}
	}
	return "[object " + o.Class().Name.Name + "]", nil
}

// toPrimitive runs valueOf, keeping the object when the hook is absent
// or returns another object.
func (act *Activation) toPrimitive(v heap.Value) (heap.Value, error) {
	o := act.domain.Resolve(v)
	if o == nil {
		return v, nil
	}
	hook, err := o.GetProperty(act, v, PublicMultiname("valueOf"))
	if err != nil {
		// Sealed classes without a valueOf trait still coerce.
		return v, nil
	}
	f, ok := act.domain.Resolve(hook).(*FunctionObject)
	if !ok {
		return v, nil
	}
	res, err := f.Call(act, v, nil)
	if err != nil {
		return heap.Undefined, err
	}
	if res.IsObject() {
		return v, nil
	}
	return res, nil
}

// ToInt32 coerces with modular wrapping.
func (act *Activation) ToInt32(v heap.Value) (int32, error) {
	f, err := act.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return wrapInt32(f), nil
}

// ToUint32 coerces with modular wrapping.
func (act *Activation) ToUint32(v heap.Value) (uint32, error) {
	i, err := act.ToInt32(v)
	return uint32(i), err
}

func wrapInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(uint64(int64(math.Trunc(f)))))
}

// CoerceToClass checks that v may be stored where cls is declared:
// null and undefined coerce to null, instances of the class or a
// subclass pass, anything else is a typed coercion failure.
func (act *Activation) CoerceToClass(v heap.Value, cls *Class) (heap.Value, error) {
	if cls == nil {
		return v, nil
	}
	if v.IsUndefined() || v.IsNull() {
		return heap.Null, nil
	}
	o := act.domain.Resolve(v)
	if o != nil && o.Class().IsSubclassOf(cls) {
		return v, nil
	}
	got := "value"
	if o != nil {
		got = o.Class().Name.String()
	}
	return heap.Undefined, typeError(CodeTypeCoercionFailed,
		"Type Coercion failed: cannot convert %s to %s", got, cls.Name)
}

// StrictEquals compares without coercion.
func (d *Domain) StrictEquals(a, b heap.Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.NumberValue() == b.NumberValue()
	}
	if a.IsString() && b.IsString() {
		return d.Space.Strings().Get(a.Str()).Equal(d.Space.Strings().Get(b.Str()))
	}
	return a == b
}

// Equals is the loose comparison used by the equality opcode.
func (act *Activation) Equals(a, b heap.Value) (bool, error) {
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
		return act.domain.StrictEquals(a, b), nil
	}
	if a.IsObject() {
		prim, err := act.toPrimitive(a)
		if err != nil || prim == a {
			return false, err
		}
		return act.Equals(prim, b)
	}
	if b.IsObject() {
		prim, err := act.toPrimitive(b)
		if err != nil || prim == b {
			return false, err
		}
		return act.Equals(a, prim)
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
