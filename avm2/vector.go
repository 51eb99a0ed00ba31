package avm2

import "github.com/lantern-player/lantern/heap"

// ElemKind selects a vector's storage coercion.
type ElemKind uint8

const (
	// ElemAny stores values as-is.
	ElemAny ElemKind = iota
	// ElemInt coerces writes through int wrapping.
	ElemInt
	// ElemUint coerces writes through uint wrapping.
	ElemUint
	// ElemNumber coerces writes to double.
	ElemNumber
	// ElemClass coerces writes to a class type, failing with a typed
	// error on mismatch.
	ElemClass
)

// VectorObject is the homogeneous container: every write is coerced to
// the element type, reads outside the current length fail with a range
// error, and a fixed vector refuses length changes.
type VectorObject struct {
	ScriptObject
	kind      ElemKind
	elemClass *Class
	fixed     bool
	elems     []heap.Value
}

// NewVector allocates a vector of the given element kind and length,
// filled with the type's default.
func (d *Domain) NewVector(kind ElemKind, elemClass *Class, length int, fixed bool) (heap.Value, *VectorObject) {
	v := &VectorObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		kind:         kind,
		elemClass:    elemClass,
		fixed:        fixed,
	}
	def := v.defaultElem()
	for i := 0; i < length; i++ {
		v.elems = append(v.elems, def)
	}
	return d.Alloc(v), v
}

func (v *VectorObject) defaultElem() heap.Value {
	switch v.kind {
	case ElemInt:
		return heap.FromInt(0)
	case ElemUint:
		return heap.FromUint(0)
	case ElemNumber:
		return heap.FromFloat(0)
	case ElemClass:
		return heap.Null
	default:
		return heap.Undefined
	}
}

// Fixed reports whether the length is frozen.
func (v *VectorObject) Fixed() bool { return v.fixed }

// Length returns the element count.
func (v *VectorObject) Length() int { return len(v.elems) }

// coerceElem applies the element-type coercion to a candidate value.
func (v *VectorObject) coerceElem(act *Activation, val heap.Value) (heap.Value, error) {
	switch v.kind {
	case ElemInt:
		i, err := act.ToInt32(val)
		return heap.FromInt(i), err
	case ElemUint:
		u, err := act.ToUint32(val)
		return heap.FromUint(u), err
	case ElemNumber:
		f, err := act.ToNumber(val)
		return heap.FromFloat(f), err
	case ElemClass:
		return act.CoerceToClass(val, v.elemClass)
	default:
		return val, nil
	}
}

// Get reads index i, range-checked.
func (v *VectorObject) Get(i int) (heap.Value, error) {
	if i < 0 || i >= len(v.elems) {
		return heap.Undefined, rangeError(CodeVectorOutOfRange,
			"The index %d is out of range %d", i, len(v.elems))
	}
	return v.elems[i], nil
}

// Set writes index i with coercion. Writing one past the end appends,
// unless the vector is fixed.
func (v *VectorObject) Set(act *Activation, i int, val heap.Value) error {
	coerced, err := v.coerceElem(act, val)
	if err != nil {
		return err
	}
	if i >= 0 && i < len(v.elems) {
		v.elems[i] = coerced
		return nil
	}
	if i == len(v.elems) && !v.fixed {
		v.elems = append(v.elems, coerced)
		return nil
	}
	if v.fixed {
		return rangeError(CodeVectorFixed, "The fixed property is set to true")
	}
	return rangeError(CodeVectorOutOfRange,
		"The index %d is out of range %d", i, len(v.elems))
}

// SetLength grows with defaults or truncates; fixed vectors refuse.
func (v *VectorObject) SetLength(n int) error {
	if v.fixed {
		return rangeError(CodeVectorFixed, "The fixed property is set to true")
	}
	if n < 0 {
		n = 0
	}
	def := v.defaultElem()
	for len(v.elems) < n {
		v.elems = append(v.elems, def)
	}
	v.elems = v.elems[:n]
	return nil
}

func (v *VectorObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if i, ok := arrayIndex(m); ok {
		return v.Get(i)
	}
	if name, ok := publicName(m); ok {
		switch name {
		case "length":
			return heap.FromInt(int32(len(v.elems))), nil
		case "fixed":
			return heap.FromBool(v.fixed), nil
		}
	}
	return v.ScriptObject.GetProperty(act, recv, m)
}

func (v *VectorObject) SetProperty(act *Activation, recv heap.Value, m Multiname, val heap.Value) error {
	if i, ok := arrayIndex(m); ok {
		return v.Set(act, i, val)
	}
	if name, ok := publicName(m); ok {
		switch name {
		case "length":
			n, err := act.ToInt32(val)
			if err != nil {
				return err
			}
			return v.SetLength(int(n))
		case "fixed":
			v.fixed = act.domain.ToBoolean(val)
			return nil
		}
	}
	return v.ScriptObject.SetProperty(act, recv, m, val)
}

func (v *VectorObject) HasProperty(m Multiname) bool {
	if i, ok := arrayIndex(m); ok {
		return i < len(v.elems)
	}
	if name, ok := publicName(m); ok && (name == "length" || name == "fixed") {
		return true
	}
	return v.ScriptObject.HasProperty(m)
}

func (v *VectorObject) NextIndex(cur int) int {
	if cur < 0 {
		cur = 0
	}
	if cur < len(v.elems) {
		return cur + 1
	}
	return 0
}

func (v *VectorObject) NameAt(d *Domain, i int) heap.Value {
	if i < 1 || i > len(v.elems) {
		return heap.Undefined
	}
	return heap.FromInt(int32(i - 1))
}

func (v *VectorObject) ValueAt(act *Activation, recv heap.Value, i int) (heap.Value, error) {
	if i < 1 || i > len(v.elems) {
		return heap.Undefined, nil
	}
	return v.elems[i-1], nil
}

func (v *VectorObject) Trace(mark func(heap.Handle)) {
	v.ScriptObject.Trace(mark)
	for _, e := range v.elems {
		heap.MarkValue(e, mark)
	}
}
