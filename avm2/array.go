package avm2

import (
	"strconv"

	"github.com/lantern-player/lantern/heap"
)

// ArrayObject is the dense integer-indexed variant. Indices and length
// resolve before traits and the dynamic table.
type ArrayObject struct {
	ScriptObject
	dense []heap.Value
}

// NewArray allocates an array with the given elements.
func (d *Domain) NewArray(elems ...heap.Value) (heap.Value, *ArrayObject) {
	a := &ArrayObject{
		ScriptObject: *newScriptObject(d.ArrayClass, d.ArrayClass.proto),
		dense:        elems,
	}
	return d.Alloc(a), a
}

// Length returns the element count.
func (a *ArrayObject) Length() int { return len(a.dense) }

// Elem returns element i, or undefined out of range.
func (a *ArrayObject) Elem(i int) heap.Value {
	if i < 0 || i >= len(a.dense) {
		return heap.Undefined
	}
	return a.dense[i]
}

// SetElem stores at i, growing with undefined holes.
func (a *ArrayObject) SetElem(i int, v heap.Value) {
	if i < 0 {
		return
	}
	for len(a.dense) <= i {
		a.dense = append(a.dense, heap.Undefined)
	}
	a.dense[i] = v
}

// Push appends and returns the new length.
func (a *ArrayObject) Push(v heap.Value) int {
	a.dense = append(a.dense, v)
	return len(a.dense)
}

func arrayIndex(m Multiname) (int, bool) {
	name, ok := publicName(m)
	if !ok || name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (a *ArrayObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if i, ok := arrayIndex(m); ok {
		return a.Elem(i), nil
	}
	if name, ok := publicName(m); ok && name == "length" {
		return heap.FromInt(int32(len(a.dense))), nil
	}
	return a.ScriptObject.GetProperty(act, recv, m)
}

func (a *ArrayObject) SetProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error {
	if i, ok := arrayIndex(m); ok {
		a.SetElem(i, v)
		return nil
	}
	if name, ok := publicName(m); ok && name == "length" {
		n, err := act.ToInt32(v)
		if err != nil {
			return err
		}
		if n < 0 {
			n = 0
		}
		for len(a.dense) < int(n) {
			a.dense = append(a.dense, heap.Undefined)
		}
		a.dense = a.dense[:n]
		return nil
	}
	return a.ScriptObject.SetProperty(act, recv, m, v)
}

func (a *ArrayObject) HasProperty(m Multiname) bool {
	if i, ok := arrayIndex(m); ok {
		return i < len(a.dense)
	}
	if name, ok := publicName(m); ok && name == "length" {
		return true
	}
	return a.ScriptObject.HasProperty(m)
}

func (a *ArrayObject) NextIndex(cur int) int {
	if cur < 0 {
		cur = 0
	}
	if cur < len(a.dense)+len(a.dynOrder) {
		return cur + 1
	}
	return 0
}

func (a *ArrayObject) NameAt(d *Domain, i int) heap.Value {
	i--
	if i < 0 {
		return heap.Undefined
	}
	if i < len(a.dense) {
		return heap.FromInt(int32(i))
	}
	i -= len(a.dense)
	if i < len(a.dynOrder) {
		return d.Str(a.dynOrder[i])
	}
	return heap.Undefined
}

func (a *ArrayObject) ValueAt(act *Activation, recv heap.Value, i int) (heap.Value, error) {
	i--
	if i < 0 {
		return heap.Undefined, nil
	}
	if i < len(a.dense) {
		return a.dense[i], nil
	}
	i -= len(a.dense)
	if i < len(a.dynOrder) {
		v, _ := a.getDynamic(a.dynOrder[i])
		return v, nil
	}
	return heap.Undefined, nil
}

func (a *ArrayObject) Trace(mark func(heap.Handle)) {
	a.ScriptObject.Trace(mark)
	for _, v := range a.dense {
		heap.MarkValue(v, mark)
	}
}
