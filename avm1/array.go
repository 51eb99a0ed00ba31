package avm1

import (
	"strconv"

	"github.com/lantern-player/lantern/heap"
)

// ArrayObject is the array-like variant: a dense integer-indexed store in
// front of the regular named-slot table. Indices and length are synthetic
// properties resolved before the name table.
type ArrayObject struct {
	ScriptObject
	dense []heap.Value
}

// NewArrayObject creates an array with the given prototype and elements.
func NewArrayObject(proto heap.Value, elems ...heap.Value) *ArrayObject {
	return &ArrayObject{
		ScriptObject: *NewScriptObject(proto),
		dense:        elems,
	}
}

// Length returns the element count.
func (a *ArrayObject) Length() int { return len(a.dense) }

// Elem returns the element at i, or undefined out of range.
func (a *ArrayObject) Elem(i int) heap.Value {
	if i < 0 || i >= len(a.dense) {
		return heap.Undefined
	}
	return a.dense[i]
}

// SetElem stores v at i, growing the array with undefined holes.
func (a *ArrayObject) SetElem(i int, v heap.Value) {
	if i < 0 {
		return
	}
	for len(a.dense) <= i {
		a.dense = append(a.dense, heap.Undefined)
	}
	a.dense[i] = v
}

// Push appends v and returns the new length.
func (a *ArrayObject) Push(v heap.Value) int {
	a.dense = append(a.dense, v)
	return len(a.dense)
}

// Pop removes and returns the last element, or undefined when empty.
func (a *ArrayObject) Pop() heap.Value {
	if len(a.dense) == 0 {
		return heap.Undefined
	}
	v := a.dense[len(a.dense)-1]
	a.dense = a.dense[:len(a.dense)-1]
	return v
}

// setLength grows with holes or truncates.
func (a *ArrayObject) setLength(n int) {
	if n < 0 {
		n = 0
	}
	for len(a.dense) < n {
		a.dense = append(a.dense, heap.Undefined)
	}
	a.dense = a.dense[:n]
}

// parseIndex accepts only canonical non-negative decimal index names.
func parseIndex(name string) (int, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (a *ArrayObject) GetOwn(ctx *Context, name string) (*Property, bool) {
	if name == "length" {
		return &Property{Value: heap.FromInt(int32(len(a.dense))), Attr: DontEnum | DontDelete}, true
	}
	if i, ok := parseIndex(name); ok {
		if i < len(a.dense) {
			return &Property{Value: a.dense[i]}, true
		}
		return nil, false
	}
	return a.ScriptObject.GetOwn(ctx, name)
}

func (a *ArrayObject) SetOwn(ctx *Context, name string, v heap.Value) {
	if name == "length" {
		n, _ := strconv.Atoi(primToString(ctx, v))
		a.setLength(n)
		return
	}
	if i, ok := parseIndex(name); ok {
		a.SetElem(i, v)
		return
	}
	a.ScriptObject.SetOwn(ctx, name, v)
}

func (a *ArrayObject) Delete(ctx *Context, name string) bool {
	if i, ok := parseIndex(name); ok && i < len(a.dense) {
		a.dense[i] = heap.Undefined
		return true
	}
	return a.ScriptObject.Delete(ctx, name)
}

// Keys yields index names in order, then named slots in insertion order.
func (a *ArrayObject) Keys() []string {
	keys := make([]string, 0, len(a.dense))
	for i := range a.dense {
		keys = append(keys, strconv.Itoa(i))
	}
	return append(keys, a.ScriptObject.Keys()...)
}

func (a *ArrayObject) Get(act *Activation, this heap.Value, name string) (heap.Value, error) {
	return StdGet(act, a, this, name)
}

func (a *ArrayObject) Set(act *Activation, this heap.Value, name string, v heap.Value) error {
	return StdSet(act, a, this, name, v)
}

func (a *ArrayObject) Trace(mark func(heap.Handle)) {
	a.ScriptObject.Trace(mark)
	for _, v := range a.dense {
		heap.MarkValue(v, mark)
	}
}
