package heap

import (
	"math"
	"testing"
)

func TestFloatBoxing(t *testing.T) {
	cases := []float64{0, -0, 1.5, -2.25, math.Inf(1), math.Inf(-1), 1e300}
	for _, f := range cases {
		v := FromFloat(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat(%v) not recognized as float", f)
		}
		if got := v.Float64(); got != f {
			t.Errorf("Float64() = %v, want %v", got, f)
		}
	}
	// NaN canonicalizes but stays a float NaN.
	v := FromFloat(math.NaN())
	if !v.IsFloat() || !math.IsNaN(v.Float64()) {
		t.Errorf("NaN did not round trip")
	}
}

func TestTaggedValues(t *testing.T) {
	i := FromInt(-42)
	if !i.IsInt() || i.Int32() != -42 {
		t.Errorf("int boxing failed: %v", i)
	}
	if i.IsFloat() || i.IsObject() {
		t.Errorf("int value misidentified")
	}
	u := FromUint(0xFFFFFFFF)
	if !u.IsUint() || u.Uint32() != 0xFFFFFFFF {
		t.Errorf("uint boxing failed")
	}
	o := FromObject(Handle(7))
	if !o.IsObject() || o.Object() != 7 {
		t.Errorf("object boxing failed")
	}
	s := FromString(StrHandle(3))
	if !s.IsString() || s.Str() != 3 {
		t.Errorf("string boxing failed")
	}
	if !Undefined.IsUndefined() || !Null.IsNull() {
		t.Errorf("special values misidentified")
	}
	if !True.Bool() || False.Bool() {
		t.Errorf("boolean payloads wrong")
	}
}

func TestNumberValue(t *testing.T) {
	if FromInt(3).NumberValue() != 3 {
		t.Errorf("int NumberValue")
	}
	if FromUint(4000000000).NumberValue() != 4000000000 {
		t.Errorf("uint NumberValue")
	}
	if FromFloat(2.5).NumberValue() != 2.5 {
		t.Errorf("float NumberValue")
	}
}

// cell is a minimal traceable object holding one value and one direct link.
type cell struct {
	v    Value
	next Handle
}

func (c *cell) Trace(mark func(Handle)) {
	MarkValue(c.v, mark)
	if c.next != 0 {
		mark(c.next)
	}
}

type rootList struct{ handles []Handle }

func (r *rootList) Roots(mark func(Handle)) {
	for _, h := range r.handles {
		mark(h)
	}
}

func TestCollectReclaimsCycle(t *testing.T) {
	s := NewObjectSpace()
	a := s.Allocate(&cell{})
	b := s.Allocate(&cell{})
	s.Get(a).(*cell).next = b
	s.Get(b).(*cell).next = a // cycle

	keep := s.Allocate(&cell{})
	roots := &rootList{handles: []Handle{keep}}
	s.AddRoots(roots)

	stats := s.Collect()
	if stats.Swept != 2 {
		t.Errorf("Swept = %d, want 2 (the unreachable cycle)", stats.Swept)
	}
	if s.Get(a) != nil || s.Get(b) != nil {
		t.Errorf("cycle members still reachable after collection")
	}
	if s.Get(keep) == nil {
		t.Errorf("rooted object was collected")
	}
}

func TestCollectTracesThroughValues(t *testing.T) {
	s := NewObjectSpace()
	inner := s.Allocate(&cell{})
	outer := s.Allocate(&cell{v: FromObject(inner)})
	s.AddRoots(&rootList{handles: []Handle{outer}})

	s.Collect()
	if s.Get(inner) == nil {
		t.Errorf("object referenced through a Value was collected")
	}
}

func TestWeakRefCleared(t *testing.T) {
	s := NewObjectSpace()
	target := s.Allocate(&cell{})
	ref := s.Weak().NewRef(target)
	s.AddRoots(&rootList{})

	if !ref.IsAlive() {
		t.Fatalf("fresh weak ref should be alive")
	}
	s.Collect()
	if ref.IsAlive() {
		t.Errorf("weak ref target was unreachable but ref not cleared")
	}
}

func TestHandleReuse(t *testing.T) {
	s := NewObjectSpace()
	h := s.Allocate(&cell{})
	s.AddRoots(&rootList{})
	s.Collect()
	if s.Get(h) != nil {
		t.Fatalf("unrooted object survived")
	}
	h2 := s.Allocate(&cell{})
	if h2 != h {
		t.Errorf("freed handle not reused: got %d, want %d", h2, h)
	}
}

func TestStringInterning(t *testing.T) {
	tab := NewStringTable()
	a := tab.InternUTF8("onEnterFrame")
	b := tab.InternUTF8("onEnterFrame")
	if a != b {
		t.Errorf("equal strings interned to different handles")
	}
	if tab.Get(a).String() != "onEnterFrame" {
		t.Errorf("interned string content lost")
	}
	if tab.InternUTF8("") != 0 {
		t.Errorf("empty string must be handle 0")
	}
}
