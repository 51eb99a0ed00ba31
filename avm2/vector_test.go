package avm2

import (
	"errors"
	"testing"

	"github.com/lantern-player/lantern/heap"
)

func TestVectorElementCoercion(t *testing.T) {
	d, act := newTestDomain()
	_, vec := d.NewVector(ElemInt, nil, 2, false)

	if err := vec.Set(act, 0, heap.FromFloat(3.9)); err != nil {
		t.Fatal(err)
	}
	got, err := vec.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberValue() != 3 {
		t.Errorf("int vector stored %v, want truncated 3", got.NumberValue())
	}

	// Fresh slots carry the element type's zero.
	got, _ = vec.Get(1)
	if got.NumberValue() != 0 {
		t.Errorf("default int element = %v, want 0", got.NumberValue())
	}
}

func TestVectorOutOfRange(t *testing.T) {
	d, _ := newTestDomain()
	_, vec := d.NewVector(ElemNumber, nil, 2, false)

	_, err := vec.Get(5)
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeVectorOutOfRange {
		t.Fatalf("got %v, want error #%d", err, CodeVectorOutOfRange)
	}
	if e.Kind != "RangeError" {
		t.Errorf("kind = %q, want RangeError", e.Kind)
	}
}

func TestVectorAppendAtLength(t *testing.T) {
	d, act := newTestDomain()
	_, vec := d.NewVector(ElemNumber, nil, 1, false)

	if err := vec.Set(act, 1, heap.FromFloat(7)); err != nil {
		t.Fatalf("append at length: %v", err)
	}
	if vec.Length() != 2 {
		t.Fatalf("length = %d, want 2", vec.Length())
	}
	// One past the end is still out of range for writes.
	err := vec.Set(act, 5, heap.FromFloat(9))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeVectorOutOfRange {
		t.Fatalf("gap write: got %v, want error #%d", err, CodeVectorOutOfRange)
	}
}

func TestFixedVectorRefusesResize(t *testing.T) {
	d, act := newTestDomain()
	_, vec := d.NewVector(ElemNumber, nil, 2, true)

	err := vec.Set(act, 2, heap.FromFloat(1))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeVectorFixed {
		t.Fatalf("fixed append: got %v, want error #%d", err, CodeVectorFixed)
	}
	if err := vec.SetLength(5); !errors.As(err, &e) || e.Code != CodeVectorFixed {
		t.Fatalf("fixed SetLength: got %v, want error #%d", err, CodeVectorFixed)
	}
	// In-range writes are still fine on fixed vectors.
	if err := vec.Set(act, 1, heap.FromFloat(4)); err != nil {
		t.Fatalf("in-range write on fixed vector: %v", err)
	}
}

func TestTypedVectorCoercesToElementClass(t *testing.T) {
	d, act := newTestDomain()
	cls := sealedPointClass(d)
	_, vec := d.NewVector(ElemClass, cls, 1, false)

	pv, _ := d.NewInstance(cls)
	if err := vec.Set(act, 0, pv); err != nil {
		t.Fatalf("matching element: %v", err)
	}

	// A foreign object fails the element coercion.
	ov, _ := d.NewPlainObject()
	err := vec.Set(act, 0, ov)
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeTypeCoercionFailed {
		t.Fatalf("foreign element: got %v, want error #%d", err, CodeTypeCoercionFailed)
	}
}
