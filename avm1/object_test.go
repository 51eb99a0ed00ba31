package avm1

import (
	"reflect"
	"testing"

	"github.com/lantern-player/lantern/heap"
)

func TestSetThenGet(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()
	o := NewScriptObject(heap.Undefined)
	ov := ctx.Alloc(o)

	if err := o.Set(act, ov, "x", heap.FromInt(42)); err != nil {
		t.Fatal(err)
	}
	v, err := o.Get(act, ov, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsInt() || v.Int32() != 42 {
		t.Errorf("got %v, want 42", v)
	}
}

func TestAccessorObservedInsteadOfStoredValue(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()
	o := NewScriptObject(heap.Undefined)
	ov := ctx.Alloc(o)

	var stored heap.Value = heap.Undefined
	getter := ctx.NewNativeFunction(func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.FromInt(99), nil
	})
	setter := ctx.NewNativeFunction(func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		stored = args[0]
		return heap.Undefined, nil
	})
	o.AddAccessor("x", getter, setter, 0)

	if err := o.Set(act, ov, "x", heap.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if !stored.IsInt() || stored.Int32() != 1 {
		t.Errorf("setter saw %v, want 1", stored)
	}
	// The getter's return value wins over whatever was written.
	v, err := o.Get(act, ov, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsInt() || v.Int32() != 99 {
		t.Errorf("got %v, want 99", v)
	}
}

func TestPrototypeCopyOnWrite(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()

	proto := NewScriptObject(heap.Undefined)
	protoVal := ctx.Alloc(proto)
	proto.Define("x", heap.FromInt(1), 0)

	child := NewScriptObject(protoVal)
	childVal := ctx.Alloc(child)

	v, _ := child.Get(act, childVal, "x")
	if v.Int32() != 1 {
		t.Fatalf("inherited read = %v, want 1", v)
	}
	if err := child.Set(act, childVal, "x", heap.FromInt(2)); err != nil {
		t.Fatal(err)
	}
	// The write lands on the child; the prototype slot is untouched.
	if p, _ := proto.GetOwn(ctx, "x"); p.Value.Int32() != 1 {
		t.Errorf("prototype slot mutated to %v", p.Value)
	}
	if p, ok := child.GetOwn(ctx, "x"); !ok || p.Value.Int32() != 2 {
		t.Errorf("child own slot missing or wrong")
	}
}

func TestReadOnlyOnChainBlocksWrite(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()

	proto := NewScriptObject(heap.Undefined)
	protoVal := ctx.Alloc(proto)
	proto.Define("x", heap.FromInt(1), ReadOnly)

	child := NewScriptObject(protoVal)
	childVal := ctx.Alloc(child)
	if err := child.Set(act, childVal, "x", heap.FromInt(2)); err != nil {
		t.Fatal(err)
	}
	if _, ok := child.GetOwn(ctx, "x"); ok {
		t.Error("write through read-only chain slot created an own slot")
	}
	v, _ := child.Get(act, childVal, "x")
	if v.Int32() != 1 {
		t.Errorf("got %v, want original 1", v)
	}
}

func TestDeleteRespectsAttributes(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()
	o := NewScriptObject(heap.Undefined)

	o.Define("a", heap.FromInt(1), 0)
	o.Define("b", heap.FromInt(2), DontDelete)

	if !o.Delete(ctx, "a") {
		t.Error("deletable slot not removed")
	}
	if o.Delete(ctx, "b") {
		t.Error("DontDelete slot removed")
	}
	if o.Delete(ctx, "missing") {
		t.Error("delete of absent slot reported true")
	}
}

func TestEnumerationInsertionOrder(t *testing.T) {
	ctx := newTestActivation(8).Context()
	o := NewScriptObject(heap.Undefined)
	o.Define("z", heap.FromInt(1), 0)
	o.Define("a", heap.FromInt(2), 0)
	o.Define("hidden", heap.FromInt(3), DontEnum)
	o.Define("m", heap.FromInt(4), 0)
	o.Delete(ctx, "a")
	o.Define("a", heap.FromInt(5), 0)

	want := []string{"z", "m", "a"}
	if got := o.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestCaseInsensitiveBeforeVersion7(t *testing.T) {
	actOld := newTestActivation(6)
	o := NewScriptObject(heap.Undefined)
	o.Define("Foo", heap.FromInt(1), 0)

	if _, ok := o.GetOwn(actOld.Context(), "foo"); !ok {
		t.Error("version 6 lookup should fold case")
	}

	actNew := newTestActivation(7)
	o2 := NewScriptObject(heap.Undefined)
	o2.Define("Foo", heap.FromInt(1), 0)
	if _, ok := o2.GetOwn(actNew.Context(), "foo"); ok {
		t.Error("version 7 lookup should be exact")
	}
}

func TestArrayLengthAndIndices(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()
	a := NewArrayObject(heap.Undefined)
	av := ctx.Alloc(a)

	if err := a.Set(act, av, "3", heap.FromInt(9)); err != nil {
		t.Fatal(err)
	}
	if a.Length() != 4 {
		t.Errorf("length = %d, want 4", a.Length())
	}
	if v := a.Elem(0); !v.IsUndefined() {
		t.Errorf("hole = %v, want undefined", v)
	}
	l, _ := a.Get(act, av, "length")
	if l.Int32() != 4 {
		t.Errorf("length prop = %v", l)
	}
	a.SetOwn(ctx, "length", heap.FromInt(1))
	if a.Length() != 1 {
		t.Errorf("truncate failed, length = %d", a.Length())
	}
}

func TestSuperResolvesOneLevelUp(t *testing.T) {
	act := newTestActivation(8)
	ctx := act.Context()

	base := NewScriptObject(heap.Undefined)
	baseVal := ctx.Alloc(base)
	base.Define("name", ctx.Str("base"), 0)

	mid := NewScriptObject(baseVal)
	midVal := ctx.Alloc(mid)
	mid.Define("name", ctx.Str("mid"), 0)

	this := NewScriptObject(midVal)
	thisVal := ctx.Alloc(this)
	this.Define("name", ctx.Str("this"), 0)

	sup := NewSuperObject(thisVal, 1)
	v, err := sup.Get(act, thisVal, "name")
	if err != nil {
		t.Fatal(err)
	}
	if got := ctx.WStrOf(v).String(); got != "mid" {
		t.Errorf("depth 1 resolved %q, want mid", got)
	}

	sup2 := NewSuperObject(thisVal, 2)
	v, _ = sup2.Get(act, thisVal, "name")
	if got := ctx.WStrOf(v).String(); got != "base" {
		t.Errorf("depth 2 resolved %q, want base", got)
	}
}
