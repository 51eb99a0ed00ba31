package avm2

import (
	"errors"
	"testing"

	"github.com/lantern-player/lantern/abc"
	"github.com/lantern-player/lantern/heap"
)

// greeterUnit defines one sealed class "Greeter" with a slot "x" whose
// instance initializer stores 5 in it.
func greeterUnit() *abc.TranslationUnit {
	iinitBody := bcJoin(
		bcOp(opGetLocal0),
		bcOp(opPushByte, []byte{5}),
		bcOp(opSetProperty, bcU30(2)),
		bcOp(opReturnVoid),
	)
	f := &abc.File{
		Strings:    []string{"Greeter", "x"},
		Namespaces: []abc.Namespace{{Kind: abc.NsPackage, Name: 0}},
		Multinames: []abc.Multiname{
			{Kind: abc.MnQName, Ns: 1, Name: 1},
			{Kind: abc.MnQName, Ns: 1, Name: 2},
		},
		Methods: []abc.Method{
			{RegisterCount: 1, Body: iinitBody},
			{RegisterCount: 1}, // empty class initializer
		},
		Classes: []abc.Class{{
			Name:         1,
			Attributes:   abc.ClassSealed,
			InstanceInit: 0,
			ClassInit:    1,
			InstanceTraits: []abc.Trait{
				{Kind: abc.TraitSlot, Name: 2, Value: abc.Constant{Kind: abc.ConstInt, Int: 1}},
			},
		}},
	}
	return abc.NewTranslationUnit(f)
}

func TestDefineClassFromUnit(t *testing.T) {
	d, act := newTestDomain()
	tu := greeterUnit()

	cls, err := d.DefineClass(tu, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Name != PublicName("Greeter") {
		t.Errorf("class name = %v", cls.Name)
	}
	if !cls.Sealed() {
		t.Error("sealed attribute dropped in translation")
	}
	if cls.Super != d.ObjectClass {
		t.Error("default superclass is not Object")
	}
	if cls.SlotCount() != 1 {
		t.Fatalf("slot count = %d, want 1", cls.SlotCount())
	}

	// The slot default comes from the pooled constant.
	iv, inst := d.NewInstance(cls)
	got, err := inst.GetProperty(act, iv, PublicMultiname("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberValue() != 1 {
		t.Errorf("default x = %v, want 1", got.NumberValue())
	}

	if _, ok := d.LookupClass(PublicMultiname("Greeter")); !ok {
		t.Error("class not registered in the domain")
	}
}

func TestClassObjectConstructRunsInitializer(t *testing.T) {
	d, act := newTestDomain()
	tu := greeterUnit()
	cls, err := d.DefineClass(tu, 0)
	if err != nil {
		t.Fatal(err)
	}
	cv, err := d.NewClassObject(act, cls)
	if err != nil {
		t.Fatal(err)
	}
	co := d.Resolve(cv).(*ClassObject)
	iv, err := co.Construct(act, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.Resolve(iv).GetProperty(act, iv, PublicMultiname("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberValue() != 5 {
		t.Errorf("constructed x = %v, want 5", got.NumberValue())
	}
}

func TestNewClassOpcode(t *testing.T) {
	d, act := newTestDomain()
	tu := greeterUnit()
	// pushnull (base), newclass, then construct an instance of it.
	code := bcJoin(
		bcOp(opPushNull),
		bcOp(opNewClass, bcU30(0)),
		bcOp(opConstruct, bcU30(0)),
		bcOp(opGetProperty, bcU30(2)),
		bcOp(opReturnValue),
	)
	got, err := runBody(act, tu, 1, code)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberValue() != 5 {
		t.Errorf("x = %v, want 5", got.NumberValue())
	}
	if _, ok := d.LookupClass(PublicMultiname("Greeter")); !ok {
		t.Error("newclass did not register the definition")
	}
}

func TestInterfaceRefusesConstruction(t *testing.T) {
	d, act := newTestDomain()
	iface := NewClass(PublicName("Runnable"), d.ObjectClass, ClassInterface, nil, nil, nil, nil)
	d.RegisterClass(iface)
	cv, err := d.NewClassObject(act, iface)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Resolve(cv).(*ClassObject).Construct(act, nil)
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeConstructNonCreator {
		t.Fatalf("got %v, want error #%d", err, CodeConstructNonCreator)
	}
}

func TestConstructSuperRunsBaseInitializer(t *testing.T) {
	d, act := newTestDomain()
	baseInit := &Method{Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		obj := act.domain.Resolve(this)
		return heap.Undefined, obj.SetProperty(act, this, PublicMultiname("based"), heap.True)
	}}
	base := NewClass(PublicName("Base"), d.ObjectClass, 0, nil, nil, baseInit, nil)
	d.RegisterClass(base)
	derived := NewClass(PublicName("Derived"), base, 0, nil, nil, nil, nil)
	d.RegisterClass(derived)

	iv, _ := d.NewInstance(derived)
	tu := testUnit()
	// getlocal0; constructsuper 0
	m := &Method{Name: "init", Unit: tu, RegisterCount: 1, Body: bcJoin(
		bcOp(opGetLocal0),
		bcOp(opConstructSuper, bcU30(0)),
		bcOp(opReturnVoid),
	)}
	if _, err := act.callMethod(m, iv, nil); err != nil {
		t.Fatal(err)
	}
	got, err := d.Resolve(iv).GetProperty(act, iv, PublicMultiname("based"))
	if err != nil {
		t.Fatal(err)
	}
	if got != heap.True {
		t.Error("superclass initializer did not run")
	}
}

func TestSubclassAndInterfaceChecks(t *testing.T) {
	d, _ := newTestDomain()
	iface := NewClass(PublicName("Comparable"), nil, ClassInterface, nil, nil, nil, nil)
	base := NewClass(PublicName("Shape"), d.ObjectClass, 0, nil, nil, nil, nil)
	base.Interfaces = append(base.Interfaces, iface)
	derived := NewClass(PublicName("Circle"), base, 0, nil, nil, nil, nil)

	if !derived.IsSubclassOf(base) || !derived.IsSubclassOf(d.ObjectClass) {
		t.Error("subclass chain broken")
	}
	if base.IsSubclassOf(derived) {
		t.Error("subclass check inverted")
	}
	if !derived.Implements(iface) {
		t.Error("inherited interface not seen")
	}
}

func TestInheritedSlotsKeepIndices(t *testing.T) {
	d, act := newTestDomain()
	baseTraits := []Trait{{Name: PublicName("a"), Kind: TraitSlot, Default: heap.FromInt(1)}}
	base := NewClass(PublicName("B"), d.ObjectClass, ClassSealed, baseTraits, nil, nil, nil)
	d.RegisterClass(base)
	derivedTraits := []Trait{{Name: PublicName("b"), Kind: TraitSlot, Default: heap.FromInt(2)}}
	derived := NewClass(PublicName("D"), base, ClassSealed, derivedTraits, nil, nil, nil)
	d.RegisterClass(derived)

	iv, inst := d.NewInstance(derived)
	av, _ := inst.GetProperty(act, iv, PublicMultiname("a"))
	bv, _ := inst.GetProperty(act, iv, PublicMultiname("b"))
	if av.NumberValue() != 1 || bv.NumberValue() != 2 {
		t.Errorf("inherited slots read %v/%v, want 1/2", av.NumberValue(), bv.NumberValue())
	}
}

func TestSubclassAccessorLeavesBaseBindings(t *testing.T) {
	d, act := newTestDomain()
	baseTraits := []Trait{
		{Name: PublicName("x"), Kind: TraitGetter, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				return heap.FromInt(1), nil
			},
		}},
	}
	base := NewClass(PublicName("Base"), d.ObjectClass, ClassSealed, baseTraits, nil, nil, nil)
	d.RegisterClass(base)

	var written heap.Value = heap.Undefined
	derivedTraits := []Trait{
		{Name: PublicName("x"), Kind: TraitSetter, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				written = args[0]
				return heap.Undefined, nil
			},
		}},
	}
	derived := NewClass(PublicName("Derived"), base, ClassSealed, derivedTraits, nil, nil, nil)
	d.RegisterClass(derived)

	// The subclass merged the pair and is read-write.
	dv, dObj := d.NewInstance(derived)
	if err := dObj.SetProperty(act, dv, PublicMultiname("x"), heap.FromInt(7)); err != nil {
		t.Fatalf("derived write: %v", err)
	}
	if written.NumberValue() != 7 {
		t.Errorf("derived setter saw %v, want 7", written.NumberValue())
	}

	// The base class keeps its own getter-only binding.
	bv, bObj := d.NewInstance(base)
	err := bObj.SetProperty(act, bv, PublicMultiname("x"), heap.FromInt(9))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeReadOnly {
		t.Fatalf("base write: got %v, want error #%d", err, CodeReadOnly)
	}
	got, err := bObj.GetProperty(act, bv, PublicMultiname("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberValue() != 1 {
		t.Errorf("base getter read %v, want 1", got.NumberValue())
	}
}

func TestConstructSuperChainsThreeLevels(t *testing.T) {
	d, act := newTestDomain()
	tu := testUnit()

	rootRuns := 0
	rootInit := &Method{Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		rootRuns++
		return heap.Undefined, nil
	}}
	chainBody := bcJoin(
		bcOp(opGetLocal0),
		bcOp(opConstructSuper, bcU30(0)),
		bcOp(opReturnVoid),
	)

	a := NewClass(PublicName("A"), d.ObjectClass, 0, nil, nil, rootInit, nil)
	d.RegisterClass(a)
	b := NewClass(PublicName("B"), a, 0, nil, nil,
		&Method{Name: "B/init", Unit: tu, RegisterCount: 1, Body: chainBody}, nil)
	d.RegisterClass(b)
	c := NewClass(PublicName("C"), b, 0, nil, nil,
		&Method{Name: "C/init", Unit: tu, RegisterCount: 1, Body: chainBody}, nil)
	d.RegisterClass(c)

	iv, _ := d.NewInstance(c)
	if _, err := act.callMethod(c.InstanceInit, iv, nil); err != nil {
		t.Fatalf("three-level construction: %v", err)
	}
	if rootRuns != 1 {
		t.Errorf("root initializer ran %d times, want 1", rootRuns)
	}
}
