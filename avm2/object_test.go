package avm2

import (
	"errors"
	"testing"

	"github.com/lantern-player/lantern/heap"
)

func sealedPointClass(d *Domain) *Class {
	traits := []Trait{
		{Name: PublicName("x"), Kind: TraitSlot, Default: heap.FromFloat(0)},
		{Name: PublicName("y"), Kind: TraitSlot, Default: heap.FromFloat(0)},
		{Name: PublicName("frozen"), Kind: TraitConst, Default: heap.FromInt(7)},
	}
	cls := NewClass(PublicName("Point"), d.ObjectClass, ClassSealed, traits, nil, nil, nil)
	d.RegisterClass(cls)
	return cls
}

func TestSlotReadWrite(t *testing.T) {
	d, act := newTestDomain()
	cls := sealedPointClass(d)
	pv, _ := d.NewInstance(cls)
	p := d.Resolve(pv)

	if err := p.SetProperty(act, pv, PublicMultiname("x"), heap.FromFloat(3)); err != nil {
		t.Fatalf("slot write: %v", err)
	}
	got, err := p.GetProperty(act, pv, PublicMultiname("x"))
	if err != nil {
		t.Fatalf("slot read: %v", err)
	}
	if got.NumberValue() != 3 {
		t.Errorf("x = %v, want 3", got.NumberValue())
	}
}

func TestSealedMissesRaiseTypedErrors(t *testing.T) {
	d, act := newTestDomain()
	cls := sealedPointClass(d)
	pv, _ := d.NewInstance(cls)
	p := d.Resolve(pv)

	_, err := p.GetProperty(act, pv, PublicMultiname("nope"))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodePropertyNotFound {
		t.Fatalf("sealed read: got %v, want error #%d", err, CodePropertyNotFound)
	}
	if e.Kind != "ReferenceError" {
		t.Errorf("sealed read kind = %q", e.Kind)
	}

	err = p.SetProperty(act, pv, PublicMultiname("nope"), heap.True)
	if !errors.As(err, &e) || e.Code != CodeWriteSealed {
		t.Fatalf("sealed write: got %v, want error #%d", err, CodeWriteSealed)
	}
}

func TestConstSlotInitOnce(t *testing.T) {
	d, act := newTestDomain()
	cls := sealedPointClass(d)
	pv, _ := d.NewInstance(cls)
	p := d.Resolve(pv)

	if err := p.InitProperty(act, pv, PublicMultiname("frozen"), heap.FromInt(9)); err != nil {
		t.Fatalf("const init: %v", err)
	}
	err := p.SetProperty(act, pv, PublicMultiname("frozen"), heap.FromInt(10))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeReadOnly {
		t.Fatalf("const write: got %v, want error #%d", err, CodeReadOnly)
	}
	got, _ := p.GetProperty(act, pv, PublicMultiname("frozen"))
	if got.NumberValue() != 9 {
		t.Errorf("frozen = %v after rejected write, want 9", got.NumberValue())
	}
}

func TestAccessorTraits(t *testing.T) {
	d, act := newTestDomain()
	var stored heap.Value = heap.Undefined
	traits := []Trait{
		{Name: PublicName("value"), Kind: TraitGetter, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				return stored, nil
			},
		}},
		{Name: PublicName("value"), Kind: TraitSetter, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				stored = args[0]
				return heap.Undefined, nil
			},
		}},
		{Name: PublicName("hidden"), Kind: TraitSetter, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				return heap.Undefined, nil
			},
		}},
	}
	cls := NewClass(PublicName("Box"), d.ObjectClass, ClassSealed, traits, nil, nil, nil)
	d.RegisterClass(cls)
	bv, _ := d.NewInstance(cls)
	b := d.Resolve(bv)

	if err := b.SetProperty(act, bv, PublicMultiname("value"), heap.FromInt(5)); err != nil {
		t.Fatalf("setter: %v", err)
	}
	got, err := b.GetProperty(act, bv, PublicMultiname("value"))
	if err != nil {
		t.Fatalf("getter: %v", err)
	}
	if got.NumberValue() != 5 {
		t.Errorf("value = %v, want 5", got.NumberValue())
	}

	// A setter with no paired getter is write-only.
	_, err = b.GetProperty(act, bv, PublicMultiname("hidden"))
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeWriteOnly {
		t.Fatalf("write-only read: got %v, want error #%d", err, CodeWriteOnly)
	}
}

func TestMethodTraitBindsReceiver(t *testing.T) {
	d, act := newTestDomain()
	traits := []Trait{
		{Name: PublicName("self"), Kind: TraitMethod, Method: &Method{
			Native: func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
				return this, nil
			},
		}},
	}
	cls := NewClass(PublicName("Echo"), d.ObjectClass, ClassSealed, traits, nil, nil, nil)
	d.RegisterClass(cls)
	ev, _ := d.NewInstance(cls)

	fn, err := d.Resolve(ev).GetProperty(act, ev, PublicMultiname("self"))
	if err != nil {
		t.Fatalf("method extraction: %v", err)
	}
	// The extracted closure keeps its receiver even when called bare.
	got, err := act.CallValue(fn, heap.Null, nil)
	if err != nil {
		t.Fatalf("bound call: %v", err)
	}
	if got != ev {
		t.Errorf("bound method saw this = %v, want the instance", got)
	}
}

func TestDynamicEnumerationOrder(t *testing.T) {
	d, act := newTestDomain()
	traits := []Trait{
		{Name: PublicName("a"), Kind: TraitSlot, Default: heap.FromInt(1)},
		{Name: PublicName("b"), Kind: TraitSlot, Default: heap.FromInt(2)},
	}
	cls := NewClass(PublicName("Open"), d.ObjectClass, 0, traits, nil, nil, nil)
	d.RegisterClass(cls)
	ov, _ := d.NewInstance(cls)
	o := d.Resolve(ov)

	o.SetProperty(act, ov, PublicMultiname("z"), heap.FromInt(3))
	o.SetProperty(act, ov, PublicMultiname("m"), heap.FromInt(4))

	var names []string
	for i := o.NextIndex(0); i != 0; i = o.NextIndex(i) {
		names = append(names, d.GoString(o.NameAt(d, i)))
	}
	want := []string{"a", "b", "z", "m"}
	if len(names) != len(want) {
		t.Fatalf("enumerated %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("enumerated %v, want %v", names, want)
		}
	}
}

func TestDeleteOnlyDynamics(t *testing.T) {
	d, act := newTestDomain()
	ov, o := d.NewPlainObject()
	o.SetProperty(act, ov, PublicMultiname("tmp"), heap.True)

	ok, _ := o.DeleteProperty(act, PublicMultiname("tmp"))
	if !ok {
		t.Fatal("deleting a dynamic property reported false")
	}
	if o.HasProperty(PublicMultiname("tmp")) {
		t.Fatal("property survived deletion")
	}

	cls := sealedPointClass(d)
	pv, _ := d.NewInstance(cls)
	ok, _ = d.Resolve(pv).DeleteProperty(act, PublicMultiname("x"))
	if ok {
		t.Fatal("declared trait reported deletable")
	}
}

func TestPrototypeChainServesDynamicMisses(t *testing.T) {
	d, act := newTestDomain()
	protoVal, proto := d.NewPlainObject()
	proto.SetProperty(act, protoVal, PublicMultiname("shared"), heap.FromInt(11))

	child := newScriptObject(d.ObjectClass, protoVal)
	cv := d.Alloc(child)
	got, err := child.GetProperty(act, cv, PublicMultiname("shared"))
	if err != nil {
		t.Fatalf("chain read: %v", err)
	}
	if got.NumberValue() != 11 {
		t.Errorf("shared = %v, want 11", got.NumberValue())
	}
}

func TestResolutionPrefersFirstNamespaceInSet(t *testing.T) {
	d, _ := newTestDomain()
	nsA := Namespace{Kind: NsNamespace, URI: "a"}
	nsB := Namespace{Kind: NsNamespace, URI: "b"}
	traits := []Trait{
		{Name: QName{Ns: nsA, Name: "v"}, Kind: TraitSlot, Default: heap.FromInt(1)},
		{Name: QName{Ns: nsB, Name: "v"}, Kind: TraitSlot, Default: heap.FromInt(2)},
	}
	cls := NewClass(PublicName("Multi"), d.ObjectClass, ClassSealed, traits, nil, nil, nil)

	m := Multiname{NsSet: []Namespace{nsB, nsA}, Name: "v", HasName: true}
	_, q, ok := cls.ResolveInstance(m)
	if !ok {
		t.Fatal("resolution missed")
	}
	if q.Ns != nsB {
		t.Errorf("resolved %v, want the set's first namespace b", q.Ns)
	}

	// The wildcard scans trait declaration order instead.
	_, q, ok = cls.ResolveInstance(Multiname{NsSet: []Namespace{AnyNs}, Name: "v", HasName: true})
	if !ok {
		t.Fatal("wildcard resolution missed")
	}
	if q.Ns != nsA {
		t.Errorf("wildcard resolved %v, want declaration-order first a", q.Ns)
	}
}

func TestLookupClassWildcardUsesRegistrationOrder(t *testing.T) {
	d, _ := newTestDomain()
	nsA := Namespace{Kind: NsNamespace, URI: "a"}
	nsB := Namespace{Kind: NsNamespace, URI: "b"}
	first := NewClass(QName{Ns: nsA, Name: "Shape"}, d.ObjectClass, 0, nil, nil, nil, nil)
	second := NewClass(QName{Ns: nsB, Name: "Shape"}, d.ObjectClass, 0, nil, nil, nil, nil)
	d.RegisterClass(first)
	d.RegisterClass(second)

	m := Multiname{NsSet: []Namespace{AnyNs}, Name: "Shape", HasName: true}
	for i := 0; i < 32; i++ {
		cls, ok := d.LookupClass(m)
		if !ok {
			t.Fatal("wildcard lookup missed")
		}
		if cls != first {
			t.Fatalf("lookup %d returned %v, want the first-registered class", i, cls.Name)
		}
	}
}
