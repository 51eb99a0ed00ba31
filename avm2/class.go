package avm2

import (
	"github.com/lantern-player/lantern/abc"
	"github.com/lantern-player/lantern/heap"
)

// NativeMethod is a host-implemented method body.
type NativeMethod func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error)

// Method is one callable body: native or interpreted, never both. An
// interpreted body keeps the translation unit its pool indices refer to.
type Method struct {
	Name          string
	Native        NativeMethod
	Body          []byte
	Unit          *abc.TranslationUnit
	RegisterCount int
	ParamCount    int

	// DeclClass is the class whose trait list (or initializer slot)
	// declared the method, nil for free functions. constructsuper
	// resolves the superclass from it, so a mid-hierarchy initializer
	// chains upward instead of re-entering itself.
	DeclClass *Class
}

// TraitKind tags a declared class member.
type TraitKind uint8

const (
	TraitSlot TraitKind = iota
	TraitConst
	TraitMethod
	TraitGetter
	TraitSetter
)

// Trait is one declared member.
type Trait struct {
	Name    QName
	Kind    TraitKind
	Default heap.Value
	Method  *Method
}

// ClassAttrs is the class attribute set.
type ClassAttrs uint8

const (
	// ClassSealed forbids dynamic properties on instances.
	ClassSealed ClassAttrs = 1 << iota
	// ClassFinal forbids subclassing.
	ClassFinal
	// ClassInterface marks an interface definition.
	ClassInterface
	// ClassGeneric marks a parametrizable definition.
	ClassGeneric
)

// binding is a trait resolved to its implementation: a slot index or the
// method/accessor bodies. Getter and setter traits of the same name merge
// into one binding.
type binding struct {
	kind   TraitKind
	slot   int
	method *Method
	getter *Method
	setter *Method
}

// Class is a resolved class definition. Traits are folded into lookup
// tables exactly once, when the class is built; instances only consult
// the tables.
type Class struct {
	Name         QName
	Super        *Class
	Attrs        ClassAttrs
	Interfaces   []*Class
	InstanceInit *Method
	ClassInit    *Method

	instance     map[QName]*binding
	instOrder    []QName
	slotDefaults []heap.Value

	statics            map[QName]*binding
	staticOrder        []QName
	staticSlotDefaults []heap.Value

	// proto is the prototype object instances link their ancestor
	// pointer to.
	proto heap.Value
}

// NewClass resolves a class definition against its superclass. The
// superclass must not be final.
func NewClass(name QName, super *Class, attrs ClassAttrs, instanceTraits, classTraits []Trait, iinit, cinit *Method) *Class {
	cls := &Class{
		Name:         name,
		Super:        super,
		Attrs:        attrs,
		InstanceInit: iinit,
		ClassInit:    cinit,
		instance:     make(map[QName]*binding),
		statics:      make(map[QName]*binding),
	}
	if iinit != nil && iinit.DeclClass == nil {
		iinit.DeclClass = cls
	}
	if cinit != nil && cinit.DeclClass == nil {
		cinit.DeclClass = cls
	}
	if super != nil {
		for _, q := range super.instOrder {
			cls.instance[q] = super.instance[q]
			cls.instOrder = append(cls.instOrder, q)
		}
		cls.slotDefaults = append(cls.slotDefaults, super.slotDefaults...)
	}
	for i := range instanceTraits {
		cls.fold(cls.instance, &cls.instOrder, &cls.slotDefaults, &instanceTraits[i])
	}
	var staticSlots []heap.Value
	for i := range classTraits {
		cls.fold(cls.statics, &cls.staticOrder, &staticSlots, &classTraits[i])
	}
	cls.staticSlotDefaults = staticSlots
	return cls
}

func (c *Class) fold(table map[QName]*binding, order *[]QName, slots *[]heap.Value, t *Trait) {
	if t.Method != nil && t.Method.DeclClass == nil {
		t.Method.DeclClass = c
	}
	existing, seen := table[t.Name]
	switch t.Kind {
	case TraitSlot, TraitConst:
		b := &binding{kind: t.Kind, slot: len(*slots)}
		*slots = append(*slots, t.Default)
		table[t.Name] = b
		if !seen {
			*order = append(*order, t.Name)
		}
	case TraitMethod:
		table[t.Name] = &binding{kind: TraitMethod, method: t.Method}
		if !seen {
			*order = append(*order, t.Name)
		}
	case TraitGetter:
		if seen && (existing.kind == TraitGetter || existing.kind == TraitSetter) {
			// Merge into a copy; the table may still share the
			// superclass's binding, which must stay untouched.
			b := *existing
			b.getter = t.Method
			b.kind = TraitGetter
			table[t.Name] = &b
			return
		}
		table[t.Name] = &binding{kind: TraitGetter, getter: t.Method}
		if !seen {
			*order = append(*order, t.Name)
		}
	case TraitSetter:
		if seen && (existing.kind == TraitGetter || existing.kind == TraitSetter) {
			b := *existing
			b.setter = t.Method
			table[t.Name] = &b
			return
		}
		table[t.Name] = &binding{kind: TraitSetter, setter: t.Method}
		if !seen {
			*order = append(*order, t.Name)
		}
	}
}

// resolve picks the binding for a multiname: the first namespace in
// declared order that names a trait wins; the wildcard namespace scans
// declaration order.
func resolve(table map[QName]*binding, order []QName, m Multiname) (*binding, QName, bool) {
	for _, ns := range m.NsSet {
		if ns.IsAny() {
			for _, q := range order {
				if !m.HasName || q.Name == m.Name {
					return table[q], q, true
				}
			}
			continue
		}
		if !m.HasName {
			for _, q := range order {
				if q.Ns == ns {
					return table[q], q, true
				}
			}
			continue
		}
		q := QName{Ns: ns, Name: m.Name}
		if b, ok := table[q]; ok {
			return b, q, true
		}
	}
	return nil, QName{}, false
}

// ResolveInstance finds an instance trait binding for a multiname.
func (c *Class) ResolveInstance(m Multiname) (*binding, QName, bool) {
	return resolve(c.instance, c.instOrder, m)
}

// ResolveStatic finds a class (static) trait binding.
func (c *Class) ResolveStatic(m Multiname) (*binding, QName, bool) {
	return resolve(c.statics, c.staticOrder, m)
}

// Sealed reports whether instances refuse dynamic properties.
func (c *Class) Sealed() bool { return c.Attrs&ClassSealed != 0 }

// SlotCount returns the number of declared instance slots including
// inherited ones.
func (c *Class) SlotCount() int { return len(c.slotDefaults) }

// Proto returns the class's prototype object value.
func (c *Class) Proto() heap.Value { return c.proto }

// Implements reports whether the class or an ancestor declares the
// interface.
func (c *Class) Implements(iface *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, i := range cur.Interfaces {
			if i == iface {
				return true
			}
		}
	}
	return false
}

// IsSubclassOf walks the superclass chain.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}
