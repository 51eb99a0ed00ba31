package avm2

import (
	"github.com/lantern-player/lantern/heap"
)

// ---------------------------------------------------------------------------
// Domain
// ---------------------------------------------------------------------------

// Domain is the per-content-unit world: object space, class registry,
// and the global object. No process-wide state; every loaded unit gets
// its own domain with its own pools and class table.
type Domain struct {
	Space        *heap.ObjectSpace
	MaxRecursion int

	depth      int
	classes    map[QName]*Class
	classOrder []QName

	ObjectClass   *Class
	FunctionClass *Class
	ArrayClass    *Class

	globals heap.Value
}

// NewDomain builds a domain with the root classes and global object
// installed.
func NewDomain(space *heap.ObjectSpace) *Domain {
	d := &Domain{
		Space:        space,
		MaxRecursion: 128,
		classes:      make(map[QName]*Class),
	}
	// Object is dynamic; its prototype anchors every chain.
	d.ObjectClass = NewClass(PublicName("Object"), nil, 0, nil, nil, nil, nil)
	d.ObjectClass.proto = d.Alloc(newScriptObject(d.ObjectClass, heap.Null))
	d.FunctionClass = NewClass(PublicName("Function"), d.ObjectClass, 0, nil, nil, nil, nil)
	d.FunctionClass.proto = d.Alloc(newScriptObject(d.ObjectClass, d.ObjectClass.proto))
	d.ArrayClass = NewClass(PublicName("Array"), d.ObjectClass, 0, nil, nil, nil, nil)
	d.ArrayClass.proto = d.Alloc(newScriptObject(d.ObjectClass, d.ObjectClass.proto))
	d.RegisterClass(d.ObjectClass)
	d.RegisterClass(d.FunctionClass)
	d.RegisterClass(d.ArrayClass)

	d.globals = d.Alloc(newScriptObject(d.ObjectClass, d.ObjectClass.proto))
	d.Space.AddRoots(domainRoots{d})
	return d
}

type domainRoots struct{ d *Domain }

func (r domainRoots) Roots(mark func(heap.Handle)) {
	heap.MarkValue(r.d.globals, mark)
	for _, cls := range r.d.classes {
		heap.MarkValue(cls.proto, mark)
	}
}

// Globals returns the global object value.
func (d *Domain) Globals() heap.Value { return d.globals }

// RegisterClass defines a class in the domain, creating its prototype
// object when the definition did not bring one.
func (d *Domain) RegisterClass(cls *Class) {
	if !cls.proto.IsObject() {
		parent := heap.Value(heap.Null)
		if cls.Super != nil {
			parent = cls.Super.proto
		}
		cls.proto = d.Alloc(newScriptObject(d.ObjectClass, parent))
	}
	if _, seen := d.classes[cls.Name]; !seen {
		d.classOrder = append(d.classOrder, cls.Name)
	}
	d.classes[cls.Name] = cls
}

// LookupClass resolves a class by multiname.
func (d *Domain) LookupClass(m Multiname) (*Class, bool) {
	for _, ns := range m.NsSet {
		if ns.IsAny() {
			// Registration order keeps the wildcard scan deterministic
			// when two classes share a local name.
			for _, q := range d.classOrder {
				if !m.HasName || q.Name == m.Name {
					return d.classes[q], true
				}
			}
			continue
		}
		if cls, ok := d.classes[QName{Ns: ns, Name: m.Name}]; ok {
			return cls, true
		}
	}
	return nil, false
}

// Alloc adds an object to the space.
func (d *Domain) Alloc(o Object) heap.Value {
	return heap.FromObject(d.Space.Allocate(o))
}

// Resolve returns the live object behind a value, or nil.
func (d *Domain) Resolve(v heap.Value) Object {
	if !v.IsObject() {
		return nil
	}
	if o, ok := d.Space.Get(v.Object()).(Object); ok {
		return o
	}
	return nil
}

// Str interns a string value.
func (d *Domain) Str(s string) heap.Value {
	return heap.FromString(d.Space.Strings().InternUTF8(s))
}

// GoString returns the Go string behind a string value.
func (d *Domain) GoString(v heap.Value) string {
	return d.Space.Strings().Get(v.Str()).String()
}

// ---------------------------------------------------------------------------
// Object capability interface
// ---------------------------------------------------------------------------

// Object is the capability interface of every AVM2 value with identity.
// Declared traits resolve through the class's folded tables; dynamic
// properties live on non-sealed instances under the public namespace.
type Object interface {
	heap.Traceable

	Class() *Class
	Proto() heap.Value

	GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error)
	SetProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error
	InitProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error
	DeleteProperty(act *Activation, m Multiname) (bool, error)
	HasProperty(m Multiname) bool

	// Enumeration: a caller-advanced 1-based index over the unified
	// trait table and dynamic extension; 0 means exhausted.
	NextIndex(cur int) int
	NameAt(d *Domain, i int) heap.Value
	ValueAt(act *Activation, recv heap.Value, i int) (heap.Value, error)
}

// publicName extracts the dynamic-table key for a multiname, if the
// multiname can address dynamic properties at all.
func publicName(m Multiname) (string, bool) {
	if !m.HasName {
		return "", false
	}
	for _, ns := range m.NsSet {
		if ns.IsAny() || ns.IsPublic() {
			return m.Name, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// ScriptObject
// ---------------------------------------------------------------------------

// ScriptObject is the standard instance: declared slots plus, on
// non-sealed classes, an insertion-ordered dynamic table.
type ScriptObject struct {
	class *Class
	proto heap.Value
	slots []heap.Value

	dynOrder []string
	dyn      map[string]heap.Value
}

func newScriptObject(cls *Class, proto heap.Value) *ScriptObject {
	slots := make([]heap.Value, cls.SlotCount())
	copy(slots, cls.slotDefaults)
	return &ScriptObject{class: cls, proto: proto, slots: slots}
}

// NewInstance allocates an uninitialized instance of a class: slots at
// their defaults, ancestor pointer on the class prototype. The
// constructor has not run.
func (d *Domain) NewInstance(cls *Class) (heap.Value, *ScriptObject) {
	o := newScriptObject(cls, cls.proto)
	return d.Alloc(o), o
}

// NewPlainObject allocates a dynamic Object instance.
func (d *Domain) NewPlainObject() (heap.Value, *ScriptObject) {
	return d.NewInstance(d.ObjectClass)
}

func (o *ScriptObject) Class() *Class     { return o.class }
func (o *ScriptObject) Proto() heap.Value { return o.proto }

// Slot reads a declared slot by index.
func (o *ScriptObject) Slot(i int) heap.Value {
	if i < 0 || i >= len(o.slots) {
		return heap.Undefined
	}
	return o.slots[i]
}

// SetSlot writes a declared slot by index.
func (o *ScriptObject) SetSlot(i int, v heap.Value) {
	if i >= 0 && i < len(o.slots) {
		o.slots[i] = v
	}
}

func (o *ScriptObject) getDynamic(name string) (heap.Value, bool) {
	if o.dyn == nil {
		return heap.Undefined, false
	}
	v, ok := o.dyn[name]
	return v, ok
}

func (o *ScriptObject) setDynamic(name string, v heap.Value) {
	if o.dyn == nil {
		o.dyn = make(map[string]heap.Value)
	}
	if _, ok := o.dyn[name]; !ok {
		o.dynOrder = append(o.dynOrder, name)
	}
	o.dyn[name] = v
}

func (o *ScriptObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if b, _, ok := o.class.ResolveInstance(m); ok {
		switch b.kind {
		case TraitSlot, TraitConst:
			return o.Slot(b.slot), nil
		case TraitMethod:
			return act.domain.BindMethod(b.method, recv), nil
		case TraitGetter:
			if b.getter == nil {
				return heap.Undefined, referenceError(CodeWriteOnly, "Illegal read of write-only property %s on %s", m, o.class.Name)
			}
			return act.callMethod(b.getter, recv, nil)
		case TraitSetter:
			return heap.Undefined, referenceError(CodeWriteOnly, "Illegal read of write-only property %s on %s", m, o.class.Name)
		}
	}
	if name, ok := publicName(m); ok {
		if v, ok := o.getDynamic(name); ok {
			return v, nil
		}
		// Dynamic misses fall through the prototype chain.
		proto := o.proto
		for i := 0; proto.IsObject() && i < 256; i++ {
			po := act.domain.Resolve(proto)
			if po == nil {
				break
			}
			if so, ok := po.(*ScriptObject); ok {
				if v, ok := so.getDynamic(name); ok {
					return v, nil
				}
				proto = so.proto
				continue
			}
			break
		}
	}
	if o.class.Sealed() {
		return heap.Undefined, propertyNotFound(m, o.class.Name.String())
	}
	return heap.Undefined, nil
}

func (o *ScriptObject) setProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value, init bool) error {
	if b, _, ok := o.class.ResolveInstance(m); ok {
		switch b.kind {
		case TraitSlot:
			o.SetSlot(b.slot, v)
			return nil
		case TraitConst:
			if init {
				o.SetSlot(b.slot, v)
				return nil
			}
			return referenceError(CodeReadOnly, "Illegal write to read-only property %s on %s", m, o.class.Name)
		case TraitGetter:
			if b.setter == nil {
				return referenceError(CodeReadOnly, "Illegal write to read-only property %s on %s", m, o.class.Name)
			}
			_, err := act.callMethod(b.setter, recv, []heap.Value{v})
			return err
		case TraitSetter:
			_, err := act.callMethod(b.setter, recv, []heap.Value{v})
			return err
		case TraitMethod:
			return referenceError(CodeReadOnly, "Cannot assign to a method %s on %s", m, o.class.Name)
		}
	}
	if o.class.Sealed() {
		return writeSealed(m, o.class.Name.String())
	}
	name, ok := publicName(m)
	if !ok {
		return writeSealed(m, o.class.Name.String())
	}
	o.setDynamic(name, v)
	return nil
}

func (o *ScriptObject) SetProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error {
	return o.setProperty(act, recv, m, v, false)
}

// InitProperty is the definition-time write: it may set const slots.
func (o *ScriptObject) InitProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error {
	return o.setProperty(act, recv, m, v, true)
}

// DeleteProperty removes a dynamic property. Declared traits are never
// deletable; deleting one reports false.
func (o *ScriptObject) DeleteProperty(act *Activation, m Multiname) (bool, error) {
	if _, _, ok := o.class.ResolveInstance(m); ok {
		return false, nil
	}
	name, ok := publicName(m)
	if !ok || o.dyn == nil {
		return false, nil
	}
	if _, ok := o.dyn[name]; !ok {
		return false, nil
	}
	delete(o.dyn, name)
	for i, existing := range o.dynOrder {
		if existing == name {
			o.dynOrder = append(o.dynOrder[:i], o.dynOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

func (o *ScriptObject) HasProperty(m Multiname) bool {
	if _, _, ok := o.class.ResolveInstance(m); ok {
		return true
	}
	if name, ok := publicName(m); ok {
		if _, ok := o.getDynamic(name); ok {
			return true
		}
	}
	return false
}

// Enumeration indices cover declared trait names first, in declaration
// order, then dynamic names in insertion order.
func (o *ScriptObject) NextIndex(cur int) int {
	if cur < 0 {
		cur = 0
	}
	if cur < len(o.class.instOrder)+len(o.dynOrder) {
		return cur + 1
	}
	return 0
}

func (o *ScriptObject) NameAt(d *Domain, i int) heap.Value {
	i--
	if i < 0 {
		return heap.Undefined
	}
	if i < len(o.class.instOrder) {
		return d.Str(o.class.instOrder[i].Name)
	}
	i -= len(o.class.instOrder)
	if i < len(o.dynOrder) {
		return d.Str(o.dynOrder[i])
	}
	return heap.Undefined
}

func (o *ScriptObject) ValueAt(act *Activation, recv heap.Value, i int) (heap.Value, error) {
	name := o.NameAt(act.domain, i)
	if name.IsUndefined() {
		return heap.Undefined, nil
	}
	return o.GetProperty(act, recv, PublicMultiname(act.domain.GoString(name)))
}

func (o *ScriptObject) Trace(mark func(heap.Handle)) {
	heap.MarkValue(o.proto, mark)
	for _, v := range o.slots {
		heap.MarkValue(v, mark)
	}
	for _, v := range o.dyn {
		heap.MarkValue(v, mark)
	}
}
