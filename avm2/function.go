package avm2

import "github.com/lantern-player/lantern/heap"

// Constructible is implemented by values the construct opcodes accept.
type Constructible interface {
	Construct(act *Activation, args []heap.Value) (heap.Value, error)
}

// ---------------------------------------------------------------------------
// FunctionObject
// ---------------------------------------------------------------------------

// FunctionObject is a callable: a free function, a closure, or a method
// bound to its receiver at extraction time.
type FunctionObject struct {
	ScriptObject
	method    *Method
	boundThis heap.Value
}

// NewNativeFunction allocates a function around a host body.
func (d *Domain) NewNativeFunction(name string, fn NativeMethod) heap.Value {
	return d.NewFunction(&Method{Name: name, Native: fn})
}

// NewFunction allocates a function object for a method.
func (d *Domain) NewFunction(m *Method) heap.Value {
	f := &FunctionObject{
		ScriptObject: *newScriptObject(d.FunctionClass, d.FunctionClass.proto),
		method:       m,
		boundThis:    heap.Undefined,
	}
	return d.Alloc(f)
}

// BindMethod allocates a bound-method closure: calling it uses the
// captured receiver regardless of the call-site this.
func (d *Domain) BindMethod(m *Method, recv heap.Value) heap.Value {
	f := &FunctionObject{
		ScriptObject: *newScriptObject(d.FunctionClass, d.FunctionClass.proto),
		method:       m,
		boundThis:    recv,
	}
	return d.Alloc(f)
}

// Method returns the underlying body.
func (f *FunctionObject) Method() *Method { return f.method }

// Call invokes the function. A bound receiver wins over the passed one.
func (f *FunctionObject) Call(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	if !f.boundThis.IsUndefined() {
		this = f.boundThis
	}
	return act.callMethod(f.method, this, args)
}

// Construct treats the function as a constructor: the instance links to
// the function's prototype property and the body's return value is
// ignored for interpreted bodies, substituted for natives.
func (f *FunctionObject) Construct(act *Activation, args []heap.Value) (heap.Value, error) {
	d := act.domain
	proto, err := f.ScriptObject.GetProperty(act, heap.Undefined, PublicMultiname("prototype"))
	if err != nil {
		return heap.Undefined, err
	}
	if !proto.IsObject() {
		proto = d.ObjectClass.proto
	}
	inst := newScriptObject(d.ObjectClass, proto)
	iv := d.Alloc(inst)
	if f.method.Native != nil {
		res, err := act.callMethod(f.method, iv, args)
		if err != nil {
			return heap.Undefined, err
		}
		if res.IsObject() {
			return res, nil
		}
		return iv, nil
	}
	if _, err := act.callMethod(f.method, iv, args); err != nil {
		return heap.Undefined, err
	}
	return iv, nil
}

func (f *FunctionObject) Trace(mark func(heap.Handle)) {
	f.ScriptObject.Trace(mark)
	heap.MarkValue(f.boundThis, mark)
}

// ---------------------------------------------------------------------------
// ClassObject
// ---------------------------------------------------------------------------

// ClassObject is the value of a class definition: it owns the static
// slots, resolves static traits, exposes the prototype object, and
// constructs instances.
type ClassObject struct {
	ScriptObject
	class       *Class
	staticSlots []heap.Value
}

// NewClassObject allocates the class value and runs its static
// initializer.
func (d *Domain) NewClassObject(act *Activation, cls *Class) (heap.Value, error) {
	co := &ClassObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		class:        cls,
		staticSlots:  make([]heap.Value, len(cls.staticSlotDefaults)),
	}
	copy(co.staticSlots, cls.staticSlotDefaults)
	v := d.Alloc(co)
	if cls.ClassInit != nil {
		if _, err := act.callMethod(cls.ClassInit, v, nil); err != nil {
			return heap.Undefined, err
		}
	}
	return v, nil
}

// InnerClass returns the definition this object represents.
func (co *ClassObject) InnerClass() *Class { return co.class }

func (co *ClassObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if b, _, ok := co.class.ResolveStatic(m); ok {
		switch b.kind {
		case TraitSlot, TraitConst:
			if b.slot < len(co.staticSlots) {
				return co.staticSlots[b.slot], nil
			}
			return heap.Undefined, nil
		case TraitMethod:
			return act.domain.BindMethod(b.method, recv), nil
		case TraitGetter:
			if b.getter != nil {
				return act.callMethod(b.getter, recv, nil)
			}
		}
		return heap.Undefined, referenceError(CodeWriteOnly, "Illegal read of write-only property %s on %s", m, co.class.Name)
	}
	if name, ok := publicName(m); ok && name == "prototype" {
		return co.class.proto, nil
	}
	return co.ScriptObject.GetProperty(act, recv, m)
}

func (co *ClassObject) SetProperty(act *Activation, recv heap.Value, m Multiname, v heap.Value) error {
	if b, _, ok := co.class.ResolveStatic(m); ok {
		switch b.kind {
		case TraitSlot:
			if b.slot < len(co.staticSlots) {
				co.staticSlots[b.slot] = v
			}
			return nil
		case TraitConst:
			return referenceError(CodeReadOnly, "Illegal write to read-only property %s on %s", m, co.class.Name)
		case TraitSetter, TraitGetter:
			if b.setter != nil {
				_, err := act.callMethod(b.setter, recv, []heap.Value{v})
				return err
			}
			return referenceError(CodeReadOnly, "Illegal write to read-only property %s on %s", m, co.class.Name)
		}
	}
	return co.ScriptObject.SetProperty(act, recv, m, v)
}

func (co *ClassObject) HasProperty(m Multiname) bool {
	if _, _, ok := co.class.ResolveStatic(m); ok {
		return true
	}
	return co.ScriptObject.HasProperty(m)
}

// Construct allocates a bare instance linked to the class prototype and
// runs the initializer over it; a native initializer's return value
// substitutes the instance.
func (co *ClassObject) Construct(act *Activation, args []heap.Value) (heap.Value, error) {
	cls := co.class
	if cls.Attrs&ClassInterface != 0 {
		return heap.Undefined, typeError(CodeConstructNonCreator,
			"Instantiation attempted on a non-constructor")
	}
	iv, _ := act.domain.NewInstance(cls)
	init := cls.InstanceInit
	if init == nil {
		return iv, nil
	}
	if init.Native != nil {
		res, err := act.callMethod(init, iv, args)
		if err != nil {
			return heap.Undefined, err
		}
		if res.IsObject() {
			return res, nil
		}
		return iv, nil
	}
	if _, err := act.callMethod(init, iv, args); err != nil {
		return heap.Undefined, err
	}
	return iv, nil
}

func (co *ClassObject) Trace(mark func(heap.Handle)) {
	co.ScriptObject.Trace(mark)
	for _, v := range co.staticSlots {
		heap.MarkValue(v, mark)
	}
	heap.MarkValue(co.class.proto, mark)
}
