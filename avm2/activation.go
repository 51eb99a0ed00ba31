package avm2

import (
	"fmt"
	"math"

	"github.com/lantern-player/lantern/abc"
	"github.com/lantern-player/lantern/heap"
)

// Activation is one call frame: the evaluation stack, the register
// file, and the scope stack for a single method invocation. Frames
// register themselves as GC roots for the duration of the call.
type Activation struct {
	domain *Domain
	method *Method
	unit   *abc.TranslationUnit

	this      heap.Value
	registers []heap.Value
	stack     []heap.Value
	scope     []heap.Value
}

// NewActivation builds a root frame whose scope stack holds only the
// global object. Native code uses it to call into the VM.
func (d *Domain) NewActivation() *Activation {
	return &Activation{domain: d, this: d.globals, scope: []heap.Value{d.globals}}
}

// Domain returns the owning domain.
func (act *Activation) Domain() *Domain { return act.domain }

// This returns the frame's receiver.
func (act *Activation) This() heap.Value { return act.this }

// Roots marks every value the frame can still reach.
func (act *Activation) Roots(mark func(heap.Handle)) {
	heap.MarkValue(act.this, mark)
	for _, v := range act.registers {
		heap.MarkValue(v, mark)
	}
	for _, v := range act.stack {
		heap.MarkValue(v, mark)
	}
	for _, v := range act.scope {
		heap.MarkValue(v, mark)
	}
}

// callMethod dispatches a call: native bodies run directly on the
// caller's frame, interpreted bodies get a fresh frame with receiver in
// register 0 and arguments following. The recursion gate runs before
// any per-call allocation.
func (act *Activation) callMethod(m *Method, this heap.Value, args []heap.Value) (heap.Value, error) {
	d := act.domain
	if d.depth >= d.MaxRecursion {
		return heap.Undefined, &Error{Kind: "Error", Code: CodeRecursionExhausted,
			Message: "The current call stack depth exceeded the configured limit"}
	}
	d.depth++
	defer func() { d.depth-- }()

	if m.Native != nil {
		return m.Native(act, this, args)
	}

	regs := int(m.RegisterCount)
	if regs < 1+len(args) {
		regs = 1 + len(args)
	}
	frame := &Activation{
		domain:    d,
		method:    m,
		unit:      m.Unit,
		this:      this,
		registers: make([]heap.Value, regs),
		scope:     []heap.Value{d.globals},
	}
	for i := range frame.registers {
		frame.registers[i] = heap.Undefined
	}
	frame.registers[0] = this
	copy(frame.registers[1:], args)

	d.Space.AddRoots(frame)
	defer d.Space.RemoveRoots(frame)
	return frame.run()
}

// CallValue invokes a callable value with an explicit receiver.
func (act *Activation) CallValue(fn, this heap.Value, args []heap.Value) (heap.Value, error) {
	callee, ok := act.domain.Resolve(fn).(callable)
	if !ok {
		return heap.Undefined, typeError(CodeCallNonFunction, "value is not a function")
	}
	return callee.Call(act, this, args)
}

// RunScript executes one method of a translation unit against the
// global object. It is the entry point for a freshly loaded unit's
// script initializer.
func (d *Domain) RunScript(tu *abc.TranslationUnit, methodIndex uint32) (heap.Value, error) {
	m, err := methodFromABC(tu, methodIndex)
	if err != nil {
		return heap.Undefined, err
	}
	root := d.NewActivation()
	return root.callMethod(m, d.globals, nil)
}

// ---------------------------------------------------------------------------
// Unit translation
// ---------------------------------------------------------------------------

// methodFromABC builds a runtime method from a pooled record.
func methodFromABC(tu *abc.TranslationUnit, i uint32) (*Method, error) {
	rec, err := tu.Method(i)
	if err != nil {
		return nil, err
	}
	name := ""
	if rec.Name != 0 {
		if name, err = tu.String(rec.Name); err != nil {
			return nil, err
		}
	}
	return &Method{
		Name:          name,
		Body:          rec.Body,
		Unit:          tu,
		RegisterCount: int(rec.RegisterCount),
		ParamCount:    len(rec.ParamTypes),
	}, nil
}

// qnameFromABC resolves a multiname pool entry that must be a QName.
func qnameFromABC(tu *abc.TranslationUnit, i uint32) (QName, error) {
	m, err := multinameFromABC(tu, i)
	if err != nil {
		return QName{}, err
	}
	if len(m.NsSet) != 1 || m.NsSet[0].IsAny() || !m.HasName {
		return QName{}, fmt.Errorf("multiname %d is not a QName", i)
	}
	return QName{Ns: m.NsSet[0], Name: m.Name}, nil
}

func (d *Domain) constantValue(tu *abc.TranslationUnit, c abc.Constant) (heap.Value, error) {
	switch c.Kind {
	case abc.ConstNull:
		return heap.Null, nil
	case abc.ConstTrue:
		return heap.True, nil
	case abc.ConstFalse:
		return heap.False, nil
	case abc.ConstInt:
		return heap.FromInt(c.Int), nil
	case abc.ConstUint:
		return heap.FromUint(c.Uint), nil
	case abc.ConstDouble:
		return heap.FromFloat(c.Num), nil
	case abc.ConstString:
		s, err := tu.String(c.Str)
		if err != nil {
			return heap.Undefined, err
		}
		return d.Str(s), nil
	default:
		return heap.Undefined, nil
	}
}

func (d *Domain) traitFromABC(tu *abc.TranslationUnit, t *abc.Trait) (Trait, error) {
	name, err := qnameFromABC(tu, t.Name)
	if err != nil {
		return Trait{}, err
	}
	out := Trait{Name: name}
	switch t.Kind {
	case abc.TraitSlot, abc.TraitConst:
		out.Kind = TraitSlot
		if t.Kind == abc.TraitConst {
			out.Kind = TraitConst
		}
		if out.Default, err = d.constantValue(tu, t.Value); err != nil {
			return Trait{}, err
		}
	case abc.TraitMethod, abc.TraitGetter, abc.TraitSetter:
		switch t.Kind {
		case abc.TraitMethod:
			out.Kind = TraitMethod
		case abc.TraitGetter:
			out.Kind = TraitGetter
		default:
			out.Kind = TraitSetter
		}
		if out.Method, err = methodFromABC(tu, t.Method); err != nil {
			return Trait{}, err
		}
	default:
		return Trait{}, fmt.Errorf("unsupported trait kind %d for %s", t.Kind, name)
	}
	return out, nil
}

// DefineClass translates one pooled class definition into a live class,
// registers it, and returns it. The superclass must already be defined
// in this domain.
func (d *Domain) DefineClass(tu *abc.TranslationUnit, classIndex uint32) (*Class, error) {
	rec, err := tu.Class(classIndex)
	if err != nil {
		return nil, err
	}
	name, err := qnameFromABC(tu, rec.Name)
	if err != nil {
		return nil, err
	}
	super := d.ObjectClass
	if rec.SuperName != 0 {
		superName, err := multinameFromABC(tu, rec.SuperName)
		if err != nil {
			return nil, err
		}
		s, ok := d.LookupClass(superName)
		if !ok {
			return nil, referenceError(CodeVariableNotDefined,
				"Variable %s is not defined", superName)
		}
		super = s
	}
	var attrs ClassAttrs
	if rec.Attributes&abc.ClassSealed != 0 {
		attrs |= ClassSealed
	}
	if rec.Attributes&abc.ClassFinal != 0 {
		attrs |= ClassFinal
	}
	if rec.Attributes&abc.ClassInterface != 0 {
		attrs |= ClassInterface
	}
	if rec.Attributes&abc.ClassGeneric != 0 {
		attrs |= ClassGeneric
	}

	instance := make([]Trait, 0, len(rec.InstanceTraits))
	for i := range rec.InstanceTraits {
		t, err := d.traitFromABC(tu, &rec.InstanceTraits[i])
		if err != nil {
			return nil, err
		}
		instance = append(instance, t)
	}
	static := make([]Trait, 0, len(rec.ClassTraits))
	for i := range rec.ClassTraits {
		t, err := d.traitFromABC(tu, &rec.ClassTraits[i])
		if err != nil {
			return nil, err
		}
		static = append(static, t)
	}
	iinit, err := methodFromABC(tu, rec.InstanceInit)
	if err != nil {
		return nil, err
	}
	cinit, err := methodFromABC(tu, rec.ClassInit)
	if err != nil {
		return nil, err
	}

	cls := NewClass(name, super, attrs, instance, static, iinit, cinit)
	for _, ii := range rec.Interfaces {
		iname, err := multinameFromABC(tu, ii)
		if err != nil {
			return nil, err
		}
		if iface, ok := d.LookupClass(iname); ok {
			cls.Interfaces = append(cls.Interfaces, iface)
		}
	}
	d.RegisterClass(cls)
	return cls, nil
}

// ---------------------------------------------------------------------------
// Interpreter
// ---------------------------------------------------------------------------

const (
	opJump            = 0x10
	opIfTrue          = 0x11
	opIfFalse         = 0x12
	opIfEq            = 0x13
	opIfNe            = 0x14
	opPopScope        = 0x1D
	opNextName        = 0x1E
	opPushNull        = 0x20
	opPushUndefined   = 0x21
	opNextValue       = 0x23
	opPushByte        = 0x24
	opPushShort       = 0x25
	opPushTrue        = 0x26
	opPushFalse       = 0x27
	opPushNaN         = 0x28
	opPop             = 0x29
	opDup             = 0x2A
	opSwap            = 0x2B
	opPushString      = 0x2C
	opPushInt         = 0x2D
	opPushUint        = 0x2E
	opPushDouble      = 0x2F
	opPushScope       = 0x30
	opHasNext2        = 0x32
	opNewFunction     = 0x40
	opConstruct       = 0x42
	opCallProperty    = 0x46
	opReturnVoid      = 0x47
	opReturnValue     = 0x48
	opConstructSuper  = 0x49
	opConstructProp   = 0x4A
	opCallPropVoid    = 0x4F
	opNewObject       = 0x55
	opNewArray        = 0x56
	opNewClass        = 0x58
	opFindPropStrict  = 0x5D
	opFindProperty    = 0x5E
	opGetLex          = 0x60
	opSetProperty     = 0x61
	opGetLocal        = 0x62
	opSetLocal        = 0x63
	opGetGlobalScope  = 0x64
	opGetScopeObject  = 0x65
	opGetProperty     = 0x66
	opInitProperty    = 0x68
	opDeleteProperty  = 0x6A
	opConvertS        = 0x70
	opConvertI        = 0x73
	opConvertU        = 0x74
	opConvertD        = 0x75
	opConvertB        = 0x76
	opCoerce          = 0x80
	opCoerceA         = 0x82
	opCoerceS         = 0x85
	opNegate          = 0x90
	opIncrement       = 0x91
	opDecrement       = 0x93
	opTypeOf          = 0x95
	opNot             = 0x96
	opAdd             = 0xA0
	opSubtract        = 0xA1
	opMultiply        = 0xA2
	opDivide          = 0xA3
	opModulo          = 0xA4
	opEquals          = 0xAB
	opStrictEquals    = 0xAC
	opLessThan        = 0xAD
	opGreaterThan     = 0xAF
	opGetLocal0       = 0xD0
	opGetLocal1       = 0xD1
	opGetLocal2       = 0xD2
	opGetLocal3       = 0xD3
	opSetLocal0       = 0xD4
	opSetLocal1       = 0xD5
	opSetLocal2       = 0xD6
	opSetLocal3       = 0xD7
	opKill            = 0x08
	opLabel           = 0x09
)

// reader walks one method body.
type reader struct {
	code []byte
	pc   int
}

func (r *reader) done() bool { return r.pc >= len(r.code) }

func (r *reader) u8() byte {
	if r.pc >= len(r.code) {
		return 0
	}
	b := r.code[r.pc]
	r.pc++
	return b
}

// u30 is the variable-length unsigned operand encoding.
func (r *reader) u30() uint32 {
	var out uint32
	for shift := 0; shift < 35; shift += 7 {
		b := r.u8()
		out |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
	}
	return out
}

// s24 is the 3-byte signed branch offset.
func (r *reader) s24() int32 {
	lo := uint32(r.u8())
	mid := uint32(r.u8())
	hi := uint32(r.u8())
	v := lo | mid<<8 | hi<<16
	if v&0x800000 != 0 {
		v |= 0xFF000000
	}
	return int32(v)
}

func (act *Activation) push(v heap.Value) { act.stack = append(act.stack, v) }

func (act *Activation) pop() heap.Value {
	if len(act.stack) == 0 {
		return heap.Undefined
	}
	v := act.stack[len(act.stack)-1]
	act.stack = act.stack[:len(act.stack)-1]
	return v
}

// popArgs pops an argument list pushed left to right.
func (act *Activation) popArgs(n uint32) []heap.Value {
	args := make([]heap.Value, n)
	for i := int(n) - 1; i >= 0; i-- {
		args[i] = act.pop()
	}
	return args
}

// readMultiname decodes a multiname operand, popping the late-bound
// local name from the stack when the pool entry calls for it.
func (act *Activation) readMultiname(r *reader) (Multiname, error) {
	idx := r.u30()
	rec, err := act.unit.Multiname(idx)
	if err != nil {
		return Multiname{}, err
	}
	m, err := multinameFromABC(act.unit, idx)
	if err != nil {
		return Multiname{}, err
	}
	if rec.Kind == abc.MnMultinameLate {
		name, err := act.ToString(act.pop())
		if err != nil {
			return Multiname{}, err
		}
		m.Name = name
		m.HasName = true
	}
	return m, nil
}

// receiver resolves the object behind a value, failing with the typed
// null-access error for null and undefined.
func (act *Activation) receiver(v heap.Value) (Object, error) {
	if v == heap.Null || v == heap.Undefined {
		return nil, typeError(CodeNullAccess,
			"Cannot access a property or method of a null object reference")
	}
	obj := act.domain.Resolve(v)
	if obj == nil {
		// Primitive receivers expose no traits in this engine.
		return nil, typeError(CodeNullAccess,
			"Cannot access a property or method of a null object reference")
	}
	return obj, nil
}

// findProperty walks the scope stack innermost first. Strict misses
// fail; lenient misses fall back to the global object.
func (act *Activation) findProperty(m Multiname, strict bool) (heap.Value, error) {
	for i := len(act.scope) - 1; i >= 0; i-- {
		if obj := act.domain.Resolve(act.scope[i]); obj != nil && obj.HasProperty(m) {
			return act.scope[i], nil
		}
	}
	if globals := act.domain.Resolve(act.domain.globals); globals != nil && globals.HasProperty(m) {
		return act.domain.globals, nil
	}
	if strict {
		return heap.Undefined, referenceError(CodeVariableNotDefined,
			"Variable %s is not defined", m)
	}
	return act.domain.globals, nil
}

func (act *Activation) callProperty(m Multiname, argc uint32) (heap.Value, error) {
	args := act.popArgs(argc)
	recvVal := act.pop()
	recv, err := act.receiver(recvVal)
	if err != nil {
		return heap.Undefined, err
	}
	fn, err := recv.GetProperty(act, recvVal, m)
	if err != nil {
		return heap.Undefined, err
	}
	callee, ok := act.domain.Resolve(fn).(callable)
	if !ok {
		return heap.Undefined, typeError(CodeCallNonFunction,
			"Property %s is not a function", m)
	}
	return callee.Call(act, recvVal, args)
}

// run interprets the frame's method body.
func (act *Activation) run() (heap.Value, error) {
	r := &reader{code: act.method.Body}
	for !r.done() {
		op := r.u8()
		switch op {
		case opLabel, opCoerceA:
			// no effect
		case opKill:
			act.registers[r.u30()] = heap.Undefined

		case opJump:
			off := r.s24()
			r.pc += int(off)
		case opIfTrue, opIfFalse:
			off := r.s24()
			cond := act.domain.ToBoolean(act.pop())
			if cond == (op == opIfTrue) {
				r.pc += int(off)
			}
		case opIfEq, opIfNe:
			off := r.s24()
			b := act.pop()
			a := act.pop()
			eq, err := act.Equals(a, b)
			if err != nil {
				return heap.Undefined, err
			}
			if eq == (op == opIfEq) {
				r.pc += int(off)
			}

		case opPushNull:
			act.push(heap.Null)
		case opPushUndefined:
			act.push(heap.Undefined)
		case opPushTrue:
			act.push(heap.True)
		case opPushFalse:
			act.push(heap.False)
		case opPushNaN:
			act.push(heap.FromFloat(math.NaN()))
		case opPushByte:
			act.push(heap.FromInt(int32(int8(r.u8()))))
		case opPushShort:
			act.push(heap.FromInt(int32(int16(r.u30()))))
		case opPushString:
			s, err := act.unit.String(r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(act.domain.Str(s))
		case opPushInt:
			n, err := act.unit.Int(r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromInt(n))
		case opPushUint:
			n, err := act.unit.Uint(r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromUint(n))
		case opPushDouble:
			n, err := act.unit.Double(r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromFloat(n))

		case opPop:
			act.pop()
		case opDup:
			v := act.pop()
			act.push(v)
			act.push(v)
		case opSwap:
			b := act.pop()
			a := act.pop()
			act.push(b)
			act.push(a)

		case opPushScope:
			act.scope = append(act.scope, act.pop())
		case opPopScope:
			if len(act.scope) > 0 {
				act.scope = act.scope[:len(act.scope)-1]
			}
		case opGetGlobalScope:
			act.push(act.scope[0])
		case opGetScopeObject:
			act.push(act.scope[r.u8()])

		case opGetLocal0, opGetLocal1, opGetLocal2, opGetLocal3:
			act.push(act.registers[op-opGetLocal0])
		case opSetLocal0, opSetLocal1, opSetLocal2, opSetLocal3:
			act.registers[op-opSetLocal0] = act.pop()
		case opGetLocal:
			act.push(act.registers[r.u30()])
		case opSetLocal:
			act.registers[r.u30()] = act.pop()

		case opFindPropStrict, opFindProperty:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			holder, err := act.findProperty(m, op == opFindPropStrict)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(holder)
		case opGetLex:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			holder, err := act.findProperty(m, true)
			if err != nil {
				return heap.Undefined, err
			}
			obj, err := act.receiver(holder)
			if err != nil {
				return heap.Undefined, err
			}
			v, err := obj.GetProperty(act, holder, m)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)

		case opGetProperty:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			recvVal := act.pop()
			recv, err := act.receiver(recvVal)
			if err != nil {
				return heap.Undefined, err
			}
			v, err := recv.GetProperty(act, recvVal, m)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)
		case opSetProperty, opInitProperty:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			v := act.pop()
			recvVal := act.pop()
			recv, err := act.receiver(recvVal)
			if err != nil {
				return heap.Undefined, err
			}
			if op == opInitProperty {
				err = recv.InitProperty(act, recvVal, m, v)
			} else {
				err = recv.SetProperty(act, recvVal, m, v)
			}
			if err != nil {
				return heap.Undefined, err
			}
		case opDeleteProperty:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			recvVal := act.pop()
			recv, err := act.receiver(recvVal)
			if err != nil {
				return heap.Undefined, err
			}
			ok, err := recv.DeleteProperty(act, m)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromBool(ok))

		case opCallProperty:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			res, err := act.callProperty(m, r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(res)
		case opCallPropVoid:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			if _, err := act.callProperty(m, r.u30()); err != nil {
				return heap.Undefined, err
			}

		case opConstruct:
			args := act.popArgs(r.u30())
			ctorVal := act.pop()
			ctor, ok := act.domain.Resolve(ctorVal).(Constructible)
			if !ok {
				return heap.Undefined, typeError(CodeConstructNonCreator,
					"Instantiation attempted on a non-constructor")
			}
			v, err := ctor.Construct(act, args)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)
		case opConstructProp:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			args := act.popArgs(r.u30())
			recvVal := act.pop()
			recv, err := act.receiver(recvVal)
			if err != nil {
				return heap.Undefined, err
			}
			ctorVal, err := recv.GetProperty(act, recvVal, m)
			if err != nil {
				return heap.Undefined, err
			}
			ctor, ok := act.domain.Resolve(ctorVal).(Constructible)
			if !ok {
				return heap.Undefined, typeError(CodeConstructNonCreator,
					"Instantiation attempted on a non-constructor")
			}
			v, err := ctor.Construct(act, args)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)
		case opConstructSuper:
			args := act.popArgs(r.u30())
			recvVal := act.pop()
			recv, err := act.receiver(recvVal)
			if err != nil {
				return heap.Undefined, err
			}
			// The declaring class of the running initializer decides
			// which superclass chains next; the receiver's class would
			// make a mid-hierarchy initializer re-enter itself.
			var super *Class
			if act.method != nil && act.method.DeclClass != nil {
				super = act.method.DeclClass.Super
			} else {
				super = recv.Class().Super
			}
			if super != nil && super.InstanceInit != nil {
				if _, err := act.callMethod(super.InstanceInit, recvVal, args); err != nil {
					return heap.Undefined, err
				}
			}

		case opReturnVoid:
			return heap.Undefined, nil
		case opReturnValue:
			return act.pop(), nil

		case opNewFunction:
			m, err := methodFromABC(act.unit, r.u30())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(act.domain.NewFunction(m))
		case opNewClass:
			idx := r.u30()
			act.pop() // base class value; the definition names its super
			cls, err := act.domain.DefineClass(act.unit, idx)
			if err != nil {
				return heap.Undefined, err
			}
			v, err := act.domain.NewClassObject(act, cls)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)
		case opNewObject:
			n := r.u30()
			v, obj := act.domain.NewPlainObject()
			// Pairs were pushed name first, value second.
			names := make([]string, n)
			values := make([]heap.Value, n)
			for i := int(n) - 1; i >= 0; i-- {
				values[i] = act.pop()
				name, err := act.ToString(act.pop())
				if err != nil {
					return heap.Undefined, err
				}
				names[i] = name
			}
			for i := range names {
				if err := obj.SetProperty(act, v, PublicMultiname(names[i]), values[i]); err != nil {
					return heap.Undefined, err
				}
			}
			act.push(v)
		case opNewArray:
			elems := act.popArgs(r.u30())
			v, _ := act.domain.NewArray(elems...)
			act.push(v)

		case opHasNext2:
			objReg := r.u30()
			idxReg := r.u30()
			idx := int(act.registers[idxReg].NumberValue())
			obj := act.domain.Resolve(act.registers[objReg])
			next := 0
			if obj != nil {
				next = obj.NextIndex(idx)
			}
			act.registers[idxReg] = heap.FromInt(int32(next))
			if next == 0 {
				act.registers[objReg] = heap.Null
			}
			act.push(heap.FromBool(next != 0))
		case opNextName:
			idx := int(act.pop().NumberValue())
			objVal := act.pop()
			obj, err := act.receiver(objVal)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(obj.NameAt(act.domain, idx))
		case opNextValue:
			idx := int(act.pop().NumberValue())
			objVal := act.pop()
			obj, err := act.receiver(objVal)
			if err != nil {
				return heap.Undefined, err
			}
			v, err := obj.ValueAt(act, objVal, idx)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(v)

		case opConvertB:
			act.push(heap.FromBool(act.domain.ToBoolean(act.pop())))
		case opConvertD:
			n, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromFloat(n))
		case opConvertI:
			n, err := act.ToInt32(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromInt(n))
		case opConvertU:
			n, err := act.ToUint32(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromUint(n))
		case opConvertS, opCoerceS:
			s, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(act.domain.Str(s))
		case opCoerce:
			m, err := act.readMultiname(r)
			if err != nil {
				return heap.Undefined, err
			}
			v := act.pop()
			cls, ok := act.domain.LookupClass(m)
			if !ok {
				return heap.Undefined, referenceError(CodeVariableNotDefined,
					"Variable %s is not defined", m)
			}
			coerced, err := act.CoerceToClass(v, cls)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(coerced)

		case opNegate:
			n, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromFloat(-n))
		case opIncrement, opDecrement:
			n, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			if op == opIncrement {
				n++
			} else {
				n--
			}
			act.push(heap.FromFloat(n))
		case opNot:
			act.push(heap.FromBool(!act.domain.ToBoolean(act.pop())))
		case opTypeOf:
			act.push(act.domain.Str(act.typeOf(act.pop())))

		case opAdd:
			b := act.pop()
			a := act.pop()
			res, err := act.add(a, b)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(res)
		case opSubtract, opMultiply, opDivide, opModulo:
			b, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			a, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, err
			}
			var n float64
			switch op {
			case opSubtract:
				n = a - b
			case opMultiply:
				n = a * b
			case opDivide:
				n = a / b
			default:
				n = math.Mod(a, b)
			}
			act.push(heap.FromFloat(n))

		case opEquals:
			b := act.pop()
			a := act.pop()
			eq, err := act.Equals(a, b)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromBool(eq))
		case opStrictEquals:
			b := act.pop()
			a := act.pop()
			act.push(heap.FromBool(act.domain.StrictEquals(a, b)))
		case opLessThan, opGreaterThan:
			b := act.pop()
			a := act.pop()
			if op == opGreaterThan {
				a, b = b, a
			}
			less, err := act.lessThan(a, b)
			if err != nil {
				return heap.Undefined, err
			}
			act.push(heap.FromBool(less))

		default:
			return heap.Undefined, &Error{Kind: "VerifyError", Code: CodeIllegalOpcode,
				Message: fmt.Sprintf("Method %s contained illegal opcode 0x%02X", act.method.Name, op)}
		}
	}
	return heap.Undefined, nil
}

// add follows the primitive-first protocol: string concatenation when
// either primitive is a string, numeric addition otherwise.
func (act *Activation) add(a, b heap.Value) (heap.Value, error) {
	pa, err := act.toPrimitive(a)
	if err != nil {
		return heap.Undefined, err
	}
	pb, err := act.toPrimitive(b)
	if err != nil {
		return heap.Undefined, err
	}
	if pa.IsString() || pb.IsString() {
		sa, err := act.ToString(pa)
		if err != nil {
			return heap.Undefined, err
		}
		sb, err := act.ToString(pb)
		if err != nil {
			return heap.Undefined, err
		}
		return act.domain.Str(sa + sb), nil
	}
	na, err := act.ToNumber(pa)
	if err != nil {
		return heap.Undefined, err
	}
	nb, err := act.ToNumber(pb)
	if err != nil {
		return heap.Undefined, err
	}
	return heap.FromFloat(na + nb), nil
}

// lessThan compares primitives: lexicographic for string pairs, numeric
// otherwise with NaN never less.
func (act *Activation) lessThan(a, b heap.Value) (bool, error) {
	pa, err := act.toPrimitive(a)
	if err != nil {
		return false, err
	}
	pb, err := act.toPrimitive(b)
	if err != nil {
		return false, err
	}
	if pa.IsString() && pb.IsString() {
		return act.domain.GoString(pa) < act.domain.GoString(pb), nil
	}
	na, err := act.ToNumber(pa)
	if err != nil {
		return false, err
	}
	nb, err := act.ToNumber(pb)
	if err != nil {
		return false, err
	}
	return na < nb, nil
}

func (act *Activation) typeOf(v heap.Value) string {
	switch {
	case v == heap.Undefined:
		return "undefined"
	case v == heap.Null:
		return "object"
	case v == heap.True || v == heap.False:
		return "boolean"
	case v.IsString():
		return "string"
	case v.IsObject():
		if _, ok := act.domain.Resolve(v).(callable); ok {
			return "function"
		}
		return "object"
	default:
		return "number"
	}
}
