package avm1

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// Action opcodes. Codes at 0x80 and above carry a 16-bit payload length.
const (
	opEnd             = 0x00
	opSubtract        = 0x0B
	opMultiply        = 0x0C
	opDivide          = 0x0D
	opNot             = 0x12
	opPop             = 0x17
	opToInteger       = 0x18
	opGetVariable     = 0x1C
	opSetVariable     = 0x1D
	opRemoveSprite    = 0x25
	opTrace           = 0x26
	opThrow           = 0x2A
	opDelete          = 0x3A
	opDelete2         = 0x3B
	opDefineLocal     = 0x3C
	opCallFunction    = 0x3D
	opReturn          = 0x3E
	opNewObject       = 0x40
	opDefineLocal2    = 0x41
	opInitArray       = 0x42
	opInitObject      = 0x43
	opTypeOf          = 0x44
	opAdd2            = 0x47
	opLess2           = 0x48
	opEquals2         = 0x49
	opPushDuplicate   = 0x4C
	opStackSwap       = 0x4D
	opGetMember       = 0x4E
	opSetMember       = 0x4F
	opIncrement       = 0x50
	opDecrement       = 0x51
	opCallMethod      = 0x52
	opNewMethod       = 0x53
	opInstanceOf      = 0x54
	opEnumerate2      = 0x55
	opGreater         = 0x67
	opStoreRegister   = 0x87
	opConstantPool    = 0x88
	opDefineFunction2 = 0x8E
	opTry             = 0x8F
	opWith            = 0x94
	opPush            = 0x96
	opJump            = 0x99
	opDefineFunction  = 0x9B
	opIf              = 0x9D
)

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// readCStr reads a null-terminated string, returning it and the next
// offset.
func readCStr(b []byte, i int) (string, int, bool) {
	for j := i; j < len(b); j++ {
		if b[j] == 0 {
			return string(b[i:j]), j + 1, true
		}
	}
	return "", len(b), false
}

func (act *Activation) run(code []byte) (heap.Value, error) {
	v, _, err := act.exec(code)
	return v, err
}

func (act *Activation) invalid(pc int, reason string) (heap.Value, bool, error) {
	return heap.Undefined, false, &InvalidActionError{Offset: pc, Reason: reason}
}

// exec interprets one instruction stream. The bool result reports an
// explicit return, which unwinds through nested with and try blocks.
func (act *Activation) exec(code []byte) (heap.Value, bool, error) {
	pc := 0
	for pc < len(code) {
		opOffset := pc
		op := code[pc]
		pc++
		var payload []byte
		if op >= 0x80 {
			if pc+2 > len(code) {
				return act.invalid(opOffset, "truncated length")
			}
			n := int(le16(code[pc:]))
			pc += 2
			if pc+n > len(code) {
				return act.invalid(opOffset, "payload past end")
			}
			payload = code[pc : pc+n]
			pc += n
		}

		switch op {
		case opEnd:
			return heap.Undefined, false, nil

		case opPush:
			if err := act.doPush(payload); err != nil {
				return heap.Undefined, false, err
			}
		case opPop:
			act.pop()
		case opPushDuplicate:
			act.push(act.peek())
		case opStackSwap:
			a, b := act.pop(), act.pop()
			act.push(a)
			act.push(b)
		case opStoreRegister:
			if len(payload) < 1 {
				return act.invalid(opOffset, "missing register")
			}
			act.setRegister(int(payload[0]), act.peek())

		case opConstantPool:
			pool, ok := parseConstantPool(payload)
			if !ok {
				return act.invalid(opOffset, "bad constant pool")
			}
			act.constants = pool

		case opJump, opIf:
			if len(payload) < 2 {
				return act.invalid(opOffset, "missing branch offset")
			}
			off := int(int16(le16(payload)))
			take := true
			if op == opIf {
				take = act.ToBool(act.pop())
			}
			if take {
				pc += off
				if pc < 0 || pc > len(code) {
					return act.invalid(opOffset, "branch out of range")
				}
			}

		case opGetVariable:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			v, err := act.resolveVariable(name)
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(v)
		case opSetVariable:
			v := act.pop()
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			if err := act.scope.SetVar(act, name, v); err != nil {
				return heap.Undefined, false, err
			}
		case opDefineLocal:
			v := act.pop()
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			act.scope.Define(act.ctx, name, v)
		case opDefineLocal2:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			if _, found, _ := act.scope.Resolve(act, name); !found {
				act.scope.Define(act.ctx, name, heap.Undefined)
			}
		case opDelete2:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(heap.FromBool(act.scope.DeleteVar(act.ctx, name)))

		case opGetMember:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			objV := act.pop()
			_, o := act.ToObject(objV)
			v, err := o.Get(act, objV, name)
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(v)
		case opSetMember:
			v := act.pop()
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			objV := act.pop()
			if o := act.ctx.ObjectOf(objV); o != nil {
				if err := o.Set(act, objV, name, v); err != nil {
					return heap.Undefined, false, err
				}
				if d, ok := o.(displayBacked); ok {
					act.forwardInteractive(d, name, v)
				}
			}
		case opDelete:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			objV := act.pop()
			deleted := false
			if o := act.ctx.ObjectOf(objV); o != nil {
				deleted = o.Delete(act.ctx, name)
			}
			act.push(heap.FromBool(deleted))

		case opCallFunction:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			args, err := act.popArgs()
			if err != nil {
				return heap.Undefined, false, err
			}
			fnV, err := act.resolveVariable(name)
			if err != nil {
				return heap.Undefined, false, err
			}
			result := heap.Value(heap.Undefined)
			if f := act.ctx.FunctionOf(fnV); f != nil {
				result, err = f.Call(act, name, act.this, args)
				if err != nil {
					return heap.Undefined, false, err
				}
			}
			act.push(result)
		case opCallMethod:
			v, err := act.doCallMethod()
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(v)
		case opNewObject:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			args, err := act.popArgs()
			if err != nil {
				return heap.Undefined, false, err
			}
			ctorV, err := act.resolveVariable(name)
			if err != nil {
				return heap.Undefined, false, err
			}
			result := heap.Value(heap.Undefined)
			if f := act.ctx.FunctionOf(ctorV); f != nil {
				result, err = f.Construct(act, args)
				if err != nil {
					return heap.Undefined, false, err
				}
			}
			act.push(result)
		case opNewMethod:
			name, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			objV := act.pop()
			args, err := act.popArgs()
			if err != nil {
				return heap.Undefined, false, err
			}
			ctorV := objV
			if name != "" {
				_, o := act.ToObject(objV)
				ctorV, err = o.Get(act, objV, name)
				if err != nil {
					return heap.Undefined, false, err
				}
			}
			result := heap.Value(heap.Undefined)
			if f := act.ctx.FunctionOf(ctorV); f != nil {
				result, err = f.Construct(act, args)
				if err != nil {
					return heap.Undefined, false, err
				}
			}
			act.push(result)
		case opReturn:
			return act.pop(), true, nil

		case opDefineFunction2:
			body, rest, ok := parseFunction2(payload)
			if !ok {
				return act.invalid(opOffset, "bad function definition")
			}
			if pc+rest > len(code) {
				return act.invalid(opOffset, "function body past end")
			}
			body.Code = code[pc : pc+rest]
			pc += rest
			act.finishDefineFunction(body)
		case opDefineFunction:
			body, rest, ok := parseFunction1(payload)
			if !ok {
				return act.invalid(opOffset, "bad function definition")
			}
			if pc+rest > len(code) {
				return act.invalid(opOffset, "function body past end")
			}
			body.Code = code[pc : pc+rest]
			pc += rest
			act.finishDefineFunction(body)

		case opWith:
			if len(payload) < 2 {
				return act.invalid(opOffset, "bad with block")
			}
			size := int(le16(payload))
			if pc+size > len(code) {
				return act.invalid(opOffset, "with body past end")
			}
			objV, _ := act.ToObject(act.pop())
			body := code[pc : pc+size]
			pc += size
			saved := act.scope
			act.scope = NewWithScope(saved, objV)
			v, returned, err := act.exec(body)
			act.scope = saved
			if err != nil {
				return heap.Undefined, false, err
			}
			if returned {
				return v, true, nil
			}

		case opTry:
			consumed, v, returned, err := act.doTry(payload, code[pc:])
			if consumed < 0 {
				return act.invalid(opOffset, "bad try block")
			}
			pc += consumed
			if err != nil {
				return heap.Undefined, false, err
			}
			if returned {
				return v, true, nil
			}
		case opThrow:
			return heap.Undefined, false, act.throwValue(act.pop())

		case opAdd2:
			if err := act.doAdd2(); err != nil {
				return heap.Undefined, false, err
			}
		case opSubtract, opMultiply, opDivide:
			if err := act.doArith(op); err != nil {
				return heap.Undefined, false, err
			}
		case opIncrement, opDecrement:
			f, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			if op == opIncrement {
				f++
			} else {
				f--
			}
			act.push(heap.FromFloat(f))
		case opToInteger:
			f, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(heap.FromInt(wrapInt32(f)))
		case opNot:
			b := !act.ToBool(act.pop())
			if act.swfVersion < 5 {
				if b {
					act.push(heap.FromFloat(1))
				} else {
					act.push(heap.FromFloat(0))
				}
			} else {
				act.push(heap.FromBool(b))
			}
		case opEquals2:
			b := act.pop()
			a := act.pop()
			eq, err := act.abstractEquals(a, b)
			if err != nil {
				return heap.Undefined, false, err
			}
			act.push(heap.FromBool(eq))
		case opLess2, opGreater:
			b := act.pop()
			a := act.pop()
			if op == opGreater {
				a, b = b, a
			}
			r, err := act.abstractLess(a, b)
			if err != nil {
				return heap.Undefined, false, err
			}
			if r.IsUndefined() {
				r = heap.False
			}
			act.push(r)
		case opInstanceOf:
			ctorV := act.pop()
			objV := act.pop()
			act.push(heap.FromBool(act.instanceOf(objV, ctorV)))
		case opTypeOf:
			act.push(act.ctx.Str(act.typeOf(act.pop())))

		case opInitArray:
			args, err := act.popArgs()
			if err != nil {
				return heap.Undefined, false, err
			}
			arr := NewArrayObject(heap.FromObject(act.ctx.protos.array), args...)
			act.push(act.ctx.Alloc(arr))
		case opInitObject:
			nf, err := act.ToNumber(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			obj := NewScriptObject(heap.FromObject(act.ctx.protos.object))
			for i := 0; i < int(wrapInt32(nf)); i++ {
				v := act.pop()
				name, err := act.ToString(act.pop())
				if err != nil {
					return heap.Undefined, false, err
				}
				obj.SetOwn(act.ctx, name, v)
			}
			act.push(act.ctx.Alloc(obj))
		case opEnumerate2:
			objV := act.pop()
			act.push(heap.Null)
			if o := act.ctx.ObjectOf(objV); o != nil {
				keys := o.Keys()
				for i := len(keys) - 1; i >= 0; i-- {
					act.push(act.ctx.Str(keys[i]))
				}
			}

		case opTrace:
			s, err := act.ToString(act.pop())
			if err != nil {
				return heap.Undefined, false, err
			}
			act.ctx.trace(s)
		case opRemoveSprite:
			act.doRemoveSprite(act.pop())

		default:
			// Unknown actions are skipped; payloads were already
			// consumed above.
		}
	}
	return heap.Undefined, false, nil
}

// doPush decodes the typed literal list of a push action.
func (act *Activation) doPush(payload []byte) error {
	i := 0
	for i < len(payload) {
		typ := payload[i]
		i++
		switch typ {
		case 0: // string
			s, next, ok := readCStr(payload, i)
			if !ok {
				return &InvalidActionError{Offset: i, Reason: "unterminated string"}
			}
			i = next
			act.push(act.ctx.Str(s))
		case 1: // float
			if i+4 > len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short float"}
			}
			act.push(heap.FromFloat(float64(math.Float32frombits(le32(payload[i:])))))
			i += 4
		case 2:
			act.push(heap.Null)
		case 3:
			act.push(heap.Undefined)
		case 4: // register
			if i >= len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short register"}
			}
			act.push(act.Register(int(payload[i])))
			i++
		case 5: // boolean
			if i >= len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short bool"}
			}
			act.push(heap.FromBool(payload[i] != 0))
			i++
		case 6: // double, stored with its 32-bit words swapped
			if i+8 > len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short double"}
			}
			hi := uint64(le32(payload[i:]))
			lo := uint64(le32(payload[i+4:]))
			act.push(heap.FromFloat(math.Float64frombits(hi<<32 | lo)))
			i += 8
		case 7: // int32
			if i+4 > len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short int"}
			}
			act.push(heap.FromInt(int32(le32(payload[i:]))))
			i += 4
		case 8: // constant pool, 8-bit index
			if i >= len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short pool ref"}
			}
			act.pushConstant(int(payload[i]))
			i++
		case 9: // constant pool, 16-bit index
			if i+2 > len(payload) {
				return &InvalidActionError{Offset: i, Reason: "short pool ref"}
			}
			act.pushConstant(int(le16(payload[i:])))
			i += 2
		default:
			return &InvalidActionError{Offset: i, Reason: "unknown push type"}
		}
	}
	return nil
}

// pushConstant pushes pool entry i, or undefined when the reference is
// outside the active pool.
func (act *Activation) pushConstant(i int) {
	if i < 0 || i >= len(act.constants) {
		act.push(heap.Undefined)
		return
	}
	act.push(act.ctx.Str(act.constants[i]))
}

func parseConstantPool(payload []byte) ([]string, bool) {
	if len(payload) < 2 {
		return nil, false
	}
	count := int(le16(payload))
	pool := make([]string, 0, count)
	i := 2
	for n := 0; n < count; n++ {
		s, next, ok := readCStr(payload, i)
		if !ok {
			return nil, false
		}
		pool = append(pool, s)
		i = next
	}
	return pool, true
}

// parseFunction2 decodes the payload of the newer function-definition
// action, returning the body metadata and the trailing code size.
func parseFunction2(payload []byte) (*ActionBody, int, bool) {
	name, i, ok := readCStr(payload, 0)
	if !ok || i+5 > len(payload) {
		return nil, 0, false
	}
	numParams := int(le16(payload[i:]))
	registerCount := payload[i+2]
	flags := ExecFlag(le16(payload[i+3:]))
	i += 5
	params := make([]Param, 0, numParams)
	for n := 0; n < numParams; n++ {
		if i >= len(payload) {
			return nil, 0, false
		}
		reg := payload[i]
		i++
		pname, next, ok := readCStr(payload, i)
		if !ok {
			return nil, 0, false
		}
		i = next
		params = append(params, Param{Name: pname, Register: reg})
	}
	if i+2 > len(payload) {
		return nil, 0, false
	}
	codeSize := int(le16(payload[i:]))
	return &ActionBody{
		Name:          name,
		Params:        params,
		RegisterCount: registerCount,
		Flags:         flags,
	}, codeSize, true
}

// parseFunction1 decodes the older definition form: named locals only,
// no registers or flags.
func parseFunction1(payload []byte) (*ActionBody, int, bool) {
	name, i, ok := readCStr(payload, 0)
	if !ok || i+2 > len(payload) {
		return nil, 0, false
	}
	numParams := int(le16(payload[i:]))
	i += 2
	params := make([]Param, 0, numParams)
	for n := 0; n < numParams; n++ {
		pname, next, ok := readCStr(payload, i)
		if !ok {
			return nil, 0, false
		}
		i = next
		params = append(params, Param{Name: pname})
	}
	if i+2 > len(payload) {
		return nil, 0, false
	}
	codeSize := int(le16(payload[i:]))
	return &ActionBody{Name: name, Params: params}, codeSize, true
}

// finishDefineFunction captures the defining scope, pool, and clip, then
// either names the function in scope or leaves it on the stack.
func (act *Activation) finishDefineFunction(body *ActionBody) {
	body.Scope = act.scope
	body.Constants = act.constants
	body.SwfVersion = act.swfVersion
	body.BaseClip = act.baseClip
	fnV := act.ctx.NewActionFunction(body)
	if body.Name == "" {
		act.push(fnV)
	} else {
		act.scope.Define(act.ctx, body.Name, fnV)
	}
}

func (act *Activation) doCallMethod() (heap.Value, error) {
	nameV := act.pop()
	objV := act.pop()
	args, err := act.popArgs()
	if err != nil {
		return heap.Undefined, err
	}
	name := ""
	if !nameV.IsUndefined() {
		if name, err = act.ToString(nameV); err != nil {
			return heap.Undefined, err
		}
	}

	if name == "" {
		// Calling the object itself; on a super proxy this invokes
		// the superclass constructor against the real receiver.
		if sup, ok := act.ctx.ObjectOf(objV).(*SuperObject); ok {
			ctor, err := sup.Constructor(act)
			if err != nil || ctor == nil {
				return heap.Undefined, err
			}
			return ctor.Exec(act, "super", sup.This(), args, sup.depth)
		}
		if f := act.ctx.FunctionOf(objV); f != nil {
			return f.Call(act, "[anonymous]", heap.Undefined, args)
		}
		return heap.Undefined, nil
	}

	recvV, o := act.ToObject(objV)
	this := recvV
	if sup, ok := o.(*SuperObject); ok {
		this = sup.This()
	}
	fnV, err := o.Get(act, recvV, name)
	if err != nil {
		return heap.Undefined, err
	}
	f := act.ctx.FunctionOf(fnV)
	if f == nil {
		return heap.Undefined, nil
	}
	return f.Call(act, name, this, args)
}

func (act *Activation) doTry(payload, rest []byte) (int, heap.Value, bool, error) {
	if len(payload) < 7 {
		return -1, heap.Undefined, false, nil
	}
	flags := payload[0]
	trySize := int(le16(payload[1:]))
	catchSize := int(le16(payload[3:]))
	finallySize := int(le16(payload[5:]))
	catchName := ""
	catchReg := -1
	if flags&0x04 != 0 {
		if len(payload) < 8 {
			return -1, heap.Undefined, false, nil
		}
		catchReg = int(payload[7])
	} else {
		var ok bool
		catchName, _, ok = readCStr(payload, 7)
		if !ok {
			return -1, heap.Undefined, false, nil
		}
	}
	total := trySize + catchSize + finallySize
	if total > len(rest) {
		return -1, heap.Undefined, false, nil
	}
	tryBody := rest[:trySize]
	catchBody := rest[trySize : trySize+catchSize]
	finallyBody := rest[trySize+catchSize : total]

	v, returned, err := act.exec(tryBody)
	var scriptErr *ScriptError
	if err != nil && flags&0x01 != 0 && errors.As(err, &scriptErr) {
		if catchReg >= 0 {
			act.setRegister(catchReg, scriptErr.Thrown)
		} else {
			act.scope.Define(act.ctx, catchName, scriptErr.Thrown)
		}
		v, returned, err = act.exec(catchBody)
	}
	if flags&0x02 != 0 {
		fv, freturned, ferr := act.exec(finallyBody)
		if ferr != nil {
			return total, heap.Undefined, false, ferr
		}
		if freturned {
			return total, fv, true, nil
		}
	}
	return total, v, returned, err
}

func (act *Activation) doAdd2() error {
	b := act.pop()
	a := act.pop()
	ap, err := act.valuePrimitive(a)
	if err != nil {
		return err
	}
	bp, err := act.valuePrimitive(b)
	if err != nil {
		return err
	}
	if ap.IsString() || bp.IsString() {
		as, err := act.ToString(ap)
		if err != nil {
			return err
		}
		bs, err := act.ToString(bp)
		if err != nil {
			return err
		}
		joined, err := wstr.Concat(wstr.FromUTF8(as), wstr.FromUTF8(bs))
		if err != nil {
			return err
		}
		act.push(heap.FromString(act.ctx.Space.Strings().Intern(joined)))
		return nil
	}
	x, err := act.ToNumber(ap)
	if err != nil {
		return err
	}
	y, err := act.ToNumber(bp)
	if err != nil {
		return err
	}
	act.push(heap.FromFloat(x + y))
	return nil
}

func (act *Activation) doArith(op byte) error {
	b, err := act.ToNumber(act.pop())
	if err != nil {
		return err
	}
	a, err := act.ToNumber(act.pop())
	if err != nil {
		return err
	}
	switch op {
	case opSubtract:
		act.push(heap.FromFloat(a - b))
	case opMultiply:
		act.push(heap.FromFloat(a * b))
	case opDivide:
		if b == 0 && act.swfVersion < 5 {
			// The legacy runtime pushed a literal error string here.
			act.push(act.ctx.Str("#ERROR#"))
			return nil
		}
		act.push(heap.FromFloat(a / b))
	}
	return nil
}

func (act *Activation) instanceOf(objV, ctorV heap.Value) bool {
	f := act.ctx.FunctionOf(ctorV)
	o := act.ctx.ObjectOf(objV)
	if f == nil || o == nil {
		return false
	}
	p, ok := f.GetOwn(act.ctx, "prototype")
	if !ok || !p.Value.IsObject() {
		return false
	}
	target := p.Value.Object()
	proto := o.Proto()
	for i := 0; proto.IsObject() && i < protoChainLimit; i++ {
		if proto.Object() == target {
			return true
		}
		po := act.ctx.Resolve(proto.Object())
		if po == nil {
			return false
		}
		proto = po.Proto()
	}
	return false
}

func (act *Activation) typeOf(v heap.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsBool():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsString():
		return "string"
	}
	if act.ctx.FunctionOf(v) != nil {
		return "function"
	}
	return "object"
}

// doRemoveSprite resolves the popped target to a display node and asks
// the display module to remove it; the depth gate failing is not a
// script error.
func (act *Activation) doRemoveSprite(target heap.Value) {
	var node display.Node
	if o := act.ctx.ObjectOf(target); o != nil {
		if d, ok := o.(displayBacked); ok {
			node = d.DisplayNode()
		}
	} else if act.ctx.ResolveClip != nil {
		path, err := act.ToString(target)
		if err != nil {
			return
		}
		node = act.ctx.ResolveClip(path)
	}
	if node != nil {
		_ = display.Remove(node)
	}
}

// forwardInteractive pushes enabled and useHandCursor writes on a
// clip-backed object through to the display node, keeping the host's
// input state in step with the script-visible property.
func (act *Activation) forwardInteractive(d displayBacked, name string, v heap.Value) {
	node, ok := d.DisplayNode().(display.Interactive)
	if !ok {
		return
	}
	if !act.ctx.CaseSensitive() {
		name = strings.ToLower(name)
		switch name {
		case "enabled":
			node.SetEnabled(act.ToBool(v))
		case "usehandcursor":
			node.SetUseHandCursor(act.ToBool(v))
		}
		return
	}
	switch name {
	case "enabled":
		node.SetEnabled(act.ToBool(v))
	case "useHandCursor":
		node.SetUseHandCursor(act.ToBool(v))
	}
}
