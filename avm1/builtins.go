package avm1

import (
	"math"
	"strings"

	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
)

// installBuiltins constructs the shared prototype objects and the global
// object for a context. Only the protocol-level surface lives here; the
// wider builtin library belongs to the hosting player.
func installBuiltins(ctx *Context) {
	objectProto := NewScriptObject(heap.Undefined)
	ctx.protos.object = ctx.Space.Allocate(objectProto)
	functionProto := NewScriptObject(heap.FromObject(ctx.protos.object))
	ctx.protos.function = ctx.Space.Allocate(functionProto)
	arrayProto := NewScriptObject(heap.FromObject(ctx.protos.object))
	ctx.protos.array = ctx.Space.Allocate(arrayProto)

	globals := NewScriptObject(heap.Undefined)
	ctx.globals = ctx.Space.Allocate(globals)
	ctx.Space.AddRoots(contextRoots{ctx})

	objectProto.Define("toString", ctx.NewNativeFunction(nativeObjectToString), DontEnum)
	objectProto.Define("valueOf", ctx.NewNativeFunction(nativeObjectValueOf), DontEnum)
	objectProto.Define("hasOwnProperty", ctx.NewNativeFunction(nativeHasOwnProperty), DontEnum)
	objectProto.Define("addProperty", ctx.NewNativeFunction(nativeAddProperty), DontEnum)
	objectProto.Define("swapDepths", ctx.NewNativeFunction(nativeSwapDepths), DontEnum)

	functionProto.Define("call", ctx.NewNativeFunction(nativeFunctionCall), DontEnum)
	functionProto.Define("apply", ctx.NewNativeFunction(nativeFunctionApply), DontEnum)

	arrayProto.Define("push", ctx.NewNativeFunction(nativeArrayPush), DontEnum)
	arrayProto.Define("pop", ctx.NewNativeFunction(nativeArrayPop), DontEnum)
	arrayProto.Define("join", ctx.NewNativeFunction(nativeArrayJoin), DontEnum)
	arrayProto.Define("toString", ctx.NewNativeFunction(nativeArrayJoin), DontEnum)

	objectCtor := ctx.NewNativeFunction(nativeObjectCtor)
	ctx.FunctionOf(objectCtor).Define("prototype", heap.FromObject(ctx.protos.object), DontEnum|DontDelete)
	objectProto.Define("constructor", objectCtor, DontEnum)

	arrayCtor := ctx.NewNativeFunction(nativeArrayCtor)
	ctx.FunctionOf(arrayCtor).Define("prototype", heap.FromObject(ctx.protos.array), DontEnum|DontDelete)
	arrayProto.Define("constructor", arrayCtor, DontEnum)

	globals.Define("Object", objectCtor, DontEnum)
	globals.Define("Array", arrayCtor, DontEnum)
	globals.Define("Infinity", heap.FromFloat(math.Inf(1)), DontEnum)
	globals.Define("NaN", heap.FromFloat(math.NaN()), DontEnum)
}

// contextRoots keeps the globals and prototypes alive for the life of
// the context.
type contextRoots struct{ ctx *Context }

func (r contextRoots) Roots(mark func(heap.Handle)) {
	mark(r.ctx.globals)
	mark(r.ctx.protos.object)
	mark(r.ctx.protos.function)
	mark(r.ctx.protos.array)
}

func nativeObjectToString(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	if b, ok := act.ctx.ObjectOf(this).(*boxedValue); ok {
		s, err := act.ToString(b.prim)
		if err != nil {
			return heap.Undefined, err
		}
		return act.ctx.Str(s), nil
	}
	if act.ctx.FunctionOf(this) != nil {
		return act.ctx.Str("[type Function]"), nil
	}
	return act.ctx.Str("[type Object]"), nil
}

func nativeObjectValueOf(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	if b, ok := act.ctx.ObjectOf(this).(*boxedValue); ok {
		return b.prim, nil
	}
	return this, nil
}

func nativeHasOwnProperty(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	o := act.ctx.ObjectOf(this)
	if o == nil || len(args) == 0 {
		return heap.False, nil
	}
	name, err := act.ToString(args[0])
	if err != nil {
		return heap.Undefined, err
	}
	return heap.FromBool(HasOwn(act.ctx, o, name)), nil
}

// nativeAddProperty installs a getter/setter pair, reporting success.
func nativeAddProperty(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	o := act.ctx.ObjectOf(this)
	if o == nil || len(args) < 2 {
		return heap.False, nil
	}
	name, err := act.ToString(args[0])
	if err != nil {
		return heap.Undefined, err
	}
	if name == "" || act.ctx.FunctionOf(args[1]) == nil {
		return heap.False, nil
	}
	setter := heap.Value(heap.Undefined)
	if len(args) > 2 {
		setter = args[2]
	}
	o.AddAccessor(name, args[1], setter, 0)
	return heap.True, nil
}

// nativeSwapDepths exchanges a clip's depth with another clip, named by
// wrapper object or by target path. The display module's depth gate
// decides whether anything happens.
func nativeSwapDepths(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	d, ok := act.ctx.ObjectOf(this).(displayBacked)
	if !ok || d.DisplayNode() == nil || len(args) == 0 {
		return heap.Undefined, nil
	}
	var other display.Node
	if o, backed := act.ctx.ObjectOf(args[0]).(displayBacked); backed {
		other = o.DisplayNode()
	} else if args[0].IsString() && act.ctx.ResolveClip != nil {
		path, err := act.ToString(args[0])
		if err != nil {
			return heap.Undefined, err
		}
		other = act.ctx.ResolveClip(path)
	}
	if other != nil {
		_ = display.SwapDepths(d.DisplayNode(), other)
	}
	return heap.Undefined, nil
}

func nativeFunctionCall(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	f := act.ctx.FunctionOf(this)
	if f == nil {
		return heap.Undefined, nil
	}
	receiver := heap.Value(heap.Undefined)
	var rest []heap.Value
	if len(args) > 0 {
		receiver = args[0]
		rest = args[1:]
	}
	return f.Call(act, "call", receiver, rest)
}

func nativeFunctionApply(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	f := act.ctx.FunctionOf(this)
	if f == nil {
		return heap.Undefined, nil
	}
	receiver := heap.Value(heap.Undefined)
	var rest []heap.Value
	if len(args) > 0 {
		receiver = args[0]
	}
	if len(args) > 1 {
		if arr, ok := act.ctx.ObjectOf(args[1]).(*ArrayObject); ok {
			for i := 0; i < arr.Length(); i++ {
				rest = append(rest, arr.Elem(i))
			}
		}
	}
	return f.Call(act, "apply", receiver, rest)
}

func nativeObjectCtor(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	if len(args) > 0 && args[0].IsObject() {
		return args[0], nil
	}
	return act.ctx.Alloc(NewScriptObject(heap.FromObject(act.ctx.protos.object))), nil
}

// nativeArrayCtor substitutes the plain constructed instance with a real
// array; one numeric argument sets the length, anything else seeds
// elements.
func nativeArrayCtor(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	arr := NewArrayObject(heap.FromObject(act.ctx.protos.array))
	if len(args) == 1 && args[0].IsNumber() {
		arr.setLength(int(wrapInt32(args[0].NumberValue())))
	} else {
		for _, v := range args {
			arr.Push(v)
		}
	}
	return act.ctx.Alloc(arr), nil
}

func nativeArrayPush(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	arr, ok := act.ctx.ObjectOf(this).(*ArrayObject)
	if !ok {
		return heap.Undefined, nil
	}
	n := arr.Length()
	for _, v := range args {
		n = arr.Push(v)
	}
	return heap.FromInt(int32(n)), nil
}

func nativeArrayPop(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	arr, ok := act.ctx.ObjectOf(this).(*ArrayObject)
	if !ok {
		return heap.Undefined, nil
	}
	return arr.Pop(), nil
}

func nativeArrayJoin(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
	arr, ok := act.ctx.ObjectOf(this).(*ArrayObject)
	if !ok {
		return heap.Undefined, nil
	}
	sep := ","
	if len(args) > 0 {
		var err error
		if sep, err = act.ToString(args[0]); err != nil {
			return heap.Undefined, err
		}
	}
	parts := make([]string, arr.Length())
	for i := range parts {
		s, err := act.ToString(arr.Elem(i))
		if err != nil {
			return heap.Undefined, err
		}
		parts[i] = s
	}
	return act.ctx.Str(strings.Join(parts, sep)), nil
}
