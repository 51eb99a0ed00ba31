package avm1

import (
	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
)

// ---------------------------------------------------------------------------
// Function flags and metadata
// ---------------------------------------------------------------------------

// ExecFlag is the per-function bitset from the newer function-definition
// action. The preload bits consume sequential registers starting at 1 in
// a fixed order; the suppress bits drop the corresponding implicit
// binding entirely.
type ExecFlag uint16

const (
	FlagPreloadParent     ExecFlag = 0x0001
	FlagPreloadRoot       ExecFlag = 0x0002
	FlagSuppressSuper     ExecFlag = 0x0004
	FlagPreloadSuper      ExecFlag = 0x0008
	FlagSuppressArguments ExecFlag = 0x0010
	FlagPreloadArguments  ExecFlag = 0x0020
	FlagSuppressThis      ExecFlag = 0x0040
	FlagPreloadThis       ExecFlag = 0x0080
	FlagPreloadGlobal     ExecFlag = 0x0100
)

// Param declares one function parameter: bound to a fixed register when
// Register is nonzero, else to a named local.
type Param struct {
	Name     string
	Register uint8
}

// NativeFunc is a host-implemented function body. It runs with no
// activation record of its own; act is the caller's activation.
type NativeFunc func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error)

// ActionBody is the interpreted form of a function: its instruction
// stream plus everything captured at definition time.
type ActionBody struct {
	Name          string
	Params        []Param
	RegisterCount uint8
	Flags         ExecFlag
	Code          []byte

	// Scope is the defining scope chain node, shared by every call.
	Scope *Scope
	// Constants is the constant pool active at definition.
	Constants []string
	// SwfVersion is the version recorded with the function, 0 if none.
	SwfVersion uint8
	// BaseClip is the defining clip, nil for clipless code.
	BaseClip display.Node
}

// ---------------------------------------------------------------------------
// FunctionObject
// ---------------------------------------------------------------------------

// FunctionObject is the callable variant: either a native body or an
// interpreted one, never both.
type FunctionObject struct {
	ScriptObject
	Native NativeFunc
	Body   *ActionBody

	// self is this function's own value, recorded at allocation so the
	// callee binding and prototype lookups can reference it.
	self heap.Value
}

// NewNativeFunction allocates a native function with the standard
// function prototype.
func (ctx *Context) NewNativeFunction(fn NativeFunc) heap.Value {
	f := &FunctionObject{
		ScriptObject: *NewScriptObject(heap.FromObject(ctx.protos.function)),
		Native:       fn,
	}
	f.self = ctx.Alloc(f)
	return f.self
}

// NewActionFunction allocates an interpreted function together with a
// fresh prototype object whose constructor points back at it.
func (ctx *Context) NewActionFunction(body *ActionBody) heap.Value {
	f := &FunctionObject{
		ScriptObject: *NewScriptObject(heap.FromObject(ctx.protos.function)),
		Body:         body,
	}
	f.self = ctx.Alloc(f)

	proto := NewScriptObject(heap.FromObject(ctx.protos.object))
	protoVal := ctx.Alloc(proto)
	proto.Define("constructor", f.self, DontEnum)
	f.Define("prototype", protoVal, DontEnum|DontDelete)
	return f.self
}

// Value returns the function's own value.
func (f *FunctionObject) Value() heap.Value { return f.self }

func (f *FunctionObject) Get(act *Activation, this heap.Value, name string) (heap.Value, error) {
	return StdGet(act, f, this, name)
}

func (f *FunctionObject) Set(act *Activation, this heap.Value, name string, v heap.Value) error {
	return StdSet(act, f, this, name, v)
}

func (f *FunctionObject) Trace(mark func(heap.Handle)) {
	f.ScriptObject.Trace(mark)
	if f.Body != nil && f.Body.Scope != nil {
		f.Body.Scope.Trace(mark)
	}
}

// Call runs the function as an ordinary call.
func (f *FunctionObject) Call(act *Activation, name string, this heap.Value, args []heap.Value) (heap.Value, error) {
	return f.Exec(act, name, this, args, 0)
}

// displayBacked is implemented by script objects wrapping a display node;
// the version fallback chain consults it.
type displayBacked interface {
	DisplayNode() display.Node
}

// Exec runs the call protocol. depth 0 is an ordinary call; constructor
// dispatch passes 1, which pushes the super proxy one extra level up the
// receiver's chain.
//
// The steps run in a fixed order: recursion check, native fast path,
// child scope, arguments object, super binding, effective version,
// register preload, parameter binding, execution.
func (f *FunctionObject) Exec(act *Activation, name string, this heap.Value, args []heap.Value, depth int) (heap.Value, error) {
	ctx := act.ctx
	if ctx.depth >= ctx.maxRecursion() {
		return heap.Undefined, &RecursionError{Limit: ctx.maxRecursion()}
	}
	ctx.depth++
	defer func() { ctx.depth-- }()

	// Native functions run directly against the caller's activation.
	if f.Native != nil {
		if !this.IsObject() && !this.IsUndefined() && !this.IsNull() {
			this, _ = act.ToObject(this)
		}
		return f.Native(act, this, args)
	}
	body := f.Body
	if body == nil {
		return heap.Undefined, nil
	}

	childScope := NewLocalScope(ctx, body.Scope)

	var argsVal heap.Value = heap.Undefined
	if body.Flags&FlagSuppressArguments == 0 {
		argObj := NewArrayObject(heap.FromObject(ctx.protos.array), args...)
		argsVal = ctx.Alloc(argObj)
		argObj.Define("callee", f.self, DontEnum|DontDelete)
		caller := heap.Null
		if act.callee != nil {
			caller = act.callee.self
		}
		argObj.Define("caller", caller, DontEnum|DontDelete)
	}

	var superVal heap.Value = heap.Undefined
	if this.IsObject() && body.Flags&FlagSuppressSuper == 0 {
		superVal = ctx.Alloc(NewSuperObject(this, depth+1))
	}

	swfVersion := f.effectiveVersion(act, this)

	registers := make([]heap.Value, int(body.RegisterCount))
	for i := range registers {
		registers[i] = heap.Undefined
	}
	preload := func(v heap.Value, reg *int) {
		if *reg < len(registers) {
			registers[*reg] = v
		}
		*reg++
	}
	reg := 1
	if body.Flags&FlagPreloadThis != 0 && body.Flags&FlagSuppressThis == 0 {
		preload(this, &reg)
	}
	if body.Flags&FlagPreloadArguments != 0 && body.Flags&FlagSuppressArguments == 0 {
		preload(argsVal, &reg)
	} else if body.Flags&FlagSuppressArguments == 0 {
		childScope.Define(ctx, "arguments", argsVal)
	}
	if body.Flags&FlagPreloadSuper != 0 {
		if !superVal.IsUndefined() {
			preload(superVal, &reg)
		}
	} else if !superVal.IsUndefined() {
		childScope.Define(ctx, "super", superVal)
	}
	if body.Flags&FlagPreloadRoot != 0 {
		preload(f.clipValue(ctx, rootOf(body.BaseClip)), &reg)
	}
	if body.Flags&FlagPreloadParent != 0 {
		// A clip with no parent consumes no register at all, shifting
		// every later preload down by one.
		if parent := parentOf(body.BaseClip); parent != nil {
			preload(f.clipValue(ctx, parent), &reg)
		}
	}
	if body.Flags&FlagPreloadGlobal != 0 {
		preload(heap.FromObject(ctx.Globals()), &reg)
	}

	// Unsupplied trailing arguments bind to undefined so stale outer
	// definitions cannot leak through the parameter names.
	for i, p := range body.Params {
		v := heap.Undefined
		if i < len(args) {
			v = args[i]
		}
		if p.Register != 0 {
			if int(p.Register) < len(registers) {
				registers[p.Register] = v
			}
		} else {
			childScope.Define(ctx, p.Name, v)
		}
	}

	frame := &Activation{
		ctx:        ctx,
		name:       name,
		scope:      childScope,
		registers:  registers,
		this:       this,
		superVal:   superVal,
		callee:     f,
		baseClip:   body.BaseClip,
		swfVersion: swfVersion,
		constants:  body.Constants,
	}
	ctx.Space.AddRoots(frame)
	defer ctx.Space.RemoveRoots(frame)
	return frame.run(body.Code)
}

// effectiveVersion picks the version that switches opcode semantics for
// this call: the defining clip's if it is still on stage and the ambient
// version is past 5, else the function's recorded one, else the
// receiver's display version, else the movie default.
func (f *FunctionObject) effectiveVersion(act *Activation, this heap.Value) uint8 {
	body := f.Body
	if body.BaseClip != nil && !body.BaseClip.Removed() && act.swfVersion > 5 {
		return body.BaseClip.SwfVersion()
	}
	if body.SwfVersion != 0 {
		return body.SwfVersion
	}
	if o := act.ctx.ObjectOf(this); o != nil {
		if d, ok := o.(displayBacked); ok && d.DisplayNode() != nil {
			return d.DisplayNode().SwfVersion()
		}
	}
	return act.ctx.SwfVersion
}

func (f *FunctionObject) clipValue(ctx *Context, n display.Node) heap.Value {
	if n == nil || ctx.ClipValue == nil {
		return heap.Undefined
	}
	return ctx.ClipValue(n)
}

func parentOf(n display.Node) display.Node {
	if n == nil {
		return nil
	}
	return n.Parent()
}

func rootOf(n display.Node) display.Node {
	if n == nil {
		return nil
	}
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// Construct allocates an instance linked to the function's prototype and
// runs the constructor over it. A native constructor's return value
// replaces the allocated instance, which lets builtins substitute a
// concrete wrapper type.
func (f *FunctionObject) Construct(act *Activation, args []heap.Value) (heap.Value, error) {
	ctx := act.ctx
	proto, err := f.Get(act, f.self, "prototype")
	if err != nil {
		return heap.Undefined, err
	}
	inst := NewScriptObject(proto)
	instVal := ctx.Alloc(inst)
	inst.Define("__constructor__", f.self, DontEnum)
	if act.swfVersion < 7 {
		inst.Define("constructor", f.self, DontEnum)
	}
	if f.Native != nil {
		res, err := f.Exec(act, "[ctor]", instVal, args, 1)
		if err != nil {
			return heap.Undefined, err
		}
		if res.IsObject() {
			return res, nil
		}
		return instVal, nil
	}
	if _, err := f.Exec(act, "[ctor]", instVal, args, 1); err != nil {
		return heap.Undefined, err
	}
	return instVal, nil
}
