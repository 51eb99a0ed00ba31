package avm1

import (
	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
)

// Activation is the runtime state of one in-progress call: its scope
// chain, register file, evaluation stack, and receiver bindings. While a
// call is executing its activation is a collector root, so values held
// only by the stack or registers survive a safe-point sweep.
type Activation struct {
	ctx  *Context
	name string

	scope     *Scope
	registers []heap.Value
	stack     []heap.Value

	this     heap.Value
	superVal heap.Value
	callee   *FunctionObject

	baseClip   display.Node
	swfVersion uint8
	constants  []string
}

// NewRootActivation builds the activation that top-level action blocks
// run under: global scope, no registers, clip-provided version.
func NewRootActivation(ctx *Context, baseClip display.Node) *Activation {
	version := ctx.SwfVersion
	scope := NewGlobalScope(ctx)
	this := heap.Value(heap.Undefined)
	if baseClip != nil {
		version = baseClip.SwfVersion()
		if ctx.ClipValue != nil {
			if clip := ctx.ClipValue(baseClip); clip.IsObject() {
				scope = NewTargetScope(scope, clip)
				this = clip
			}
		}
	}
	return &Activation{
		ctx:        ctx,
		name:       "[root]",
		scope:      scope,
		this:       this,
		superVal:   heap.Undefined,
		baseClip:   baseClip,
		swfVersion: version,
	}
}

// RunActions executes a top-level action block and returns the value its
// return action produced, if any.
func (ctx *Context) RunActions(code []byte, baseClip display.Node) (heap.Value, error) {
	act := NewRootActivation(ctx, baseClip)
	ctx.Space.AddRoots(act)
	defer ctx.Space.RemoveRoots(act)
	return act.run(code)
}

// Context returns the ambient context.
func (act *Activation) Context() *Context { return act.ctx }

// This returns the receiver binding.
func (act *Activation) This() heap.Value { return act.this }

// Scope returns the innermost scope frame.
func (act *Activation) Scope() *Scope { return act.scope }

// SwfVersion returns the effective version for this call.
func (act *Activation) SwfVersion() uint8 { return act.swfVersion }

// Register returns register i, or undefined out of range.
func (act *Activation) Register(i int) heap.Value {
	if i < 0 || i >= len(act.registers) {
		return heap.Undefined
	}
	return act.registers[i]
}

func (act *Activation) setRegister(i int, v heap.Value) {
	if i >= 0 && i < len(act.registers) {
		act.registers[i] = v
	}
}

// Roots reports every value the activation keeps alive.
func (act *Activation) Roots(mark func(heap.Handle)) {
	heap.MarkValue(act.this, mark)
	heap.MarkValue(act.superVal, mark)
	for _, v := range act.registers {
		heap.MarkValue(v, mark)
	}
	for _, v := range act.stack {
		heap.MarkValue(v, mark)
	}
	if act.scope != nil {
		act.scope.Trace(mark)
	}
	if act.callee != nil {
		heap.MarkValue(act.callee.self, mark)
	}
}

// ---------------------------------------------------------------------------
// Evaluation stack
// ---------------------------------------------------------------------------

func (act *Activation) push(v heap.Value) {
	act.stack = append(act.stack, v)
}

// pop yields undefined on underflow; broken content underflows routinely
// and must not take the player down.
func (act *Activation) pop() heap.Value {
	if len(act.stack) == 0 {
		return heap.Undefined
	}
	v := act.stack[len(act.stack)-1]
	act.stack = act.stack[:len(act.stack)-1]
	return v
}

func (act *Activation) peek() heap.Value {
	if len(act.stack) == 0 {
		return heap.Undefined
	}
	return act.stack[len(act.stack)-1]
}

// popArgs pops a count then that many values, first argument topmost.
func (act *Activation) popArgs() ([]heap.Value, error) {
	nf, err := act.ToNumber(act.pop())
	if err != nil {
		return nil, err
	}
	n := int(wrapInt32(nf))
	if n < 0 {
		n = 0
	}
	if n > len(act.stack) {
		n = len(act.stack)
	}
	args := make([]heap.Value, n)
	for i := 0; i < n; i++ {
		args[i] = act.pop()
	}
	return args, nil
}

// resolveVariable looks a bare name up through the implicit bindings and
// the scope chain.
func (act *Activation) resolveVariable(name string) (heap.Value, error) {
	switch name {
	case "this":
		return act.this, nil
	case "super":
		if !act.superVal.IsUndefined() {
			return act.superVal, nil
		}
	case "_global":
		return heap.FromObject(act.ctx.Globals()), nil
	}
	v, _, err := act.scope.Resolve(act, name)
	return v, err
}

func (act *Activation) throwValue(v heap.Value) error {
	return &ScriptError{Thrown: v, Text: primToString(act.ctx, v)}
}
