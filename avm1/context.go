package avm1

import (
	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// DefaultMaxRecursion matches the player's historical limit on nested
// script calls.
const DefaultMaxRecursion = 255

// Context is the ambient state shared by every activation of one loaded
// movie: its object space, globals, builtin prototypes, and the switches
// that change opcode semantics between container versions.
//
// Execution is single-threaded; a Context must not be shared across
// goroutines.
type Context struct {
	Space *heap.ObjectSpace

	// SwfVersion is the loaded movie's version, the fallback when no
	// clip or function supplies a more specific one.
	SwfVersion uint8

	// MaxRecursion bounds nested interpreted calls. Zero means
	// DefaultMaxRecursion.
	MaxRecursion int

	// TraceSink receives the output of the trace action. Nil discards.
	TraceSink func(string)

	// ResolveClip maps a target path string to a display node. Nil means
	// no display tree is attached and sprite actions are no-ops.
	ResolveClip func(path string) display.Node

	// ClipValue maps a display node to its script wrapper. Nil means
	// clips have no wrappers and clip preloads bind undefined.
	ClipValue func(display.Node) heap.Value

	globals   heap.Handle
	protos    prototypes
	depth     int
	constants []string // active pool for top-level action blocks
}

type prototypes struct {
	object   heap.Handle
	function heap.Handle
	array    heap.Handle
}

// NewContext builds a context with its global object and builtin
// prototypes installed into space.
func NewContext(space *heap.ObjectSpace, swfVersion uint8) *Context {
	ctx := &Context{
		Space:      space,
		SwfVersion: swfVersion,
	}
	installBuiltins(ctx)
	return ctx
}

// Globals returns the handle of the global object.
func (ctx *Context) Globals() heap.Handle { return ctx.globals }

// CaseSensitive reports whether property names compare exactly. Earlier
// container versions fold ASCII case.
func (ctx *Context) CaseSensitive() bool { return ctx.SwfVersion >= 7 }

func (ctx *Context) maxRecursion() int {
	if ctx.MaxRecursion > 0 {
		return ctx.MaxRecursion
	}
	return DefaultMaxRecursion
}

// Resolve returns the live object for a handle, or nil.
func (ctx *Context) Resolve(h heap.Handle) Object {
	if o, ok := ctx.Space.Get(h).(Object); ok {
		return o
	}
	return nil
}

// ObjectOf returns the object a value refers to, or nil for non-objects
// and dead handles.
func (ctx *Context) ObjectOf(v heap.Value) Object {
	if !v.IsObject() {
		return nil
	}
	return ctx.Resolve(v.Object())
}

// FunctionOf returns the function a value refers to, or nil.
func (ctx *Context) FunctionOf(v heap.Value) *FunctionObject {
	if f, ok := ctx.ObjectOf(v).(*FunctionObject); ok {
		return f
	}
	return nil
}

// Str interns a Go string and returns it as a value.
func (ctx *Context) Str(s string) heap.Value {
	return heap.FromString(ctx.Space.Strings().InternUTF8(s))
}

// WStrOf returns the string a string-tagged value refers to.
func (ctx *Context) WStrOf(v heap.Value) wstr.WStr {
	return ctx.Space.Strings().Get(v.Str())
}

// Alloc adds an object to the space and returns its value.
func (ctx *Context) Alloc(o Object) heap.Value {
	return heap.FromObject(ctx.Space.Allocate(o))
}

func (ctx *Context) trace(s string) {
	if ctx.TraceSink != nil {
		ctx.TraceSink(s)
	}
}
