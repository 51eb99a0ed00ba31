package avm1

import (
	"github.com/lantern-player/lantern/display"
	"github.com/lantern-player/lantern/heap"
)

func newTestActivation(swfVersion uint8) *Activation {
	space := heap.NewObjectSpace()
	ctx := NewContext(space, swfVersion)
	return NewRootActivation(ctx, nil)
}

// Bytecode assembly helpers for interpreter tests.

func asmPush(literals ...[]byte) []byte {
	var payload []byte
	for _, l := range literals {
		payload = append(payload, l...)
	}
	out := []byte{opPush, byte(len(payload)), byte(len(payload) >> 8)}
	return append(out, payload...)
}

func litStr(s string) []byte {
	out := []byte{0}
	out = append(out, s...)
	return append(out, 0)
}

func litInt(n int32) []byte {
	u := uint32(n)
	return []byte{7, byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

func litReg(r byte) []byte { return []byte{4, r} }

func litBool(b bool) []byte {
	if b {
		return []byte{5, 1}
	}
	return []byte{5, 0}
}

func litPool(i byte) []byte { return []byte{8, i} }

func asmOp(ops ...byte) []byte { return ops }

func asm(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// fakeClip is a minimal display node for call-protocol tests.
type fakeClip struct {
	parent     *fakeClip
	depth      int32
	version    uint8
	removed    bool
	path       string
	enabled    bool
	handCursor bool
}

func (c *fakeClip) Parent() display.Node {
	if c.parent == nil {
		return nil
	}
	return c.parent
}
func (c *fakeClip) Depth() int32      { return c.depth }
func (c *fakeClip) SwfVersion() uint8 { return c.version }
func (c *fakeClip) Removed() bool     { return c.removed }
func (c *fakeClip) Path() string      { return c.path }
func (c *fakeClip) RemoveChild(child display.Node) {
	if fc, ok := child.(*fakeClip); ok {
		fc.removed = true
	}
}
func (c *fakeClip) SwapChildDepths(a, b display.Node) {
	fa, fb := a.(*fakeClip), b.(*fakeClip)
	fa.depth, fb.depth = fb.depth, fa.depth
}
func (c *fakeClip) SetEnabled(on bool)       { c.enabled = on }
func (c *fakeClip) SetUseHandCursor(on bool) { c.handCursor = on }

// clipObject wraps a display node the way a hosting player's clip
// values do.
type clipObject struct {
	ScriptObject
	node display.Node
}

func (c *clipObject) DisplayNode() display.Node { return c.node }

func newClipValue(ctx *Context, node display.Node) heap.Value {
	obj := &clipObject{
		ScriptObject: *NewScriptObject(heap.FromObject(ctx.protos.object)),
		node:         node,
	}
	return heap.FromObject(ctx.Space.Allocate(obj))
}
