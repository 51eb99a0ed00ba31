// Package display defines the capability surface the interpreters require
// from the scene graph. The display tree itself lives in the host; the VMs
// only see this interface and emit mutations and removal requests through
// it.
package display

// Node is the capability interface for one renderable node in the display
// tree.
type Node interface {
	// Parent returns the containing node, or nil at the root.
	Parent() Node
	// Depth returns the node's depth on its parent's timeline, already
	// offset by DepthBias relative to the authored depth.
	Depth() int32
	// SwfVersion returns the file format version of the movie that
	// created this node.
	SwfVersion() uint8
	// Removed reports whether the node has been removed from the tree.
	Removed() bool
	// Path returns the dotted target path of the node (for diagnostics
	// and toString).
	Path() string
	// RemoveChild detaches a direct child from this node.
	RemoveChild(child Node)
	// SwapChildDepths exchanges the depths of two direct children.
	SwapChildDepths(a, b Node)
}

// Interactive is implemented by nodes that accept input. The interpreters
// only ever toggle these flags; hit testing stays in the host.
type Interactive interface {
	Node
	SetEnabled(enabled bool)
	SetUseHandCursor(use bool)
}

// Depths used by scripts are offset by DepthBias from the depths used
// inside the container format. Timeline-placed objects start at depth 0 in
// the file but query as negative from scripts. The bias and the two
// maximums below are protocol constants reproduced exactly; their
// derivation is not documented anywhere and they must not be "cleaned up".
const (
	DepthBias      int32 = 16384
	MaxDepth       int32 = 2_130_706_428
	MaxRemoveDepth int32 = 2_130_706_416
)

// Remove detaches a node from its parent if the protocol allows it: only
// nodes whose depth lies in [DepthBias, MaxRemoveDepth) may be removed by
// scripts, which in practice restricts removal to dynamically created
// clips. Returns whether the node was removed.
func Remove(n Node) bool {
	if n == nil || n.Removed() {
		return false
	}
	depth := n.Depth()
	if depth < DepthBias || depth >= MaxRemoveDepth {
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return false
	}
	parent.RemoveChild(n)
	return true
}

// SwapDepths exchanges the depths of two siblings if both lie below
// MaxDepth. Returns whether the swap happened.
func SwapDepths(a, b Node) bool {
	if a == nil || b == nil || a.Removed() || b.Removed() {
		return false
	}
	if a.Depth() > MaxDepth || b.Depth() > MaxDepth {
		return false
	}
	parent := a.Parent()
	if parent == nil || parent != b.Parent() {
		return false
	}
	parent.SwapChildDepths(a, b)
	return true
}

// Ancestors returns the chain of parents from n's immediate parent to the
// root, innermost first.
func Ancestors(n Node) []Node {
	var out []Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}
