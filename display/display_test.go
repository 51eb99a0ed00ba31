package display

import "testing"

// fakeNode is a minimal in-memory display node for testing the removal and
// swap gating.
type fakeNode struct {
	parent   *fakeNode
	children []*fakeNode
	depth    int32
	removed  bool
	version  uint8
}

func (n *fakeNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}
func (n *fakeNode) Depth() int32      { return n.depth }
func (n *fakeNode) SwfVersion() uint8 { return n.version }
func (n *fakeNode) Removed() bool     { return n.removed }
func (n *fakeNode) Path() string      { return "_level0" }
func (n *fakeNode) RemoveChild(c Node) {
	fc := c.(*fakeNode)
	for i, ch := range n.children {
		if ch == fc {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	fc.removed = true
	fc.parent = nil
}
func (n *fakeNode) SwapChildDepths(a, b Node) {
	fa, fb := a.(*fakeNode), b.(*fakeNode)
	fa.depth, fb.depth = fb.depth, fa.depth
}

func child(parent *fakeNode, depth int32) *fakeNode {
	c := &fakeNode{parent: parent, depth: depth}
	parent.children = append(parent.children, c)
	return c
}

func TestRemoveDepthGating(t *testing.T) {
	root := &fakeNode{}

	// Exactly at the lower bound: removable.
	atBias := child(root, DepthBias)
	if !Remove(atBias) {
		t.Errorf("node at DepthBias should be removable")
	}
	if !atBias.removed {
		t.Errorf("node not detached")
	}

	// One below the bias: not removable, parent unchanged.
	below := child(root, DepthBias-1)
	if Remove(below) {
		t.Errorf("node below DepthBias must not be removable")
	}
	if below.removed || below.parent != root {
		t.Errorf("gated node was mutated")
	}

	// At the upper bound: not removable.
	atMax := child(root, MaxRemoveDepth)
	if Remove(atMax) {
		t.Errorf("node at MaxRemoveDepth must not be removable")
	}
	// Just under the upper bound: removable.
	under := child(root, MaxRemoveDepth-1)
	if !Remove(under) {
		t.Errorf("node just under MaxRemoveDepth should be removable")
	}
}

func TestRemoveAlreadyRemoved(t *testing.T) {
	root := &fakeNode{}
	c := child(root, DepthBias)
	c.removed = true
	if Remove(c) {
		t.Errorf("removed node must not be removable again")
	}
}

func TestSwapDepths(t *testing.T) {
	root := &fakeNode{}
	a := child(root, DepthBias+1)
	b := child(root, DepthBias+2)
	if !SwapDepths(a, b) {
		t.Fatalf("swap of siblings should succeed")
	}
	if a.depth != DepthBias+2 || b.depth != DepthBias+1 {
		t.Errorf("depths not exchanged")
	}

	high := child(root, MaxDepth+1)
	if SwapDepths(a, high) {
		t.Errorf("swap above MaxDepth must fail")
	}
}

func TestAncestors(t *testing.T) {
	root := &fakeNode{}
	mid := child(root, 1)
	leaf := child(mid, 2)
	chain := Ancestors(leaf)
	if len(chain) != 2 || chain[0] != Node(mid) || chain[1] != Node(root) {
		t.Errorf("Ancestors returned wrong chain: %v", chain)
	}
}
