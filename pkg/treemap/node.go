package treemap

import (
	"math"
	"slices"

	errs "github.com/matzehuels/treemap/pkg/errors"
)

// Node is a weighted tree node.
//
// A leaf carries an intrinsic weight. A branch's weight is always the sum of
// its children's weights: every mutation that changes a weight walks the parent
// chain once and applies the delta, so the invariant holds as soon as the call
// returns. Bounds are assigned by [Layout] and are meaningless before the
// first layout pass.
//
// The parent pointer is a plain back reference; ownership flows strictly from
// parent to children, so dropping the root releases the whole tree.
//
// Node is not safe for concurrent use.
type Node struct {
	weight   float64
	value    any
	bounds   Rect
	children []*Node
	parent   *Node
}

// NewBranch creates a node with no weight of its own. Its weight grows as
// children are added.
func NewBranch(value any) *Node {
	return &Node{value: value}
}

// NewLeaf creates a node with the given weight. Negative weights are stored
// as their magnitude; NaN and infinities are rejected.
func NewLeaf(value any, weight float64) (*Node, error) {
	if err := errs.ValidateWeight(weight); err != nil {
		return nil, err
	}
	return &Node{value: value, weight: math.Abs(weight)}, nil
}

// MustLeaf is like NewLeaf but panics on a non-finite weight.
// It is intended for literals in tests and examples.
func MustLeaf(value any, weight float64) *Node {
	n, err := NewLeaf(value, weight)
	if err != nil {
		panic(err)
	}
	return n
}

// Weight returns the node's weight.
func (n *Node) Weight() float64 { return n.weight }

// Value returns the opaque payload attached to the node.
func (n *Node) Value() any { return n.value }

// SetValue replaces the payload.
func (n *Node) SetValue(v any) { n.value = v }

// Bounds returns the rectangle assigned by the last layout pass.
func (n *Node) Bounds() Rect { return n.bounds }

// SetBounds assigns the node's rectangle. Layout calls this for children; callers
// set it on the root before the first pass.
func (n *Node) SetBounds(r Rect) { n.bounds = r }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Add appends child and folds its weight into n and every ancestor.
// A child that already belongs to another parent is detached from it first.
// Adding n to itself or to one of its own descendants is rejected.
func (n *Node) Add(child *Node) error {
	if child == nil {
		return errs.New(errs.ErrCodeInvalidInput, "cannot add a nil child")
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return errs.New(errs.ErrCodeInvalidInput, "adding node would create a cycle")
		}
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	n.children = append(n.children, child)
	child.parent = n
	n.propagate(child.weight)
	return nil
}

// Remove detaches child from n and subtracts its weight from every ancestor.
// It reports false when child is not one of n's children.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	n.propagate(-child.weight)
	return true
}

// SetWeight sets a leaf's weight to |w| and adjusts every ancestor by the
// difference. Branch weights are derived from their children and cannot be
// set directly. Non-finite weights leave the tree unchanged.
func (n *Node) SetWeight(w float64) error {
	if err := errs.ValidateWeight(w); err != nil {
		return err
	}
	if !n.IsLeaf() {
		return errs.New(errs.ErrCodeInvalidWeight, "branch weight is the sum of its children")
	}
	n.propagate(math.Abs(w) - n.weight)
	return nil
}

// propagate adds delta to n and each ancestor, O(depth).
func (n *Node) propagate(delta float64) {
	if delta == 0 {
		return
	}
	for p := n; p != nil; p = p.parent {
		p.weight += delta
		if p.weight < 0 {
			// rounding residue after removing the last child
			p.weight = 0
		}
	}
}

// HitTest returns the deepest node under (x, y).
//
// A leaf answers itself when its bounds contain the point. A branch scans its
// children in order and descends into the first one whose bounds contain the
// point, so a point on a border shared by two siblings resolves to the earlier
// sibling. Empty rectangles never match. The boolean is false when nothing
// matches.
func (n *Node) HitTest(x, y float64) (*Node, bool) {
	if n.IsLeaf() {
		if !n.bounds.Empty() && n.bounds.Contains(x, y) {
			return n, true
		}
		return nil, false
	}
	child, ok := n.FirstChildContaining(x, y)
	if !ok {
		return nil, false
	}
	return child.HitTest(x, y)
}

// FirstChildContaining returns the first immediate child whose bounds contain
// (x, y), without descending further.
func (n *Node) FirstChildContaining(x, y float64) (*Node, bool) {
	for _, c := range n.children {
		if !c.bounds.Empty() && c.bounds.Contains(x, y) {
			return c, true
		}
	}
	return nil, false
}

// Root walks the parent chain to the top of the tree.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Depth returns the number of edges between n and its root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsDescendantOf reports whether anc lies on n's parent chain (or is n).
func (n *Node) IsDescendantOf(anc *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

// Path returns the nodes from the root down to n, inclusive.
func (n *Node) Path() []*Node {
	var path []*Node
	for p := n; p != nil; p = p.parent {
		path = append(path, p)
	}
	slices.Reverse(path)
	return path
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Leaves returns every leaf under n in layout order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(m *Node) bool {
		if m.IsLeaf() {
			out = append(out, m)
		}
		return true
	})
	return out
}

// Len returns the number of nodes in the subtree rooted at n.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
