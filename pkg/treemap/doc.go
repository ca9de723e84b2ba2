// Package treemap lays out weighted trees as nested rectangles and answers
// navigation queries against the result.
//
// # Overview
//
// A treemap gives every leaf a rectangle whose area is proportional to its
// weight, nested according to the tree. This package holds the engine:
//
//   - [Node]: the weighted tree. Branch weights are kept equal to the sum of
//     their children on every mutation, in O(depth).
//   - [Strategy] and [Layout]: pluggable rectangle subdivision, applied
//     recursively with a configurable border between siblings. The concrete
//     strategies live in the split subpackage.
//   - [Zoom]: single-level focus on a subtree, stretched or scaled to fill the
//     root's rectangle.
//   - [HitTester]: point to deepest node, scoped to the displayed subtree.
//   - [Map]: a façade that combines the above for interactive hosts.
//
// # Basic Usage
//
//	root := treemap.NewBranch("root")
//	_ = root.Add(treemap.MustLeaf("a", 50))
//	_ = root.Add(treemap.MustLeaf("b", 30))
//
//	m := treemap.NewMap(root, split.Squarified{})
//	m.SetViewport(treemap.Rect{W: 800, H: 600})
//	_ = m.Layout()
//
//	if leaf, ok := m.Hit(120, 40); ok {
//	    fmt.Println(leaf.Value())
//	}
//
// # Coordinates
//
// All rectangles are in viewport coordinates (float64, origin top-left).
// Zooming rewrites the focus node's bounds in place rather than keeping a
// transform stack, so hit testing after a zoom uses the same coordinates as
// the cursor.
//
// # Degenerate Input
//
// Zero weights are legal. A node whose weight is zero is not subdivided and its
// descendants get empty rectangles, which hit testing ignores. Non-finite
// weights are rejected with an INVALID_WEIGHT error.
//
// # Concurrency
//
// The engine is synchronous and unlocked. Layout, zoom and hit testing must be
// driven by a single owner; after mutating weights, run Layout again before
// trusting bounds.
package treemap
