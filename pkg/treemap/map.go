package treemap

import (
	"math"

	errs "github.com/matzehuels/treemap/pkg/errors"
)

// Map ties a tree to a viewport, a strategy, a border and a zoom state.
//
// It is the presentation-agnostic core of an interactive treemap: a host
// (terminal viewer, HTTP session, test) sets the viewport, calls Layout, then
// feeds cursor positions to Hover and clicks to ZoomTo/Unzoom. Map performs no
// locking; a single owner must serialize all calls.
type Map struct {
	root     *Node
	zoom     *Zoom
	strategy Strategy
	border   float64
	viewport Rect
	active   *Node
	dirty    bool
}

// NewMap creates an unzoomed map for root. A nil strategy must be replaced
// with SetStrategy before Layout.
func NewMap(root *Node, s Strategy) *Map {
	return &Map{
		root:     root,
		zoom:     NewZoom(root),
		strategy: s,
		border:   DefaultBorder,
		dirty:    true,
	}
}

// Root returns the true root.
func (m *Map) Root() *Node { return m.root }

// Displayed returns the subtree currently filling the viewport.
func (m *Map) Displayed() *Node { return m.zoom.Displayed() }

// Zoom exposes the zoom controller.
func (m *Map) Zoom() *Zoom { return m.zoom }

// Strategy returns the active strategy.
func (m *Map) Strategy() Strategy { return m.strategy }

// SetStrategy replaces the strategy and invalidates the layout.
func (m *Map) SetStrategy(s Strategy) {
	m.strategy = s
	m.dirty = true
}

// Border returns the sibling spacing.
func (m *Map) Border() float64 { return m.border }

// SetBorder changes the sibling spacing. Bounds computed with the old value
// are stale until the next Layout.
func (m *Map) SetBorder(b float64) error {
	if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "border must be a finite non-negative number, got %v", b)
	}
	m.border = b
	m.dirty = true
	return nil
}

// Viewport returns the rectangle the root is laid out into.
func (m *Map) Viewport() Rect { return m.viewport }

// SetViewport sets the rectangle the root fills and invalidates the layout.
func (m *Map) SetViewport(r Rect) {
	m.viewport = r
	m.dirty = true
}

// SetKeepProportion forwards to the zoom controller.
func (m *Map) SetKeepProportion(keep bool) {
	m.zoom.SetKeepProportion(keep)
	m.dirty = true
}

// Dirty reports whether bounds are stale: the viewport, strategy, border or
// zoom changed since the last Layout, or Invalidate was called after a weight
// mutation.
func (m *Map) Dirty() bool { return m.dirty }

// Invalidate marks the layout stale. Call it after mutating weights.
func (m *Map) Invalidate() { m.dirty = true }

// Layout assigns the root's bounds from the viewport, refreshes the zoom
// focus, and lays out the displayed subtree.
func (m *Map) Layout() error {
	if m.strategy == nil {
		return errs.New(errs.ErrCodeInvalidStrategy, "no layout strategy set")
	}
	m.root.SetBounds(m.viewport)
	m.zoom.Refresh()
	Layout(m.zoom.Displayed(), m.strategy, m.border)
	m.dirty = false
	return nil
}

// ZoomTo displays dest in place of the root and clears the active leaf.
// The layout is stale afterwards.
func (m *Map) ZoomTo(dest *Node) error {
	if err := m.zoom.ZoomTo(dest); err != nil {
		return err
	}
	m.active = nil
	m.dirty = true
	return nil
}

// Unzoom returns to the root. It is a no-op when unzoomed.
func (m *Map) Unzoom() {
	if !m.zoom.Zoomed() {
		return
	}
	m.zoom.Unzoom()
	m.active = nil
	m.dirty = true
}

// Hit returns the deepest node under (x, y) in the displayed subtree.
func (m *Map) Hit(x, y float64) (*Node, bool) {
	return NewHitTester(m.zoom).Leaf(x, y)
}

// Hover records the leaf under (x, y) as the active leaf and returns it.
// It reports whether the active leaf changed.
func (m *Map) Hover(x, y float64) (leaf *Node, changed bool) {
	n, ok := m.Hit(x, y)
	if !ok || !n.IsLeaf() {
		n = nil
	}
	changed = n != m.active
	m.active = n
	return n, changed
}

// ActiveLeaf returns the leaf recorded by the last Hover, or nil.
func (m *Map) ActiveLeaf() *Node { return m.active }
