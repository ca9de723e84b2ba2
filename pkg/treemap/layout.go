package treemap

import "math"

// DefaultBorder is the spacing, in viewport units, kept between sibling
// rectangles and between a group's edge and its children.
const DefaultBorder = 3.0

// Strategy subdivides a rectangle among weighted items.
//
// Split receives the rectangle to fill and the items' weights in child order,
// and returns one rectangle per weight in the same order. The rectangles must
// not overlap, must lie inside r, and each must cover an area proportional to
// its weight's share of the total. A zero total yields empty rectangles.
// Implementations are stateless and safe to share between maps.
type Strategy interface {
	Split(r Rect, weights []float64) []Rect
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(r Rect, weights []float64) []Rect

// Split calls f(r, weights).
func (f StrategyFunc) Split(r Rect, weights []float64) []Rect { return f(r, weights) }

// Layout assigns bounds to every descendant of n using s.
//
// n's own bounds must already be set. Children fill n's content area (its
// bounds inset by border) and are separated from each other by border. With a
// zero border the children tile the content area exactly. A node whose weight
// is zero, or whose content area has collapsed, is not subdivided: its
// descendants receive empty rectangles so that stale geometry can never be hit.
func Layout(n *Node, s Strategy, border float64) {
	if n == nil || n.IsLeaf() {
		return
	}
	border = math.Max(0, border)
	content := n.bounds.Inset(border)
	if n.weight <= 0 || content.Empty() {
		collapse(n, content)
		return
	}

	weights := make([]float64, len(n.children))
	for i, c := range n.children {
		weights[i] = c.weight
	}

	// Tile an area grown by one border on the far edges, then trim the same
	// amount from every cell: siblings end up exactly one border apart and the
	// last cell still ends on the content edge.
	tile := Rect{X: content.X, Y: content.Y, W: content.W + border, H: content.H + border}
	cells := s.Split(tile, weights)

	for i, c := range n.children {
		if i >= len(cells) {
			c.bounds = Rect{X: content.X, Y: content.Y}
			collapse(c, c.bounds)
			continue
		}
		cell := cells[i]
		c.bounds = Rect{
			X: cell.X,
			Y: cell.Y,
			W: math.Max(0, cell.W-border),
			H: math.Max(0, cell.H-border),
		}
		Layout(c, s, border)
	}
}

// collapse gives every descendant of n an empty rectangle at r's origin.
func collapse(n *Node, r Rect) {
	for _, c := range n.children {
		c.bounds = Rect{X: r.X, Y: r.Y}
		collapse(c, r)
	}
}
