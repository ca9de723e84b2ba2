package treemap

// HitTester resolves viewport points against the displayed subtree.
// After a zoom it answers for the focus, whose bounds already live in
// viewport coordinates.
type HitTester struct {
	zoom *Zoom
}

// NewHitTester returns a hit tester that follows z.
func NewHitTester(z *Zoom) HitTester { return HitTester{zoom: z} }

// Leaf returns the deepest node under (x, y), or false when the point misses
// every non-empty rectangle.
func (h HitTester) Leaf(x, y float64) (*Node, bool) {
	d := h.zoom.Displayed()
	if d == nil {
		return nil, false
	}
	return d.HitTest(x, y)
}

// Child returns the displayed root's immediate child under (x, y).
func (h HitTester) Child(x, y float64) (*Node, bool) {
	d := h.zoom.Displayed()
	if d == nil {
		return nil, false
	}
	return d.FirstChildContaining(x, y)
}

// Ancestors returns the chain of nodes under (x, y) from the displayed root's
// child down to the leaf, walking one level at a time.
func (h HitTester) Ancestors(x, y float64) []*Node {
	var chain []*Node
	n := h.zoom.Displayed()
	for n != nil && !n.IsLeaf() {
		c, ok := n.FirstChildContaining(x, y)
		if !ok {
			return chain
		}
		chain = append(chain, c)
		n = c
	}
	return chain
}
