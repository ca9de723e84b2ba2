package treemap

import "math"

// Rect is an axis-aligned rectangle in viewport coordinates.
// X and Y locate the top-left corner; W and H are never negative once a
// strategy has produced the rectangle.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Empty reports whether the rectangle has no area.
// Empty rectangles are never hit and never drawn.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float64) { return r.X + r.W/2, r.Y + r.H/2 }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r, allowing eps of slack
// for accumulated floating point error.
func (r Rect) ContainsRect(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Intersects reports whether r and o share a region of positive area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool { return r.Overlap(o) > 0 }

// Overlap returns the area shared by r and o.
func (r Rect) Overlap(o Rect) float64 {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Inset shrinks r by d on all four sides. Sizes clamp at zero; a collapsed
// axis keeps its origin centered in the original extent.
func (r Rect) Inset(d float64) Rect {
	if d == 0 {
		return r
	}
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	if out.W < 0 {
		out.X, out.W = r.X+r.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = r.Y+r.H/2, 0
	}
	return out
}

// Aspect returns max(W/H, H/W). Degenerate rectangles report +Inf.
func (r Rect) Aspect() float64 {
	if r.Empty() {
		return math.Inf(1)
	}
	return math.Max(r.W/r.H, r.H/r.W)
}

// Landscape reports whether the rectangle is wider than it is tall.
func (r Rect) Landscape() bool { return r.W > r.H }
