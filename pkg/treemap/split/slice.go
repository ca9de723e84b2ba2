package split

import "github.com/matzehuels/treemap/pkg/treemap"

// Axis selects the direction Slice cuts along.
type Axis int

const (
	// AxisAuto cuts across the longer side of the rectangle.
	AxisAuto Axis = iota
	// AxisVertical always produces side-by-side columns.
	AxisVertical
	// AxisHorizontal always produces stacked rows.
	AxisHorizontal
)

// Slice cuts the rectangle into parallel strips in item order, each strip's
// thickness proportional to its weight. It is the simplest strategy and the
// most elongated one for skewed weights.
type Slice struct {
	Axis Axis
}

// Split implements treemap.Strategy.
func (s Slice) Split(r treemap.Rect, weights []float64) []treemap.Rect {
	out := make([]treemap.Rect, len(weights))
	total := sum(weights)
	if total <= 0 || r.Empty() {
		return degenerate(r, out)
	}

	columns := s.Axis == AxisVertical || (s.Axis == AxisAuto && r.Landscape())
	if columns {
		x := r.X
		for i, w := range weights {
			width := r.W * w / total
			if i == len(weights)-1 {
				width = r.Right() - x
			}
			out[i] = treemap.Rect{X: x, Y: r.Y, W: width, H: r.H}
			x += width
		}
		return out
	}

	y := r.Y
	for i, w := range weights {
		height := r.H * w / total
		if i == len(weights)-1 {
			height = r.Bottom() - y
		}
		out[i] = treemap.Rect{X: r.X, Y: y, W: r.W, H: height}
		y += height
	}
	return out
}
