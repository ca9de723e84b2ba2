package split

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// WeightOrder partitions items recursively in their given order. Each step
// cuts the item list where the two halves' weights are closest to equal and
// cuts the rectangle across its longer side in proportion, so orientation
// alternates as the pieces change shape.
type WeightOrder struct{}

// Split implements treemap.Strategy.
func (WeightOrder) Split(r treemap.Rect, weights []float64) []treemap.Rect {
	return bisect(r, weights, identity(len(weights)), balancedCut)
}

// SortedWeightOrder is WeightOrder applied to the items sorted by descending
// weight, which keeps large items together. Rectangles are still returned in
// the caller's order.
type SortedWeightOrder struct{}

// Split implements treemap.Strategy.
func (SortedWeightOrder) Split(r treemap.Rect, weights []float64) []treemap.Rect {
	order := identity(len(weights))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(weights[b], weights[a])
	})
	return bisect(r, weights, order, balancedCut)
}

// EqualCount partitions items recursively into halves of equal count,
// ignoring weights when choosing the cut. Areas stay proportional to weight,
// but the partition shape is stable when weights change.
type EqualCount struct{}

// Split implements treemap.Strategy.
func (EqualCount) Split(r treemap.Rect, weights []float64) []treemap.Rect {
	return bisect(r, weights, identity(len(weights)), func(idx []int, _ []float64) int {
		return (len(idx) + 1) / 2
	})
}

// cutFunc returns k in [1, len(idx)-1]: idx[:k] goes to the first half.
type cutFunc func(idx []int, weights []float64) int

func bisect(r treemap.Rect, weights []float64, order []int, cut cutFunc) []treemap.Rect {
	out := make([]treemap.Rect, len(weights))
	if sum(weights) <= 0 || r.Empty() {
		return degenerate(r, out)
	}
	bisectInto(r, weights, order, cut, out)
	return out
}

func bisectInto(r treemap.Rect, weights []float64, idx []int, cut cutFunc, out []treemap.Rect) {
	switch len(idx) {
	case 0:
		return
	case 1:
		out[idx[0]] = r
		return
	}

	total := sumOf(weights, idx)
	if total <= 0 {
		for _, i := range idx {
			out[i] = treemap.Rect{X: r.X, Y: r.Y}
		}
		return
	}

	k := cut(idx, weights)
	share := sumOf(weights, idx[:k]) / total

	var first, second treemap.Rect
	if r.Landscape() {
		w := r.W * share
		first = treemap.Rect{X: r.X, Y: r.Y, W: w, H: r.H}
		second = treemap.Rect{X: r.X + w, Y: r.Y, W: r.W - w, H: r.H}
	} else {
		h := r.H * share
		first = treemap.Rect{X: r.X, Y: r.Y, W: r.W, H: h}
		second = treemap.Rect{X: r.X, Y: r.Y + h, W: r.W, H: r.H - h}
	}
	bisectInto(first, weights, idx[:k], cut, out)
	bisectInto(second, weights, idx[k:], cut, out)
}

// balancedCut picks the split point whose prefix weight is closest to half
// the total. Ties go to the earlier cut.
func balancedCut(idx []int, weights []float64) int {
	total := sumOf(weights, idx)
	best, bestDiff := 1, math.Inf(1)
	prefix := 0.0
	for k := 1; k < len(idx); k++ {
		prefix += weights[idx[k-1]]
		if d := math.Abs(2*prefix - total); d < bestDiff {
			best, bestDiff = k, d
		}
	}
	return best
}
