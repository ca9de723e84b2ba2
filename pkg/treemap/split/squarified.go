package split

import (
	"math"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// Squarified is the Bruls, Huizing and van Wijk algorithm.
//
// Items are taken in order and grouped into rows laid along the shorter side
// of the remaining rectangle. A row keeps growing while the next item does not
// make its worst aspect ratio worse; then it is committed as a strip spanning
// the whole shorter side, and the remaining rectangle shrinks by the strip.
// The result keeps rectangles close to square.
type Squarified struct{}

// Split implements treemap.Strategy.
func (Squarified) Split(r treemap.Rect, weights []float64) []treemap.Rect {
	out := make([]treemap.Rect, len(weights))
	areas, ok := areasFor(r, weights)
	if !ok {
		return degenerate(r, out)
	}

	// lastPositive lets the final row absorb whatever rounding left over.
	lastPositive := -1
	for i, a := range areas {
		if a > 0 {
			lastPositive = i
		}
	}

	free := r
	var row []int
	var rowSum, rowMin, rowMax float64

	for i, a := range areas {
		if a <= 0 {
			out[i] = treemap.Rect{X: free.X, Y: free.Y}
			continue
		}
		if len(row) == 0 {
			row, rowSum, rowMin, rowMax = append(row, i), a, a, a
			continue
		}
		side := math.Min(free.W, free.H)
		cur := worstRatio(rowSum, rowMin, rowMax, side)
		next := worstRatio(rowSum+a, math.Min(rowMin, a), math.Max(rowMax, a), side)
		if next <= cur {
			row = append(row, i)
			rowSum += a
			rowMin = math.Min(rowMin, a)
			rowMax = math.Max(rowMax, a)
			continue
		}
		free = layoutRow(free, row, rowSum, areas, out, false)
		row, rowSum, rowMin, rowMax = []int{i}, a, a, a
	}
	if len(row) > 0 {
		layoutRow(free, row, rowSum, areas, out, row[len(row)-1] == lastPositive)
	}
	return out
}

// worstRatio returns the largest aspect ratio among the members of a row of
// total area sum laid along a side of length side.
func worstRatio(sum, lo, hi, side float64) float64 {
	if sum <= 0 || lo <= 0 || side <= 0 {
		return math.Inf(1)
	}
	s2 := side * side
	sum2 := sum * sum
	return math.Max(s2*hi/sum2, sum2/(s2*lo))
}

// layoutRow commits row as a strip along the shorter side of free and
// returns the rectangle that remains. When last is set the strip takes all
// of free so that the children tile it without a sliver.
func layoutRow(free treemap.Rect, row []int, rowSum float64, areas []float64, out []treemap.Rect, last bool) treemap.Rect {
	if free.W <= free.H {
		// horizontal strip across the top
		t := rowSum / free.W
		if last || t > free.H {
			t = free.H
		}
		x := free.X
		for k, i := range row {
			w := areas[i] / t
			if k == len(row)-1 {
				w = free.Right() - x
			}
			out[i] = treemap.Rect{X: x, Y: free.Y, W: w, H: t}
			x += w
		}
		return treemap.Rect{X: free.X, Y: free.Y + t, W: free.W, H: free.H - t}
	}

	// vertical strip down the left side
	t := rowSum / free.H
	if last || t > free.W {
		t = free.W
	}
	y := free.Y
	for k, i := range row {
		h := areas[i] / t
		if k == len(row)-1 {
			h = free.Bottom() - y
		}
		out[i] = treemap.Rect{X: free.X, Y: y, W: t, H: h}
		y += h
	}
	return treemap.Rect{X: free.X + t, Y: free.Y, W: free.W - t, H: free.H}
}
