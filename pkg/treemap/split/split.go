package split

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Strategy names accepted by ByName.
const (
	NameSquarified        = "squarified"
	NameSlice             = "slice"
	NameWeightOrder       = "weight"
	NameSortedWeightOrder = "sorted-weight"
	NameEqualCount        = "equal-count"
)

// DefaultName is the strategy used when none is configured.
const DefaultName = NameSquarified

var registry = map[string]treemap.Strategy{
	NameSquarified:        Squarified{},
	NameSlice:             Slice{},
	NameWeightOrder:       WeightOrder{},
	NameSortedWeightOrder: SortedWeightOrder{},
	NameEqualCount:        EqualCount{},
}

// Names returns the registered strategy names in a stable order, default first.
func Names() []string {
	return []string{NameSquarified, NameSortedWeightOrder, NameWeightOrder, NameSlice, NameEqualCount}
}

// ByName returns the strategy registered under name (case-insensitive).
// An empty name selects the default.
func ByName(name string) (treemap.Strategy, error) {
	if name == "" {
		name = DefaultName
	}
	if s, ok := registry[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidStrategy,
		"unknown strategy %q (must be one of: %s)", name, strings.Join(Names(), ", "))
}

// NameOf returns the registered name of s, or "" for unregistered strategies.
func NameOf(s treemap.Strategy) string {
	for _, name := range Names() {
		if registry[name] == s {
			return name
		}
	}
	return ""
}

// Next returns the strategy name after name in Names, wrapping around.
func Next(name string) string {
	names := Names()
	i := slices.Index(names, name)
	return names[(i+1)%len(names)]
}

func sum(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

func sumOf(weights []float64, idx []int) float64 {
	total := 0.0
	for _, i := range idx {
		total += weights[i]
	}
	return total
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// areasFor scales weights to areas of r. It reports false when there is
// nothing to distribute.
func areasFor(r treemap.Rect, weights []float64) ([]float64, bool) {
	total := sum(weights)
	if total <= 0 || r.Empty() {
		return nil, false
	}
	scale := r.Area() / total
	areas := make([]float64, len(weights))
	for i, w := range weights {
		areas[i] = w * scale
	}
	return areas, true
}

// degenerate fills out with empty rectangles at r's origin.
func degenerate(r treemap.Rect, out []treemap.Rect) []treemap.Rect {
	for i := range out {
		out[i] = treemap.Rect{X: r.X, Y: r.Y}
	}
	return out
}
