// Package color maps node values to fill colors.
//
// [HSB] blends between two colors in HSV space, positioning each value in the
// fitted range through a [Distribution] that controls how strongly small and
// large values are told apart. [Unique] paints everything the same.
// Both implement treemap.ColorProvider and are purely presentational: the
// layout engine never consults them.
package color

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Distribution reshapes a normalized position t in [0, 1].
type Distribution string

// Supported distributions.
const (
	Linear Distribution = "linear"
	Log    Distribution = "log"
	Sqrt   Distribution = "sqrt"
	Cbrt   Distribution = "cbrt"
	Exp    Distribution = "exp"
)

// NameUnique selects the single-color provider in ByName.
const NameUnique = "unique"

// Default endpoints: low values green, high values red.
var (
	DefaultMin = colorful.Color{R: 0x1a / 255.0, G: 0xb2 / 255.0, B: 0x33 / 255.0}
	DefaultMax = colorful.Color{R: 0xd9 / 255.0, G: 0x26 / 255.0, B: 0x1a / 255.0}
)

// Apply maps t through the distribution. Every distribution fixes 0 and 1
// and is monotonic in between.
func (d Distribution) Apply(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	switch d {
	case Log:
		return math.Log1p(9*t) / math.Log(10)
	case Sqrt:
		return math.Sqrt(t)
	case Cbrt:
		return math.Cbrt(t)
	case Exp:
		return (math.Exp(t) - 1) / (math.E - 1)
	default:
		return t
	}
}

// HSB blends from Min to Max according to a node's numeric value.
// Call Fit or FitTree before use; an unfitted provider paints every value
// halfway between the endpoints.
type HSB struct {
	Min, Max colorful.Color
	Dist     Distribution
	Values   treemap.Provider

	lo, hi float64
}

// NewHSB returns an HSB provider with the default endpoints.
func NewHSB(dist Distribution, values treemap.Provider) *HSB {
	return &HSB{Min: DefaultMin, Max: DefaultMax, Dist: dist, Values: values}
}

// Fit sets the value range to the extremes of values.
func (h *HSB) Fit(values []float64) {
	if len(values) == 0 {
		h.lo, h.hi = 0, 0
		return
	}
	h.lo, h.hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		h.lo = math.Min(h.lo, v)
		h.hi = math.Max(h.hi, v)
	}
}

// FitTree fits the range to the values of every leaf under root.
func (h *HSB) FitTree(root *treemap.Node) {
	leaves := root.Leaves()
	values := make([]float64, len(leaves))
	for i, l := range leaves {
		values[i] = h.Values.NumericValue(l.Value())
	}
	h.Fit(values)
}

// Range returns the fitted bounds.
func (h *HSB) Range() (lo, hi float64) { return h.lo, h.hi }

// Color implements treemap.ColorProvider.
func (h *HSB) Color(value any) colorful.Color {
	t := 0.5
	if h.hi > h.lo {
		v := h.Values.NumericValue(value)
		t = (v - h.lo) / (h.hi - h.lo)
	}
	return h.Min.BlendHsv(h.Max, h.Dist.Apply(t)).Clamped()
}

// Unique paints every node with one color.
type Unique struct {
	C colorful.Color
}

// Color implements treemap.ColorProvider.
func (u Unique) Color(any) colorful.Color { return u.C }

// Names lists the providers ByName accepts.
func Names() []string {
	return []string{string(Linear), string(Log), string(Sqrt), string(Cbrt), string(Exp), NameUnique}
}

// ByName builds a provider. HSB providers read values through values and
// must be fitted before use.
func ByName(name string, values treemap.Provider) (treemap.ColorProvider, error) {
	switch d := Distribution(strings.ToLower(name)); d {
	case "", Linear, Log, Sqrt, Cbrt, Exp:
		if d == "" {
			d = Linear
		}
		return NewHSB(d, values), nil
	case NameUnique:
		return Unique{C: DefaultMin}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidColor,
		"unknown color provider %q (must be one of: %s)", name, strings.Join(Names(), ", "))
}

// Fit fits p to root when it supports fitting.
func Fit(p treemap.ColorProvider, root *treemap.Node) {
	if h, ok := p.(*HSB); ok {
		h.FitTree(root)
	}
}
