package treemap

import "github.com/lucasb-eyer/go-colorful"

// Provider turns node payloads into text and numbers for presentation.
// The engine never calls it; hosts use it to label rectangles and tooltips,
// and tree builders use NumericValue when a payload's value feeds a weight.
type Provider interface {
	// Label returns the short name drawn inside a rectangle.
	Label(n *Node) string
	// Tooltip returns the longer text shown on hover.
	Tooltip(n *Node) string
	// ValueLabel formats a payload's value.
	ValueLabel(value any) string
	// NumericValue extracts a payload's value as a number, or 0.
	NumericValue(value any) float64
}

// ColorProvider maps a leaf payload to a fill color. It is consumed only by
// presentation code.
type ColorProvider interface {
	Color(value any) colorful.Color
}
