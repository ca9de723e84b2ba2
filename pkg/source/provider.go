package source

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// BeanProvider presents nodes whose payload is a *Bean.
type BeanProvider struct {
	// ValueField names the field shown as a node's value. Empty falls back
	// to "value", then to "weight".
	ValueField string
}

var _ treemap.Provider = BeanProvider{}

// Label returns the bean label, or the payload formatted with %v.
func (p BeanProvider) Label(n *treemap.Node) string {
	if n == nil {
		return ""
	}
	if b, ok := n.Value().(*Bean); ok {
		return b.Label
	}
	if n.Value() == nil {
		return ""
	}
	return fmt.Sprint(n.Value())
}

// Tooltip returns the label and the value label on two lines.
func (p BeanProvider) Tooltip(n *treemap.Node) string {
	return p.Label(n) + "\n" + p.ValueLabel(n.Value())
}

// ValueLabel formats NumericValue without trailing zeros.
func (p BeanProvider) ValueLabel(value any) string {
	return strconv.FormatFloat(p.NumericValue(value), 'f', -1, 64)
}

// NumericValue reads the configured value field as a number. Dates convert
// to Unix milliseconds. Missing or non-numeric fields yield 0.
func (p BeanProvider) NumericValue(value any) float64 {
	b, ok := value.(*Bean)
	if !ok {
		f, _ := Number(value)
		return f
	}
	names := []string{FieldValue, FieldWeight}
	if p.ValueField != "" {
		names = []string{p.ValueField}
	}
	for _, name := range names {
		if v, ok := b.Field(name); ok {
			if f, ok := Number(v); ok {
				return f
			}
		}
	}
	return 0
}
