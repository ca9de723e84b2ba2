package source

import (
	"encoding/json"
	"strconv"
	"time"
)

// Bean is the payload attached to every node built by this package.
type Bean struct {
	Label  string         `json:"label"`
	Fields map[string]any `json:"fields,omitempty"`
}

// NewBean returns a bean with the given label and no fields.
func NewBean(label string) *Bean {
	return &Bean{Label: label}
}

// Field returns the named field.
func (b *Bean) Field(name string) (any, bool) {
	if b == nil || b.Fields == nil {
		return nil, false
	}
	v, ok := b.Fields[name]
	return v, ok
}

// Set stores a field, allocating the map on first use.
func (b *Bean) Set(name string, v any) {
	if b.Fields == nil {
		b.Fields = make(map[string]any)
	}
	b.Fields[name] = v
}

// Number converts a field value to float64. Dates become Unix milliseconds.
// Strings are parsed. The boolean is false for anything else.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case time.Time:
		return float64(x.UnixMilli()), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
