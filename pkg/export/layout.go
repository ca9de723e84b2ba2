// Package export serializes computed treemap layouts.
//
// A [Layout] is a flat, depth-first list of the rectangles of the displayed
// subtree together with the settings that produced them. It is what the CLI
// writes to *.layout.json, what the HTTP API returns, and what the layout
// cache stores. It records geometry only and cannot be turned back into a
// weighted tree.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// =============================================================================
// Types
// =============================================================================

// Layout is the serialized form of a laid-out Map.
type Layout struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Strategy       string  `json:"strategy"`
	Border         float64 `json:"border"`
	KeepProportion bool    `json:"keep_proportion,omitempty"`

	// Displayed is the label path of the displayed node; empty when unzoomed.
	Displayed string `json:"displayed,omitempty"`

	Rects []Rect `json:"rects"`
}

// Rect is one node's rectangle. IDs are pre-order positions in Rects, so a
// parent always precedes its children.
type Rect struct {
	ID       int     `json:"id"`
	ParentID int     `json:"parent_id"` // -1 for the displayed node
	Path     string  `json:"path"`
	Label    string  `json:"label"`
	Weight   float64 `json:"weight"`
	Value    float64 `json:"value"`
	Depth    int     `json:"depth"` // relative to the displayed node
	Leaf     bool    `json:"leaf,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
}

// Bounds returns the rectangle's geometry.
func (r Rect) Bounds() treemap.Rect {
	return treemap.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// Options controls what FromMap records.
type Options struct {
	Strategy string                // name recorded in the layout
	Provider treemap.Provider      // labels and values; BeanProvider when nil
	Colors   treemap.ColorProvider // leaf fills; none when nil
}

// FromMap flattens the displayed subtree of m. m must be laid out. Nodes
// with empty rectangles are omitted together with their descendants.
func FromMap(m *treemap.Map, opts Options) Layout {
	p := opts.Provider
	if p == nil {
		p = source.BeanProvider{}
	}
	vp := m.Viewport()
	out := Layout{
		Width:          vp.W,
		Height:         vp.H,
		Strategy:       opts.Strategy,
		Border:         m.Border(),
		KeepProportion: m.Zoom().KeepProportion(),
		Displayed:      source.PathOf(m.Displayed(), p),
	}

	base := m.Displayed().Depth()
	parents := map[*treemap.Node]int{}
	m.Displayed().Walk(func(n *treemap.Node) bool {
		b := n.Bounds()
		if b.Empty() {
			return false
		}
		parentID := -1
		if n != m.Displayed() {
			parentID = parents[n.Parent()]
		}
		r := Rect{
			ID:       len(out.Rects),
			ParentID: parentID,
			Path:     source.PathOf(n, p),
			Label:    p.Label(n),
			Weight:   n.Weight(),
			Value:    p.NumericValue(n.Value()),
			Depth:    n.Depth() - base,
			Leaf:     n.IsLeaf(),
			X:        b.X,
			Y:        b.Y,
			W:        b.W,
			H:        b.H,
		}
		if n.IsLeaf() && opts.Colors != nil {
			r.Fill = opts.Colors.Color(n.Value()).Hex()
		}
		parents[n] = r.ID
		out.Rects = append(out.Rects, r)
		return true
	})
	return out
}

// Leaves returns the leaf rectangles in order.
func (l Layout) Leaves() []Rect {
	var out []Rect
	for _, r := range l.Rects {
		if r.Leaf {
			out = append(out, r)
		}
	}
	return out
}

// Hit returns the deepest rectangle containing (x, y), descending one level
// at a time and taking the first matching child, as the engine does.
func (l Layout) Hit(x, y float64) (Rect, bool) {
	var hit Rect
	found := false
	parent := -1
	for {
		next := -1
		for _, r := range l.Rects {
			if r.ParentID == parent && r.Bounds().Contains(x, y) {
				next = r.ID
				break
			}
		}
		if next < 0 {
			return hit, found
		}
		hit, found = l.Rects[next], true
		parent = next
	}
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal encodes l as indented JSON.
func Marshal(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a layout produced by Marshal.
func Unmarshal(data []byte) (Layout, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes l to w.
func Write(w io.Writer, l Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a layout from r.
func Read(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}

// WriteFile writes l to path.
func WriteFile(path string, l Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a layout written by WriteFile.
func ReadFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
