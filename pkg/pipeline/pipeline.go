// Package pipeline runs the load → layout → export sequence shared by the CLI
// and the HTTP server.
//
// # Stages
//
//  1. Load: read a TM3, XML or JSON document into a weighted tree
//  2. Layout: build a treemap.Map, apply zoom, and lay it out
//  3. Export: flatten the displayed rectangles into an export.Layout
//
// Exported layouts are cached under the input's content hash and the layout
// options, so repeated runs over unchanged input skip the first two stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:    "disk.tm3",
//	    Strategy: "squarified",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(res.Layout.Rects))
//
// Interactive hosts that need the live Map (for hit testing and zooming)
// call Load and BuildMap directly.
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/color"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/export"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height.
	DefaultHeight = 600.0

	// DefaultColor is the default color provider.
	DefaultColor = string(color.Linear)
)

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It doubles as the JSON body of API
// requests.
type Options struct {
	// Input options: a file path, or raw data plus its format.
	Input  string `json:"input,omitempty"`
	Data   []byte `json:"-"`
	Format string `json:"format,omitempty"`

	// Source options
	WeightField string `json:"weight_field,omitempty"`
	ValueField  string `json:"value_field,omitempty"`

	// Layout options
	Strategy       string   `json:"strategy,omitempty"`
	Width          float64  `json:"width,omitempty"`
	Height         float64  `json:"height,omitempty"`
	Border         *float64 `json:"border,omitempty"` // nil selects treemap.DefaultBorder
	KeepProportion bool     `json:"keep_proportion,omitempty"`
	Zoom           string   `json:"zoom,omitempty"` // label path of the focus node

	// Export options
	Color string `json:"color,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of Execute.
type Result struct {
	// Tree and Map are nil when the layout came from the cache.
	Tree *treemap.Node
	Map  *treemap.Map

	// InputHash is the SHA-256 of the input document.
	InputHash string

	Layout    export.Layout
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	LeafCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
}

// CacheInfo reports whether the layout was served from the cache.
type CacheInfo struct {
	LayoutHit bool
}

// Float returns a pointer to v, for Options.Border literals.
func Float(v float64) *float64 { return &v }

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the input options.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Data == nil {
		return errs.New(errs.ErrCodeInvalidInput, "input file or data is required")
	}
	if o.Input == "" && o.Format == "" {
		return errs.New(errs.ErrCodeInvalidFormat, "format is required for inline data")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults fills in zero layout options.
func (o *Options) SetLayoutDefaults() {
	if o.Strategy == "" {
		o.Strategy = split.DefaultName
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Border == nil {
		o.Border = Float(treemap.DefaultBorder)
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and validates them.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := split.ByName(o.Strategy); err != nil {
		return err
	}
	if err := errs.ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := errs.ValidateDimension("height", o.Height); err != nil {
		return err
	}
	if b := *o.Border; math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "border must be a finite non-negative number, got %v", b)
	}
	if o.Zoom != "" && o.Zoom != "/" {
		if err := errs.ValidateNodePath(o.Zoom); err != nil {
			return err
		}
	}
	if _, err := color.ByName(o.Color, nil); err != nil {
		return err
	}
	return nil
}

// SourceOptions returns the options for the source readers.
func (o *Options) SourceOptions() source.Options {
	return source.Options{WeightField: o.WeightField, ValueField: o.ValueField}
}

// Provider returns the presentation provider for the configured value field.
func (o *Options) Provider() treemap.Provider {
	return source.BeanProvider{ValueField: o.ValueField}
}

// LayoutKeyOpts returns cache key options for the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	border := treemap.DefaultBorder
	if o.Border != nil {
		border = *o.Border
	}
	return cache.LayoutKeyOpts{
		Strategy:       o.Strategy,
		Width:          o.Width,
		Height:         o.Height,
		Border:         border,
		KeepProportion: o.KeepProportion,
		Zoom:           o.Zoom,
		WeightField:    o.WeightField,
		ValueField:     o.ValueField,
		Color:          o.Color,
	}
}
