package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/color"
	"github.com/matzehuels/treemap/pkg/export"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached layouts.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLLayout,
	}
}

// Execute runs the complete load → layout → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, format, err := r.readInput(opts)
	if err != nil {
		return nil, err
	}
	result := &Result{InputHash: cache.Hash(data)}
	key := r.Keyer.LayoutKey(result.InputHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, key); ok {
			result.Layout = l
			result.CacheInfo.LayoutHit = true
			result.Stats.NodeCount = len(l.Rects)
			result.Stats.LeafCount = len(l.Leaves())
			r.Logger.Info("layout from cache", "rects", len(l.Rects))
			return result, nil
		}
	}

	// Stage 1: Load
	loadStart := time.Now()
	root, err := r.loadData(ctx, opts.Input, data, format, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = root
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = root.Len()
	result.Stats.LeafCount = len(root.Leaves())

	r.Logger.Info("loaded tree",
		"nodes", result.Stats.NodeCount,
		"leaves", result.Stats.LeafCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	m, err := r.BuildMap(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	result.Map = m
	result.Stats.LayoutTime = time.Since(layoutStart)

	// Stage 3: Export
	l, err := r.Export(m, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l

	r.Logger.Info("computed layout",
		"strategy", opts.Strategy,
		"rects", len(l.Rects),
		"duration", result.Stats.LayoutTime)

	if data, err := export.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		} else {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}
	return result, nil
}

// Load reads the tree named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*treemap.Node, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	data, format, err := r.readInput(opts)
	if err != nil {
		return nil, err
	}
	return r.loadData(ctx, opts.Input, data, format, opts)
}

// BuildMap creates a Map for root, applies the zoom path and lays it out.
func (r *Runner) BuildMap(ctx context.Context, root *treemap.Node, opts Options) (*treemap.Map, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	s, err := split.ByName(opts.Strategy)
	if err != nil {
		return nil, err
	}

	m := treemap.NewMap(root, s)
	if err := m.SetBorder(*opts.Border); err != nil {
		return nil, err
	}
	m.SetViewport(treemap.Rect{W: opts.Width, H: opts.Height})
	m.SetKeepProportion(opts.KeepProportion)

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, opts.Strategy, root.Len())
	start := time.Now()
	err = r.layoutAndZoom(m, opts)
	hooks.OnLayoutComplete(ctx, opts.Strategy, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if opts.Zoom != "" {
		hooks.OnZoom(ctx, opts.Zoom, m.Zoom().Zoomed())
	}
	return m, nil
}

func (r *Runner) layoutAndZoom(m *treemap.Map, opts Options) error {
	if err := m.Layout(); err != nil {
		return err
	}
	if opts.Zoom == "" {
		return nil
	}
	dest, err := source.Find(m.Root(), opts.Provider(), opts.Zoom)
	if err != nil {
		return err
	}
	if err := m.ZoomTo(dest); err != nil {
		return err
	}
	return m.Layout()
}

// Export flattens the displayed part of m, coloring leaves with the
// provider named by opts.Color.
func (r *Runner) Export(m *treemap.Map, opts Options) (export.Layout, error) {
	opts.SetLayoutDefaults()
	p := opts.Provider()
	colors, err := color.ByName(opts.Color, p)
	if err != nil {
		return export.Layout{}, err
	}
	color.Fit(colors, m.Root())
	return export.FromMap(m, export.Options{
		Strategy: split.NameOf(m.Strategy()),
		Provider: p,
		Colors:   colors,
	}), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// readInput returns the raw document and its format.
func (r *Runner) readInput(opts Options) ([]byte, string, error) {
	if opts.Input == "" {
		return opts.Data, opts.Format, nil
	}
	data, format, err := source.ReadFileData(opts.Input)
	if err != nil {
		return nil, "", err
	}
	if opts.Format != "" {
		format = opts.Format
	}
	return data, format, nil
}

func (r *Runner) loadData(ctx context.Context, name string, data []byte, format string, opts Options) (*treemap.Node, error) {
	if name == "" {
		name = "inline"
	}
	hooks := observability.Layout()
	hooks.OnLoadStart(ctx, name, format)
	start := time.Now()

	root, err := source.ReadBytes(data, format, opts.SourceOptions())
	nodes := 0
	if err == nil {
		if opts.Input != "" {
			source.NameRoot(root, opts.Input)
		}
		nodes = root.Len()
	}
	hooks.OnLoadComplete(ctx, name, format, nodes, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return root, nil
}

// cachedLayout looks up a previously exported layout. Undecodable entries
// count as misses.
func (r *Runner) cachedLayout(ctx context.Context, key string) (export.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return export.Layout{}, false
	}
	l, err := export.Unmarshal(data)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return export.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
