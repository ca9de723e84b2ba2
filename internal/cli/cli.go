package cli

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/config"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "treemap"

	// layoutSuffix is appended to an input's base name for layout output.
	layoutSuffix = ".layout.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     *config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the library hooks
// report loads, layouts and cache traffic through the same logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.LogHooks{Logger: c.Logger}
		observability.SetLayoutHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Treemap lays out weighted trees as nested rectangles",
		Long: `Treemap reads hierarchical data (TM3, XML or JSON), lays it out as nested
rectangles whose areas follow the leaf weights, and lets you explore the result
in the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+defaultConfigHint()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.hitCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.strategiesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default location when it exists.
func (c *CLI) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func defaultConfigHint() string {
	if p, err := config.DefaultPath(); err == nil {
		return p
	}
	return "none"
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, c.Config.Keyer(), c.Logger)
	if c.Config.Cache.TTL > 0 {
		r.TTL = c.Config.Cache.TTL
	}
	return r, nil
}

// newCache opens the configured backend. An unreachable Redis degrades to
// no caching with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.New(ctx, c.Config.CacheOptions())
	if errors.Is(err, cache.ErrUnavailable) {
		c.Logger.Warn("cache unavailable, continuing without it", "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, err
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the layout settings shared by layout, hit, view and the
// server defaults. Unset flags fall back to the loaded config.
type layoutFlags struct {
	strategy       string
	width, height  float64
	border         float64
	keepProportion bool
	weightField    string
	valueField     string
	color          string
	zoom           string
}

func (f *layoutFlags) register(fs *pflag.FlagSet, withViewport bool) {
	d := config.Default()
	fs.StringVarP(&f.strategy, "strategy", "s", d.Strategy, "layout strategy (see 'treemap strategies')")
	if withViewport {
		fs.Float64Var(&f.width, "width", d.Width, "viewport width")
		fs.Float64Var(&f.height, "height", d.Height, "viewport height")
	}
	fs.Float64Var(&f.border, "border", d.Border, "spacing between sibling rectangles")
	fs.BoolVar(&f.keepProportion, "keep-proportion", d.KeepProportion, "scale zoomed nodes uniformly instead of stretching")
	fs.StringVar(&f.weightField, "weight-field", "", "field holding leaf weights")
	fs.StringVar(&f.valueField, "value-field", "", "field presented as leaf value")
	fs.StringVar(&f.color, "color", d.Color, "color provider: linear, log, sqrt, cbrt, exp, unique")
	fs.StringVar(&f.zoom, "zoom", "", "label path of the node to zoom to, e.g. photos/2024")
}

// options merges the config with the flags the user actually set.
func (c *CLI) options(fs *pflag.FlagSet, f *layoutFlags) pipeline.Options {
	cfg := c.Config
	opts := pipeline.Options{
		Strategy:       cfg.Strategy,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Border:         pipeline.Float(cfg.Border),
		KeepProportion: cfg.KeepProportion,
		WeightField:    cfg.WeightField,
		ValueField:     cfg.ValueField,
		Color:          cfg.Color,
		Zoom:           f.zoom,
		Logger:         c.Logger,
	}
	if fs.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if fs.Changed("width") {
		opts.Width = f.width
	}
	if fs.Changed("height") {
		opts.Height = f.height
	}
	if fs.Changed("border") {
		opts.Border = pipeline.Float(f.border)
	}
	if fs.Changed("keep-proportion") {
		opts.KeepProportion = f.keepProportion
	}
	if fs.Changed("weight-field") {
		opts.WeightField = f.weightField
	}
	if fs.Changed("value-field") {
		opts.ValueField = f.valueField
	}
	if fs.Changed("color") {
		opts.Color = f.color
	}
	return opts
}
