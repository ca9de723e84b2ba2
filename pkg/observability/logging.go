package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level. The CLI installs
// it when run with -v.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ LayoutHooks = LogHooks{}
	_ CacheHooks  = LogHooks{}
)

func (h LogHooks) OnLoadStart(_ context.Context, source, format string) {
	h.Logger.Debug("loading tree", "source", source, "format", format)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source, format string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("load failed", "source", source, "error", err)
		return
	}
	h.Logger.Debug("loaded tree", "source", source, "format", format, "nodes", nodes, "duration", d)
}

func (h LogHooks) OnLayoutStart(_ context.Context, strategy string, nodes int) {
	h.Logger.Debug("layout start", "strategy", strategy, "nodes", nodes)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, strategy string, d time.Duration, err error) {
	h.Logger.Debug("layout done", "strategy", strategy, "duration", d, "error", err)
}

func (h LogHooks) OnZoom(_ context.Context, path string, zoomed bool) {
	h.Logger.Debug("zoom", "path", path, "zoomed", zoomed)
}

func (h LogHooks) OnHit(_ context.Context, x, y float64, hit bool) {
	h.Logger.Debug("hit test", "x", x, "y", y, "hit", hit)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}
