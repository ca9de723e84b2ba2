// Package cache memoizes computed treemap layouts.
//
// Layouts are pure functions of their input tree and layout options, so the
// exported JSON can be stored under a key derived from both and reused by the
// CLI and the HTTP server. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared storage for server deployments
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so that deployments can namespace them with
// [NewScopedKeyer].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores opaque byte payloads with an optional time to live.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss;
	// expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLLayout is how long an exported layout stays cached.
const TTLLayout = 7 * 24 * time.Hour

// Backend names accepted by New.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string // file backend
	RedisAddr string // redis backend
}

// New builds the backend named by opts.Backend. An empty backend means file.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{Addr: opts.RedisAddr})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis or none)", opts.Backend)
	}
}

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the layout options that change the computed rectangles.
type LayoutKeyOpts struct {
	Strategy       string  `json:"strategy"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Border         float64 `json:"border"`
	KeepProportion bool    `json:"keep_proportion,omitempty"`
	Zoom           string  `json:"zoom,omitempty"`
	WeightField    string  `json:"weight_field,omitempty"`
	ValueField     string  `json:"value_field,omitempty"`
	Color          string  `json:"color,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout of the input whose content hash
	// is inputHash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unprefixed keys of the form "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}
