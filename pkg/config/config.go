// Package config loads treemap settings from a file and the environment.
//
// Settings come from three layers, later layers winning:
//
//  1. [Default]
//  2. a YAML (.yaml, .yml) or TOML (.toml) file
//  3. TREEMAP_* environment variables, for example TREEMAP_STRATEGY=slice or
//     TREEMAP_CACHE_BACKEND=redis
//
// The CLI flags then override whatever was loaded.
package config

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/color"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TREEMAP_"

// Config is the full set of settings.
type Config struct {
	Strategy       string       `yaml:"strategy" toml:"strategy" koanf:"strategy"`
	Border         float64      `yaml:"border" toml:"border" koanf:"border"`
	Width          float64      `yaml:"width" toml:"width" koanf:"width"`
	Height         float64      `yaml:"height" toml:"height" koanf:"height"`
	KeepProportion bool         `yaml:"keep_proportion" toml:"keep_proportion" koanf:"keep_proportion"`
	WeightField    string       `yaml:"weight_field,omitempty" toml:"weight_field,omitempty" koanf:"weight_field"`
	ValueField     string       `yaml:"value_field,omitempty" toml:"value_field,omitempty" koanf:"value_field"`
	Color          string       `yaml:"color" toml:"color" koanf:"color"`
	Cache          CacheConfig  `yaml:"cache" toml:"cache" koanf:"cache"`
	Server         ServerConfig `yaml:"server" toml:"server" koanf:"server"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend   string        `yaml:"backend" toml:"backend" koanf:"backend"`
	Dir       string        `yaml:"dir,omitempty" toml:"dir,omitempty" koanf:"dir"`
	RedisAddr string        `yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty" koanf:"redis_addr"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl" koanf:"ttl"`

	// KeyPrefix namespaces keys when several deployments share one Redis.
	KeyPrefix string `yaml:"key_prefix,omitempty" toml:"key_prefix,omitempty" koanf:"key_prefix"`
}

// ServerConfig configures `treemap serve`.
type ServerConfig struct {
	Addr        string        `yaml:"addr" toml:"addr" koanf:"addr"`
	LogFile     string        `yaml:"log_file,omitempty" toml:"log_file,omitempty" koanf:"log_file"`
	SessionTTL  time.Duration `yaml:"session_ttl" toml:"session_ttl" koanf:"session_ttl"`
	CORSOrigins []string      `yaml:"cors_origins" toml:"cors_origins" koanf:"cors_origins"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Strategy: split.DefaultName,
		Border:   treemap.DefaultBorder,
		Width:    800,
		Height:   600,
		Color:    string(color.Linear),
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     cache.TTLLayout,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  time.Hour,
			CORSOrigins: []string{"*"},
		},
	}
}

// DefaultPath returns the per-user config file location, for example
// ~/.config/treemap/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "treemap", "config.yaml"), nil
}

// Load layers path (skipped when empty) and the environment over Default.
// A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load environment overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	return cfg, nil
}

// LoadDefault loads DefaultPath when it exists, and the environment only
// otherwise.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Load("")
	}
	if _, err := os.Stat(path); err != nil {
		return Load("")
	}
	return Load(path)
}

// envKey maps TREEMAP_CACHE_REDIS_ADDR to cache.redis_addr.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"cache", "server"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOML(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "config %s: use a .yaml, .yml or .toml file", path)
	}
}

// Save writes c as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := split.ByName(c.Strategy); err != nil {
		return err
	}
	if math.IsNaN(c.Border) || math.IsInf(c.Border, 0) || c.Border < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "border must be a finite non-negative number")
	}
	if err := errs.ValidateDimension("width", c.Width); err != nil {
		return err
	}
	if err := errs.ValidateDimension("height", c.Height); err != nil {
		return err
	}
	if c.Color != "" && !slices.Contains(color.Names(), strings.ToLower(c.Color)) {
		return errs.New(errs.ErrCodeInvalidColor,
			"unknown color %q (must be one of: %s)", c.Color, strings.Join(color.Names(), ", "))
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig,
			"cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must be non-negative")
	}
	if c.Server.SessionTTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.session_ttl must be non-negative")
	}
	return nil
}

// CacheOptions converts the cache section for cache.New.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
	}
}

// Keyer returns the cache key scheme, scoped by Cache.KeyPrefix when set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.KeyPrefix)
}
