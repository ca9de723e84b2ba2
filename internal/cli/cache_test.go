package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/treemap/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	c := New(io.Discard, LogInfo)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("treemap", "layouts")) {
		t.Errorf("cacheDir() = %q, should end with treemap/layouts", dir)
	}

	c.Config.Cache.Dir = "/tmp/tm-cache"
	if dir, _ := c.cacheDir(); dir != "/tmp/tm-cache" {
		t.Errorf("configured cacheDir() = %q", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = t.TempDir()

	ch, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T, want NullCache", ch)
	}

	ch, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("file backend gave %T", ch)
	}

	c.Config.Cache.Backend = cache.BackendNone
	ch, _ = c.newCache(ctx, false)
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("none backend gave %T", ch)
	}
}

func TestNewRunnerUsesConfiguredTTL(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Backend = cache.BackendNone
	c.Config.Cache.TTL = 42
	r, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.TTL != 42 {
		t.Errorf("runner TTL = %v, want 42", r.TTL)
	}
}
