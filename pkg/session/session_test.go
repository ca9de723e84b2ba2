package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

func testMap() *treemap.Map {
	root := treemap.NewBranch("root")
	_ = root.Add(treemap.MustLeaf("a", 1))
	m := treemap.NewMap(root, split.Squarified{})
	m.SetViewport(treemap.Rect{W: 10, H: 10})
	return m
}

func TestNew(t *testing.T) {
	if _, err := New(nil, pipeline.Options{}, 0); err == nil {
		t.Error("nil map should be rejected")
	}
	a, err := New(testMap(), pipeline.Options{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := New(testMap(), pipeline.Options{}, 0)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
	if got := a.ExpiresAt().Sub(a.CreatedAt); got != DefaultTTL {
		t.Errorf("ttl = %v, want %v", got, DefaultTTL)
	}
}

func TestDo(t *testing.T) {
	sess, _ := New(testMap(), pipeline.Options{}, time.Minute)
	err := sess.Do(func(m *treemap.Map) error { return m.Layout() })
	if err != nil {
		t.Fatal(err)
	}
	want := errors.New("boom")
	if got := sess.Do(func(*treemap.Map) error { return want }); got != want {
		t.Errorf("Do returned %v, want %v", got, want)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess, _ := New(testMap(), pipeline.Options{}, time.Minute)

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get before Set: %v", err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "unknown"); err != nil {
		t.Errorf("deleting unknown id: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len after delete = %d", store.Len())
	}
	if err := store.Set(ctx, &Session{}); err == nil {
		t.Error("session without id should be rejected")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	live, _ := New(testMap(), pipeline.Options{}, time.Hour)
	stale, _ := New(testMap(), pipeline.Options{}, time.Minute)
	gone, _ := New(testMap(), pipeline.Options{}, time.Minute)
	for _, s := range []*Session{live, stale, gone} {
		_ = store.Set(ctx, s)
	}

	now = now.Add(10 * time.Minute)
	if _, err := store.Get(ctx, gone.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get expired: %v", err)
	}
	if _, err := store.Get(ctx, gone.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session should be dropped on Get: %v", err)
	}

	n, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("Cleanup removed %d, %d left; want 1, 1", n, store.Len())
	}
	if _, err := store.Get(ctx, live.ID); err != nil {
		t.Errorf("live session: %v", err)
	}
}

func TestJanitorStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewMemoryStore().Janitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
