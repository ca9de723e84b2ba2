// Package session keeps live treemaps for interactive HTTP clients.
//
// A session owns one treemap.Map together with the options it was built
// from. The engine itself is single-owner and unlocked, so every access to
// the map goes through Session.Do, which serializes callers.
//
// Sessions expire after a period of inactivity. The Store interface supports:
//   - Get/Set/Delete operations
//   - Sliding expiration on every successful Get
//   - Cleanup of expired sessions
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess, err := session.New(m, opts, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
//	err = sess.Do(func(m *treemap.Map) error {
//	    return m.Layout()
//	})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = time.Hour

// Session is one client's live treemap.
type Session struct {
	ID        string
	Options   pipeline.Options
	CreatedAt time.Time

	mu        sync.Mutex
	m         *treemap.Map
	ttl       time.Duration
	expiresAt time.Time
}

// New creates a session around m with a fresh random ID.
func New(m *treemap.Map, opts pipeline.Options, ttl time.Duration) (*Session, error) {
	if m == nil {
		return nil, errors.New("session: nil map")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id.String(),
		Options:   opts,
		CreatedAt: now,
		m:         m,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
	}, nil
}

// Do runs fn with exclusive access to the session's map.
func (s *Session) Do(fn func(m *treemap.Map) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.m)
}

// IsExpired returns true if the session has been idle past its TTL.
func (s *Session) IsExpired() bool {
	return s.isExpiredAt(time.Now())
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Touch pushes the expiry out by the session's TTL.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
}

func (s *Session) isExpiredAt(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.After(s.expiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and refreshes its expiry.
	// Returns ErrNotFound if the session doesn't exist, and ErrExpired
	// (removing the session) if it exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were dropped.
	Cleanup(ctx context.Context) (int, error)

	// Len returns the number of stored sessions.
	Len() int
}
