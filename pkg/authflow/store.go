package authflow

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/muesli/cache2go"
)

const (
	// StateTTL is the window in which a pending authorization must be
	// consumed by its callback.
	StateTTL = 10 * time.Minute

	// DefaultSweepInterval is how often the reaper evicts abandoned flows.
	DefaultSweepInterval = 10 * time.Minute

	// stateTokenBytes sets state-token entropy: 32 bytes is 256 bits,
	// comfortably above the 128-bit floor for CSRF tokens.
	stateTokenBytes = 32

	defaultStateCacheName = "pending-authorizations"
)

// PendingAuthorization correlates an authorization redirect with its
// callback. Read-once: consuming it removes it.
type PendingAuthorization struct {
	State           string
	RequestedScopes []string
	CreatedAt       time.Time
}

// Store tracks pending authorizations between redirect and callback. The
// in-memory implementation below is the default; the interface exists so a
// distributed store can replace it without touching the exchange client.
type Store interface {
	// CreatePending stores a new pending authorization and returns its
	// unguessable state token.
	CreatePending(requestedScopes []string) (string, error)

	// ConsumePending atomically looks up and removes the entry for state.
	// Returns ErrInvalidState when absent and ErrExpiredState when present
	// but older than StateTTL; the entry is removed either way.
	ConsumePending(state string) (*PendingAuthorization, error)

	// Sweep evicts entries older than StateTTL and reports how many were
	// removed.
	Sweep() int
}

// MemoryStore is a Store backed by a cache2go table. The table's delete is
// a single locked lookup-and-remove, which gives ConsumePending its
// compare-and-delete atomicity: two racing callbacks can never both observe
// the same pending entry.
type MemoryStore struct {
	table         *cache2go.CacheTable
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// StoreOption configures a MemoryStore at construction time.
type StoreOption func(*MemoryStore)

// WithTTL overrides the pending-authorization expiry window.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval overrides how often the reaper runs.
func WithSweepInterval(interval time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source. This option is intended for tests
// that need deterministic expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCacheName overrides the cache table name. This option is intended for
// tests that need isolated store instances.
func WithCacheName(name string) StoreOption {
	return func(s *MemoryStore) {
		if name != "" {
			s.table = cache2go.Cache(name)
		}
	}
}

// WithStoreLogger sets the logger used for store diagnostics.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// NewMemoryStore creates a MemoryStore and starts its background reaper.
// Call Close to stop the reaper.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		table:         cache2go.Cache(defaultStateCacheName),
		ttl:           StateTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	go s.reap()
	return s
}

// Close stops the background reaper. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// CreatePending implements Store.
func (s *MemoryStore) CreatePending(requestedScopes []string) (string, error) {
	// Entries carry no cache lifespan: expiry is enforced on consume and by
	// the reaper so an expired-but-present state is distinguishable from an
	// unknown one.
	for {
		state, err := newStateToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate state token: %w", err)
		}

		pending := &PendingAuthorization{
			State:           state,
			RequestedScopes: requestedScopes,
			CreatedAt:       s.now(),
		}
		if s.table.NotFoundAdd(state, 0, pending) {
			s.logDebug("pending authorization created", "scopes", len(requestedScopes))
			return state, nil
		}
		// 256-bit collision; practically unreachable, but never overwrite a
		// live entry.
	}
}

// ConsumePending implements Store.
func (s *MemoryStore) ConsumePending(state string) (*PendingAuthorization, error) {
	item, err := s.table.Delete(state)
	if err != nil {
		return nil, ErrInvalidState
	}

	pending, ok := item.Data().(*PendingAuthorization)
	if !ok {
		return nil, ErrInvalidState
	}

	if s.now().Sub(pending.CreatedAt) > s.ttl {
		s.logDebug("pending authorization expired at consume")
		return nil, ErrExpiredState
	}

	return pending, nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	var expired []string
	s.table.Foreach(func(key any, item *cache2go.CacheItem) {
		pending, ok := item.Data().(*PendingAuthorization)
		if !ok {
			return
		}
		if pending.CreatedAt.Before(cutoff) {
			if state, ok := key.(string); ok {
				expired = append(expired, state)
			}
		}
	})

	evicted := 0
	for _, state := range expired {
		if _, err := s.table.Delete(state); err == nil {
			evicted++
		}
	}
	if evicted > 0 {
		s.logDebug("reaper evicted abandoned authorizations", "count", evicted)
	}
	return evicted
}

func (s *MemoryStore) reap() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

func newStateToken() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *MemoryStore) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
