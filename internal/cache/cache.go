// Package cache is a key-addressed query cache. The realtime core only ever
// marks entries stale; reads re-fetch stale entries from the backend and
// concurrent fetches for one key are de-duplicated.
package cache

import (
	"context"
	"log/slog"
	"sync"
)

// Well-known query keys.
const (
	KeyBalance                  = "balance"
	KeyTransactions             = "transactions"
	KeySubscription             = "subscription"
	KeyReferralStats            = "referral-stats"
	KeyUser                     = "user"
	KeyTicketNotifications      = "ticket-notifications"
	KeyAdminTicketNotifications = "admin-ticket-notifications"
)

type entry struct {
	value    any
	valid    bool
	inflight chan struct{} // non-nil while a fetch for this key is running
	err      error
}

// Store holds cached query results keyed by string.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger.With("component", "cache"),
	}
}

// Invalidate marks the given keys stale. Marking is idempotent: repeated
// invalidation of the same key, or of a key never fetched, is safe.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if e, ok := s.entries[key]; ok && e.valid {
			e.valid = false
			s.logger.Debug("cache key invalidated", "key", key)
		}
	}
}

// Get returns the cached value for key, fetching it if the entry is absent
// or stale. If a fetch for the key is already in flight, Get waits for it
// instead of issuing another.
func (s *Store) Get(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			e = &entry{}
			s.entries[key] = e
		}

		if e.valid {
			value := e.value
			s.mu.Unlock()
			return value, nil
		}

		if e.inflight != nil {
			wait := e.inflight
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-wait:
			}
			// Re-check: the fetch may have failed or the entry may have
			// been invalidated again.
			s.mu.Lock()
			if e.valid {
				value := e.value
				s.mu.Unlock()
				return value, nil
			}
			if e.err != nil {
				err := e.err
				s.mu.Unlock()
				return nil, err
			}
			s.mu.Unlock()
			continue
		}

		ch := make(chan struct{})
		e.inflight = ch
		s.mu.Unlock()

		value, err := fetch(ctx)

		s.mu.Lock()
		e.inflight = nil
		e.err = err
		if err == nil {
			e.value = value
			e.valid = true
		}
		s.mu.Unlock()
		close(ch)

		return value, err
	}
}

// Set stores a value directly, marking the entry fresh.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.value = value
	e.valid = true
	e.err = nil
}

// Peek returns the cached value without fetching. The second return is
// false when the entry is absent or stale.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.valid {
		return e.value, true
	}
	return nil, false
}
