// Package ui holds the owned singleton presentation stores: the bounded
// toast list and the success modal. Each store is constructed once at
// startup and is the only mutator of its own state.
package ui

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/subops/console-realtime/internal/core/domain"
)

// DefaultToastDuration is used when a toast is shown without one.
const DefaultToastDuration = 5 * time.Second

// ToastStore keeps the visible toasts in insertion order, bounded by
// capacity with oldest-first eviction. A toast leaves the list exactly once:
// by timer, by dismiss/click, or by eviction.
type ToastStore struct {
	mu       sync.Mutex
	capacity int
	toasts   []domain.Toast
	timers   map[string]*time.Timer
	onChange []func([]domain.Toast)
	logger   *slog.Logger
}

func NewToastStore(capacity int, logger *slog.Logger) *ToastStore {
	return &ToastStore{
		capacity: capacity,
		timers:   make(map[string]*time.Timer),
		logger:   logger.With("component", "toast_store"),
	}
}

// Show adds a toast, evicting the oldest if the list is full, and arms its
// auto-dismiss timer. Returns the toast id.
func (s *ToastStore) Show(t domain.Toast) string {
	s.mu.Lock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Duration <= 0 {
		t.Duration = DefaultToastDuration
	}
	t.CreatedAt = time.Now()

	for len(s.toasts) >= s.capacity {
		evicted := s.toasts[0]
		s.toasts = s.toasts[1:]
		s.stopTimer(evicted.ID)
		s.logger.Debug("toast evicted", "toast_id", evicted.ID)
	}

	s.toasts = append(s.toasts, t)
	id := t.ID
	s.timers[id] = time.AfterFunc(t.Duration, func() { s.Dismiss(id) })

	snapshot := s.snapshot()
	listeners := append(([]func([]domain.Toast))(nil), s.onChange...)
	s.mu.Unlock()

	s.notify(listeners, snapshot)
	return id
}

// Dismiss removes a toast by id. Unknown ids are a no-op, so the timer,
// a click and an explicit dismiss can race harmlessly.
func (s *ToastStore) Dismiss(id string) {
	s.mu.Lock()

	removed := false
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			removed = true
			break
		}
	}
	s.stopTimer(id)

	if !removed {
		s.mu.Unlock()
		return
	}

	snapshot := s.snapshot()
	listeners := append(([]func([]domain.Toast))(nil), s.onChange...)
	s.mu.Unlock()

	s.notify(listeners, snapshot)
}

// Click runs the toast's click handler, then dismisses it.
func (s *ToastStore) Click(id string) {
	s.mu.Lock()
	var onClick func()
	for _, t := range s.toasts {
		if t.ID == id {
			onClick = t.OnClick
			break
		}
	}
	s.mu.Unlock()

	if onClick != nil {
		onClick()
	}
	s.Dismiss(id)
}

// Active returns the visible toasts in insertion order.
func (s *ToastStore) Active() []domain.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of visible toasts.
func (s *ToastStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// OnChange registers a listener invoked with a snapshot after every
// mutation. Listeners run outside the store lock, so they may call back
// into the store.
func (s *ToastStore) OnChange(fn func([]domain.Toast)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Close stops all pending timers.
func (s *ToastStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.toasts = nil
}

func (s *ToastStore) stopTimer(id string) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *ToastStore) snapshot() []domain.Toast {
	out := make([]domain.Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

func (s *ToastStore) notify(listeners []func([]domain.Toast), snapshot []domain.Toast) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
