package ui

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/subops/console-realtime/internal/core/domain"
)

// ModalStore is the singleton success-modal state. At most one modal is
// open; showing a new outcome while one is visible replaces the data in
// place. Every Show also bumps the close-others signal, telling any other
// transient overlay (a payment sheet, a confirmation dialog) to close so a
// primary outcome is never stacked under lesser UI.
type ModalStore struct {
	mu      sync.Mutex
	open    bool
	data    *domain.SuccessOutcome
	signal  uint64
	closers map[uuid.UUID]func()
	logger  *slog.Logger
}

func NewModalStore(logger *slog.Logger) *ModalStore {
	return &ModalStore{
		closers: make(map[uuid.UUID]func()),
		logger:  logger.With("component", "modal_store"),
	}
}

// Show opens the modal with the given outcome, replacing any outcome
// already displayed, and signals registered overlays to close themselves.
func (s *ModalStore) Show(outcome domain.SuccessOutcome) {
	s.mu.Lock()
	s.open = true
	s.data = &outcome
	s.signal++

	closers := make([]func(), 0, len(s.closers))
	for _, fn := range s.closers {
		closers = append(closers, fn)
	}
	s.mu.Unlock()

	s.logger.Debug("success modal shown", "kind", outcome.Kind)

	for _, fn := range closers {
		fn()
	}
}

// Hide closes the modal. Open and data always clear together.
func (s *ModalStore) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.data = nil
}

// State returns whether the modal is open and, if so, a copy of its data.
func (s *ModalStore) State() (bool, *domain.SuccessOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.data == nil {
		return false, nil
	}
	data := *s.data
	return true, &data
}

// CloseOthersSignal returns the monotonically increasing signal counter.
func (s *ModalStore) CloseOthersSignal() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signal
}

// OnCloseOthers registers an overlay's close function, invoked on every
// Show. The store never learns what the overlay is. Returns an unregister
// function that is safe to call more than once.
func (s *ModalStore) OnCloseOthers(fn func()) (unregister func()) {
	id := uuid.New()

	s.mu.Lock()
	s.closers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.closers, id)
			s.mu.Unlock()
		})
	}
}
