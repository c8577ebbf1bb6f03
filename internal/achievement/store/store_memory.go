package store

import (
	"context"
	"sync"
	"time"

	"laurel/internal/achievement/models"
)

// InMemory keeps the registry sequence in process memory. It intentionally
// favors clarity over performance and simulates the host's TTL reclamation
// so expiry semantics stay testable without a real backing store.
type InMemory struct {
	mu       sync.RWMutex
	records  []models.Achievement
	written  bool
	deadline time.Time
	cfg      TTLConfig
	now      func() time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithNowFunc substitutes the store's clock. Tests use this to step time
// past the TTL deadline deterministically.
func WithNowFunc(now func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		s.now = now
	}
}

// NewInMemory constructs an in-memory registry store.
func NewInMemory(cfg TTLConfig, opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemory) Load(_ context.Context) ([]models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reclaimIfExpired()
	if !s.written {
		return nil, nil
	}
	return append([]models.Achievement{}, s.records...), nil
}

func (s *InMemory) Replace(_ context.Context, records []models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reclaimIfExpired()
	s.records = append([]models.Achievement{}, records...)
	s.written = true
	return nil
}

func (s *InMemory) ExtendTTL(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reclaimIfExpired()
	if !s.written {
		return nil
	}
	now := s.now()
	if s.deadline.IsZero() || s.deadline.Sub(now) < s.cfg.Threshold {
		s.deadline = now.Add(s.cfg.Extension)
	}
	return nil
}

// Deadline exposes the simulated reclamation deadline. Zero means the entry
// has never been given a lifetime. Test-facing.
func (s *InMemory) Deadline() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deadline
}

// reclaimIfExpired destroys the entry once its deadline has passed, the way
// the host reclaims unrenewed storage. Must be called with s.mu held.
func (s *InMemory) reclaimIfExpired() {
	if s.written && !s.deadline.IsZero() && s.now().After(s.deadline) {
		s.records = nil
		s.written = false
		s.deadline = time.Time{}
	}
}
