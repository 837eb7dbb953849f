package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmuhire/parkgate/internal/parking/types"
)

// ViolationStore is an in-memory append-only log of unauthorized attempts.
// Intended for tests and dev environments.
type ViolationStore struct {
	mu      sync.Mutex
	records []types.Violation
}

func NewViolationStore() *ViolationStore {
	return &ViolationStore{}
}

func (s *ViolationStore) Append(_ context.Context, rec types.Violation) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *ViolationStore) List(_ context.Context) ([]types.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Violation, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
