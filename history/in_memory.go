package history

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store implementation keeping turns in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo deployments.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn // sessionID -> turns in append order
}

// NewInMemoryStore constructs an empty in-memory turn store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{turns: make(map[string][]Turn)}
}

// Recent returns up to limit turns for a role, most-recent-first.
func (s *InMemoryStore) Recent(ctx context.Context, sessionID string, role Role, limit int) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Turn
	all := s.turns[sessionID]
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Role == role {
			out = append(out, all[i])
		}
	}

	return out, nil
}

// Append adds turns in order, stamping CreatedAt when unset.
func (s *InMemoryStore) Append(ctx context.Context, turns ...Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		s.turns[t.SessionID] = append(s.turns[t.SessionID], t)
	}

	return nil
}
