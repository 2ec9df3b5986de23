package memory

import (
	"context"
	"sync"

	"scramble-game-service/internal/domain"
)

// SeenStore is an in-memory implementation of app.SeenStore: a bounded
// ordered set per (player, mode, difficulty), oldest entry evicted first.
type SeenStore struct {
	capacity     int
	modeCapacity map[domain.Mode]int

	mu   sync.RWMutex
	seen map[seenKey][]string
}

type seenKey struct {
	playerID   string
	mode       domain.Mode
	difficulty domain.Difficulty
}

func NewSeenStore(capacity int) *SeenStore {
	return &SeenStore{
		capacity: capacity,
		seen:     make(map[seenKey][]string),
	}
}

// WithModeCapacity overrides the bound for one mode, e.g. a larger
// no-repeat window for sentence boards.
func (s *SeenStore) WithModeCapacity(mode domain.Mode, capacity int) *SeenStore {
	if s.modeCapacity == nil {
		s.modeCapacity = make(map[domain.Mode]int)
	}
	s.modeCapacity[mode] = capacity
	return s
}

func (s *SeenStore) capacityFor(mode domain.Mode) int {
	if limit, ok := s.modeCapacity[mode]; ok {
		return limit
	}
	return s.capacity
}

func (s *SeenStore) Seen(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.seen[seenKey{playerID, mode, difficulty}]
	return append([]string(nil), ids...), nil
}

func (s *SeenStore) Record(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := seenKey{playerID, mode, difficulty}
	ids := append(s.seen[key], questionID)
	if limit := s.capacityFor(mode); limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	s.seen[key] = ids
	return nil
}

func (s *SeenStore) Clear(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, seenKey{playerID, mode, difficulty})
	return nil
}
