package memory

import (
	"context"
	"sync"

	"scramble-game-service/internal/app"
	"scramble-game-service/internal/domain"
)

// LeaderboardStore is an in-memory implementation of app.LeaderboardStore.
// List returns entries in first-seen order so recomputation tie-breaking
// stays reproducible.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[app.BoardKey]map[string]domain.LeaderboardEntry
	order   map[app.BoardKey][]string
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{
		entries: make(map[app.BoardKey]map[string]domain.LeaderboardEntry),
		order:   make(map[app.BoardKey][]string),
	}
}

func (s *LeaderboardStore) Get(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (domain.LeaderboardEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[app.BoardKey{Mode: mode, Difficulty: difficulty}][playerID]
	return entry, ok, nil
}

func (s *LeaderboardStore) Put(ctx context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := app.BoardKey{Mode: entry.Mode, Difficulty: entry.Difficulty}
	board, ok := s.entries[key]
	if !ok {
		board = make(map[string]domain.LeaderboardEntry)
		s.entries[key] = board
	}
	if _, exists := board[entry.PlayerID]; !exists {
		s.order[key] = append(s.order[key], entry.PlayerID)
	}
	board[entry.PlayerID] = entry
	return nil
}

func (s *LeaderboardStore) List(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := app.BoardKey{Mode: mode, Difficulty: difficulty}
	board := s.entries[key]
	out := make([]domain.LeaderboardEntry, 0, len(board))
	for _, playerID := range s.order[key] {
		if entry, ok := board[playerID]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *LeaderboardStore) Keys(ctx context.Context) ([]app.BoardKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]app.BoardKey, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys, nil
}
