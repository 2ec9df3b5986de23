package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"scramble-game-service/internal/domain"
)

// BoardKey identifies one leaderboard.
type BoardKey struct {
	Mode       domain.Mode
	Difficulty domain.Difficulty
}

// LeaderboardStore persists per-player aggregates. List must return
// entries in a stable order (insertion order) so tie-breaking is
// reproducible across recomputations.
type LeaderboardStore interface {
	Get(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (domain.LeaderboardEntry, bool, error)
	Put(ctx context.Context, entry domain.LeaderboardEntry) error
	List(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error)
	Keys(ctx context.Context) ([]BoardKey, error)
}

// RankingEngine maintains per-board totals and dense competition ranks.
// All mutation of one board is serialized behind a per-board lock so an
// Update cannot interleave with a recompute of the same board; distinct
// boards proceed independently.
type RankingEngine struct {
	store LeaderboardStore
	clock func() time.Time

	mu    sync.Mutex
	locks map[BoardKey]*sync.Mutex
}

func NewRankingEngine(store LeaderboardStore) *RankingEngine {
	return NewRankingEngineWithClock(store, time.Now)
}

// NewRankingEngineWithClock allows deterministic timestamps in tests.
func NewRankingEngineWithClock(store LeaderboardStore, clock func() time.Time) *RankingEngine {
	return &RankingEngine{
		store: store,
		clock: clock,
		locks: make(map[BoardKey]*sync.Mutex),
	}
}

func (e *RankingEngine) boardLock(key BoardKey) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}

// Update folds one completed round into the player's entry and recomputes
// the board's ranks.
func (e *RankingEngine) Update(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty, score int, accuracy float64) error {
	key := BoardKey{Mode: mode, Difficulty: difficulty}
	lock := e.boardLock(key)
	lock.Lock()
	defer lock.Unlock()

	now := e.clock()
	entry, ok, err := e.store.Get(ctx, playerID, mode, difficulty)
	if err != nil {
		return err
	}
	if !ok {
		entry = domain.LeaderboardEntry{
			PlayerID:   playerID,
			Mode:       mode,
			Difficulty: difficulty,
		}
	}

	entry.GamesPlayed++
	entry.TotalScore += score
	entry.AverageScore = float64(entry.TotalScore) / float64(entry.GamesPlayed)
	// Incremental running mean keeps accuracy exact without a history scan.
	entry.AverageAccuracy += (accuracy - entry.AverageAccuracy) / float64(entry.GamesPlayed)
	entry.UpdatedAt = now

	if err := e.store.Put(ctx, entry); err != nil {
		return err
	}
	return e.recomputeLocked(ctx, mode, difficulty)
}

// RecomputeRanks reassigns dense ranks for one board from scratch.
func (e *RankingEngine) RecomputeRanks(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) error {
	lock := e.boardLock(BoardKey{Mode: mode, Difficulty: difficulty})
	lock.Lock()
	defer lock.Unlock()
	return e.recomputeLocked(ctx, mode, difficulty)
}

func (e *RankingEngine) recomputeLocked(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) error {
	entries, err := e.store.List(ctx, mode, difficulty)
	if err != nil {
		return err
	}
	sortBoard(entries)
	assignDenseRanks(entries)
	for _, entry := range entries {
		if err := e.store.Put(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeAll is the consistency backstop: a full sweep across every
// known board.
func (e *RankingEngine) RecomputeAll(ctx context.Context) error {
	keys, err := e.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := e.RecomputeRanks(ctx, key.Mode, key.Difficulty); err != nil {
			return err
		}
	}
	return nil
}

// TopN returns the board's best n entries in rank order.
func (e *RankingEngine) TopN(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, n int) ([]domain.LeaderboardEntry, error) {
	entries, err := e.store.List(ctx, mode, difficulty)
	if err != nil {
		return nil, err
	}
	sortBoard(entries)
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// PositionOf returns the player's entry on one board.
func (e *RankingEngine) PositionOf(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (domain.LeaderboardEntry, error) {
	entry, ok, err := e.store.Get(ctx, playerID, mode, difficulty)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if !ok {
		return domain.LeaderboardEntry{}, domain.ErrNotFound
	}
	return entry, nil
}

func sortBoard(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
}

// assignDenseRanks implements dense competition ranking over a sorted
// board: equal totals share a rank and the next distinct total takes its
// 1-based position ("1,1,3", not "1,1,2").
func assignDenseRanks(entries []domain.LeaderboardEntry) {
	for i := range entries {
		if i > 0 && entries[i].TotalScore == entries[i-1].TotalScore {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
}
