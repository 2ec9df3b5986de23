package memory

import (
	"context"
	"sync"
	"time"

	"scramble-game-service/internal/domain"
)

// RoundStore is an in-memory implementation of app.RoundStore. One mutex
// guards the round table and the active-per-player index together, which
// makes Create's implicit abandonment atomic with respect to every other
// transition.
type RoundStore struct {
	clock func() time.Time

	mu     sync.Mutex
	rounds map[string]*domain.Round
	active map[string]string // playerID -> active round id
}

func NewRoundStore() *RoundStore {
	return NewRoundStoreWithClock(time.Now)
}

// NewRoundStoreWithClock allows deterministic timestamps in tests.
func NewRoundStoreWithClock(clock func() time.Time) *RoundStore {
	return &RoundStore{
		clock:  clock,
		rounds: make(map[string]*domain.Round),
		active: make(map[string]string),
	}
}

// Create stores the round as the player's active round. Any prior active
// round for the player is abandoned first: last writer wins.
func (s *RoundStore) Create(ctx context.Context, round domain.Round) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prevID, ok := s.active[round.PlayerID]; ok {
		if prev, ok := s.rounds[prevID]; ok && prev.Status == domain.RoundActive {
			prev.Status = domain.RoundAbandoned
			prev.CompletedAt = s.clock()
			prev.Duration = prev.CompletedAt.Sub(prev.StartedAt)
		}
	}

	stored := round
	s.rounds[stored.ID] = &stored
	s.active[stored.PlayerID] = stored.ID
	return cloneRound(&stored), nil
}

func (s *RoundStore) Get(ctx context.Context, roundID string) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[roundID]
	if !ok {
		return domain.Round{}, domain.ErrNotFound
	}
	return cloneRound(round), nil
}

func (s *RoundStore) ActiveFor(ctx context.Context, playerID string) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roundID, ok := s.active[playerID]
	if !ok {
		return domain.Round{}, domain.ErrNotFound
	}
	round, ok := s.rounds[roundID]
	if !ok || round.Status != domain.RoundActive {
		return domain.Round{}, domain.ErrNotFound
	}
	return cloneRound(round), nil
}

// AddHint appends a hint record and returns the new hint count. Levels
// must stay within 1-3 and strictly increase within the round.
func (s *RoundStore) AddHint(ctx context.Context, roundID string, hint domain.HintRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if round.Status != domain.RoundActive {
		return 0, domain.ErrInvalidState
	}
	if len(round.Hints) >= domain.MaxHintsPerRound {
		return 0, domain.ErrHintBudgetExceeded
	}
	if hint.Level < 1 || hint.Level > domain.MaxHintsPerRound || hint.Level <= round.HighestHintLevel() {
		return 0, domain.ErrValidationFailed
	}

	round.Hints = append(round.Hints, hint)
	return len(round.Hints), nil
}

// Complete transitions the round to Completed, recording the score and the
// server-observed duration. Fails on any non-active round.
func (s *RoundStore) Complete(ctx context.Context, roundID string, score int) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return domain.Round{}, domain.ErrNotFound
	}
	if round.Status != domain.RoundActive {
		return domain.Round{}, domain.ErrInvalidState
	}

	round.Status = domain.RoundCompleted
	round.Score = score
	round.CompletedAt = s.clock()
	round.Duration = round.CompletedAt.Sub(round.StartedAt)
	s.clearActiveLocked(round)
	return cloneRound(round), nil
}

// Abandon is an idempotent no-op on terminal rounds.
func (s *RoundStore) Abandon(ctx context.Context, roundID string) error {
	return s.terminate(roundID, domain.RoundAbandoned)
}

// Expire is an idempotent no-op on terminal rounds.
func (s *RoundStore) Expire(ctx context.Context, roundID string) error {
	return s.terminate(roundID, domain.RoundExpired)
}

func (s *RoundStore) terminate(roundID string, status domain.RoundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return domain.ErrNotFound
	}
	if round.Status.Terminal() {
		return nil
	}
	round.Status = status
	round.CompletedAt = s.clock()
	round.Duration = round.CompletedAt.Sub(round.StartedAt)
	s.clearActiveLocked(round)
	return nil
}

// SweepStale expires every active round started before the cutoff and
// returns how many were swept. Safe to run concurrently with foreground
// operations; the shared mutex makes each transition a compare-and-swap.
func (s *RoundStore) SweepStale(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for _, roundID := range s.active {
		round, ok := s.rounds[roundID]
		if !ok || round.Status != domain.RoundActive {
			continue
		}
		if round.StartedAt.Before(cutoff) {
			round.Status = domain.RoundExpired
			round.CompletedAt = s.clock()
			round.Duration = round.CompletedAt.Sub(round.StartedAt)
			swept++
		}
	}
	for playerID, roundID := range s.active {
		if round, ok := s.rounds[roundID]; !ok || round.Status != domain.RoundActive {
			delete(s.active, playerID)
		}
	}
	return swept, nil
}

func (s *RoundStore) clearActiveLocked(round *domain.Round) {
	if s.active[round.PlayerID] == round.ID {
		delete(s.active, round.PlayerID)
	}
}

// cloneRound hands callers an independent copy so no caller can mutate
// stored state outside the lock.
func cloneRound(round *domain.Round) domain.Round {
	out := *round
	out.Hints = append([]domain.HintRecord(nil), round.Hints...)
	out.Scrambled = append([]string(nil), round.Scrambled...)
	out.TargetTokens = append([]string(nil), round.TargetTokens...)
	out.AllowedTokens = append([]string(nil), round.AllowedTokens...)
	return out
}
