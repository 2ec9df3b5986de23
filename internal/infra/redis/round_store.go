package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"scramble-game-service/internal/app"
	"scramble-game-service/internal/domain"
)

// RoundStore decorates an in-process app.RoundStore with redis liveness
// markers per player. Notes:
//   - Round state itself stays in the inner store; redis marks which
//     players currently hold an active round (and when it expires).
//   - For true distribution you'd move the round table into redis hashes
//     and drive the CAS transitions with WATCH/MULTI.
type RoundStore struct {
	inner  app.RoundStore
	client *redis.Client
	ttl    time.Duration
}

func NewRoundStore(inner app.RoundStore, client *redis.Client, ttl time.Duration) *RoundStore {
	return &RoundStore{inner: inner, client: client, ttl: ttl}
}

func (s *RoundStore) Create(ctx context.Context, round domain.Round) (domain.Round, error) {
	created, err := s.inner.Create(ctx, round)
	if err != nil {
		return domain.Round{}, err
	}
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(created.PlayerID), created.ID, s.ttl).Err()
	return created, nil
}

func (s *RoundStore) Get(ctx context.Context, roundID string) (domain.Round, error) {
	return s.inner.Get(ctx, roundID)
}

func (s *RoundStore) ActiveFor(ctx context.Context, playerID string) (domain.Round, error) {
	return s.inner.ActiveFor(ctx, playerID)
}

func (s *RoundStore) AddHint(ctx context.Context, roundID string, hint domain.HintRecord) (int, error) {
	return s.inner.AddHint(ctx, roundID, hint)
}

func (s *RoundStore) Complete(ctx context.Context, roundID string, score int) (domain.Round, error) {
	completed, err := s.inner.Complete(ctx, roundID, score)
	if err != nil {
		return domain.Round{}, err
	}
	_ = s.client.Del(ctx, s.key(completed.PlayerID)).Err()
	return completed, nil
}

func (s *RoundStore) Abandon(ctx context.Context, roundID string) error {
	return s.dropMarker(ctx, roundID, s.inner.Abandon)
}

func (s *RoundStore) Expire(ctx context.Context, roundID string) error {
	return s.dropMarker(ctx, roundID, s.inner.Expire)
}

func (s *RoundStore) dropMarker(ctx context.Context, roundID string, transition func(context.Context, string) error) error {
	round, err := s.inner.Get(ctx, roundID)
	if err != nil {
		return err
	}
	if err := transition(ctx, roundID); err != nil {
		return err
	}
	_ = s.client.Del(ctx, s.key(round.PlayerID)).Err()
	return nil
}

func (s *RoundStore) SweepStale(ctx context.Context, cutoff time.Time) (int, error) {
	// Stale markers carry their own TTL; the inner sweep is authoritative.
	return s.inner.SweepStale(ctx, cutoff)
}

func (s *RoundStore) key(playerID string) string {
	return "round:active:" + playerID
}
