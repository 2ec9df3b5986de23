package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scramble-game-service/internal/app"
)

// Scheduler owns the two periodic maintenance tasks: expiring stale active
// rounds and the full leaderboard recompute backstop. Failures are logged
// and retried on the next tick; they never reach foreground callers.
type Scheduler struct {
	rounds  app.RoundStore
	ranking *app.RankingEngine
	logger  zerolog.Logger
	clock   func() time.Time

	roundTimeout   time.Duration
	sweepEvery     time.Duration
	recomputeEvery time.Duration
}

func NewScheduler(rounds app.RoundStore, ranking *app.RankingEngine, roundTimeout, sweepEvery, recomputeEvery time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		rounds:         rounds,
		ranking:        ranking,
		logger:         logger,
		clock:          time.Now,
		roundTimeout:   roundTimeout,
		sweepEvery:     sweepEvery,
		recomputeEvery: recomputeEvery,
	}
}

// WithClock is test-only for deterministic cutoffs.
func (s *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	s.clock = clock
	return s
}

// Run blocks until ctx is cancelled, firing the sweep and recompute
// tickers.
func (s *Scheduler) Run(ctx context.Context) {
	sweep := time.NewTicker(s.sweepEvery)
	defer sweep.Stop()
	recompute := time.NewTicker(s.recomputeEvery)
	defer recompute.Stop()

	s.logger.Info().
		Dur("sweepEvery", s.sweepEvery).
		Dur("recomputeEvery", s.recomputeEvery).
		Dur("roundTimeout", s.roundTimeout).
		Msg("scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-sweep.C:
			s.SweepOnce(ctx)
		case <-recompute.C:
			s.RecomputeOnce(ctx)
		}
	}
}

// SweepOnce expires every active round older than the round timeout.
func (s *Scheduler) SweepOnce(ctx context.Context) {
	cutoff := s.clock().Add(-s.roundTimeout)
	swept, err := s.rounds.SweepStale(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("stale round sweep failed")
		return
	}
	if swept > 0 {
		s.logger.Info().Int("swept", swept).Msg("expired stale rounds")
	}
}

// RecomputeOnce runs the full rank recompute across all boards.
func (s *Scheduler) RecomputeOnce(ctx context.Context) {
	if err := s.ranking.RecomputeAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("full rank recompute failed")
		return
	}
	s.logger.Info().Msg("full rank recompute done")
}
