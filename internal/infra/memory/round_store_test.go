package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"scramble-game-service/internal/domain"
)

func activeRound(id, player string, startedAt time.Time) domain.Round {
	return domain.Round{
		ID:         id,
		PlayerID:   player,
		Mode:       domain.ModeIdiom,
		Difficulty: domain.DifficultyEasy,
		Target:     "一心一意",
		Status:     domain.RoundActive,
		StartedAt:  startedAt,
	}
}

func TestCreateAbandonsPriorActiveRound(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()
	now := time.Now()

	if _, err := store.Create(ctx, activeRound("r1", "p1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, activeRound("r2", "p1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	old, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if old.Status != domain.RoundAbandoned {
		t.Fatalf("expected r1 abandoned, got %s", old.Status)
	}

	active, err := store.ActiveFor(ctx, "p1")
	if err != nil {
		t.Fatalf("activeFor: %v", err)
	}
	if active.ID != "r2" {
		t.Fatalf("expected r2 active, got %s", active.ID)
	}
}

func TestCompleteIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Complete(ctx, "r1", 100); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.Complete(ctx, "r1", 200); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state on second complete, got %v", err)
	}

	round, _ := store.Get(ctx, "r1")
	if round.Score != 100 {
		t.Fatalf("second complete must not overwrite score, got %d", round.Score)
	}
}

func TestHintRules(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	for level := 1; level <= 3; level++ {
		count, err := store.AddHint(ctx, "r1", domain.HintRecord{Level: level, Penalty: level * 10})
		if err != nil {
			t.Fatalf("hint %d: %v", level, err)
		}
		if count != level {
			t.Fatalf("expected count %d, got %d", level, count)
		}
	}
	if _, err := store.AddHint(ctx, "r1", domain.HintRecord{Level: 3}); !errors.Is(err, domain.ErrHintBudgetExceeded) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
}

func TestHintLevelMustIncrease(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.AddHint(ctx, "r1", domain.HintRecord{Level: 2}); err != nil {
		t.Fatalf("hint: %v", err)
	}
	for _, level := range []int{0, 1, 2, 4} {
		if _, err := store.AddHint(ctx, "r1", domain.HintRecord{Level: level}); !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("expected validation failure for level %d, got %v", level, err)
		}
	}
}

func TestHintOnClosedRound(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Complete(ctx, "r1", 0); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.AddHint(ctx, "r1", domain.HintRecord{Level: 1}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestAbandonAndExpireIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Abandon(ctx, "r1"); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	// Terminal rounds absorb further transitions silently.
	if err := store.Abandon(ctx, "r1"); err != nil {
		t.Fatalf("second abandon: %v", err)
	}
	if err := store.Expire(ctx, "r1"); err != nil {
		t.Fatalf("expire after abandon: %v", err)
	}
	round, _ := store.Get(ctx, "r1")
	if round.Status != domain.RoundAbandoned {
		t.Fatalf("terminal status must not change, got %s", round.Status)
	}
}

func TestSweepStale(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()
	now := time.Now()

	if _, err := store.Create(ctx, activeRound("old", "p1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, activeRound("fresh", "p2", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	swept, err := store.SweepStale(ctx, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept, got %d", swept)
	}

	old, _ := store.Get(ctx, "old")
	if old.Status != domain.RoundExpired {
		t.Fatalf("expected old expired, got %s", old.Status)
	}
	if _, err := store.ActiveFor(ctx, "p2"); err != nil {
		t.Fatalf("fresh round must stay active: %v", err)
	}
}

func TestSingleActiveRoundUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			round := activeRound("", "p1", time.Now())
			round.ID = "r" + string(rune('0'+i%10)) + string(rune('a'+i/10))
			_, _ = store.Create(ctx, round)
		}(i)
	}
	wg.Wait()

	active, err := store.ActiveFor(ctx, "p1")
	if err != nil {
		t.Fatalf("activeFor: %v", err)
	}
	count := 0
	for i := 0; i < 50; i++ {
		id := "r" + string(rune('0'+i%10)) + string(rune('a'+i/10))
		round, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if round.Status == domain.RoundActive {
			count++
			if round.ID != active.ID {
				t.Fatalf("active index disagrees with round table")
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one active round, got %d", count)
	}
}

func TestCompleteRacingCreate(t *testing.T) {
	ctx := context.Background()
	store := NewRoundStore()

	if _, err := store.Create(ctx, activeRound("r1", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, activeRound("r2", "p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	// r1 was superseded; completing it must fail rather than silently
	// mutate an abandoned round.
	if _, err := store.Complete(ctx, "r1", 500); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}
