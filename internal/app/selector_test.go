package app

import (
	"context"
	"sync"
	"testing"

	"scramble-game-service/internal/domain"
)

type staticCatalog struct {
	questions []domain.Question
}

func (c *staticCatalog) ListQuestions(_ context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(c.questions))
	for _, q := range c.questions {
		if q.Mode == mode && q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeSeen struct {
	mu       sync.Mutex
	capacity int
	seen     map[string][]string
}

func newFakeSeen(capacity int) *fakeSeen {
	return &fakeSeen{capacity: capacity, seen: make(map[string][]string)}
}

func (s *fakeSeen) key(playerID string, mode domain.Mode, difficulty domain.Difficulty) string {
	return playerID + "/" + string(mode) + "/" + string(difficulty)
}

func (s *fakeSeen) Seen(_ context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen[s.key(playerID, mode, difficulty)]...), nil
}

func (s *fakeSeen) Record(_ context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(playerID, mode, difficulty)
	ids := append(s.seen[key], questionID)
	if s.capacity > 0 && len(ids) > s.capacity {
		ids = ids[len(ids)-s.capacity:]
	}
	s.seen[key] = ids
	return nil
}

func (s *fakeSeen) Clear(_ context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, s.key(playerID, mode, difficulty))
	return nil
}

func catalogOf(n int) *staticCatalog {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:         "q" + string(rune('a'+i)),
			Mode:       domain.ModeIdiom,
			Difficulty: domain.DifficultyEasy,
			Text:       "一心一意",
		})
	}
	return &staticCatalog{questions: questions}
}

func TestSelectExcludesSeen(t *testing.T) {
	ctx := context.Background()
	selector := NewContentSelector(catalogOf(3), newFakeSeen(10))

	picked := make(map[string]bool)
	for i := 0; i < 3; i++ {
		sel, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if sel.Exhausted {
			t.Fatalf("unexpected exhaustion at pick %d", i)
		}
		if picked[sel.Question.ID] {
			t.Fatalf("question %s repeated", sel.Question.ID)
		}
		picked[sel.Question.ID] = true
	}
}

func TestSelectExhaustedIsValueNotError(t *testing.T) {
	ctx := context.Background()
	selector := NewContentSelector(catalogOf(2), newFakeSeen(10))

	for i := 0; i < 2; i++ {
		if _, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy); err != nil {
			t.Fatalf("select: %v", err)
		}
	}

	sel, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if !sel.Exhausted {
		t.Fatalf("expected exhausted selection, got %+v", sel)
	}
}

func TestRestartMakesPoolSelectableAgain(t *testing.T) {
	ctx := context.Background()
	selector := NewContentSelector(catalogOf(1), newFakeSeen(10))

	if _, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy); err != nil {
		t.Fatalf("select: %v", err)
	}
	sel, _ := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy)
	if !sel.Exhausted {
		t.Fatalf("expected exhaustion")
	}

	if err := selector.Restart(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy); err != nil {
		t.Fatalf("restart: %v", err)
	}
	sel, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy)
	if err != nil || sel.Exhausted {
		t.Fatalf("expected pool selectable after restart, got %+v err=%v", sel, err)
	}
}

func TestBoundedSeenSetEvictsOldest(t *testing.T) {
	ctx := context.Background()
	// Capacity 2 on a 3-question pool: the pool can never exhaust because
	// the oldest pick keeps falling out of the window.
	selector := NewContentSelector(catalogOf(3), newFakeSeen(2))

	for i := 0; i < 10; i++ {
		sel, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if sel.Exhausted {
			t.Fatalf("pool must not exhaust with a sliding window")
		}
	}
}

func TestSeenSetsPerPlayer(t *testing.T) {
	ctx := context.Background()
	selector := NewContentSelector(catalogOf(1), newFakeSeen(10))

	if _, err := selector.Select(ctx, "p1", domain.ModeIdiom, domain.DifficultyEasy); err != nil {
		t.Fatalf("select: %v", err)
	}
	sel, err := selector.Select(ctx, "p2", domain.ModeIdiom, domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Exhausted {
		t.Fatalf("p2 must not inherit p1's seen set")
	}
}
