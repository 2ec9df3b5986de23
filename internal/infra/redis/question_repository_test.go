package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"scramble-game-service/internal/domain"
)

type countingLoader struct {
	calls int32
}

func (l *countingLoader) ListQuestions(_ context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	atomic.AddInt32(&l.calls, 1)
	return []domain.Question{{
		ID:         "q1",
		Mode:       mode,
		Difficulty: difficulty,
		Text:       "一心一意",
		Meta:       domain.QuestionMeta{Definition: "wholeheartedly"},
	}}, nil
}

func TestQuestionRepositoryCacheHit(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	repo := NewQuestionRepository(testClient(t), loader, time.Minute)

	for i := 0; i < 3; i++ {
		questions, err := repo.ListQuestions(ctx, domain.ModeIdiom, domain.DifficultyEasy)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(questions) != 1 || questions[0].ID != "q1" {
			t.Fatalf("unexpected catalog: %+v", questions)
		}
		if questions[0].Meta.Definition != "wholeheartedly" {
			t.Fatalf("metadata lost through the cache: %+v", questions[0])
		}
	}
	if got := atomic.LoadInt32(&loader.calls); got != 1 {
		t.Fatalf("expected 1 loader call, got %d", got)
	}
}

func TestQuestionRepositoryInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	repo := NewQuestionRepository(testClient(t), loader, time.Minute)

	if _, err := repo.ListQuestions(ctx, domain.ModeSentence, domain.DifficultyHard); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := repo.Invalidate(ctx, domain.ModeSentence, domain.DifficultyHard); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := repo.ListQuestions(ctx, domain.ModeSentence, domain.DifficultyHard); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := atomic.LoadInt32(&loader.calls); got != 2 {
		t.Fatalf("expected reload after invalidation, got %d calls", got)
	}
}

func TestQuestionRepositoryBoardsCachedSeparately(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	repo := NewQuestionRepository(testClient(t), loader, time.Minute)

	if _, err := repo.ListQuestions(ctx, domain.ModeIdiom, domain.DifficultyEasy); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := repo.ListQuestions(ctx, domain.ModeIdiom, domain.DifficultyExpert); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := atomic.LoadInt32(&loader.calls); got != 2 {
		t.Fatalf("expected one load per board, got %d calls", got)
	}
}
