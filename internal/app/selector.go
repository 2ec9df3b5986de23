package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"scramble-game-service/internal/domain"
)

// QuestionRepository loads the question catalog for a board
// (from cache/backing store).
type QuestionRepository interface {
	ListQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error)
}

// SeenStore tracks the recently served question ids per
// (player, mode, difficulty), bounded with oldest-first eviction.
type SeenStore interface {
	Seen(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) ([]string, error)
	Record(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty, questionID string) error
	Clear(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error
}

// Selection is the tagged outcome of a pick: either a question or an
// exhausted pool. Exhaustion is an expected result, not an error.
type Selection struct {
	Question  domain.Question
	Exhausted bool
}

// ContentSelector picks one unseen question for a player uniformly at
// random and records the pick.
type ContentSelector struct {
	questions QuestionRepository
	seen      SeenStore

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewContentSelector(questions QuestionRepository, seen SeenStore) *ContentSelector {
	return &ContentSelector{
		questions: questions,
		seen:      seen,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select filters the catalog by the player's seen set and picks one
// remaining question. An empty pool yields Selection{Exhausted: true}.
func (s *ContentSelector) Select(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (Selection, error) {
	catalog, err := s.questions.ListQuestions(ctx, mode, difficulty)
	if err != nil {
		return Selection{}, err
	}

	seen, err := s.seen.Seen(ctx, playerID, mode, difficulty)
	if err != nil {
		return Selection{}, err
	}
	exclude := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		exclude[id] = struct{}{}
	}

	pool := make([]domain.Question, 0, len(catalog))
	for _, q := range catalog {
		if _, ok := exclude[q.ID]; !ok {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return Selection{Exhausted: true}, nil
	}

	s.mu.Lock()
	pick := pool[s.rnd.Intn(len(pool))]
	s.mu.Unlock()

	if err := s.seen.Record(ctx, playerID, mode, difficulty, pick.ID); err != nil {
		return Selection{}, err
	}
	return Selection{Question: pick}, nil
}

// Restart clears the player's seen set so an exhausted pool becomes
// selectable again.
func (s *ContentSelector) Restart(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error {
	return s.seen.Clear(ctx, playerID, mode, difficulty)
}
