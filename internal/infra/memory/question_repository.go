package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"scramble-game-service/internal/domain"
)

// QuestionLoader fetches a question catalog from a backing store
// (e.g., Postgres).
type QuestionLoader interface {
	ListQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches catalogs per (mode, difficulty) with TTL to
// avoid repeated backing-store hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := catalogKey(mode, difficulty)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.ListQuestions(ctx, mode, difficulty)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedCatalog{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops one board's cached catalog, e.g. after an authoring
// change upstream.
func (r *QuestionRepository) Invalidate(mode domain.Mode, difficulty domain.Difficulty) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, catalogKey(mode, difficulty))
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func catalogKey(mode domain.Mode, difficulty domain.Difficulty) string {
	return string(mode) + ":" + string(difficulty)
}

// StaticQuestionLoader serves a fixed catalog from memory (tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) ListQuestions(_ context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(l.questions))
	for _, q := range l.questions {
		if q.Mode == mode && q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out, nil
}
