package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"scramble-game-service/internal/domain"
)

// QuestionLoader fetches a question catalog from a backing store
// (e.g., Postgres).
type QuestionLoader interface {
	ListQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches each (mode, difficulty) catalog in redis as a
// JSON blob and falls back to the loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := r.key(mode, difficulty)

	if questions, ok := r.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := r.loader.ListQuestions(ctx, mode, difficulty)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// best-effort fill; a miss next time just reloads
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

// Invalidate drops one board's cached catalog.
func (r *QuestionRepository) Invalidate(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) error {
	return r.client.Del(ctx, r.key(mode, difficulty)).Err()
}

func (r *QuestionRepository) key(mode domain.Mode, difficulty domain.Difficulty) string {
	return "questions:" + string(mode) + ":" + string(difficulty)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
