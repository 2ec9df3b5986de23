package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"scramble-game-service/internal/domain"
)

// SeenStore keeps the per-(player, mode, difficulty) recently-seen
// question ids in a redis list, newest first, trimmed to the bound.
type SeenStore struct {
	client       *redis.Client
	capacity     int
	modeCapacity map[domain.Mode]int
}

func NewSeenStore(client *redis.Client, capacity int) *SeenStore {
	return &SeenStore{client: client, capacity: capacity}
}

// WithModeCapacity overrides the bound for one mode.
func (s *SeenStore) WithModeCapacity(mode domain.Mode, capacity int) *SeenStore {
	if s.modeCapacity == nil {
		s.modeCapacity = make(map[domain.Mode]int)
	}
	s.modeCapacity[mode] = capacity
	return s
}

func (s *SeenStore) Seen(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) ([]string, error) {
	return s.client.LRange(ctx, s.key(playerID, mode, difficulty), 0, -1).Result()
}

func (s *SeenStore) Record(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty, questionID string) error {
	key := s.key(playerID, mode, difficulty)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, questionID)
	if limit := s.capacityFor(mode); limit > 0 {
		pipe.LTrim(ctx, key, 0, int64(limit-1))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SeenStore) Clear(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) error {
	return s.client.Del(ctx, s.key(playerID, mode, difficulty)).Err()
}

func (s *SeenStore) capacityFor(mode domain.Mode) int {
	if limit, ok := s.modeCapacity[mode]; ok {
		return limit
	}
	return s.capacity
}

func (s *SeenStore) key(playerID string, mode domain.Mode, difficulty domain.Difficulty) string {
	return "seen:" + playerID + ":" + string(mode) + ":" + string(difficulty)
}
