package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"scramble-game-service/internal/domain"
)

// AchievementChannel is the pub/sub channel completed-round events are
// published on.
const AchievementChannel = "achievements.rounds"

// AchievementPublisher fans completed-round outcomes out over redis
// pub/sub for downstream achievement/badge consumers.
type AchievementPublisher struct {
	client *redis.Client
}

func NewAchievementPublisher(client *redis.Client) *AchievementPublisher {
	return &AchievementPublisher{client: client}
}

func (p *AchievementPublisher) RoundCompleted(ctx context.Context, event domain.AchievementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, AchievementChannel, data).Err()
}
