package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventPublisher - интерфейс для публикации событий инцидентов
type EventPublisher interface {
	PublishIncidentChanged(ctx context.Context, event IncidentEvent) error
}

// RedisEventPublisher публикует события в канал Redis, откуда их
// забирают подписчики всех инстансов API
type RedisEventPublisher struct {
	redisClient *redis.Client
	channel     string
}

// NewRedisEventPublisher создает новый RedisEventPublisher
func NewRedisEventPublisher(client *redis.Client, channel string) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: client,
		channel:     channel,
	}
}

// PublishIncidentChanged публикует проекцию инцидента в канал Redis
func (p *RedisEventPublisher) PublishIncidentChanged(ctx context.Context, event IncidentEvent) error {
	message, err := NewIncidentMessage(event)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal incident message: %w", err)
	}

	if err := p.redisClient.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
