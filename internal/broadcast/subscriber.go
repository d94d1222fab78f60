package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Subscriber читает события инцидентов из канала Redis и передает их
// локальному хабу. Так консоли, подключенные к разным инстансам API,
// получают одни и те же события.
type Subscriber struct {
	redisClient *redis.Client
	hub         *Hub
	logger      *logrus.Logger
	channel     string
}

func NewSubscriber(client *redis.Client, hub *Hub, logger *logrus.Logger, channel string) *Subscriber {
	return &Subscriber{
		redisClient: client,
		hub:         hub,
		logger:      logger,
		channel:     channel,
	}
}

// Start блокирует до отмены контекста, перекладывая сообщения канала в хаб
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.WithField("channel", s.channel).Info("Incident event subscriber is running")
	pubsub := s.redisClient.Subscribe(ctx, s.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close pubsub")
		}
	}()

	msgCh := pubsub.Channel()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				s.logger.Warn("Pubsub channel closed by Redis")
				return nil
			}
			s.handleMessage(msg)
		case <-ctx.Done():
			s.logger.Info("Stopping incident event subscriber")
			return nil
		}
	}
}

func (s *Subscriber) handleMessage(msg *redis.Message) {
	var message Message
	if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal incident event from Redis")
		return
	}
	s.hub.Broadcast(message)
}
