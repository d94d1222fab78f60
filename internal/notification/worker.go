package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// deliveryRequest - тело POST-запроса к приемнику уведомлений
type deliveryRequest struct {
	NotificationID uuid.UUID                  `json:"notification_id"`
	UserID         uuid.UUID                  `json:"user_id"`
	IncidentID     *uuid.UUID                 `json:"incident_id,omitempty"`
	Channel        string                     `json:"channel"`
	Payload        models.NotificationPayload `json:"payload"`
}

// DeliveryWorker забирает записи из очереди доставки и отправляет их
// настроенному приемнику. Работает полностью вне путей запросов:
// его сбои видны только в notification_log.
type DeliveryWorker struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewDeliveryWorker создает новый DeliveryWorker
func NewDeliveryWorker(db *pgxpool.Pool, redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *DeliveryWorker {
	return &DeliveryWorker{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.NotifyTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди доставки
func (w *DeliveryWorker) Start(ctx context.Context) {
	w.logger.Info("Starting notification delivery worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification delivery worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из очереди, 0 означает
				// бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, deliveryQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notification from delivery queue")
					time.Sleep(w.cfg.NotifyBaseDelay)
					continue
				}

				// result[0] - ключ, result[1] - значение
				id, err := uuid.Parse(result[1])
				if err != nil {
					w.logger.WithError(err).Error("Malformed notification id on delivery queue")
					continue
				}

				w.deliver(ctx, id)
			}
		}
	}()
}

func (w *DeliveryWorker) deliver(ctx context.Context, id uuid.UUID) {
	log := w.logger.WithField("notification_id", id)

	entry, err := w.loadEntry(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load notification log entry")
		return
	}
	if entry.Status == models.NotificationStatusDelivered {
		return
	}

	if w.cfg.NotifyWebhookURL == "" {
		log.Warn("Notification webhook URL is not configured. Skipping delivery.")
		return
	}

	body, err := json.Marshal(deliveryRequest{
		NotificationID: entry.ID,
		UserID:         entry.UserID,
		IncidentID:     entry.IncidentID,
		Channel:        entry.Channel,
		Payload:        entry.Payload,
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal delivery request")
		return
	}

	maxRetries := w.cfg.NotifyMaxRetries
	baseDelay := w.cfg.NotifyBaseDelay

	var lastErr string
	for i := 0; i < maxRetries; i++ {
		attempt := entry.Attempts + i + 1
		err := w.attemptDelivery(ctx, body)
		if err == nil {
			if err := w.markStatus(ctx, id, models.NotificationStatusDelivered, nil, attempt); err != nil {
				log.WithError(err).Error("Failed to mark notification as delivered")
			}
			log.Info("Notification delivered successfully.")
			return
		}

		lastErr = err.Error()
		log.WithError(err).Warnf("Notification delivery attempt failed. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
		if err := w.markStatus(ctx, id, models.NotificationStatusRetried, &lastErr, attempt); err != nil {
			log.WithError(err).Error("Failed to mark notification as retried")
		}
		time.Sleep(baseDelay)
		baseDelay *= 2 // Экспоненциальная задержка
	}

	if err := w.markStatus(ctx, id, models.NotificationStatusFailed, &lastErr, entry.Attempts+maxRetries); err != nil {
		log.WithError(err).Error("Failed to mark notification as failed")
	}
	log.Errorf("Failed to deliver notification after %d retries.", maxRetries)
}

func (w *DeliveryWorker) attemptDelivery(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.NotifyWebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Добавляем HMAC подпись, если NOTIFY_WEBHOOK_SECRET задан
	if w.cfg.NotifyWebhookSecret != "" {
		req.Header.Set("X-Webhook-Signature", generateHMACSHA256(body, w.cfg.NotifyWebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("delivery endpoint returned status " + resp.Status)
	}
	return nil
}

func (w *DeliveryWorker) loadEntry(ctx context.Context, id uuid.UUID) (*models.NotificationLogEntry, error) {
	entry := &models.NotificationLogEntry{}
	var payload []byte
	query := `
		SELECT id, user_id, incident_id, channel, status, payload, attempts, created_at
		FROM notification_log
		WHERE id = $1;
	`
	err := w.db.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.IncidentID,
		&entry.Channel,
		&entry.Status,
		&payload,
		&entry.Attempts,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &entry.Payload); err != nil {
		return nil, err
	}
	return entry, nil
}

func (w *DeliveryWorker) markStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string, attempts int) error {
	query := `
		UPDATE notification_log
		SET status = $2, error_message = $3, attempts = $4
		WHERE id = $1;
	`
	_, err := w.db.Exec(ctx, query, id, status, errMsg, attempts)
	return err
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
