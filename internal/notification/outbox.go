package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	deliveryQueueKey = "notification_events"

	defaultBody = "You have been assigned to respond to an incident."
)

// AssignmentNotification - входные данные уведомления о назначении
type AssignmentNotification struct {
	UserID     uuid.UUID
	IncidentID *uuid.UUID
	Priority   string
	Message    *string
}

// Outbox определяет контракт постановки уведомления в очередь доставки.
// Вызывающие трактуют любую ошибку как подлежащую только логированию.
type Outbox interface {
	Enqueue(ctx context.Context, input AssignmentNotification) error
}

// BuildAssignmentPayload синтезирует содержимое push-уведомления
func BuildAssignmentPayload(priority string, message *string) models.NotificationPayload {
	title := "Incident assignment"
	if priority == models.PriorityUrgent {
		title = "Urgent incident assignment"
	}
	body := defaultBody
	if message != nil && *message != "" {
		body = *message
	}
	return models.NotificationPayload{
		Title:    title,
		Body:     body,
		Priority: priority,
	}
}

// PostgresOutbox пишет запись уведомления в notification_log и передает
// её id воркеру доставки через очередь Redis
type PostgresOutbox struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewPostgresOutbox(db *pgxpool.Pool, redisClient *redis.Client, logger *logrus.Logger) *PostgresOutbox {
	return &PostgresOutbox{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Enqueue добавляет одну запись в outbox со статусом "pending"
func (o *PostgresOutbox) Enqueue(ctx context.Context, input AssignmentNotification) error {
	entry := &models.NotificationLogEntry{
		UserID:     input.UserID,
		IncidentID: input.IncidentID,
		Channel:    models.NotificationChannelPush,
		Status:     models.NotificationStatusPending,
		Payload:    BuildAssignmentPayload(input.Priority, input.Message),
	}

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	query := `
		INSERT INTO notification_log (user_id, incident_id, channel, status, payload)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at;
	`
	err = o.db.QueryRow(ctx, query,
		entry.UserID,
		entry.IncidentID,
		entry.Channel,
		entry.Status,
		payload,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification log entry: %w", err)
	}

	// Очередь доставки - best effort: записанный outbox важнее, сбой
	// LPUSH не отменяет уведомление, его подберет следующий проход
	if err := o.redisClient.LPush(ctx, deliveryQueueKey, entry.ID.String()).Err(); err != nil {
		o.logger.WithError(err).Warn("Failed to push notification onto delivery queue")
	}

	o.logger.WithFields(logrus.Fields{
		"notification_id": entry.ID,
		"user_id":         entry.UserID,
	}).Info("Queued assignment notification")
	return nil
}
