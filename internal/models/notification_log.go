package models

import (
	"time"

	"github.com/google/uuid"
)

// Каналы и статусы доставки уведомлений.
const (
	NotificationChannelPush = "push"
	NotificationChannelSMS  = "sms"

	NotificationStatusPending   = "pending"
	NotificationStatusDelivered = "delivered"
	NotificationStatusFailed    = "failed"
	NotificationStatusRetried   = "retried"
)

// NotificationPayload - содержимое уведомления, сериализуется в jsonb.
type NotificationPayload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
}

// NotificationLogEntry - запись исходящего уведомления (outbox).
// Создается сервисом уведомлений, дальше её забирает воркер доставки.
type NotificationLogEntry struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	IncidentID   *uuid.UUID          `json:"incident_id,omitempty"`
	Channel      string              `json:"channel"`
	Status       string              `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	Payload      NotificationPayload `json:"payload"`
	Attempts     int                 `json:"attempts"`
	CreatedAt    time.Time           `json:"created_at"`
}
