package models

import (
	"time"

	"github.com/google/uuid"
)

// Приоритеты назначения.
const (
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Статусы назначения. Создается всегда "pending", дальнейшие переходы
// выполняет внешний поток подтверждения ответчика.
const (
	AssignmentStatusPending      = "pending"
	AssignmentStatusAcknowledged = "acknowledged"
	AssignmentStatusDeclined     = "declined"
	AssignmentStatusCompleted    = "completed"
)

// Assignment связывает одного ответчика с одним инцидентом.
// Создается только в той же транзакции, что переводит инцидент в "assigned".
type Assignment struct {
	ID             uuid.UUID  `json:"id"`
	IncidentID     uuid.UUID  `json:"incident_id"`
	ResponderID    uuid.UUID  `json:"responder_id"`
	AssignedBy     *string    `json:"assigned_by,omitempty"`
	AssignedAt     time.Time  `json:"assigned_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Message        *string    `json:"message,omitempty"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
}
