package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы инцидента. Публичная подача всегда создает "pending",
// дальше статус меняет только оркестратор назначений.
const (
	IncidentStatusPending    = "pending"
	IncidentStatusAssigned   = "assigned"
	IncidentStatusResponding = "responding"
	IncidentStatusResolved   = "resolved"
	IncidentStatusEscalated  = "escalated"
)

// Уровни серьезности инцидента.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident представляет заявленное чрезвычайное событие.
// Координаты хранятся в бд как decimal и могут отсутствовать.
type Incident struct {
	ID                uuid.UUID `json:"id"`
	Type              string    `json:"type"`
	Description       *string   `json:"description,omitempty"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Address           *string   `json:"address,omitempty"`
	Severity          string    `json:"severity"`
	Status            string    `json:"status"`
	DeviceFingerprint *string   `json:"device_fingerprint,omitempty"`
	IPHash            *string   `json:"ip_hash,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsValidIncidentStatus проверяет, что строка является известным статусом
func IsValidIncidentStatus(s string) bool {
	switch s {
	case IncidentStatusPending, IncidentStatusAssigned, IncidentStatusResponding,
		IncidentStatusResolved, IncidentStatusEscalated:
		return true
	}
	return false
}
