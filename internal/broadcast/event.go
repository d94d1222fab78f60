package broadcast

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// EventIncidentCreated - тип события, рассылаемого live-подписчикам при
// создании или изменении инцидента.
const EventIncidentCreated = "incident.created"

// IncidentEvent - публичная проекция инцидента для трансляции.
// Анонимная идентичность подателя в проекцию не попадает.
type IncidentEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Address     *string   `json:"address"`
	Status      string    `json:"status"`
	Severity    string    `json:"severity"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message - конверт сообщения live-канала
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewIncidentEvent строит проекцию из доменной модели
func NewIncidentEvent(incident *models.Incident) IncidentEvent {
	return IncidentEvent{
		ID:          incident.ID,
		Type:        incident.Type,
		Description: incident.Description,
		Latitude:    incident.Latitude,
		Longitude:   incident.Longitude,
		Address:     incident.Address,
		Status:      incident.Status,
		Severity:    incident.Severity,
		CreatedAt:   incident.CreatedAt,
	}
}

// NewIncidentMessage оборачивает проекцию в конверт live-канала
func NewIncidentMessage(event IncidentEvent) (Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal incident event: %w", err)
	}
	return Message{Type: EventIncidentCreated, Data: data}, nil
}
