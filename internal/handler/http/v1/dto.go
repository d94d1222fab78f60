package v1

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse - стабильная машинночитаемая причина плюс человеческое
// сообщение
// @Description Описание ошибки
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SubmitIncidentRequest DTO публичной подачи инцидента
// @Description DTO публичной подачи инцидента
type SubmitIncidentRequest struct {
	Type        string   `json:"type" validate:"required,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=512"`
	Severity    string   `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
}

// SubmitIncidentResponse DTO ответа на публичную подачу
// @Description DTO ответа на публичную подачу
type SubmitIncidentResponse struct {
	IncidentID  uuid.UUID `json:"incidentId"`
	Status      string    `json:"status"`
	Severity    string    `json:"severity"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PublicIncidentResponse - публичная проекция инцидента
// @Description Публичная проекция инцидента
type PublicIncidentResponse struct {
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

// IncidentSummaryResponse - проекция инцидента для диспетчерской консоли
// @Description Проекция инцидента для диспетчерской консоли
type IncidentSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Severity    string    `json:"severity"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	ReportedAt  time.Time `json:"reportedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListIncidentsResponse DTO ответа диспетчерской выборки
// @Description DTO ответа диспетчерской выборки
type ListIncidentsResponse struct {
	Incidents []*IncidentSummaryResponse `json:"incidents"`
}

// AssignResponderRequest DTO назначения ответчика
// @Description DTO назначения ответчика
type AssignResponderRequest struct {
	ResponderID uuid.UUID `json:"responderId" validate:"required"`
	Message     *string   `json:"message,omitempty" validate:"omitempty,min=1,max=500"`
	Priority    string    `json:"priority,omitempty" validate:"omitempty,oneof=normal urgent"`
}

// AssignmentResponse DTO созданного назначения
// @Description DTO созданного назначения
type AssignmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	IncidentID     uuid.UUID  `json:"incidentId"`
	ResponderID    uuid.UUID  `json:"responderId"`
	AssignedBy     *string    `json:"assignedBy"`
	Status         string     `json:"status"`
	AssignedAt     time.Time  `json:"assignedAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
	Message        *string    `json:"message"`
	Priority       string     `json:"priority"`
}
