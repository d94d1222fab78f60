package v1

import (
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

// DTOToSubmitInput преобразует DTO публичной подачи во входные данные сервиса.
// Идентичность клиента добавляет хендлер.
func DTOToSubmitInput(dto SubmitIncidentRequest, identity service.Identity) service.SubmitIncidentInput {
	return service.SubmitIncidentInput{
		Type:        dto.Type,
		Description: dto.Description,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Address:     dto.Address,
		Severity:    dto.Severity,
		Identity:    identity,
	}
}

// ModelToSubmitResponse преобразует созданный инцидент в квитанцию о подаче
func ModelToSubmitResponse(model *models.Incident) *SubmitIncidentResponse {
	return &SubmitIncidentResponse{
		IncidentID:  model.ID,
		Status:      model.Status,
		Severity:    model.Severity,
		SubmittedAt: model.CreatedAt,
	}
}

// ModelToPublicResponse преобразует доменную модель в публичную проекцию.
// Поля идентичности клиента наружу не отдаются.
func ModelToPublicResponse(model *models.Incident) *PublicIncidentResponse {
	return &PublicIncidentResponse{
		ID:          model.ID,
		Type:        model.Type,
		Description: model.Description,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		Address:     model.Address,
		Status:      model.Status,
		Severity:    model.Severity,
		CreatedAt:   model.CreatedAt,
	}
}

// ModelsToPublicResponses преобразует слайс моделей в слайс публичных DTO
func ModelsToPublicResponses(models []*models.Incident) []*PublicIncidentResponse {
	responses := make([]*PublicIncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToPublicResponse(model)
	}
	return responses
}

// ModelToSummaryResponse преобразует доменную модель в диспетчерскую проекцию
func ModelToSummaryResponse(model *models.Incident) *IncidentSummaryResponse {
	return &IncidentSummaryResponse{
		ID:          model.ID,
		Type:        model.Type,
		Status:      model.Status,
		Severity:    model.Severity,
		Description: model.Description,
		Address:     model.Address,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		ReportedAt:  model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// ModelsToSummaryResponses преобразует слайс моделей в слайс диспетчерских DTO
func ModelsToSummaryResponses(models []*models.Incident) []*IncidentSummaryResponse {
	responses := make([]*IncidentSummaryResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToSummaryResponse(model)
	}
	return responses
}

// ModelToAssignmentResponse преобразует доменную модель назначения в DTO ответа
func ModelToAssignmentResponse(model *models.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:             model.ID,
		IncidentID:     model.IncidentID,
		ResponderID:    model.ResponderID,
		AssignedBy:     model.AssignedBy,
		Status:         model.Status,
		AssignedAt:     model.AssignedAt,
		AcknowledgedAt: model.AcknowledgedAt,
		CompletedAt:    model.CompletedAt,
		Message:        model.Message,
		Priority:       model.Priority,
	}
}
