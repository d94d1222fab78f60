package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/emergency_dispatch_system/internal/broadcast"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// recentIncidentsLimit ограничивает публичный список последних инцидентов
const recentIncidentsLimit = 100

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	ListRecent(ctx context.Context, limit int) ([]*models.Incident, error)
	ListFiltered(ctx context.Context, query IncidentQuery, limit int) ([]*models.Incident, error)
}

// SubmitIncidentInput - провалидированные данные публичной подачи
type SubmitIncidentInput struct {
	Type        string
	Description *string
	Latitude    *float64
	Longitude   *float64
	Address     *string
	Severity    string // пустая строка = medium
	Identity    Identity
}

// IntakeService определяет контракт публичного приема инцидентов
type IntakeService interface {
	SubmitIncident(ctx context.Context, input SubmitIncidentInput) (*models.Incident, error)
	ListRecentIncidents(ctx context.Context) ([]*models.Incident, error)
}

type intakeService struct {
	repo      IncidentRepository
	gate      RateLimitGate
	publisher broadcast.EventPublisher
	logger    *logrus.Logger
}

func NewIntakeService(repo IncidentRepository, gate RateLimitGate, publisher broadcast.EventPublisher, logger *logrus.Logger) IntakeService {
	return &intakeService{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitIncident принимает анонимную подачу: проверка лимита до любой
// персистентности, затем создание инцидента в статусе "pending" и
// трансляция его публичной проекции
func (s *intakeService) SubmitIncident(ctx context.Context, input SubmitIncidentInput) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "intake",
		"method":  "SubmitIncident",
		"type":    input.Type,
	})

	if err := s.gate.Admit(ctx, input.Identity); err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		log.WithError(err).Error("Rate limit check failed")
		return nil, fmt.Errorf("service: rate limit check failed: %w", err)
	}

	severity := input.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}

	ipHash := input.Identity.IPHash()
	incident := &models.Incident{
		Type:        input.Type,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Severity:    severity,
		Status:      models.IncidentStatusPending,
		IPHash:      &ipHash,
	}
	if input.Identity.Fingerprint != "" {
		fingerprint := input.Identity.Fingerprint
		incident.DeviceFingerprint = &fingerprint
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	// Трансляция синхронная, но её сбой не влияет на уже созданный инцидент
	if err := s.publisher.PublishIncidentChanged(ctx, broadcast.NewIncidentEvent(incident)); err != nil {
		log.WithError(err).Warn("Failed to broadcast created incident")
	}

	log.WithField("incident_id", incident.ID).Info("Public incident submitted")
	return incident, nil
}

// ListRecentIncidents возвращает последние инциденты, новые первыми,
// не более 100. Запрос только на чтение, без побочных эффектов.
func (s *intakeService) ListRecentIncidents(ctx context.Context) ([]*models.Incident, error) {
	incidents, err := s.repo.ListRecent(ctx, recentIncidentsLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list recent incidents from repository")
		return nil, fmt.Errorf("service: could not list recent incidents: %w", err)
	}
	return incidents, nil
}
