package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// dispatcherListLimit ограничивает выборку диспетчерской консоли
const dispatcherListLimit = 200

// IncidentFilter - сырые параметры выборки из строки запроса
type IncidentFilter struct {
	Status string
	BBox   string
	Since  string
}

// IncidentQuery - провалидированные параметры выборки для репозитория
type IncidentQuery struct {
	Status *string
	Since  *time.Time
	MinLat *float64
	MaxLat *float64
	MinLon *float64
	MaxLon *float64
}

// IncidentQueryService определяет контракт запросов диспетчерской консоли
type IncidentQueryService interface {
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
}

type incidentQueryService struct {
	repo   IncidentRepository
	logger *logrus.Logger
}

func NewIncidentQueryService(repo IncidentRepository, logger *logrus.Logger) IncidentQueryService {
	return &incidentQueryService{
		repo:   repo,
		logger: logger,
	}
}

// ListIncidents возвращает инциденты под фильтром, последними
// обновленные первыми, не более 200
func (s *incidentQueryService) ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	query := IncidentQuery{}

	if filter.Status != "" {
		if !models.IsValidIncidentStatus(filter.Status) {
			return nil, NewValidationError("invalid status parameter")
		}
		status := filter.Status
		query.Status = &status
	}

	if filter.Since != "" {
		since, err := time.Parse(time.RFC3339, filter.Since)
		if err != nil {
			return nil, NewValidationError("invalid since parameter, expected an ISO-8601 timestamp")
		}
		query.Since = &since
	}

	if filter.BBox != "" {
		minLon, minLat, maxLon, maxLat, err := parseBBox(filter.BBox)
		if err != nil {
			return nil, err
		}
		query.MinLon, query.MinLat = &minLon, &minLat
		query.MaxLon, query.MaxLat = &maxLon, &maxLat
	}

	incidents, err := s.repo.ListFiltered(ctx, query, dispatcherListLimit)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed")
	return incidents, nil
}

// parseBBox разбирает строку "minLon,minLat,maxLon,maxLat" и проверяет
// арность, числовость, порядок min<=max и допустимые диапазоны координат
func parseBBox(raw string) (minLon, minLat, maxLon, maxLat float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, NewValidationError("invalid bbox parameter, use minLon,minLat,maxLon,maxLat")
	}

	values := make([]float64, 4)
	for i, part := range parts {
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if parseErr != nil {
			return 0, 0, 0, 0, NewValidationError("invalid bbox parameter, use minLon,minLat,maxLon,maxLat")
		}
		values[i] = value
	}

	minLon, minLat, maxLon, maxLat = values[0], values[1], values[2], values[3]
	if minLon > maxLon || minLat > maxLat {
		return 0, 0, 0, 0, NewValidationError("invalid bbox parameter, min values must not exceed max values")
	}
	if minLon < -180 || maxLon > 180 || minLat < -90 || maxLat > 90 {
		return 0, 0, 0, 0, NewValidationError("invalid bbox parameter, coordinates are out of range")
	}
	return minLon, minLat, maxLon, maxLat, nil
}
