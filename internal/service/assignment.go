package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/broadcast"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/notification"
	"github.com/sirupsen/logrus"
)

// sideEffectTimeout ограничивает пост-коммитные побочные эффекты,
// отвязанные от контекста запроса
const sideEffectTimeout = 10 * time.Second

// AssignmentRepository создает назначение и переводит родительский
// инцидент в "assigned" одной атомарной транзакцией. Возвращает
// обновленный инцидент; ErrIncidentNotFound при отсутствии инцидента,
// ErrDuplicateAssignment при повторной паре (инцидент, ответчик).
type AssignmentRepository interface {
	CreateWithStatusTransition(ctx context.Context, assignment *models.Assignment) (*models.Incident, error)
}

// AssignResponderInput - провалидированные данные назначения
type AssignResponderInput struct {
	ResponderID  uuid.UUID
	DispatcherID *string
	Message      *string
	Priority     string // пустая строка = normal
}

// AssignmentService определяет контракт оркестратора назначений
type AssignmentService interface {
	AssignResponder(ctx context.Context, incidentID string, input AssignResponderInput) (*models.Assignment, error)
}

type assignmentService struct {
	repo      AssignmentRepository
	outbox    notification.Outbox
	publisher broadcast.EventPublisher
	logger    *logrus.Logger
}

func NewAssignmentService(repo AssignmentRepository, outbox notification.Outbox, publisher broadcast.EventPublisher, logger *logrus.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
	}
}

// AssignResponder атомарно создает назначение и переводит инцидент в
// "assigned", после коммита ставит уведомление в очередь и транслирует
// обновленную проекцию. Побочные эффекты после коммита не влияют на
// результат вызова.
func (s *assignmentService) AssignResponder(ctx context.Context, incidentID string, input AssignResponderInput) (*models.Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "assignment",
		"method":       "AssignResponder",
		"incident_id":  incidentID,
		"responder_id": input.ResponderID,
	})

	if incidentID != strings.TrimSpace(incidentID) {
		return nil, NewValidationError("incident identifier cannot contain leading or trailing whitespace")
	}
	id, err := uuid.Parse(incidentID)
	if err != nil {
		return nil, NewValidationError("invalid incident identifier")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	assignment := &models.Assignment{
		IncidentID:  id,
		ResponderID: input.ResponderID,
		AssignedBy:  input.DispatcherID,
		AssignedAt:  time.Now().UTC(),
		Message:     input.Message,
		Priority:    priority,
		Status:      models.AssignmentStatusPending,
	}

	incident, err := s.repo.CreateWithStatusTransition(ctx, assignment)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Warn("Attempted to assign responder to a non-existent incident")
			return nil, err
		}
		if errors.Is(err, ErrDuplicateAssignment) {
			log.Warn("Responder is already assigned to this incident")
			return nil, err
		}
		log.WithError(err).Error("Assignment transaction failed")
		return nil, fmt.Errorf("service: could not create assignment: %w", err)
	}

	// Уведомление и трансляция выполняются вне транзакции и не могут
	// ни заблокировать, ни провалить уже закоммиченное назначение
	go s.dispatchSideEffects(assignment, incident)

	log.WithField("assignment_id", assignment.ID).Info("Responder assigned to incident")
	return assignment, nil
}

func (s *assignmentService) dispatchSideEffects(assignment *models.Assignment, incident *models.Incident) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	log := s.logger.WithFields(logrus.Fields{
		"service":       "assignment",
		"assignment_id": assignment.ID,
		"incident_id":   assignment.IncidentID,
	})

	incidentID := assignment.IncidentID
	err := s.outbox.Enqueue(ctx, notification.AssignmentNotification{
		UserID:     assignment.ResponderID,
		IncidentID: &incidentID,
		Priority:   assignment.Priority,
		Message:    assignment.Message,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to queue assignment notification")
	}

	if err := s.publisher.PublishIncidentChanged(ctx, broadcast.NewIncidentEvent(incident)); err != nil {
		log.WithError(err).Warn("Failed to broadcast incident update")
	}
}
