package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/broadcast"
	broadcast_mocks "github.com/shenikar/emergency_dispatch_system/internal/broadcast/mocks"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	svc "github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIntakeService — вспомогательная функция для создания сервиса с моками.
func newTestIntakeService(t *testing.T) (svc.IntakeService, *mocks.MockIncidentRepository, *mocks.MockRateLimitGate, *broadcast_mocks.MockEventPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	gateMock := mocks.NewMockRateLimitGate(ctrl)
	publisherMock := broadcast_mocks.NewMockEventPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return svc.NewIntakeService(repoMock, gateMock, publisherMock, logger), repoMock, gateMock, publisherMock
}

func TestSubmitIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock, gateMock, publisherMock := newTestIntakeService(t)
	ctx := context.Background()
	description := "Smoke visible from the street"
	identity := svc.Identity{Fingerprint: "device-1", IP: "203.0.113.7"}
	input := svc.SubmitIncidentInput{
		Type:        "fire",
		Description: &description,
		Severity:    models.SeverityHigh,
		Identity:    identity,
	}
	incidentID := uuid.New()

	// Ожидания
	gateMock.EXPECT().Admit(ctx, identity).Return(nil).Times(1)
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, models.IncidentStatusPending, inc.Status)
			assert.Equal(t, models.SeverityHigh, inc.Severity)
			require.NotNil(t, inc.IPHash)
			assert.Equal(t, identity.IPHash(), *inc.IPHash)
			// Симулируем, что БД присвоила ID
			inc.ID = incidentID
			return nil
		}).Times(1)
	// Трансляция ровно один раз и с проекцией созданного инцидента
	publisherMock.EXPECT().
		PublishIncidentChanged(ctx, gomock.Any()).
		Do(func(_ context.Context, event broadcast.IncidentEvent) {
			assert.Equal(t, incidentID, event.ID)
			assert.Equal(t, "fire", event.Type)
			assert.Equal(t, models.IncidentStatusPending, event.Status)
		}).Return(nil).Times(1)

	// Действие
	incident, err := service.SubmitIncident(ctx, input)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, incidentID, incident.ID)
	assert.Equal(t, models.IncidentStatusPending, incident.Status)
}

func TestSubmitIncident_DefaultSeverity(t *testing.T) {
	// Подготовка
	service, repoMock, gateMock, publisherMock := newTestIntakeService(t)
	ctx := context.Background()
	input := svc.SubmitIncidentInput{
		Type:     "flood",
		Identity: svc.Identity{IP: "203.0.113.7"},
	}

	// Ожидания
	gateMock.EXPECT().Admit(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, models.SeverityMedium, inc.Severity)
			assert.Nil(t, inc.DeviceFingerprint)
			inc.ID = uuid.New()
			return nil
		}).Times(1)
	publisherMock.EXPECT().PublishIncidentChanged(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := service.SubmitIncident(ctx, input)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, incident.Severity)
}

func TestSubmitIncident_RateLimited(t *testing.T) {
	// Подготовка
	service, repoMock, gateMock, publisherMock := newTestIntakeService(t)
	ctx := context.Background()
	input := svc.SubmitIncidentInput{
		Type:     "fire",
		Identity: svc.Identity{Fingerprint: "device-1", IP: "203.0.113.7"},
	}

	// Ожидания: отклоненная подача не создает инцидент и не транслируется
	gateMock.EXPECT().Admit(ctx, gomock.Any()).Return(svc.ErrRateLimited).Times(1)
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	publisherMock.EXPECT().PublishIncidentChanged(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := service.SubmitIncident(ctx, input)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, svc.ErrRateLimited)
	assert.Nil(t, incident)
}

func TestSubmitIncident_GateFailure(t *testing.T) {
	// Подготовка
	service, repoMock, gateMock, _ := newTestIntakeService(t)
	ctx := context.Background()
	gateError := errors.New("connection refused")
	input := svc.SubmitIncidentInput{
		Type:     "fire",
		Identity: svc.Identity{IP: "203.0.113.7"},
	}

	// Ожидания
	gateMock.EXPECT().Admit(ctx, gomock.Any()).Return(gateError).Times(1)
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := service.SubmitIncident(ctx, input)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorContains(t, err, "rate limit check failed")
}

func TestSubmitIncident_BroadcastFailureIsNotFatal(t *testing.T) {
	// Подготовка
	service, repoMock, gateMock, publisherMock := newTestIntakeService(t)
	ctx := context.Background()
	input := svc.SubmitIncidentInput{
		Type:     "fire",
		Identity: svc.Identity{IP: "203.0.113.7"},
	}

	// Ожидания: сбой трансляции не отменяет созданный инцидент
	gateMock.EXPECT().Admit(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			inc.ID = uuid.New()
			return nil
		}).Times(1)
	publisherMock.EXPECT().
		PublishIncidentChanged(ctx, gomock.Any()).
		Return(errors.New("redis unavailable")).Times(1)

	// Действие
	incident, err := service.SubmitIncident(ctx, input)

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, incident)
}

func TestListRecentIncidents_Success(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIntakeService(t)
	ctx := context.Background()
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Type: "fire"},
		{ID: uuid.New(), Type: "flood"},
	}

	// Ожидания
	repoMock.EXPECT().ListRecent(ctx, 100).Return(expectedIncidents, nil).Times(1)

	// Действие
	incidents, err := service.ListRecentIncidents(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncidents, incidents)
}

func TestListRecentIncidents_RepositoryError(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIntakeService(t)
	ctx := context.Background()
	repoError := errors.New("query failed")

	// Ожидания
	repoMock.EXPECT().ListRecent(ctx, 100).Return(nil, repoError).Times(1)

	// Действие
	incidents, err := service.ListRecentIncidents(ctx)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incidents)
	assert.ErrorContains(t, err, "could not list recent incidents")
}
