package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockIntakeService, *mocks.MockAssignmentService, *mocks.MockIncidentQueryService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	intakeMock := mocks.NewMockIntakeService(ctrl)
	assignmentMock := mocks.NewMockAssignmentService(ctrl)
	queryMock := mocks.NewMockIncidentQueryService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{}

	handler := NewHandler(intakeMock, assignmentMock, queryMock, nil, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router)

	return intakeMock, assignmentMock, queryMock, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitPublicIncident_Success(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	description := "Flames on the second floor"
	address := "221B Baker Street"
	reqBody := SubmitIncidentRequest{
		Type:        "Residential Fire",
		Description: &description,
		Address:     &address,
		Severity:    models.SeverityHigh,
	}
	incidentID := uuid.New()

	intakeMock.EXPECT().
		SubmitIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input service.SubmitIncidentInput) (*models.Incident, error) {
			assert.Equal(t, "Residential Fire", input.Type)
			assert.Equal(t, "device-42", input.Identity.Fingerprint)
			assert.NotEmpty(t, input.Identity.IP)
			return &models.Incident{
				ID:        incidentID,
				Type:      input.Type,
				Severity:  models.SeverityHigh,
				Status:    models.IncidentStatusPending,
				CreatedAt: time.Now().UTC(),
			}, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBuffer(bodyBytes), map[string]string{"x-device-fingerprint": "device-42"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SubmitIncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.IncidentID)
	assert.Equal(t, models.IncidentStatusPending, resp.Status)
	assert.Equal(t, models.SeverityHigh, resp.Severity)
}

func TestSubmitPublicIncident_InvalidJSON(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)

	intakeMock.EXPECT().SubmitIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBufferString(`{"type": "fire"`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestSubmitPublicIncident_ValidationError(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	reqBody := SubmitIncidentRequest{ // Отсутствует Type
		Severity: models.SeverityLow,
	}

	intakeMock.EXPECT().SubmitIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Type' failed on the 'required' tag")
}

func TestSubmitPublicIncident_InvalidSeverity(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	reqBody := SubmitIncidentRequest{
		Type:     "fire",
		Severity: "apocalyptic",
	}

	intakeMock.EXPECT().SubmitIncident(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed on the 'oneof' tag")
}

func TestSubmitPublicIncident_RateLimited(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	reqBody := SubmitIncidentRequest{Type: "fire"}

	intakeMock.EXPECT().
		SubmitIncident(gomock.Any(), gomock.Any()).
		Return(nil, service.ErrRateLimited).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Contains(t, w.Body.String(), "Too many submissions. Try again later.")
}

func TestSubmitPublicIncident_ServiceError(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	reqBody := SubmitIncidentRequest{Type: "fire"}

	intakeMock.EXPECT().
		SubmitIncident(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database unavailable")).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/public/incidents", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestListPublicIncidents_Success(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)
	fingerprint := "device-42"
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Type: "fire", Status: models.IncidentStatusPending, DeviceFingerprint: &fingerprint},
		{ID: uuid.New(), Type: "flood", Status: models.IncidentStatusAssigned},
	}

	intakeMock.EXPECT().ListRecentIncidents(gomock.Any()).Return(expectedIncidents, nil).Times(1)

	w := makeRequest(router, "GET", "/public/incidents", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []PublicIncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, expectedIncidents[0].ID, resp[0].ID)
	// Идентичность подателя не просачивается в публичную проекцию
	assert.NotContains(t, w.Body.String(), fingerprint)
}

func TestListPublicIncidents_ServiceError(t *testing.T) {
	intakeMock, _, _, router := newTestHandler(t)

	intakeMock.EXPECT().ListRecentIncidents(gomock.Any()).Return(nil, errors.New("query failed")).Times(1)

	w := makeRequest(router, "GET", "/public/incidents", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestListIncidents_Success(t *testing.T) {
	_, _, queryMock, router := newTestHandler(t)
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Type: "fire", Status: models.IncidentStatusAssigned},
	}

	queryMock.EXPECT().
		ListIncidents(gomock.Any(), service.IncidentFilter{Status: "assigned"}).
		Return(expectedIncidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/incidents?status=assigned", nil, map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ListIncidentsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp.Incidents, 1)
	assert.Equal(t, expectedIncidents[0].ID, resp.Incidents[0].ID)
}

func TestListIncidents_Unauthorized(t *testing.T) {
	_, _, queryMock, router := newTestHandler(t)

	queryMock.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/incidents", nil) // Нет bearer-токена

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_required")
}

func TestListIncidents_InvalidFilter(t *testing.T) {
	_, _, queryMock, router := newTestHandler(t)

	queryMock.EXPECT().
		ListIncidents(gomock.Any(), service.IncidentFilter{BBox: "200,0,210,10"}).
		Return(nil, service.NewValidationError("invalid bbox parameter, coordinates are out of range")).Times(1)

	w := makeRequest(router, "GET", "/api/incidents?bbox=200,0,210,10", nil, map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestListIncidents_ServiceError(t *testing.T) {
	_, _, queryMock, router := newTestHandler(t)

	queryMock.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("query failed")).Times(1)

	w := makeRequest(router, "GET", "/api/incidents", nil, map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestAssignResponder_Success(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	responderID := uuid.New()
	assignmentID := uuid.New()
	reqBody := AssignResponderRequest{
		ResponderID: responderID,
		Priority:    models.PriorityUrgent,
	}

	assignmentMock.EXPECT().
		AssignResponder(gomock.Any(), incidentID.String(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, input service.AssignResponderInput) (*models.Assignment, error) {
			assert.Equal(t, responderID, input.ResponderID)
			require.NotNil(t, input.DispatcherID)
			assert.Equal(t, "dispatcher-7", *input.DispatcherID)
			return &models.Assignment{
				ID:          assignmentID,
				IncidentID:  incidentID,
				ResponderID: responderID,
				Priority:    models.PriorityUrgent,
				Status:      models.AssignmentStatusPending,
				AssignedAt:  time.Now().UTC(),
			}, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", incidentID), bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer dispatcher-token", "x-dispatcher-id": "dispatcher-7"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp AssignmentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, assignmentID, resp.ID)
	assert.Equal(t, models.AssignmentStatusPending, resp.Status)
}

func TestAssignResponder_Unauthorized(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	reqBody := AssignResponderRequest{ResponderID: uuid.New()}

	assignmentMock.EXPECT().AssignResponder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", uuid.New()), bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_required")
}

func TestAssignResponder_MissingResponderID(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)

	assignmentMock.EXPECT().AssignResponder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", uuid.New()), bytes.NewBufferString(`{}`),
		map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestAssignResponder_InvalidIncidentID(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	reqBody := AssignResponderRequest{ResponderID: uuid.New()}

	assignmentMock.EXPECT().
		AssignResponder(gomock.Any(), "not-a-uuid", gomock.Any()).
		Return(nil, service.NewValidationError("invalid incident identifier")).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/incidents/not-a-uuid/assign", bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestAssignResponder_IncidentNotFound(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := AssignResponderRequest{ResponderID: uuid.New()}

	assignmentMock.EXPECT().
		AssignResponder(gomock.Any(), incidentID.String(), gomock.Any()).
		Return(nil, service.ErrIncidentNotFound).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", incidentID), bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident_not_found")
}

func TestAssignResponder_DuplicateAssignment(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := AssignResponderRequest{ResponderID: uuid.New()}

	assignmentMock.EXPECT().
		AssignResponder(gomock.Any(), incidentID.String(), gomock.Any()).
		Return(nil, service.ErrDuplicateAssignment).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", incidentID), bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "assignment_exists")
}

func TestAssignResponder_ServiceError(t *testing.T) {
	_, assignmentMock, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := AssignResponderRequest{ResponderID: uuid.New()}

	assignmentMock.EXPECT().
		AssignResponder(gomock.Any(), incidentID.String(), gomock.Any()).
		Return(nil, errors.New("transaction failed")).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/incidents/%s/assign", incidentID), bytes.NewBuffer(bodyBytes),
		map[string]string{"Authorization": "Bearer dispatcher-token"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestBearerAuthMiddleware_EmptyToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	router.Use(BearerAuthMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Префикс без самого токена не принимается
	w := makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer   "})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_required")
}

func TestBearerAuthMiddleware_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	router.Use(BearerAuthMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer any-token"})
	assert.Equal(t, http.StatusOK, w.Code)
}
