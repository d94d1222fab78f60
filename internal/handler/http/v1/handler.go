package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/emergency_dispatch_system/internal/broadcast"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	fingerprintHeader = "x-device-fingerprint"
	dispatcherHeader  = "x-dispatcher-id"
)

type Handler struct {
	intakeService     service.IntakeService
	assignmentService service.AssignmentService
	queryService      service.IncidentQueryService
	hub               *broadcast.Hub
	logger            *logrus.Logger
	validate          *validator.Validate
	cfg               *config.Config
}

func NewHandler(
	intakeService service.IntakeService,
	assignmentService service.AssignmentService,
	queryService service.IncidentQueryService,
	hub *broadcast.Hub,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		intakeService:     intakeService,
		assignmentService: assignmentService,
		queryService:      queryService,
		hub:               hub,
		logger:            logger,
		validate:          validator.New(),
		cfg:               cfg,
	}
}

// @Summary Submit a new incident report
// @Description Submit an incident report from a public client. Anonymous, rate limited per device.
// @Tags Public
// @Accept json
// @Produce json
// @Param x-device-fingerprint header string false "Device fingerprint"
// @Param incident body SubmitIncidentRequest true "Incident submission request"
// @Success 201 {object} SubmitIncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 429 {object} ErrorResponse "Too many submissions"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /public/incidents [post]
func (h *Handler) submitPublicIncident(c *gin.Context) {
	var input SubmitIncidentRequest
	log := h.logger.WithField("method", "submitPublicIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}

	identity := service.Identity{
		Fingerprint: strings.TrimSpace(c.GetHeader(fingerprintHeader)),
		IP:          c.ClientIP(),
	}

	incident, err := h.intakeService.SubmitIncident(c.Request.Context(), DTOToSubmitInput(input, identity))
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			log.Warn("Submission rejected by rate limit")
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many submissions. Try again later.",
			})
			return
		}
		log.WithError(err).Error("Failed to submit incident in service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, ModelToSubmitResponse(incident))
}

// @Summary Get recent public incidents
// @Description Get the most recent incidents in the public projection, newest first.
// @Tags Public
// @Accept json
// @Produce json
// @Success 200 {array} PublicIncidentResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /public/incidents [get]
func (h *Handler) listPublicIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listPublicIncidents")

	incidents, err := h.intakeService.ListRecentIncidents(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToPublicResponses(incidents))
}

// @Summary Get incidents for the dispatcher console
// @Description Get incidents filtered by status, bounding box and update time. Requires bearer token.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Incident status filter"
// @Param bbox query string false "Bounding box: minLon,minLat,maxLon,maxLat"
// @Param since query string false "Only incidents updated at or after this RFC3339 timestamp"
// @Success 200 {object} ListIncidentsResponse
// @Failure 400 {object} ErrorResponse "Invalid filter parameter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	filter := service.IncidentFilter{
		Status: c.Query("status"),
		BBox:   c.Query("bbox"),
		Since:  c.Query("since"),
	}

	incidents, err := h.queryService.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		if service.IsValidationError(err) {
			log.WithError(err).Warn("Invalid incident filter")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
			return
		}
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ListIncidentsResponse{Incidents: ModelsToSummaryResponses(incidents)})
}

// @Summary Assign a responder to an incident
// @Description Create an assignment and move the incident to the assigned status. Requires bearer token.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incidentId path string true "Incident ID"
// @Param x-dispatcher-id header string false "Dispatcher identifier"
// @Param assignment body AssignResponderRequest true "Responder assignment request"
// @Success 201 {object} AssignmentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Responder already assigned"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/incidents/{incidentId}/assign [post]
func (h *Handler) assignResponder(c *gin.Context) {
	incidentID := c.Param("incidentId")
	log := h.logger.WithField("method", "assignResponder").WithField("incident_id", incidentID)

	var input AssignResponderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}

	var dispatcherID *string
	if value := strings.TrimSpace(c.GetHeader(dispatcherHeader)); value != "" {
		dispatcherID = &value
	}

	assignment, err := h.assignmentService.AssignResponder(c.Request.Context(), incidentID, service.AssignResponderInput{
		ResponderID:  input.ResponderID,
		DispatcherID: dispatcherID,
		Message:      input.Message,
		Priority:     input.Priority,
	})
	if err != nil {
		switch {
		case service.IsValidationError(err):
			log.WithError(err).Warn("Invalid assignment request")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
		case errors.Is(err, service.ErrIncidentNotFound):
			log.Warn("Incident not found for assignment")
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "incident_not_found", Message: "incident not found"})
		case errors.Is(err, service.ErrDuplicateAssignment):
			log.Warn("Responder already assigned to incident")
			c.JSON(http.StatusConflict, ErrorResponse{Error: "assignment_exists", Message: "responder already assigned to this incident"})
		default:
			log.WithError(err).Error("Failed to assign responder in service")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, ModelToAssignmentResponse(assignment))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
