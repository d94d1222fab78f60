package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// Публичные маршруты: подача и чтение без аутентификации
	public := router.Group("/public")
	{
		public.POST("/incidents", h.submitPublicIncident)
		public.GET("/incidents", h.listPublicIncidents)
	}

	// Диспетчерские маршруты за bearer-аутентификацией
	api := router.Group("/api", BearerAuthMiddleware(h.logger))
	{
		api.GET("/incidents", h.listIncidents)
		api.POST("/incidents/:incidentId/assign", h.assignResponder)
	}

	// Подписка на живые события инцидентов
	router.GET("/ws/incidents", h.serveWS)

	// Маршрут Health-check
	router.GET("/system/health", h.healthCheck)
}
