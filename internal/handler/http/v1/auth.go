package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BearerAuthMiddleware - middleware аутентификации диспетчерских маршрутов.
// Достаточно непустого bearer-токена: проверку его подлинности выполняет
// внешний шлюз
func BearerAuthMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		token := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if token == "" {
			log.Warn("Bearer token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "auth_required",
				Message: "Bearer token required",
			})
			return
		}

		c.Next()
	}
}
