package v1

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/broadcast"
)

// @Summary Subscribe to live incident events
// @Description Upgrade the connection to WebSocket and stream incident events as they happen. No replay of past events.
// @Tags Public
// @Success 101 "Switching Protocols"
// @Router /ws/incidents [get]
func (h *Handler) serveWS(c *gin.Context) {
	log := h.logger.WithField("method", "serveWS")

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Warn("Failed to accept websocket connection")
		return
	}

	client := broadcast.NewClient(uuid.NewString(), conn, h.hub)
	client.Start()
}
