package broadcast

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	// sendChannelSize ограничивает очередь сообщений на клиента
	sendChannelSize = 16
	pingPeriod      = (60 * 9 * time.Second) / 10
)

// Client - одно подключение диспетчерской консоли к live-каналу.
// Канал работает только на отдачу: входящие сообщения игнорируются,
// чтение нужно лишь для обнаружения закрытия соединения.
type Client struct {
	ID     string
	conn   *websocket.Conn
	hub    *Hub
	send   chan Message
	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:     id,
		conn:   conn,
		hub:    hub,
		send:   make(chan Message, sendChannelSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) Start() {
	go c.readPump()
	go c.writePump()
	c.hub.register <- c
}

func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}
	c.cancel()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.Close()
	}()

	for {
		if _, _, err := c.conn.Read(c.ctx); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := wsjson.Write(c.ctx, c.conn, msg); err != nil {
				c.hub.logger.WithField("client_id", c.ID).WithError(err).Warn("Failed to write message")
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(c.ctx); err != nil {
				c.hub.logger.WithField("client_id", c.ID).WithError(err).Debug("Failed to ping client")
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
