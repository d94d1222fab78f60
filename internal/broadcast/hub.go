package broadcast

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub раздает события инцидентов всем подключенным live-подписчикам.
// Чистый fan-out: без персистентности, без повторов, без подтверждений.
// Подписчики, подключившиеся после отправки события, его не получат -
// сверка состояния для опоздавших лежит на polling-эндпоинтах.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
	logger     *logrus.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(ctx context.Context, logger *logrus.Logger) *Hub {
	ctx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run обрабатывает регистрацию, отключение и рассылку до отмены контекста
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.WithField("client_id", client.ID).Info("Live subscriber connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				h.logger.WithField("client_id", client.ID).Info("Live subscriber disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Медленный клиент с полной очередью отключается,
					// чтобы не тормозить рассылку остальным
					go h.forceDisconnect(client)
				}
			}
			h.mu.RUnlock()
		case <-h.ctx.Done():
			return
		}
	}
}

// Broadcast отправляет сообщение всем подключенным на данный момент клиентам
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	case <-h.ctx.Done():
	}
}

func (h *Hub) forceDisconnect(c *Client) {
	c.Close()
}

// Shutdown останавливает цикл рассылки и закрывает все соединения
func (h *Hub) Shutdown() {
	h.cancel()
	h.mu.Lock()
	for _, client := range h.clients {
		client.Close()
	}
	h.mu.Unlock()
}
