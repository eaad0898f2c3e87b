package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	TopicSchedule = "schedule"
	TopicEvents   = "events"
	TopicPlayers  = "players"
	TopicNotes    = "notes"
)

// Topics: комнаты, на которые можно подписаться.
var Topics = []string{TopicSchedule, TopicEvents, TopicPlayers, TopicNotes}

func IsTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message: то, что получает подписчик.
type Message struct {
	Type    string      `json:"type"` // например "player.updated"
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic string

	mu     sync.Mutex
	closed bool
}

// Hub раздаёт изменения подписчикам по комнатам-топикам.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.topic]; !ok {
				h.rooms[client.topic] = make(map[*Client]bool)
			}
			h.rooms[client.topic][client] = true
			size := len(h.rooms[client.topic])
			h.mu.Unlock()
			h.logger.Debug("realtime client registered", slog.String("topic", client.topic), slog.Int("clients", size))

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.topic]; ok && room[client] {
				delete(room, client)
				client.closeSend()
				if len(room) == 0 {
					delete(h.rooms, client.topic)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("realtime client unregistered", slog.String("topic", client.topic))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, room := range h.rooms {
		for client := range room {
			client.closeSend()
		}
		delete(h.rooms, topic)
	}
}

// Publish рассылает изменение всем подписчикам топика. Не блокирует: медленный клиент теряет сообщение.
func (h *Hub) Publish(topic, kind string, payload interface{}) {
	data, err := json.Marshal(Message{Type: kind, Topic: topic, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal realtime message", slog.String("topic", topic), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[topic] {
		if !client.trySend(data) {
			h.logger.Warn("realtime client send buffer full, message dropped", slog.String("topic", topic))
		}
	}
}

// ClientCount: число подписчиков топика.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}

// Attach регистрирует соединение в топике и запускает pump-горутины.
func (h *Hub) Attach(conn *websocket.Conn, topic string) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), topic: topic}
	h.register <- client
	go client.writePump()
	go client.readPump()
}

func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// readPump читает только служебные кадры; входящие сообщения игнорируются.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("realtime connection closed unexpectedly", slog.String("topic", c.topic), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("realtime write failed", slog.String("topic", c.topic), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
