package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/team-schedule/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin уже ограничен CORS-настройками API; лента только на чтение.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подписывает клиента на ленту изменений: /ws/{topic}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if !realtime.IsTopic(topic) {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		slog.WarnContext(r.Context(), "failed to upgrade websocket connection", slog.String("topic", topic), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, topic)
}
