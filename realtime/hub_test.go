package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, strings.TrimPrefix(r.URL.Path, "/"))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + topic
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesOnlyTopicSubscribers(t *testing.T) {
	hub, srv := startHub(t)

	players := dial(t, srv, TopicPlayers)
	notes := dial(t, srv, TopicNotes)

	require.Eventually(t, func() bool {
		return hub.ClientCount(TopicPlayers) == 1 && hub.ClientCount(TopicNotes) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(TopicPlayers, "player.created", map[string]string{"id": "p1"})

	_ = players.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := players.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string            `json:"type"`
		Topic   string            `json:"topic"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "player.created", msg.Type)
	assert.Equal(t, TopicPlayers, msg.Topic)
	assert.Equal(t, "p1", msg.Payload["id"])

	_ = notes.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = notes.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, TopicSchedule)
	require.Eventually(t, func() bool { return hub.ClientCount(TopicSchedule) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount(TopicSchedule) == 0 }, time.Second, 10*time.Millisecond)

	hub.Publish(TopicSchedule, "schedule.saved", nil)
}

func TestIsTopic(t *testing.T) {
	assert.True(t, IsTopic(TopicEvents))
	assert.False(t, IsTopic("tournament_1"))
}
