package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
)

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(conn, models.RoleAdmin).ReadLoop()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPublishReachesClient(t *testing.T) {
	h := New()
	conn := dial(t, newTestServer(t, h))

	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)

	h.Publish(context.Background(), events.Event{
		Type:    events.CheckIn,
		CheckIn: &models.CheckInView{EngineerName: "Budi"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "check_in", msg.Event)
	assert.Equal(t, "Budi", msg.Data["engineerName"])
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := New()
	conn := dial(t, newTestServer(t, h))
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return h.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutPayloadIsIgnored(t *testing.T) {
	h := New()
	assert.NotPanics(t, func() {
		h.Publish(context.Background(), events.Event{Type: events.ReportDelivery})
	})
}
