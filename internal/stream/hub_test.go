package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

const testTraceID = "6f1c1a52-2f8e-4d0a-9d7e-3f6b1b2c9a10"

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		run := &models.Run{TraceID: testTraceID, Status: models.RunStatusRunning}
		if err := hub.Serve(w, r, run); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubSnapshotThenUpdate(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	conn := dial(t, newTestServer(t, hub))

	snapshot := readMessage(t, conn)
	assert.Equal(t, MessageTypeSnapshot, snapshot.Type)
	assert.Equal(t, testTraceID, snapshot.TraceID)
	assert.Equal(t, models.RunStatusRunning, snapshot.Status)
	assert.Equal(t, 1, hub.SubscriberCount(testTraceID))

	hub.Publish(&models.Run{TraceID: "another-run", Status: models.RunStatusComplete})
	hub.Publish(&models.Run{TraceID: testTraceID, Status: models.RunStatusComplete})

	update := readMessage(t, conn)
	assert.Equal(t, MessageTypeRunUpdate, update.Type)
	assert.Equal(t, models.RunStatusComplete, update.Status)
	require.NotNil(t, update.Run)
	assert.Equal(t, testTraceID, update.Run.TraceID)
}

func TestHubUnsubscribeOnDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	conn := dial(t, newTestServer(t, hub))

	readMessage(t, conn)
	require.Equal(t, 1, hub.SubscriberCount(testTraceID))

	conn.Close()
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount(testTraceID) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)
	c := &Client{TraceID: testTraceID, send: make(chan Message, 1), hub: hub, log: hub.log}
	hub.Subscribe(c)

	run := &models.Run{TraceID: testTraceID, Status: models.RunStatusRunning}
	hub.Publish(run)
	assert.Equal(t, 1, hub.SubscriberCount(testTraceID))

	hub.Publish(run)
	assert.Equal(t, 0, hub.SubscriberCount(testTraceID))

	// a second unsubscribe must not close the channel twice
	assert.NotPanics(t, func() { hub.Unsubscribe(c) })
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")

	assert.True(t, originChecker(nil)(req))
	assert.True(t, originChecker([]string{"*"})(req))
	assert.False(t, originChecker([]string{"http://localhost:3000"})(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, originChecker([]string{"http://localhost:3000"})(req))
}
