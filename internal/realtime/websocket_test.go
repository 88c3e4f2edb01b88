package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", ServeWS(hub, zap.NewNop()))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestServeWS_StreamsOrganizationEvents(t *testing.T) {
	hub := NewHub(4, nil, zap.NewNop())
	server := newWSServer(t, hub)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?organization_id=o1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("o1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), testEvent("o2")))
	require.NoError(t, hub.Publish(context.Background(), testEvent("o1")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "o1", got["organizationId"])
	assert.Equal(t, "i-1", got["interactionId"])
}

func TestServeWS_DisconnectUnsubscribes(t *testing.T) {
	hub := NewHub(4, nil, zap.NewNop())
	server := newWSServer(t, hub)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?organization_id=o1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers("o1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Subscribers("o1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWS_RequiresOrganization(t *testing.T) {
	hub := NewHub(4, nil, zap.NewNop())
	server := newWSServer(t, hub)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
