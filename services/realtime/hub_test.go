package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialSubscriber spins up a server-side subscription on channel and returns
// the client end of the socket.
func dialSubscriber(t *testing.T, hub *Hub, channel string) *websocket.Conn {
	t.Helper()
	subscribed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := hub.Subscribe(channel, conn)
		close(subscribed)
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("subscription never registered")
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestPublishReachesChannelSubscribers(t *testing.T) {
	hub := NewHub()
	conn := dialSubscriber(t, hub, LobbyChannel("l1"))
	other := dialSubscriber(t, hub, LobbyChannel("l2"))

	assert.Equal(t, 1, hub.Subscribers(LobbyChannel("l1")))
	hub.Publish(LobbyChannel("l1"), EventLobbyUpdate, map[string]string{"id": "l1"})

	ev := readEvent(t, conn)
	assert.Equal(t, EventLobbyUpdate, ev.Type)
	data, ok := ev.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "l1", data["id"])

	// The other channel stays silent.
	other.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestPublishFansOut(t *testing.T) {
	hub := NewHub()
	c1 := dialSubscriber(t, hub, GameChannel("g1"))
	c2 := dialSubscriber(t, hub, GameChannel("g1"))
	require.Equal(t, 2, hub.Subscribers(GameChannel("g1")))

	hub.Publish(GameChannel("g1"), EventGameUpdate, map[string]string{"id": "g1"})
	assert.Equal(t, EventGameUpdate, readEvent(t, c1).Type)
	assert.Equal(t, EventGameUpdate, readEvent(t, c2).Type)
}

func TestCloseRemovesSubscription(t *testing.T) {
	hub := NewHub()
	conn := dialSubscriber(t, hub, LobbyChannel("l1"))

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.Subscribers(LobbyChannel("l1")) == 0
	}, time.Second, 10*time.Millisecond)

	// Publishing into an empty channel is a no-op.
	hub.Publish(LobbyChannel("l1"), EventLobbyUpdate, nil)
}

func TestChannelKeys(t *testing.T) {
	assert.Equal(t, "lobby:abc", LobbyChannel("abc"))
	assert.Equal(t, "game:abc", GameChannel("abc"))
}
