package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"njuka/services/realtime"
)

const pingInterval = 15 * time.Second

// pushEvent is the wire form of a server push. Data stays raw until the
// handler knows which payload type the event carries.
type pushEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// pushChannel is one websocket subscription to a lobby or game channel.
// Events arrive on Events until the connection drops, then Events is closed.
type pushChannel struct {
	conn      *websocket.Conn
	events    chan pushEvent
	open      atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// dialPush connects to /ws/<kind>/<id> on the server behind baseURL.
// playerName, when set, is passed for presence tracking on game channels.
func dialPush(ctx context.Context, baseURL, kind, id, playerName string) (*pushChannel, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + kind + "/" + id
	if playerName != "" {
		q := u.Query()
		q.Set("player_name", playerName)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	pc := &pushChannel{
		conn:   conn,
		events: make(chan pushEvent, 16),
		done:   make(chan struct{}),
	}
	go pc.readLoop()
	go pc.pingLoop()
	return pc, nil
}

// Open reports whether the channel has confirmed liveness, which requires at
// least one server frame (a pong counts). Until then poll results stay
// authoritative.
func (pc *pushChannel) Open() bool { return pc.open.Load() }

func (pc *pushChannel) readLoop() {
	defer close(pc.events)
	for {
		_, payload, err := pc.conn.ReadMessage()
		if err != nil {
			pc.open.Store(false)
			return
		}
		pc.open.Store(true)

		var ev pushEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Debug().Err(err).Msg("push: dropping malformed frame")
			continue
		}
		if ev.Type == realtime.EventPong {
			continue
		}
		select {
		case pc.events <- ev:
		case <-pc.done:
			return
		}
	}
}

// pingLoop keeps the connection alive; the server answers with a pong frame
// which readLoop uses as the liveness confirmation.
func (pc *pushChannel) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	ping, _ := json.Marshal(pushEvent{Type: "ping"})
	if err := pc.conn.WriteMessage(websocket.TextMessage, ping); err != nil {
		return
	}
	for {
		select {
		case <-ticker.C:
			if err := pc.conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		case <-pc.done:
			return
		}
	}
}

func (pc *pushChannel) Close() {
	pc.closeOnce.Do(func() {
		close(pc.done)
		pc.open.Store(false)
		pc.conn.Close()
	})
}
