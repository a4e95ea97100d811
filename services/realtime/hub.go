// Package realtime is the fan-out layer: it pushes lobby and game snapshots
// to every websocket subscribed to an entity's channel. Delivery is
// at-most-once and best-effort; every event carries a full snapshot, so a
// dropped or reordered message is healed by the next one (or by the client's
// poll fallback). The hub holds no business logic.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is the wire envelope for every push message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types emitted by the server.
const (
	EventLobbyUpdate    = "lobby_update"
	EventLobbyCancelled = "lobby_cancelled"
	EventGameUpdate     = "game_update"
	EventPong           = "pong"
)

const sendBuffer = 16

type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Subscription]struct{})}
}

// Subscription is one websocket's membership in a channel. All writes to the
// connection go through the send queue so the write side is single-threaded.
type Subscription struct {
	hub     *Hub
	channel string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

// Subscribe registers conn on channel and starts its write pump. The caller
// owns the read side and must Close the subscription when the reader exits.
func (h *Hub) Subscribe(channel string, conn *websocket.Conn) *Subscription {
	s := &Subscription{
		hub:     h,
		channel: channel,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
	h.mu.Lock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.channels[channel] = subs
	}
	subs[s] = struct{}{}
	h.mu.Unlock()

	go s.writePump()
	return s
}

// Publish marshals the event once and queues it to every subscriber. A
// subscriber with a full queue is dropped rather than blocking the
// publisher; its client recovers via polling.
func (h *Hub) Publish(channel, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("event marshal failed")
		return
	}
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.channels[channel]))
	for s := range h.channels[channel] {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.send <- payload:
		case <-s.done:
		default:
			log.Warn().Str("channel", channel).Msg("slow subscriber dropped")
			s.Close()
		}
	}
}

// Subscribers reports how many connections are on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}

// Enqueue queues a raw message to this subscriber only (ping replies).
func (s *Subscription) Enqueue(payload []byte) {
	select {
	case s.send <- payload:
	case <-s.done:
	default:
	}
}

// Close removes the subscription and closes the connection. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if subs, ok := s.hub.channels[s.channel]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.channels, s.channel)
			}
		}
		s.hub.mu.Unlock()
		close(s.done)
	})
}

func (s *Subscription) writePump() {
	defer s.conn.Close()
	for {
		select {
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
