package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	redis_models "njuka/models/redis"
	"njuka/services/archive"
	"njuka/services/game"
	"njuka/services/lobby"
	"njuka/services/realtime"
)

// WSController upgrades push-channel connections and ties them into the hub.
// The read side handles only keepalive pings; all state flows server→client.
type WSController struct {
	Lobbies *lobby.Manager
	Engine  *game.Engine
	Hub     *realtime.Hub
	Archive *archive.Service
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LobbyWS serves /ws/lobby/:id.
func (wc *WSController) LobbyWS(c *gin.Context) {
	lobbyID := c.Param("id")
	if _, err := wc.Lobbies.Get(lobbyID); err != nil {
		log.Warn().Str("lobby_id", lobbyID).Msg("ws connect to unknown lobby")
		c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	wc.serve(conn, realtime.LobbyChannel(lobbyID), "")
}

// GameWS serves /ws/game/:id?player_name=.
func (wc *WSController) GameWS(c *gin.Context) {
	gameID := c.Param("id")
	playerName := c.Query("player_name")
	if _, err := wc.Engine.Get(gameID); err != nil {
		log.Warn().Str("game_id", gameID).Msg("ws connect to unknown game")
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	wc.serve(conn, realtime.GameChannel(gameID), playerName)
}

// serve runs the connection's read loop until the client goes away.
func (wc *WSController) serve(conn *websocket.Conn, channel, playerName string) {
	sub := wc.Hub.Subscribe(channel, conn)
	defer sub.Close()

	if wc.Archive != nil && playerName != "" {
		wc.Archive.SetPresence(context.Background(), channel, playerName, redis_models.StatusOnline)
	}

	pong, _ := json.Marshal(realtime.Event{Type: realtime.EventPong})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(payload, &msg) == nil && msg.Type == "ping" {
			sub.Enqueue(pong)
		}
	}

	if wc.Archive != nil && playerName != "" {
		wc.Archive.SetPresence(context.Background(), channel, playerName, redis_models.StatusOffline)
	}
}
