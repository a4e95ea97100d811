package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"njuka/models"
	"njuka/services/archive"
	"njuka/services/lobby"
	"njuka/services/realtime"
)

type LobbyController struct {
	Lobbies *lobby.Manager
	Hub     *realtime.Hub
	Archive *archive.Service
}

type CreateLobbyRequest struct {
	Host       string `json:"host" binding:"required"`
	HostUID    string `json:"host_uid" binding:"required"`
	MaxPlayers int    `json:"max_players" binding:"required,min=2,max=4"`
	EntryFee   int64  `json:"entry_fee"`
}

type JoinLobbyRequest struct {
	Player    string `json:"player" binding:"required"`
	PlayerUID string `json:"player_uid" binding:"required"`
}

// @Summary Create a lobby
// @Description Opens a new lobby with the caller as host, debiting the entry fee
// @Tags lobby
// @Accept json
// @Produce json
// @Param request body controllers.CreateLobbyRequest true "Lobby parameters"
// @Success 200 {object} models.Lobby
// @Failure 400 {object} object{error=string}
// @Router /lobby/create [post]
func (lc *LobbyController) Create(c *gin.Context) {
	var req CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := lc.Lobbies.Create(c.Request.Context(), req.Host, req.HostUID, req.MaxPlayers, req.EntryFee)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// @Summary Join a lobby
// @Description Adds the caller to the lobby; filling the last seat starts the game
// @Tags lobby
// @Accept json
// @Produce json
// @Param id path string true "Lobby id"
// @Param request body controllers.JoinLobbyRequest true "Joining player"
// @Success 200 {object} object{lobby=models.Lobby,game=models.Game}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /lobby/{id}/join [post]
func (lc *LobbyController) Join(c *gin.Context) {
	var req JoinLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lobbyID := c.Param("id")
	l, g, err := lc.Lobbies.Join(c.Request.Context(), lobbyID, req.Player, req.PlayerUID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Broadcast so every member, existing ones included, sees the new
	// roster (and started=true plus the game id when quorum was reached).
	lc.Hub.Publish(realtime.LobbyChannel(l.ID), realtime.EventLobbyUpdate, l)
	if g != nil {
		lc.Hub.Publish(realtime.GameChannel(g.ID), realtime.EventGameUpdate, g)
	}

	c.JSON(http.StatusOK, gin.H{"lobby": l, "game": g})
}

// @Summary List open lobbies
// @Description Returns lobbies that have not started; started lobbies stay fetchable by id
// @Tags lobby
// @Produce json
// @Success 200 {array} models.Lobby
// @Router /lobby/list [get]
func (lc *LobbyController) List(c *gin.Context) {
	lobbies := lc.Lobbies.List()
	if lobbies == nil {
		lobbies = []models.Lobby{}
	}
	c.JSON(http.StatusOK, lobbies)
}

// @Summary Fetch one lobby
// @Description Works regardless of started state; used for rehydration and polling
// @Tags lobby
// @Produce json
// @Param id path string true "Lobby id"
// @Success 200 {object} models.Lobby
// @Failure 404 {object} object{error=string}
// @Router /lobby/{id} [get]
func (lc *LobbyController) Get(c *gin.Context) {
	lobbyID := c.Param("id")
	l, err := lc.Lobbies.Get(lobbyID)
	if err != nil {
		// A lobby that was cancelled or swept may still be in the archive;
		// serving it avoids a 404 race against late reconnecting members.
		if lc.Archive != nil {
			if archived, ok, aerr := lc.Archive.Lobby(c.Request.Context(), lobbyID); aerr == nil && ok {
				c.JSON(http.StatusOK, archived)
				return
			}
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// @Summary Cancel a lobby
// @Description Host-only; refunds all collected entry fees
// @Tags lobby
// @Produce json
// @Param id path string true "Lobby id"
// @Param host_uid query string true "Host user id"
// @Success 200 {object} object{status=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /lobby/{id}/cancel [post]
func (lc *LobbyController) Cancel(c *gin.Context) {
	lobbyID := c.Param("id")
	hostUID := c.Query("host_uid")
	l, err := lc.Lobbies.Cancel(c.Request.Context(), lobbyID, hostUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if lc.Archive != nil {
		if err := lc.Archive.ArchiveLobby(c.Request.Context(), l); err != nil {
			log.Warn().Err(err).Str("lobby_id", lobbyID).Msg("lobby archival failed")
		}
	}
	lc.Hub.Publish(realtime.LobbyChannel(lobbyID), realtime.EventLobbyCancelled, gin.H{"lobby_id": lobbyID})
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "lobby cancelled and participants refunded"})
}

// @Summary Leave a lobby
// @Description Non-host member leaves a not-yet-started lobby; their fee is refunded
// @Tags lobby
// @Produce json
// @Param id path string true "Lobby id"
// @Param player_uid query string true "Leaving player's user id"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /lobby/{id}/quit [post]
func (lc *LobbyController) Quit(c *gin.Context) {
	lobbyID := c.Param("id")
	playerUID := c.Query("player_uid")
	l, err := lc.Lobbies.Quit(c.Request.Context(), lobbyID, playerUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	lc.Hub.Publish(realtime.LobbyChannel(lobbyID), realtime.EventLobbyUpdate, l)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "player left lobby"})
}

// @Summary Start a lobby manually
// @Description Host-forced start once at least 2 players have joined
// @Tags lobby
// @Produce json
// @Param id path string true "Lobby id"
// @Param host_uid query string true "Host user id"
// @Success 200 {object} object{lobby=models.Lobby,game=models.Game}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /lobby/{id}/start [post]
func (lc *LobbyController) Start(c *gin.Context) {
	lobbyID := c.Param("id")
	hostUID := c.Query("host_uid")
	l, g, err := lc.Lobbies.Start(c.Request.Context(), lobbyID, hostUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	lc.Hub.Publish(realtime.LobbyChannel(l.ID), realtime.EventLobbyUpdate, l)
	lc.Hub.Publish(realtime.GameChannel(g.ID), realtime.EventGameUpdate, g)
	c.JSON(http.StatusOK, gin.H{"lobby": l, "game": g})
}
