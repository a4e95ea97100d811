package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	game_constants "njuka/constants/game"
	"njuka/middleware"
	"njuka/models"
	"njuka/services/archive"
	"njuka/services/game"
	"njuka/services/realtime"
	"njuka/services/wallet"
)

type GameController struct {
	Engine  *game.Engine
	Wallet  wallet.Service
	Hub     *realtime.Hub
	Archive *archive.Service
}

// @Summary Start a solo game
// @Description Creates a CPU or tutorial game, bypassing the lobby flow
// @Tags game
// @Produce json
// @Param mode query string false "Game mode: cpu or tutorial" default(tutorial)
// @Param player_name query string false "Player name" default(Player)
// @Param player_uid query string false "Player user id"
// @Param cpu_count query int false "Number of CPU opponents" default(1)
// @Param entry_fee query int false "Entry fee (cpu mode only)" default(0)
// @Success 200 {object} models.Game
// @Failure 400 {object} object{error=string}
// @Router /new_game [post]
func (gc *GameController) NewGame(c *gin.Context) {
	mode := c.DefaultQuery("mode", game_constants.ModeTutorial)
	playerName := c.DefaultQuery("player_name", "Player")
	playerUID := c.Query("player_uid")
	cpuCount, _ := strconv.Atoi(c.DefaultQuery("cpu_count", "1"))
	entryFee, _ := strconv.ParseInt(c.DefaultQuery("entry_fee", "0"), 10, 64)

	seats := []game.Seat{{Name: playerName, UID: playerUID}}
	switch mode {
	case game_constants.ModeTutorial:
		// Tutorial is a free demo against a single CPU.
		entryFee = 0
		seats = append(seats, game.Seat{Name: game_constants.CPUDemoName, UID: "cpu_demo", IsCPU: true})
	case game_constants.ModeCPU:
		if cpuCount < 1 || cpuCount > game_constants.MaxLobbyPlayers-1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cpu_count must be 1-3"})
			return
		}
		for i := 1; i <= cpuCount; i++ {
			seats = append(seats, game.Seat{
				Name:  fmt.Sprintf("CPU %d", i),
				UID:   fmt.Sprintf("cpu_%d", i),
				IsCPU: true,
			})
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode: use the lobby flow for multiplayer"})
		return
	}

	// CPU seats are free: only the human stakes an entry fee, and the pot
	// is that single fee.
	if entryFee > 0 {
		if err := gc.Wallet.Debit(c.Request.Context(), playerUID, entryFee, wallet.ReasonLobbyDebit, "solo"); err != nil {
			abortWithError(c, err)
			return
		}
	}
	g, err := gc.Engine.NewGame(c.Request.Context(), mode, seats, entryFee, entryFee)
	if err != nil {
		if entryFee > 0 {
			if rerr := gc.Wallet.Credit(c.Request.Context(), playerUID, entryFee, wallet.ReasonLobbyRefund, "solo"); rerr != nil {
				log.Error().Err(rerr).Str("uid", playerUID).Msg("solo fee rollback failed")
			}
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary Fetch a game
// @Tags game
// @Produce json
// @Param id path string true "Game id"
// @Success 200 {object} models.Game
// @Failure 404 {object} object{error=string}
// @Router /game/{id} [get]
func (gc *GameController) Get(c *gin.Context) {
	gameID := c.Param("id")
	g, err := gc.Engine.Get(gameID)
	if err != nil {
		if gc.Archive != nil {
			if archived, ok, aerr := gc.Archive.Game(c.Request.Context(), gameID); aerr == nil && ok {
				c.JSON(http.StatusOK, archived)
				return
			}
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary Draw a card
// @Description Moves the top deck card into the acting player's hand
// @Tags game
// @Produce json
// @Param id path string true "Game id"
// @Param player_uid query string true "Acting player's user id"
// @Success 200 {object} models.Game
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /game/{id}/draw [post]
func (gc *GameController) Draw(c *gin.Context) {
	gameID := c.Param("id")
	playerUID := callerUID(c)
	g, err := gc.Engine.Draw(c.Request.Context(), gameID, playerUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	gc.publish(c, g)
	c.JSON(http.StatusOK, g)
}

// @Summary Discard a card
// @Description Checks the 4-card hand for a win, then discards and advances the turn
// @Tags game
// @Produce json
// @Param id path string true "Game id"
// @Param card_index query int true "Hand index of the card to discard"
// @Param player_uid query string true "Acting player's user id"
// @Success 200 {object} models.Game
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /game/{id}/discard [post]
func (gc *GameController) Discard(c *gin.Context) {
	gameID := c.Param("id")
	playerUID := callerUID(c)
	cardIndex, err := strconv.Atoi(c.Query("card_index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_index is required"})
		return
	}
	g, err := gc.Engine.Discard(c.Request.Context(), gameID, playerUID, cardIndex)
	if err != nil {
		abortWithError(c, err)
		return
	}
	gc.publish(c, g)
	c.JSON(http.StatusOK, g)
}

// @Summary Quit a game
// @Description Forfeits the entry fee; when everyone has quit the pot goes to the house
// @Tags game
// @Produce json
// @Param id path string true "Game id"
// @Param player_uid query string true "Quitting player's user id"
// @Success 200 {object} object{status=string}
// @Failure 404 {object} object{error=string}
// @Router /game/{id}/quit [post]
func (gc *GameController) Quit(c *gin.Context) {
	gameID := c.Param("id")
	playerUID := callerUID(c)
	g, err := gc.Engine.Quit(c.Request.Context(), gameID, playerUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	gc.publish(c, g)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// publish fans the snapshot out and archives it once the game is over.
func (gc *GameController) publish(c *gin.Context, g models.Game) {
	gc.Hub.Publish(realtime.GameChannel(g.ID), realtime.EventGameUpdate, g)
	if g.GameOver && gc.Archive != nil {
		if err := gc.Archive.ArchiveGame(c.Request.Context(), g); err != nil {
			log.Warn().Err(err).Str("game_id", g.ID).Msg("game archival failed")
		}
	}
}

// callerUID resolves the acting player: the authenticated identity when
// present, otherwise the player_uid query parameter.
func callerUID(c *gin.Context) string {
	if uid := c.GetString(middleware.ContextUID); uid != "" {
		return uid
	}
	return c.Query("player_uid")
}
