package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"njuka/services/game"
	"njuka/services/lobby"
	"njuka/services/wallet"
)

// abortWithError maps the service error taxonomy onto HTTP responses. Every
// mutation endpoint returns a structured reason, never a bare 500, so the
// client reconciler can map known reasons to user-facing messages.
func abortWithError(c *gin.Context, err error) {
	var insufficient *wallet.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient balance",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, wallet.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, lobby.ErrLobbyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
	case errors.Is(err, game.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, lobby.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, lobby.ErrLobbyFull),
		errors.Is(err, lobby.ErrLobbyStarted),
		errors.Is(err, lobby.ErrAlreadyJoined),
		errors.Is(err, lobby.ErrNotEnoughPlayers),
		errors.Is(err, lobby.ErrInvalidCapacity),
		errors.Is(err, lobby.ErrInvalidEntryFee),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrAlreadyDrawn),
		errors.Is(err, game.ErrMustDrawFirst),
		errors.Is(err, game.ErrInvalidCardIndex),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotInGame),
		errors.Is(err, game.ErrInvalidMode),
		errors.Is(err, game.ErrBadSeatCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
