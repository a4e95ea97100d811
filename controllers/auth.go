package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"njuka/middleware"
	"njuka/services/wallet"
)

type AuthController struct {
	Wallet wallet.Service
}

type guestLoginRequest struct {
	Name string `json:"name" binding:"required"`
	// UID lets a returning guest re-issue a token for an existing wallet.
	UID string `json:"uid"`
}

const guestTokenTTL = 24 * time.Hour

// @Summary Guest login
// @Description Issues an identity token for a display name, creating the wallet account on first use
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} object{token=string,uid=string,name=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/guest [post]
func (ac *AuthController) GuestLogin(c *gin.Context) {
	var req guestLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uid := req.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	if err := ac.Wallet.EnsureAccount(c.Request.Context(), uid, req.Name); err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("account creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	token, err := middleware.MintToken(uid, req.Name, false, guestTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "uid": uid, "name": req.Name})
}
