package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"njuka/middleware"
	"njuka/services/wallet"
)

type WalletController struct {
	Wallet wallet.Service
}

// @Summary Get the caller's wallet balance
// @Tags wallet
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{balance=integer}
// @Failure 404 {object} object{error=string}
// @Router /api/wallet/balance [get]
// @Security ApiKeyAuth
func (wc *WalletController) Balance(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	balance, err := wc.Wallet.GetBalance(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// @Summary Get the house account balance
// @Tags wallet
// @Produce json
// @Param Authorization header string true "Bearer JWT token (admin)"
// @Success 200 {object} object{house_balance=integer}
// @Router /api/admin/house-balance [get]
// @Security ApiKeyAuth
func (wc *WalletController) HouseBalance(c *gin.Context) {
	balance, err := wc.Wallet.GetBalance(c.Request.Context(), wallet.HouseAccountID)
	if errors.Is(err, wallet.ErrUserNotFound) {
		// The house account is created lazily; before the first credit it
		// simply has nothing.
		balance = 0
	} else if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"house_balance": balance})
}

type paymentCallback struct {
	UserUID string `json:"user_uid"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	TxRef   string `json:"tx_ref"`
}

// @Summary Payment provider callback
// @Description Fire-and-forget deposit webhook: always acknowledges receipt
// @Tags wallet
// @Accept json
// @Produce json
// @Success 200 {object} object{status=string}
// @Router /api/payments/webhook [post]
func (wc *WalletController) PaymentWebhook(c *gin.Context) {
	// Webhook contract: never propagate failures back to the provider.
	// Acknowledge receipt and log anything that goes wrong.
	var cb paymentCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		log.Warn().Err(err).Msg("malformed payment callback")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}
	if cb.Status == "success" && cb.Amount > 0 {
		if err := wc.Wallet.Credit(c.Request.Context(), cb.UserUID, cb.Amount, wallet.ReasonDeposit, cb.TxRef); err != nil {
			log.Error().Err(err).Str("uid", cb.UserUID).Str("tx_ref", cb.TxRef).Msg("deposit credit failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
