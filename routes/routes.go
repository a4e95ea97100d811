package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"njuka/controllers"
	"njuka/middleware"
	"njuka/services/archive"
	"njuka/services/game"
	"njuka/services/lobby"
	"njuka/services/realtime"
	"njuka/services/wallet"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Lobbies *lobby.Manager
	Engine  *game.Engine
	Wallet  wallet.Service
	Hub     *realtime.Hub
	Archive *archive.Service
}

// SetupRoutes registers the full REST + WS surface.
func SetupRoutes(r *gin.Engine, deps Deps) {
	lobbyCtl := &controllers.LobbyController{Lobbies: deps.Lobbies, Hub: deps.Hub, Archive: deps.Archive}
	gameCtl := &controllers.GameController{Engine: deps.Engine, Wallet: deps.Wallet, Hub: deps.Hub, Archive: deps.Archive}
	walletCtl := &controllers.WalletController{Wallet: deps.Wallet}
	authCtl := &controllers.AuthController{Wallet: deps.Wallet}
	wsCtl := &controllers.WSController{Lobbies: deps.Lobbies, Engine: deps.Engine, Hub: deps.Hub, Archive: deps.Archive}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Njuka backend is live"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/guest", authCtl.GuestLogin)

	r.POST("/lobby/create", lobbyCtl.Create)
	r.GET("/lobby/list", lobbyCtl.List)
	r.GET("/lobby/:id", lobbyCtl.Get)
	r.POST("/lobby/:id/join", lobbyCtl.Join)
	r.POST("/lobby/:id/cancel", lobbyCtl.Cancel)
	r.POST("/lobby/:id/quit", lobbyCtl.Quit)
	r.POST("/lobby/:id/start", lobbyCtl.Start)

	r.POST("/new_game", gameCtl.NewGame)
	r.GET("/game/:id", gameCtl.Get)
	r.POST("/game/:id/draw", gameCtl.Draw)
	r.POST("/game/:id/discard", gameCtl.Discard)
	r.POST("/game/:id/quit", gameCtl.Quit)

	r.GET("/ws/lobby/:id", wsCtl.LobbyWS)
	r.GET("/ws/game/:id", wsCtl.GameWS)

	api := r.Group("/api")
	api.POST("/payments/webhook", walletCtl.PaymentWebhook)
	api.GET("/wallet/balance", middleware.Auth(), walletCtl.Balance)
	api.GET("/admin/house-balance", middleware.Auth(), middleware.AdminOnly(), walletCtl.HouseBalance)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
