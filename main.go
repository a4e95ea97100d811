package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"njuka/config"
	_ "njuka/docs"
	"njuka/middleware"
	"njuka/models"
	"njuka/routes"
	"njuka/services/archive"
	"njuka/services/game"
	"njuka/services/lobby"
	"njuka/services/realtime"
	"njuka/services/store"
	"njuka/services/wallet"
)

// @title Njuka API
// @version 1.0
// @description Gin server for the Njuka card game: lobbies, games and wallet.
// @BasePath /
func main() {
	godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getenv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		walletSvc  wallet.Service
		archiveSvc *archive.Service
		recorder   game.Recorder
	)
	if os.Getenv("DEV_WALLET") == "true" {
		// Local runs without postgres/redis: in-memory wallet, no archive.
		log.Warn().Msg("DEV_WALLET enabled: balances are in-memory and volatile")
		walletSvc = wallet.NewMemoryService()
	} else {
		gormDB, err := config.ConnectGORM()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("postgres connected")
		if os.Getenv("MIGRATE_POSTGRES") == "true" {
			if err := config.MigrateDatabase(gormDB); err != nil {
				log.Warn().Err(err).Msg("database migration failed")
			} else {
				log.Info().Msg("database migrated")
			}
		}
		pg := wallet.NewPostgresService(gormDB)
		walletSvc = pg
		recorder = pg

		redisClient, err := config.ConnectRedis()
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("redis connected")
		defer redisClient.Close()
		archiveSvc = archive.NewService(redisClient)
	}

	games := store.New[models.Game]()
	lobbies := store.New[models.Lobby]()
	engine := game.NewEngine(games, walletSvc)
	if recorder != nil {
		engine.SetRecorder(recorder)
	}
	manager := lobby.NewManager(lobbies, engine, walletSvc)
	if archiveSvc != nil {
		manager.SetArchiver(archiveSvc)
	}
	hub := realtime.NewHub()

	r := gin.New()
	r.Use(gin.Recovery())
	middleware.SetUpMiddleware(r)
	routes.SetupRoutes(r, routes.Deps{
		Lobbies: manager,
		Engine:  engine,
		Wallet:  walletSvc,
		Hub:     hub,
		Archive: archiveSvc,
	})

	port := getenv("PORT", "8080")
	log.Info().Str("port", port).Msg("starting server")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
