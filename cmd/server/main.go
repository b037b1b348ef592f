package main

import (
	"log/slog"
	"net/http"
	"os"

	"creatures-server/internal/auth"
	"creatures-server/internal/block"
	"creatures-server/internal/content"
	"creatures-server/internal/creature"
	"creatures-server/internal/evolution"
	"creatures-server/internal/middleware"
	"creatures-server/internal/player"
	"creatures-server/internal/server"
	"creatures-server/internal/shared/config"
	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/logger"
	"creatures-server/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig

	logger.Init()
	log := slog.With("component", "main")

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", "error", err)
		}
	}()

	pools, err := content.LoadPools(cfg.Generation.ContentDir, slog.Default())
	if err != nil {
		log.Error("Failed to load content pools", "error", err)
		os.Exit(1)
	}

	playerRepo := player.NewRepository(db)
	playerService := player.NewService(playerRepo, slog.Default())

	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, slog.Default())
	oauthConfig := auth.NewOAuthConfig()

	blockClient := block.NewClient(block.ClientOptions{
		APIURL:       cfg.Bitcoin.APIURL,
		FetchTimeout: cfg.Bitcoin.FetchTimeout,
		MaxRetries:   cfg.Bitcoin.MaxRetries,
		RetryBackoff: cfg.Bitcoin.RetryBackoff,
	}, slog.Default())
	blocks := block.NewCachedClient(blockClient, redisClient, cfg.Bitcoin.CacheTTL, slog.Default())

	historyRepo := evolution.NewRepository(db)
	creatureRepo := creature.NewRepository(db)
	creatureService := creature.NewService(
		creatureRepo,
		blocks,
		content.NewTraitRepository(pools),
		content.NewMutationService(pools),
		historyRepo,
		creature.Config{
			TotalParticles: cfg.Generation.TotalParticles,
			Evolution: evolution.Config{
				MutationIntensity:       cfg.Evolution.MutationIntensity,
				MaxMutationsPerEvent:    cfg.Evolution.MaxMutationsPerEvent,
				EnableExoticMutations:   cfg.Evolution.EnableExoticMutations,
				EnableSubclassMutations: cfg.Evolution.EnableSubclassMutations,
			},
		},
		slog.Default(),
	)

	routes := server.NewRoutes(db, redisClient, playerService, authService, creatureService, blocks, historyRepo, pools, oauthConfig, slog.Default())
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.Server.Environment == "production",
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info("Server starting",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
