package server

import (
	"log/slog"
	"net/http"

	"creatures-server/internal/auth"
	authHandlers "creatures-server/internal/auth/handlers"
	"creatures-server/internal/block"
	blockHandlers "creatures-server/internal/block/handlers"
	"creatures-server/internal/content"
	"creatures-server/internal/creature"
	creatureHandlers "creatures-server/internal/creature/handlers"
	"creatures-server/internal/evolution"
	"creatures-server/internal/middleware"
	"creatures-server/internal/player"
	playerHandlers "creatures-server/internal/player/handlers"
	serverHandlers "creatures-server/internal/server/handlers"
	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/redis"
)

type Routes struct {
	db              *database.DB
	redis           *redis.Client
	playerService   *player.Service
	authService     *auth.Service
	creatureService *creature.Service
	blocks          block.Fetcher
	history         *evolution.Repository
	pools           *content.Pools
	oauthConfig     *auth.OAuthConfig
	logger          *slog.Logger
}

func NewRoutes(
	db *database.DB,
	redisClient *redis.Client,
	playerService *player.Service,
	authService *auth.Service,
	creatureService *creature.Service,
	blocks block.Fetcher,
	history *evolution.Repository,
	pools *content.Pools,
	oauthConfig *auth.OAuthConfig,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:              db,
		redis:           redisClient,
		playerService:   playerService,
		authService:     authService,
		creatureService: creatureService,
		blocks:          blocks,
		history:         history,
		pools:           pools,
		oauthConfig:     oauthConfig,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis)
	statusHandler := serverHandlers.NewStatusHandler(r.playerService, r.creatureService, r.history, r.pools)
	playersHandler := playerHandlers.NewPlayersHandler(r.playerService)
	meHandler := playerHandlers.NewMeHandler()
	logoutHandler := authHandlers.NewLogoutHandler()

	creatureHandler := creatureHandlers.NewCreatureHandler(r.creatureService)
	blockHandler := blockHandlers.NewBlockHandler(r.blocks)
	ownership := middleware.NewOwnershipMiddleware(r.db)

	googleAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GoogleProvider,
		r.playerService,
		r.authService,
		r.oauthConfig.GoogleConfigured,
	)
	githubAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GitHubProvider,
		r.playerService,
		r.authService,
		r.oauthConfig.GitHubConfigured,
	)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.Handle("/api/server/status", statusHandler)
	mux.Handle("GET /api/blocks/{height}", http.HandlerFunc(blockHandler.GetByHeight))

	// Protected endpoints (authenticated users)
	mux.Handle("/api/players/me", middleware.JWTMiddleware(meHandler))
	mux.Handle("POST /api/creatures", middleware.JWTMiddleware(http.HandlerFunc(creatureHandler.Generate)))
	mux.Handle("GET /api/creatures", middleware.JWTMiddleware(http.HandlerFunc(creatureHandler.List)))
	mux.Handle("GET /api/creatures/{id}", ownership.Require(http.HandlerFunc(creatureHandler.Get)))
	mux.Handle("POST /api/creatures/{id}/evolve", ownership.Require(http.HandlerFunc(creatureHandler.Evolve)))
	mux.Handle("GET /api/creatures/{id}/history", ownership.Require(http.HandlerFunc(creatureHandler.History)))

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("/api/players", middleware.RequireAdmin(playersHandler))
	mux.Handle("DELETE /api/creatures/{id}", middleware.RequireAdmin(http.HandlerFunc(creatureHandler.Delete)))

	// OAuth endpoints
	mux.HandleFunc("/auth/google", googleAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/google/callback", googleAuthHandler.HandleCallback)
	mux.HandleFunc("/auth/github", githubAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/github/callback", githubAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", logoutHandler)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/server/status", "/api/blocks/{height}"},
		"protected_endpoints", []string{"/api/players/me", "/api/creatures"},
		"admin_endpoints", []string{"/api/players"},
		"auth_endpoints", []string{"/auth/google", "/auth/github", "/auth/logout"},
	)

	return mux
}
