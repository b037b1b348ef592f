package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/redis"
	"creatures-server/internal/shared/response"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	dbStatus := "disconnected"
	if err := h.db.Ping(); err == nil {
		dbStatus = "connected"
	} else {
		logger.Warn("Database ping failed", "error", err)
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "disconnected"
		if err := h.redis.Ping(r.Context()).Err(); err == nil {
			redisStatus = "connected"
		} else {
			logger.Warn("Redis ping failed", "error", err)
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  dbStatus,
		Redis:     redisStatus,
	}

	response.Success(w, http.StatusOK, resp)
}
