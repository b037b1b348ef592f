package handlers

import (
	"log/slog"
	"net/http"

	"creatures-server/internal/content"
	"creatures-server/internal/creature"
	"creatures-server/internal/evolution"
	"creatures-server/internal/player"
	"creatures-server/internal/shared/response"
)

type StatusResponse struct {
	Service         string `json:"service"`
	Players         int    `json:"players"`
	Creatures       int    `json:"creatures"`
	EvolutionEvents int    `json:"evolution_events"`
	TraitPool       int    `json:"trait_pool"`
	MutationPool    int    `json:"mutation_pool"`
}

type StatusHandler struct {
	playerService   *player.Service
	creatureService *creature.Service
	history         *evolution.Repository
	pools           *content.Pools
}

func NewStatusHandler(playerService *player.Service, creatureService *creature.Service, history *evolution.Repository, pools *content.Pools) *StatusHandler {
	return &StatusHandler{
		playerService:   playerService,
		creatureService: creatureService,
		history:         history,
		pools:           pools,
	}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "status", "remote_addr", r.RemoteAddr)
	logger.Debug("Status requested")

	playerCount, err := h.playerService.GetPlayerCount(ctx)
	if err != nil {
		logger.Warn("Failed to get player count", "error", err)
	}

	creatureCount, err := h.creatureService.Count(ctx)
	if err != nil {
		logger.Warn("Failed to get creature count", "error", err)
	}

	eventCount, err := h.history.CountEvents(ctx)
	if err != nil {
		logger.Warn("Failed to get evolution event count", "error", err)
	}

	resp := StatusResponse{
		Service:         "creatures-server",
		Players:         playerCount,
		Creatures:       creatureCount,
		EvolutionEvents: eventCount,
		TraitPool:       h.pools.TraitCount(),
		MutationPool:    h.pools.MutationCount(),
	}

	response.Success(w, http.StatusOK, resp)

	logger.Debug("Status completed",
		"players", playerCount,
		"creatures", creatureCount,
		"events", eventCount,
	)
}
