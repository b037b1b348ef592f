package handlers

import (
	"log/slog"
	"net/http"

	"creatures-server/internal/player"
	"creatures-server/internal/shared/errors"
	"creatures-server/internal/shared/response"
)

type PlayersHandler struct {
	service *player.Service
}

func NewPlayersHandler(service *player.Service) *PlayersHandler {
	return &PlayersHandler{service: service}
}

func (h *PlayersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "players", "remote_addr", r.RemoteAddr)
	logger.Debug("Players list requested")

	players, err := h.service.GetAllPlayers(ctx)
	if err != nil {
		response.ErrorWithMessage(w, r, logger, errors.WrapInternal("failed to fetch players", err), "Failed to fetch players")
		return
	}

	if players == nil {
		players = []player.Player{}
	}

	response.Success(w, http.StatusOK, players)

	logger.Debug("Players list completed", "player_count", len(players))
}
