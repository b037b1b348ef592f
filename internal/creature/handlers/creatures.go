package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"creatures-server/internal/creature"
	"creatures-server/internal/middleware"
	"creatures-server/internal/shared/errors"
	"creatures-server/internal/shared/response"
)

type CreatureHandler struct {
	service *creature.Service
}

func NewCreatureHandler(service *creature.Service) *CreatureHandler {
	return &CreatureHandler{service: service}
}

type generateRequest struct {
	Name        string `json:"name"`
	BlockHeight int64  `json:"block_height"`
}

// Generate creates a creature from a block for the authenticated player.
func (h *CreatureHandler) Generate(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_generate")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}
	if req.BlockHeight < 0 {
		response.Error(w, r, logger, errors.Validation("block_height must be non-negative"))
		return
	}

	c, err := h.service.Generate(r.Context(), claims.PlayerID, req.Name, req.BlockHeight)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, c)
}

// Get returns one creature with groups and traits.
func (h *CreatureHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_get")

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("creature ID is required"))
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, c)
}

// List returns the authenticated player's creatures.
func (h *CreatureHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_list")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	creatures, err := h.service.List(r.Context(), claims.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if creatures == nil {
		creatures = []creature.Creature{}
	}

	response.Success(w, http.StatusOK, creatures)
}

// Evolve runs one evolution event for a creature.
func (h *CreatureHandler) Evolve(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_evolve")

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("creature ID is required"))
		return
	}

	result, err := h.service.Evolve(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// Delete removes a creature. Routed behind the admin middleware.
func (h *CreatureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_delete")

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("creature ID is required"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"deleted": id})
}

// History returns a creature's evolution log in append order.
func (h *CreatureHandler) History(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "creature_history")

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("creature ID is required"))
		return
	}

	entries, err := h.service.History(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"creature_id": id,
		"entries":     entries,
		"event_count": len(entries),
	})
}
