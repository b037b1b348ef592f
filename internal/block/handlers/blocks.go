package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"creatures-server/internal/block"
	"creatures-server/internal/shared/errors"
	"creatures-server/internal/shared/response"
)

// BlockHandler exposes cached block lookups so clients can preview a
// block before generating from it.
type BlockHandler struct {
	blocks block.Fetcher
}

func NewBlockHandler(blocks block.Fetcher) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

// GetByHeight returns the block at the requested height.
func (h *BlockHandler) GetByHeight(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "block_get")

	height, err := strconv.ParseInt(r.PathValue("height"), 10, 64)
	if err != nil || height < 0 {
		response.Error(w, r, logger, errors.Validation("height must be a non-negative integer"))
		return
	}

	data, err := h.blocks.FetchByHeight(r.Context(), height)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, data)
}
