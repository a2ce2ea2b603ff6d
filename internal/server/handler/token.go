package handler

import (
	"errors"
	"net/http"

	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/service"
)

// TokenHandler serves tracked tokens and their live statistics.
type TokenHandler struct {
	svc *service.MarketService
}

// NewTokenHandler creates a TokenHandler backed by the market service.
func NewTokenHandler(svc *service.MarketService) *TokenHandler {
	return &TokenHandler{svc: svc}
}

// ListTokens returns every tracked token joined with its live statistics.
// GET /api/tokens
func (h *TokenHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Tokens(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list tokens failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": views})
}

// GetStats returns the statistics snapshot for one token.
// GET /api/tokens/{mint}/stats
func (h *TokenHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	mint := r.PathValue("mint")
	if mint == "" {
		writeError(w, http.StatusBadRequest, "mint required")
		return
	}

	stats, err := h.svc.TokenStats(r.Context(), mint)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no statistics for token")
			return
		}
		writeError(w, http.StatusInternalServerError, "stats lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
