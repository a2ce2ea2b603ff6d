package handler

import (
	"net/http"
	"time"

	"github.com/Creat0r69/faith/internal/service"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	svc *service.MarketService
}

// NewHealthHandler creates a HealthHandler backed by the market service.
func NewHealthHandler(svc *service.MarketService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HealthCheck reports liveness plus the feed connection state, the current
// SOL/USD rate, and how many tokens have published statistics.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	connected, rate, tracked := h.svc.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": connected,
		"sol_usd":   rate,
		"tokens":    tracked,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
