package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/dashboard"
	"github.com/seesaw/mfses/pkg/logger"
)

// DashboardHandler serves the read-only dashboard projections.
type DashboardHandler struct {
	repo   *dashboard.Repository
	logger *logger.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(repo *dashboard.Repository, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{repo: repo, logger: log}
}

// GetInstruments handles GET /api/dashboard/instruments.
// Query params: sector, state, limit.
func (h *DashboardHandler) GetInstruments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := dashboard.Filter{Sector: q.Get("sector")}

	if raw := q.Get("state"); raw != "" {
		state := contracts.State(raw)
		if !state.Valid() {
			respondError(w, http.StatusBadRequest, "Invalid state filter")
			return
		}
		filter.State = state
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	views, err := h.repo.ListInstruments(ctx, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list dashboard instruments")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve instruments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(views),
		"data":    views,
	})
}

// GetSummary handles GET /api/dashboard/summary.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Summary(r.Context(), time.Now())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build dashboard summary")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}
