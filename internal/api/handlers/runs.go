package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/pipeline"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

const defaultRunListLimit = 50

// RunsHandler serves pipeline run history and the manual trigger.
type RunsHandler struct {
	orch   *pipeline.Orchestrator
	runs   contracts.RunRepository
	cfg    *config.Config
	logger *logger.Logger

	// busy guards against overlapping manual runs.
	busy atomic.Bool
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(orch *pipeline.Orchestrator, runs contracts.RunRepository, cfg *config.Config, log *logger.Logger) *RunsHandler {
	return &RunsHandler{orch: orch, runs: runs, cfg: cfg, logger: log}
}

// ListRuns handles GET /api/runs.
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(runs),
		"data":    runs,
	})
}

// GetRun handles GET /api/runs/{id}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.runs.Get(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    run,
	})
}

// TriggerRun handles POST /api/pipeline/run. The cycle runs in the
// background; clients follow progress via /api/runs or the websocket
// feed.
func (h *RunsHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	forceAll := r.URL.Query().Get("force_all") == "true"

	if !h.busy.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "A pipeline run is already in progress")
		return
	}

	go func() {
		defer h.busy.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.Pipeline.CycleTimeout)
		defer cancel()

		trigger := pipeline.TriggerManual
		if forceAll {
			trigger = pipeline.TriggerFullRefresh
		}
		if _, err := h.orch.Run(ctx, trigger, forceAll); err != nil {
			if errors.Is(err, pipeline.ErrCycleInProgress) {
				h.logger.Warn("Manual run skipped, a scheduled cycle is in progress")
				return
			}
			h.logger.WithError(err).Error("Manual pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":   true,
		"message":   "Pipeline run started",
		"force_all": forceAll,
	})
}
