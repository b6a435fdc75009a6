package handlers

import (
	"net/http"
	"time"

	"github.com/seesaw/mfses/pkg/database"
	"github.com/seesaw/mfses/pkg/logger"
	"github.com/seesaw/mfses/pkg/redis"
)

// HealthHandler reports service liveness and dependency health.
type HealthHandler struct {
	db        *database.DB
	redis     *redis.Client
	logger    *logger.Logger
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db *database.DB, rdb *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, logger: log, startedAt: time.Now()}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := map[string]interface{}{
		"service": "mfses",
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	}

	dbStatus, err := h.db.HealthCheck(ctx)
	resp["database"] = dbStatus
	healthy := err == nil

	redisStatus := map[string]interface{}{"enabled": h.redis.Enabled()}
	if h.redis.Enabled() {
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			redisStatus["healthy"] = false
			redisStatus["error"] = err.Error()
		} else {
			redisStatus["healthy"] = true
		}
	}
	resp["redis"] = redisStatus

	status := http.StatusOK
	if !healthy {
		resp["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
