package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/seesaw/mfses/internal/api/handlers"
	"github.com/seesaw/mfses/pkg/logger"
)

// NewRouter wires every endpoint.
// SSOT: routing is configured only in this function.
func NewRouter(
	health *handlers.HealthHandler,
	dash *handlers.DashboardHandler,
	runs *handlers.RunsHandler,
	feed *RunFeed,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard/instruments", dash.GetInstruments).Methods("GET")
	api.HandleFunc("/dashboard/summary", dash.GetSummary).Methods("GET")
	api.HandleFunc("/runs", runs.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", runs.GetRun).Methods("GET")
	api.HandleFunc("/pipeline/run", runs.TriggerRun).Methods("POST")
	api.HandleFunc("/ws/runs", feed.Serve).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs every HTTP request.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware turns panics into 500s instead of dropped
// connections.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
