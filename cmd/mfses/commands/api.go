package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seesaw/mfses/internal/api"
	"github.com/seesaw/mfses/internal/api/handlers"
	"github.com/seesaw/mfses/internal/dashboard"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server with the websocket run feed.

Endpoints:
  GET  /health                     - Service and dependency health
  GET  /api/dashboard/instruments  - Instrument projection (sector/state/limit filters)
  GET  /api/dashboard/summary      - States, scoring recency, last run
  GET  /api/runs                   - Run history
  GET  /api/runs/{id}              - One run record
  POST /api/pipeline/run           - Trigger a cycle (async, ?force_all=true for full refresh)
  GET  /api/ws/runs                - Websocket feed of run records

Example:
  go run ./cmd/mfses api
  go run ./cmd/mfses api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "override listen port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	feed := api.NewRunFeed(a.logger)
	defer feed.Close()
	a.orchestrator.SetNotifier(feed)

	router := api.NewRouter(
		handlers.NewHealthHandler(a.db, a.redis, a.logger),
		handlers.NewDashboardHandler(dashboard.NewRepository(a.db, a.runs), a.logger),
		handlers.NewRunsHandler(a.orchestrator, a.runs, a.cfg, a.logger),
		feed,
		a.logger,
	)
	server := api.New(a.cfg, a.logger, router)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
