package commands

import (
	"fmt"

	"github.com/seesaw/mfses/internal/collector"
	"github.com/seesaw/mfses/internal/external/polygon"
	"github.com/seesaw/mfses/internal/markov"
	"github.com/seesaw/mfses/internal/pipeline"
	"github.com/seesaw/mfses/internal/prioritizer"
	"github.com/seesaw/mfses/internal/scoring"
	"github.com/seesaw/mfses/internal/universe"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/database"
	"github.com/seesaw/mfses/pkg/httputil"
	"github.com/seesaw/mfses/pkg/logger"
	"github.com/seesaw/mfses/pkg/redis"
)

// app holds the wired component graph shared by the long-running
// commands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	redis  *redis.Client

	instruments *universe.Repository
	states      *markov.Repository
	raws        *collector.Repository
	scores      *scoring.Repository
	runs        *pipeline.Repository

	cache        collector.ResponseCache
	polygon      *polygon.Client
	machine      *markov.Machine
	prioritizer  *prioritizer.Prioritizer
	collector    *collector.Collector
	engine       *scoring.Engine
	orchestrator *pipeline.Orchestrator
}

// buildApp loads config and wires the full pipeline stack. Callers
// must invoke close() when done.
func buildApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to in-process cache and limiter")
		rdb = redis.Disabled()
	}

	a := &app{
		cfg:    cfg,
		logger: log,
		db:     db,
		redis:  rdb,

		instruments: universe.NewRepository(db),
		states:      markov.NewRepository(db),
		raws:        collector.NewRepository(db),
		scores:      scoring.NewRepository(db),
		runs:        pipeline.NewRepository(db),
	}

	// Shared infrastructure degrades gracefully: without Redis the
	// limiter and cache are process-local, which is fine single-node.
	var limiter polygon.Limiter
	if rdb.Enabled() {
		limiter = polygon.NewSharedLimiter(redis.NewRateLimiter(rdb, "mfses"), cfg.Polygon.RatePerMinute)
		a.cache = collector.NewRedisCache(redis.NewCache(rdb, "mfses"))
	} else {
		limiter = polygon.NewLocalLimiter(cfg.Polygon.RatePerMinute)
		a.cache = collector.NewMemoryCache(log)
	}

	a.polygon = polygon.New(cfg, httputil.New(log), limiter, log)
	a.machine = markov.NewMachine(a.states, log)
	a.prioritizer = prioritizer.New(a.states, log)
	a.collector = collector.New(a.polygon, a.cache, a.raws, cfg, log)
	a.engine = scoring.NewEngine(scoring.NewGrahamValuer(cfg.Pipeline.AAAYield))
	a.orchestrator = pipeline.New(
		a.machine, a.prioritizer, a.collector, a.engine, a.polygon,
		a.instruments, a.scores, a.runs, cfg, log,
	)

	closeFn := func() {
		db.Close()
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return a, closeFn, nil
}
