package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// SSOT: every environment variable is read through this package.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External API
	Polygon PolygonConfig

	// Pipeline
	Pipeline PipelineConfig

	// Schedules
	Schedules ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PolygonConfig holds Polygon.io API configuration
type PolygonConfig struct {
	APIKey  string
	BaseURL string

	// Calls allowed against the Polygon API per rolling minute.
	// Free tier is 5/min; paid plans go much higher.
	RatePerMinute int
}

// PipelineConfig holds orchestration configuration
type PipelineConfig struct {
	// CycleWindow is the time window one cycle is budgeted against.
	// Budget = Polygon.RatePerMinute * CycleWindow, capped by MaxBatch.
	CycleWindow time.Duration

	// MaxBatch caps instruments processed per cycle regardless of budget.
	MaxBatch int

	// Workers is the number of concurrent per-instrument workers.
	Workers int

	// CycleTimeout aborts a cycle that runs longer than this.
	CycleTimeout time.Duration

	// FundamentalsTTL is how long cached fundamentals payloads stay fresh.
	FundamentalsTTL time.Duration

	// DividendsTTL is how long cached dividend payloads stay fresh.
	DividendsTTL time.Duration

	// AAAYield is the current AAA corporate bond yield used by the
	// bond-adjusted intrinsic valuation. Updated quarterly.
	AAAYield float64

	// SnapshotRetentionDays / RunRetentionDays bound history growth.
	SnapshotRetentionDays int
	RunRetentionDays      int
}

// ScheduleConfig holds cron expressions (with seconds field) for the
// scheduled jobs. Times are in the scheduler's local clock, which is
// UTC in deployment.
type ScheduleConfig struct {
	// MarketCycle runs the pipeline during US market hours.
	MarketCycle string

	// OffHoursCycle keeps data warm outside market hours.
	OffHoursCycle string

	// FullRefresh re-enqueues the whole active universe daily.
	FullRefresh string

	// Retention prunes old snapshots and run records.
	Retention string

	// CacheCleanup evicts expired response cache entries.
	CacheCleanup string
}

// Load reads configuration from environment variables.
// SSOT: this is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Polygon: PolygonConfig{
			APIKey:        getEnv("POLYGON_API_KEY", ""),
			BaseURL:       getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			RatePerMinute: getEnvAsInt("POLYGON_RATE_PER_MINUTE", 5),
		},

		Pipeline: PipelineConfig{
			CycleWindow:           getEnvAsDuration("PIPELINE_CYCLE_WINDOW", "5m"),
			MaxBatch:              getEnvAsInt("PIPELINE_MAX_BATCH", 500),
			Workers:               getEnvAsInt("PIPELINE_WORKERS", 4),
			CycleTimeout:          getEnvAsDuration("PIPELINE_CYCLE_TIMEOUT", "20m"),
			FundamentalsTTL:       getEnvAsDuration("CACHE_FUNDAMENTALS_TTL", "168h"),
			DividendsTTL:          getEnvAsDuration("CACHE_DIVIDENDS_TTL", "168h"),
			AAAYield:              getEnvAsFloat("VALUATION_AAA_YIELD", 5.15),
			SnapshotRetentionDays: getEnvAsInt("RETENTION_SNAPSHOT_DAYS", 90),
			RunRetentionDays:      getEnvAsInt("RETENTION_RUN_DAYS", 30),
		},

		Schedules: ScheduleConfig{
			MarketCycle:   getEnv("SCHEDULE_MARKET_CYCLE", "0 */5 13-20 * * MON-FRI"),
			OffHoursCycle: getEnv("SCHEDULE_OFF_HOURS_CYCLE", "0 0 * * * *"),
			FullRefresh:   getEnv("SCHEDULE_FULL_REFRESH", "0 0 10 * * MON-FRI"),
			Retention:     getEnv("SCHEDULE_RETENTION", "0 30 8 * * *"),
			CacheCleanup:  getEnv("SCHEDULE_CACHE_CLEANUP", "0 */5 * * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Polygon.RatePerMinute <= 0 {
		return fmt.Errorf("POLYGON_RATE_PER_MINUTE must be positive")
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}

	return nil
}

// CycleBudget returns the number of external API calls one cycle may spend:
// the rate ceiling spread over the cycle window, capped by MaxBatch.
func (c *Config) CycleBudget() int {
	budget := c.Polygon.RatePerMinute * int(c.Pipeline.CycleWindow.Minutes())
	if budget < 1 {
		budget = 1
	}
	if budget > c.Pipeline.MaxBatch {
		budget = c.Pipeline.MaxBatch
	}
	return budget
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
