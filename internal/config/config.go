package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN API
	ESPNBaseURL string        `envconfig:"ESPN_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/football/nfl"`
	ESPNTimeout time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nflqb"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nflqb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional response cache for ESPN payloads)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Cache TTL (in seconds)
	CacheTTLScoreboard int `envconfig:"CACHE_TTL_SCOREBOARD" default:"3600"` // 1 hour
	CacheTTLSummary    int `envconfig:"CACHE_TTL_SUMMARY" default:"86400"`   // 24 hours; final boxscores rarely change

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sync pipeline
	Seasons         string `envconfig:"SEASONS" default:"2025,2024,2023"`
	MaxWeek         int    `envconfig:"MAX_WEEK" default:"18"`
	MinPassAttempts int    `envconfig:"MIN_PASS_ATTEMPTS" default:"50"`
	UpsertBatchSize int    `envconfig:"UPSERT_BATCH_SIZE" default:"100"`

	// Enrichment defaults applied when an opponent has no snapshot or
	// record for the looked-up week. 16 is the middle rank of a 32-team
	// league.
	DefaultDefRank int     `envconfig:"DEFAULT_DEF_RANK" default:"16"`
	DefaultWinPct  float64 `envconfig:"DEFAULT_WIN_PCT" default:"0.5"`

	// RankLagWeeks controls which week an opponent's standing is read
	// from: 0 = through the same week as the performance (the standing
	// includes the game being scored), 1 = through the prior week.
	RankLagWeeks int `envconfig:"RANK_LAG_WEEKS" default:"0"`

	// Scheduler. Default cadence is Tuesday (after MNF) and Friday
	// (after TNF).
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	SyncCron        string `envconfig:"SYNC_CRON" default:"0 6 * * 2,5"`
	RunOnStart      bool   `envconfig:"RUN_ON_START" default:"true"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from a .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if _, err := c.SeasonList(); err != nil {
		return err
	}

	if c.UpsertBatchSize < 1 {
		return fmt.Errorf("UPSERT_BATCH_SIZE must be positive, got %d", c.UpsertBatchSize)
	}

	if c.RankLagWeeks < 0 {
		return fmt.Errorf("RANK_LAG_WEEKS must be >= 0, got %d", c.RankLagWeeks)
	}

	if c.DefaultWinPct < 0 || c.DefaultWinPct > 1 {
		return fmt.Errorf("DEFAULT_WIN_PCT must be in [0,1], got %v", c.DefaultWinPct)
	}

	return nil
}

// SeasonList parses the SEASONS value into an ordered slice of years
func (c *Config) SeasonList() ([]int, error) {
	parts := strings.Split(c.Seasons, ",")
	seasons := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		year, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q in SEASONS: %w", p, err)
		}
		seasons = append(seasons, year)
	}
	if len(seasons) == 0 {
		return nil, fmt.Errorf("SEASONS must contain at least one year")
	}
	return seasons, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
