package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nflqb/sync/internal/aggregate"
	"nflqb/sync/internal/cache"
	"nflqb/sync/internal/client"
	"nflqb/sync/internal/config"
	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/pipeline"
	"nflqb/sync/internal/repository"
	"nflqb/sync/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NFL QB Sync Worker")

	cfg := config.MustLoad()
	seasons, _ := cfg.SeasonList()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Ints("seasons", seasons).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Database is required; die early if unreachable
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Redis is optional; without it every ESPN payload is refetched
	clientOpts := client.Options{
		MaxWeek:       cfg.MaxWeek,
		ScoreboardTTL: time.Duration(cfg.CacheTTLScoreboard) * time.Second,
		SummaryTTL:    time.Duration(cfg.CacheTTLSummary) * time.Second,
	}
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		clientOpts.Cache = redisCache
		log.Info().Msg("Redis cache connected")
	}

	espn := client.NewClient(cfg.ESPNBaseURL, cfg.ESPNTimeout, clientOpts)
	log.Info().Str("base_url", cfg.ESPNBaseURL).Msg("ESPN client initialized")

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)

		startTime := time.Now()
		go func() {
			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	pipe := pipeline.New(espn, pipeline.NewDBStore(db), pipeline.Options{
		Seasons:         seasons,
		MinPassAttempts: cfg.MinPassAttempts,
		BatchSize:       cfg.UpsertBatchSize,
		Enrich: aggregate.EnrichOptions{
			DefaultDefRank: cfg.DefaultDefRank,
			DefaultWinPct:  cfg.DefaultWinPct,
			LagWeeks:       cfg.RankLagWeeks,
		},
	})

	sched := scheduler.NewScheduler(cfg, pipe)

	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.RunOnStart {
		log.Info().Msg("Running initial sync...")
		if err := sched.RunOnce(ctx); err != nil {
			if !cfg.EnableScheduler {
				// One-shot mode: a failed run must not exit 0
				log.Fatal().Err(err).Msg("Sync failed")
			}
			log.Error().Err(err).Msg("Initial sync failed, waiting for next scheduled run")
		}
	}

	if !cfg.EnableScheduler {
		log.Info().Msg("Scheduler disabled, exiting after initial run")
		return
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
