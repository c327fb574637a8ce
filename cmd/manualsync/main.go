// Command manualsync runs a single sync of QB stats, team defense
// snapshots and records from ESPN into Postgres, then exits. Safe to
// re-run: all writes are natural-key upserts.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"nflqb/sync/internal/aggregate"
	"nflqb/sync/internal/cache"
	"nflqb/sync/internal/client"
	"nflqb/sync/internal/config"
	"nflqb/sync/internal/pipeline"
	"nflqb/sync/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 1. Validate service health before touching the network
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	teamCount, err := db.Teams.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count teams")
	}
	if teamCount == 0 {
		log.Fatal().Msg("Team reference table is empty; seed teams before syncing")
	}
	log.Info().Int("teams", teamCount).Msg("Team reference set present")

	// 2. Build the client, with Redis if available
	clientOpts := client.Options{
		MaxWeek:       cfg.MaxWeek,
		ScoreboardTTL: time.Duration(cfg.CacheTTLScoreboard) * time.Second,
		SummaryTTL:    time.Duration(cfg.CacheTTLSummary) * time.Second,
	}
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     fmt.Sprintf("%d", cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, fetching without cache")
	} else {
		defer redisCache.Close()
		clientOpts.Cache = redisCache
	}

	espn := client.NewClient(cfg.ESPNBaseURL, cfg.ESPNTimeout, clientOpts)

	// 3. Run the pipeline once
	seasons, _ := cfg.SeasonList()
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

	summary, err := pipe.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Sync failed")
		os.Exit(1)
	}

	// 4. Report
	log.Info().
		Int("weekly_rows", summary.WeeklyRows).
		Int("games", summary.Games).
		Int("team_weeks", summary.TeamWeeks).
		Int("notable_qbs", summary.NotableQBs).
		Msg("Aggregation complete")
	log.Info().
		Int("snapshots_written", summary.SnapshotsWritten).
		Int("snapshots_skipped", summary.SnapshotsSkipped).
		Int("qbs_written", summary.QBsWritten).
		Int("performances_written", summary.PerformancesWritten).
		Int("performances_skipped", summary.PerformancesSkipped).
		Dur("duration", summary.Duration).
		Msg("Manual sync complete")

	for _, season := range seasons {
		count, err := db.Performances.CountBySeason(ctx, season)
		if err != nil {
			log.Warn().Err(err).Int("season", season).Msg("Failed to count performances")
			continue
		}
		log.Info().Int("season", season).Int("performances", count).Msg("Season totals")
	}
}
