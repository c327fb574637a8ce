package repository

import (
	"context"
	"fmt"

	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// PerformanceRepository handles QBPerformance database operations
type PerformanceRepository struct {
	db *Database
}

const upsertPerformanceQuery = `
	INSERT INTO "QBPerformance" (
		id, qb_id, season, week, opponent_id,
		pass_yards, pass_tds, pass_attempts, completions,
		rush_yards, rush_tds, interceptions, sacks, fumbles,
		opp_win_pct, opp_pass_def_rank, opp_total_def_rank,
		"createdAt", "updatedAt"
	)
	VALUES (
		gen_random_uuid(), $1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12, $13,
		$14, $15, $16,
		NOW(), NOW()
	)
	ON CONFLICT (qb_id, season, week)
	DO UPDATE SET
		opponent_id = EXCLUDED.opponent_id,
		pass_yards = EXCLUDED.pass_yards,
		pass_tds = EXCLUDED.pass_tds,
		pass_attempts = EXCLUDED.pass_attempts,
		completions = EXCLUDED.completions,
		rush_yards = EXCLUDED.rush_yards,
		rush_tds = EXCLUDED.rush_tds,
		interceptions = EXCLUDED.interceptions,
		sacks = EXCLUDED.sacks,
		fumbles = EXCLUDED.fumbles,
		opp_win_pct = EXCLUDED.opp_win_pct,
		opp_pass_def_rank = EXCLUDED.opp_pass_def_rank,
		opp_total_def_rank = EXCLUDED.opp_total_def_rank,
		"updatedAt" = NOW()
`

// UpsertBatch writes performances in independent transactional batches.
// Rows whose opponent is not in validTeams, or whose QBID is empty
// (the QB phase could not resolve an id), are skipped and counted.
// Returns (written, skipped).
func (r *PerformanceRepository) UpsertBatch(
	ctx context.Context,
	performances []*models.QBPerformance,
	validTeams map[string]struct{},
	batchSize int,
) (int, int, error) {
	written := 0
	skipped := 0

	for _, rng := range batchRanges(len(performances), batchSize) {
		batch := performances[rng[0]:rng[1]]

		tx, err := r.db.Pool.Begin(ctx)
		if err != nil {
			return written, skipped, fmt.Errorf("failed to begin performance batch: %w", err)
		}

		batchWritten := 0
		for _, perf := range batch {
			if perf.QBID == "" {
				skipped++
				metrics.RowsSkipped.WithLabelValues("qb_performance", "unknown_qb").Inc()
				log.Warn().
					Int("season", perf.Season).
					Int("week", perf.Week).
					Msg("Skipping performance: QB id unresolved")
				continue
			}
			if _, ok := validTeams[perf.OpponentID]; !ok {
				skipped++
				metrics.RowsSkipped.WithLabelValues("qb_performance", "unknown_team").Inc()
				log.Warn().
					Str("qb_id", perf.QBID).
					Str("opponent", perf.OpponentID).
					Int("season", perf.Season).
					Int("week", perf.Week).
					Msg("Skipping performance: opponent not in reference set")
				continue
			}

			_, err := tx.Exec(ctx, upsertPerformanceQuery,
				perf.QBID, perf.Season, perf.Week, perf.OpponentID,
				perf.PassYards, perf.PassTDs, perf.PassAttempts, perf.Completions,
				perf.RushYards, perf.RushTDs, perf.Interceptions, perf.Sacks, perf.Fumbles,
				perf.OppWinPct, perf.OppPassDefRank, perf.OppTotalDefRank,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return written, skipped, fmt.Errorf("failed to upsert performance qb=%s season=%d week=%d: %w",
					perf.QBID, perf.Season, perf.Week, err)
			}
			batchWritten++
		}

		if err := tx.Commit(ctx); err != nil {
			return written, skipped, fmt.Errorf("failed to commit performance batch: %w", err)
		}
		written += batchWritten
		metrics.EntitiesUpserted.WithLabelValues("qb_performance").Add(float64(batchWritten))
	}

	log.Info().
		Int("written", written).
		Int("skipped", skipped).
		Msg("QB performances upserted")

	return written, skipped, nil
}

// GetByKey retrieves a performance by its natural key
func (r *PerformanceRepository) GetByKey(ctx context.Context, qbID string, season, week int) (*models.QBPerformance, error) {
	query := `
		SELECT id, qb_id, season, week, opponent_id,
		       pass_yards, pass_tds, pass_attempts, completions,
		       rush_yards, rush_tds, interceptions, sacks, fumbles,
		       opp_win_pct, opp_pass_def_rank, opp_total_def_rank,
		       "createdAt", "updatedAt"
		FROM "QBPerformance"
		WHERE qb_id = $1 AND season = $2 AND week = $3
	`

	var perf models.QBPerformance
	err := r.db.Pool.QueryRow(ctx, query, qbID, season, week).Scan(
		&perf.ID, &perf.QBID, &perf.Season, &perf.Week, &perf.OpponentID,
		&perf.PassYards, &perf.PassTDs, &perf.PassAttempts, &perf.Completions,
		&perf.RushYards, &perf.RushTDs, &perf.Interceptions, &perf.Sacks, &perf.Fumbles,
		&perf.OppWinPct, &perf.OppPassDefRank, &perf.OppTotalDefRank,
		&perf.CreatedAt, &perf.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance qb=%s season=%d week=%d: %w", qbID, season, week, err)
	}

	return &perf, nil
}

// CountBySeason returns the number of performances stored for a season
func (r *PerformanceRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	query := `SELECT COUNT(*) FROM "QBPerformance" WHERE season = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count performances: %w", err)
	}
	return count, nil
}
