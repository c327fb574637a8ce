package repository

import (
	"context"
	"fmt"

	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// SnapshotRepository handles TeamDefenseSnapshot database operations
type SnapshotRepository struct {
	db *Database
}

const upsertSnapshotQuery = `
	INSERT INTO "TeamDefenseSnapshot" (
		id, team_id, season, week,
		pass_yards_allowed, rush_yards_allowed, total_yards_allowed, points_allowed,
		wins, losses, ties,
		pass_def_rank, rush_def_rank, total_def_rank,
		"createdAt", "updatedAt"
	)
	VALUES (
		gen_random_uuid(), $1, $2, $3,
		$4, $5, $6, $7,
		$8, $9, $10,
		$11, $12, $13,
		NOW(), NOW()
	)
	ON CONFLICT (team_id, season, week)
	DO UPDATE SET
		pass_yards_allowed = EXCLUDED.pass_yards_allowed,
		rush_yards_allowed = EXCLUDED.rush_yards_allowed,
		total_yards_allowed = EXCLUDED.total_yards_allowed,
		points_allowed = EXCLUDED.points_allowed,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		ties = EXCLUDED.ties,
		pass_def_rank = EXCLUDED.pass_def_rank,
		rush_def_rank = EXCLUDED.rush_def_rank,
		total_def_rank = EXCLUDED.total_def_rank,
		"updatedAt" = NOW()
`

// UpsertBatch writes snapshots in independent transactional batches of
// batchSize rows. Rows whose team is not in validTeams are skipped and
// counted, never fatal. Returns (written, skipped).
func (r *SnapshotRepository) UpsertBatch(
	ctx context.Context,
	snapshots []*models.TeamDefenseSnapshot,
	validTeams map[string]struct{},
	batchSize int,
) (int, int, error) {
	written := 0
	skipped := 0

	for _, rng := range batchRanges(len(snapshots), batchSize) {
		batch := snapshots[rng[0]:rng[1]]

		tx, err := r.db.Pool.Begin(ctx)
		if err != nil {
			return written, skipped, fmt.Errorf("failed to begin snapshot batch: %w", err)
		}

		batchWritten := 0
		for _, snap := range batch {
			if _, ok := validTeams[snap.TeamID]; !ok {
				skipped++
				metrics.RowsSkipped.WithLabelValues("team_defense_snapshot", "unknown_team").Inc()
				log.Warn().
					Str("team", snap.TeamID).
					Int("season", snap.Season).
					Int("week", snap.Week).
					Msg("Skipping snapshot: team not in reference set")
				continue
			}

			_, err := tx.Exec(ctx, upsertSnapshotQuery,
				snap.TeamID, snap.Season, snap.Week,
				snap.PassYardsAllowed, snap.RushYardsAllowed, snap.TotalYardsAllowed, snap.PointsAllowed,
				snap.Wins, snap.Losses, snap.Ties,
				snap.PassDefRank, snap.RushDefRank, snap.TotalDefRank,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return written, skipped, fmt.Errorf("failed to upsert snapshot team=%s season=%d week=%d: %w",
					snap.TeamID, snap.Season, snap.Week, err)
			}
			batchWritten++
		}

		if err := tx.Commit(ctx); err != nil {
			return written, skipped, fmt.Errorf("failed to commit snapshot batch: %w", err)
		}
		written += batchWritten
		metrics.EntitiesUpserted.WithLabelValues("team_defense_snapshot").Add(float64(batchWritten))
	}

	log.Info().
		Int("written", written).
		Int("skipped", skipped).
		Msg("Team defense snapshots upserted")

	return written, skipped, nil
}

// GetByKey retrieves a snapshot by its natural key
func (r *SnapshotRepository) GetByKey(ctx context.Context, teamID string, season, week int) (*models.TeamDefenseSnapshot, error) {
	query := `
		SELECT id, team_id, season, week,
		       pass_yards_allowed, rush_yards_allowed, total_yards_allowed, points_allowed,
		       wins, losses, ties,
		       pass_def_rank, rush_def_rank, total_def_rank,
		       "createdAt", "updatedAt"
		FROM "TeamDefenseSnapshot"
		WHERE team_id = $1 AND season = $2 AND week = $3
	`

	var snap models.TeamDefenseSnapshot
	err := r.db.Pool.QueryRow(ctx, query, teamID, season, week).Scan(
		&snap.ID, &snap.TeamID, &snap.Season, &snap.Week,
		&snap.PassYardsAllowed, &snap.RushYardsAllowed, &snap.TotalYardsAllowed, &snap.PointsAllowed,
		&snap.Wins, &snap.Losses, &snap.Ties,
		&snap.PassDefRank, &snap.RushDefRank, &snap.TotalDefRank,
		&snap.CreatedAt, &snap.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot team=%s season=%d week=%d: %w", teamID, season, week, err)
	}

	return &snap, nil
}

// CountBySeason returns the number of snapshots stored for a season
func (r *SnapshotRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	query := `SELECT COUNT(*) FROM "TeamDefenseSnapshot" WHERE season = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}
