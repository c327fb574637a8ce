package repository

import (
	"context"
	"fmt"

	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// QBRepository handles QB database operations
type QBRepository struct {
	db *Database
}

const upsertQBQuery = `
	INSERT INTO "QB" (id, gsis_id, name, headshot_url, team_id, "isNotable", "createdAt", "updatedAt")
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NOW(), NOW())
	ON CONFLICT (gsis_id)
	DO UPDATE SET
		name = EXCLUDED.name,
		headshot_url = EXCLUDED.headshot_url,
		team_id = EXCLUDED.team_id,
		"isNotable" = EXCLUDED."isNotable",
		"updatedAt" = NOW()
`

// UpsertBatch writes QBs in independent transactional batches. A QB
// whose current team is not in validTeams is still written, with a
// null team reference, so the performance phase can resolve its id.
// Returns the number of rows written.
func (r *QBRepository) UpsertBatch(
	ctx context.Context,
	qbs []*models.QB,
	validTeams map[string]struct{},
	batchSize int,
) (int, error) {
	written := 0

	for _, rng := range batchRanges(len(qbs), batchSize) {
		batch := qbs[rng[0]:rng[1]]

		tx, err := r.db.Pool.Begin(ctx)
		if err != nil {
			return written, fmt.Errorf("failed to begin QB batch: %w", err)
		}

		batchWritten := 0
		for _, qb := range batch {
			teamID := qb.TeamID
			if teamID.Valid {
				if _, ok := validTeams[teamID.String]; !ok {
					metrics.RowsSkipped.WithLabelValues("qb", "unknown_team").Inc()
					log.Warn().
						Str("gsis_id", qb.GSISID).
						Str("team", teamID.String).
						Msg("QB team not in reference set, storing without team")
					teamID.Valid = false
				}
			}

			_, err := tx.Exec(ctx, upsertQBQuery,
				qb.GSISID, qb.Name, qb.HeadshotURL, teamID, qb.IsNotable,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return written, fmt.Errorf("failed to upsert QB gsis_id=%s: %w", qb.GSISID, err)
			}
			batchWritten++
		}

		if err := tx.Commit(ctx); err != nil {
			return written, fmt.Errorf("failed to commit QB batch: %w", err)
		}
		written += batchWritten
		metrics.EntitiesUpserted.WithLabelValues("qb").Add(float64(batchWritten))
	}

	log.Info().Int("written", written).Msg("QBs upserted")
	return written, nil
}

// IDsByGSIS returns the gsis_id -> surrogate id mapping for all QBs.
// Called after the QB upsert phase commits, before performance writes.
func (r *QBRepository) IDsByGSIS(ctx context.Context) (map[string]string, error) {
	query := `SELECT gsis_id, id FROM "QB"`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load QB id map: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var gsisID, id string
		if err := rows.Scan(&gsisID, &id); err != nil {
			return nil, fmt.Errorf("failed to scan QB id: %w", err)
		}
		ids[gsisID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating QB ids: %w", err)
	}

	return ids, nil
}

// GetByGSIS retrieves a QB by its external identifier
func (r *QBRepository) GetByGSIS(ctx context.Context, gsisID string) (*models.QB, error) {
	query := `
		SELECT id, gsis_id, name, headshot_url, team_id, "isNotable", "createdAt", "updatedAt"
		FROM "QB"
		WHERE gsis_id = $1
	`

	var qb models.QB
	err := r.db.Pool.QueryRow(ctx, query, gsisID).Scan(
		&qb.ID, &qb.GSISID, &qb.Name, &qb.HeadshotURL, &qb.TeamID, &qb.IsNotable,
		&qb.CreatedAt, &qb.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("QB not found: gsis_id=%s", gsisID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get QB: %w", err)
	}

	return &qb, nil
}

// Count returns the total number of QBs
func (r *QBRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM "QB"`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count QBs: %w", err)
	}
	return count, nil
}
