package pipeline

import (
	"context"

	"nflqb/sync/internal/models"
	"nflqb/sync/internal/repository"
)

// dbStore adapts the repository layer to the pipeline's Store interface
type dbStore struct {
	db *repository.Database
}

// NewDBStore wraps a connected database as a pipeline Store
func NewDBStore(db *repository.Database) Store {
	return &dbStore{db: db}
}

func (s *dbStore) ValidTeamIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.db.Teams.ValidTeamIDs(ctx)
}

func (s *dbStore) UpsertSnapshots(ctx context.Context, snapshots []*models.TeamDefenseSnapshot, validTeams map[string]struct{}, batchSize int) (int, int, error) {
	return s.db.Snapshots.UpsertBatch(ctx, snapshots, validTeams, batchSize)
}

func (s *dbStore) UpsertQBs(ctx context.Context, qbs []*models.QB, validTeams map[string]struct{}, batchSize int) (int, error) {
	return s.db.QBs.UpsertBatch(ctx, qbs, validTeams, batchSize)
}

func (s *dbStore) QBIDsByGSIS(ctx context.Context) (map[string]string, error) {
	return s.db.QBs.IDsByGSIS(ctx)
}

func (s *dbStore) UpsertPerformances(ctx context.Context, performances []*models.QBPerformance, validTeams map[string]struct{}, batchSize int) (int, int, error) {
	return s.db.Performances.UpsertBatch(ctx, performances, validTeams, batchSize)
}
