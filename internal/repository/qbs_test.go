package repository

import (
	"database/sql"
	"testing"

	"nflqb/sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQBRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupTestRows(t, ctx, db, testSeason)

	seedTeam(t, ctx, db, "KC", "Chiefs")
	validTeams := map[string]struct{}{"KC": {}}

	qbs := []*models.QB{
		{
			GSISID:      "test_mahomes",
			Name:        "Patrick Mahomes",
			HeadshotURL: sql.NullString{String: "https://example.com/mahomes.png", Valid: true},
			TeamID:      sql.NullString{String: "KC", Valid: true},
			IsNotable:   true,
		},
	}

	written, err := db.QBs.UpsertBatch(ctx, qbs, validTeams, 100)
	require.NoError(t, err, "Should upsert QB")
	assert.Equal(t, 1, written)

	retrieved, err := db.QBs.GetByGSIS(ctx, "test_mahomes")
	require.NoError(t, err, "Should retrieve QB by gsis_id")
	assert.Equal(t, "Patrick Mahomes", retrieved.Name)
	assert.True(t, retrieved.IsNotable)
	assert.Equal(t, "KC", retrieved.TeamID.String)
	assert.NotEmpty(t, retrieved.ID, "Surrogate id should be generated")
}

func TestQBRepository_UpsertIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupTestRows(t, ctx, db, testSeason)

	seedTeam(t, ctx, db, "KC", "Chiefs")
	validTeams := map[string]struct{}{"KC": {}}

	qb := &models.QB{
		GSISID: "test_mahomes",
		Name:   "Patrick Mahomes",
		TeamID: sql.NullString{String: "KC", Valid: true},
	}
	_, err := db.QBs.UpsertBatch(ctx, []*models.QB{qb}, validTeams, 100)
	require.NoError(t, err)

	first, err := db.QBs.GetByGSIS(ctx, "test_mahomes")
	require.NoError(t, err)

	// Second sync flips the notable flag; same row, same id
	qb.IsNotable = true
	_, err = db.QBs.UpsertBatch(ctx, []*models.QB{qb}, validTeams, 100)
	require.NoError(t, err)

	second, err := db.QBs.GetByGSIS(ctx, "test_mahomes")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "Surrogate id should survive the upsert")
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "createdAt should survive the upsert")
	assert.True(t, second.IsNotable, "Flag should be updated")
}

func TestQBRepository_UnknownTeamStoredWithoutTeam(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupTestRows(t, ctx, db, testSeason)

	validTeams := map[string]struct{}{}

	qb := &models.QB{
		GSISID: "test_rookie",
		Name:   "Test Rookie",
		TeamID: sql.NullString{String: "XXX", Valid: true},
	}

	written, err := db.QBs.UpsertBatch(ctx, []*models.QB{qb}, validTeams, 100)
	require.NoError(t, err, "Unknown team must not drop the QB")
	assert.Equal(t, 1, written, "QB should still be written")

	retrieved, err := db.QBs.GetByGSIS(ctx, "test_rookie")
	require.NoError(t, err)
	assert.False(t, retrieved.TeamID.Valid, "Team reference should be null")
}

func TestQBRepository_IDsByGSIS(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupTestRows(t, ctx, db, testSeason)

	qbs := []*models.QB{
		{GSISID: "test_a", Name: "A"},
		{GSISID: "test_b", Name: "B"},
	}
	_, err := db.QBs.UpsertBatch(ctx, qbs, map[string]struct{}{}, 100)
	require.NoError(t, err)

	ids, err := db.QBs.IDsByGSIS(ctx)
	require.NoError(t, err, "Should load id map")
	assert.NotEmpty(t, ids["test_a"], "Map should resolve test_a")
	assert.NotEmpty(t, ids["test_b"], "Map should resolve test_b")
	assert.NotEqual(t, ids["test_a"], ids["test_b"], "Ids should be distinct")
}
