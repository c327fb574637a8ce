package aggregate

import (
	"testing"

	"nflqb/sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOpts() EnrichOptions {
	return EnrichOptions{DefaultDefRank: 16, DefaultWinPct: 0.5}
}

func qbRow(season, week int, playerID, team, opp string, attempts int) models.WeeklyStatRow {
	return models.WeeklyStatRow{
		Season:       season,
		Week:         week,
		PlayerID:     playerID,
		Team:         team,
		Opponent:     opp,
		Position:     "QB",
		PassAttempts: attempts,
	}
}

func TestEnrichPerformances_AttachesOpponentContext(t *testing.T) {
	rows := []models.WeeklyStatRow{qbRow(2024, 3, "p1", "KC", "NE", 30)}
	defense := []models.TeamWeekDefense{
		{Season: 2024, Team: "NE", Week: 3, PassDefRank: 5, RushDefRank: 12, TotalDefRank: 7},
	}
	records := []models.TeamWeekRecord{
		{Season: 2024, Team: "NE", Week: 3, Wins: 2, Losses: 1},
	}

	enriched := EnrichPerformances(rows, defense, records, defaultOpts())

	require.Len(t, enriched, 1)
	assert.Equal(t, 5, enriched[0].OppPassDefRank)
	assert.Equal(t, 7, enriched[0].OppTotalDefRank)
	assert.InDelta(t, 2.0/3.0, enriched[0].OppWinPct, 1e-9)
}

func TestEnrichPerformances_DefaultFallback(t *testing.T) {
	// Opponent has no snapshot and no record at this week
	rows := []models.WeeklyStatRow{qbRow(2024, 1, "p1", "KC", "NE", 30)}

	enriched := EnrichPerformances(rows, nil, nil, defaultOpts())

	require.Len(t, enriched, 1)
	assert.Equal(t, 16, enriched[0].OppPassDefRank)
	assert.Equal(t, 16, enriched[0].OppTotalDefRank)
	assert.Equal(t, 0.5, enriched[0].OppWinPct)
}

func TestEnrichPerformances_PartialHistoryStillDefaults(t *testing.T) {
	// Defense exists but no record: win pct falls back, ranks do not
	rows := []models.WeeklyStatRow{qbRow(2024, 2, "p1", "KC", "NE", 25)}
	defense := []models.TeamWeekDefense{
		{Season: 2024, Team: "NE", Week: 2, PassDefRank: 9, TotalDefRank: 11},
	}

	enriched := EnrichPerformances(rows, defense, nil, defaultOpts())

	require.Len(t, enriched, 1)
	assert.Equal(t, 9, enriched[0].OppPassDefRank)
	assert.Equal(t, 0.5, enriched[0].OppWinPct)
}

func TestEnrichPerformances_FiltersNonPassers(t *testing.T) {
	rows := []models.WeeklyStatRow{
		qbRow(2024, 1, "p1", "KC", "NE", 30),
		qbRow(2024, 1, "p2", "KC", "NE", 0), // no attempts
		{Season: 2024, Week: 1, PlayerID: "p3", Team: "KC", Opponent: "NE", Position: "RB", PassAttempts: 1},
	}

	enriched := EnrichPerformances(rows, nil, nil, defaultOpts())

	require.Len(t, enriched, 1)
	assert.Equal(t, "p1", enriched[0].PlayerID)
}

func TestEnrichPerformances_LagWeeks(t *testing.T) {
	rows := []models.WeeklyStatRow{qbRow(2024, 3, "p1", "KC", "NE", 30)}
	defense := []models.TeamWeekDefense{
		{Season: 2024, Team: "NE", Week: 2, PassDefRank: 4, TotalDefRank: 6},
		{Season: 2024, Team: "NE", Week: 3, PassDefRank: 8, TotalDefRank: 10},
	}
	records := []models.TeamWeekRecord{
		{Season: 2024, Team: "NE", Week: 2, Wins: 2},
		{Season: 2024, Team: "NE", Week: 3, Wins: 2, Losses: 1},
	}

	opts := defaultOpts()
	opts.LagWeeks = 1
	enriched := EnrichPerformances(rows, defense, records, opts)

	require.Len(t, enriched, 1)
	assert.Equal(t, 4, enriched[0].OppPassDefRank, "Lag 1 reads the prior week's standing")
	assert.Equal(t, 1.0, enriched[0].OppWinPct)
}

func TestEnrichPerformances_ExactWeekMatchOnly(t *testing.T) {
	// Snapshot exists for week 2 only; a week 3 performance must not
	// borrow it when lag is 0.
	rows := []models.WeeklyStatRow{qbRow(2024, 3, "p1", "KC", "NE", 30)}
	defense := []models.TeamWeekDefense{
		{Season: 2024, Team: "NE", Week: 2, PassDefRank: 4, TotalDefRank: 6},
	}

	enriched := EnrichPerformances(rows, defense, nil, defaultOpts())

	require.Len(t, enriched, 1)
	assert.Equal(t, 16, enriched[0].OppPassDefRank, "No forward-fill across weeks")
}
