package aggregate

import (
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// EnrichOptions carries the policy knobs for the enrichment join.
// Defaults apply when the opponent has no snapshot or record at the
// looked-up week; LagWeeks shifts the lookup to an earlier week
// (0 = the opponent's standing through the same week as the game,
// 1 = through the week before it).
type EnrichOptions struct {
	DefaultDefRank int
	DefaultWinPct  float64
	LagWeeks       int
}

type teamWeekKey struct {
	Season int
	Week   int
	Team   string
}

// EnrichPerformances joins QB stat rows with the opponent's defensive
// standing and record. Rows are filtered to quarterbacks with at least
// one pass attempt; every surviving row produces exactly one
// EnrichedPerformance.
func EnrichPerformances(
	rows []models.WeeklyStatRow,
	defense []models.TeamWeekDefense,
	records []models.TeamWeekRecord,
	opts EnrichOptions,
) []models.EnrichedPerformance {
	defByKey := make(map[teamWeekKey]*models.TeamWeekDefense, len(defense))
	for i := range defense {
		d := &defense[i]
		defByKey[teamWeekKey{Season: d.Season, Week: d.Week, Team: d.Team}] = d
	}

	recByKey := make(map[teamWeekKey]*models.TeamWeekRecord, len(records))
	for i := range records {
		r := &records[i]
		recByKey[teamWeekKey{Season: r.Season, Week: r.Week, Team: r.Team}] = r
	}

	var enriched []models.EnrichedPerformance
	defaulted := 0
	for _, row := range rows {
		if row.Position != "QB" || row.PassAttempts <= 0 {
			continue
		}

		perf := models.EnrichedPerformance{
			WeeklyStatRow:   row,
			OppWinPct:       opts.DefaultWinPct,
			OppPassDefRank:  opts.DefaultDefRank,
			OppTotalDefRank: opts.DefaultDefRank,
		}

		key := teamWeekKey{
			Season: row.Season,
			Week:   row.Week - opts.LagWeeks,
			Team:   row.Opponent,
		}

		hit := false
		if d, ok := defByKey[key]; ok {
			perf.OppPassDefRank = d.PassDefRank
			perf.OppTotalDefRank = d.TotalDefRank
			hit = true
		}
		if r, ok := recByKey[key]; ok {
			perf.OppWinPct = r.WinPct()
			hit = true
		}
		if !hit {
			defaulted++
		}

		enriched = append(enriched, perf)
	}

	log.Info().
		Int("performances", len(enriched)).
		Int("defaulted", defaulted).
		Int("lag_weeks", opts.LagWeeks).
		Msg("Performances enriched with opponent context")

	return enriched
}
