package aggregate

import (
	"sort"

	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

type seasonTeam struct {
	Season int
	Team   string
}

type seasonWeek struct {
	Season int
	Week   int
}

// BuildDefenseTable turns weekly per-player stat rows into one
// TeamWeekDefense row per (season, team, week) in which that team
// appeared as an opponent: week-only yards allowed, cumulative totals
// through that week, and minimum-tie ranks within each (season, week)
// slice. Teams with no recorded opponent appearances produce no rows
// and bye weeks are not forward-filled.
func BuildDefenseTable(rows []models.WeeklyStatRow) []models.TeamWeekDefense {
	// Week-only yards allowed: sum player yards by (season, week, opponent)
	type weekTotals struct {
		pass int
		rush int
	}
	totals := make(map[seasonWeek]map[string]*weekTotals)
	for _, row := range rows {
		sw := seasonWeek{Season: row.Season, Week: row.Week}
		if totals[sw] == nil {
			totals[sw] = make(map[string]*weekTotals)
		}
		t := totals[sw][row.Opponent]
		if t == nil {
			t = &weekTotals{}
			totals[sw][row.Opponent] = t
		}
		t.pass += row.PassYards
		t.rush += row.RushYards
	}

	var table []models.TeamWeekDefense
	for sw, teams := range totals {
		for team, t := range teams {
			table = append(table, models.TeamWeekDefense{
				Season:           sw.Season,
				Team:             team,
				Week:             sw.Week,
				PassYardsAllowed: t.pass,
				RushYardsAllowed: t.rush,
			})
		}
	}

	// Cumulative sums per (season, team) in week order
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Week < b.Week
	})

	cumPass := make(map[seasonTeam]int)
	cumRush := make(map[seasonTeam]int)
	for i := range table {
		key := seasonTeam{Season: table[i].Season, Team: table[i].Team}
		cumPass[key] += table[i].PassYardsAllowed
		cumRush[key] += table[i].RushYardsAllowed
		table[i].CumPassYardsAllowed = cumPass[key]
		table[i].CumRushYardsAllowed = cumRush[key]
		table[i].CumTotalYardsAllowed = cumPass[key] + cumRush[key]
	}

	// Rank each (season, week) slice by each cumulative measure
	slices := make(map[seasonWeek][]int)
	for i := range table {
		sw := seasonWeek{Season: table[i].Season, Week: table[i].Week}
		slices[sw] = append(slices[sw], i)
	}

	for _, idxs := range slices {
		pass := make([]int, len(idxs))
		rush := make([]int, len(idxs))
		total := make([]int, len(idxs))
		for n, i := range idxs {
			pass[n] = table[i].CumPassYardsAllowed
			rush[n] = table[i].CumRushYardsAllowed
			total[n] = table[i].CumTotalYardsAllowed
		}

		passRanks := minTieRanks(pass)
		rushRanks := minTieRanks(rush)
		totalRanks := minTieRanks(total)

		for n, i := range idxs {
			table[i].PassDefRank = passRanks[n]
			table[i].RushDefRank = rushRanks[n]
			table[i].TotalDefRank = totalRanks[n]
		}
	}

	log.Info().
		Int("team_weeks", len(table)).
		Msg("Defensive rankings calculated")

	return table
}
