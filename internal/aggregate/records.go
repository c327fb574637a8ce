package aggregate

import (
	"sort"

	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// BuildRecordTable turns schedule results into one TeamWeekRecord per
// (season, team, week) with a completed game, carrying the team's
// cumulative win/loss/tie counts through that week. Games missing a
// score on either side are unplayed and ignored.
func BuildRecordTable(schedules []models.ScheduleRow) []models.TeamWeekRecord {
	type event struct {
		week   int
		result models.GameResult
	}

	events := make(map[seasonTeam][]event)
	skipped := 0
	for i := range schedules {
		game := &schedules[i]
		if !game.Played() {
			skipped++
			continue
		}

		home := seasonTeam{Season: game.Season, Team: game.HomeTeam}
		away := seasonTeam{Season: game.Season, Team: game.AwayTeam}
		events[home] = append(events[home], event{week: game.Week, result: game.HomeResult()})
		events[away] = append(events[away], event{week: game.Week, result: game.AwayResult()})
	}

	var table []models.TeamWeekRecord
	for key, evs := range events {
		sort.Slice(evs, func(i, j int) bool { return evs[i].week < evs[j].week })

		var wins, losses, ties int
		for _, ev := range evs {
			switch ev.result {
			case models.ResultWin:
				wins++
			case models.ResultLoss:
				losses++
			default:
				ties++
			}
			table = append(table, models.TeamWeekRecord{
				Season: key.Season,
				Team:   key.Team,
				Week:   ev.week,
				Wins:   wins,
				Losses: losses,
				Ties:   ties,
			})
		}
	}

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

	log.Info().
		Int("team_weeks", len(table)).
		Int("unplayed_games", skipped).
		Msg("Team records calculated")

	return table
}
