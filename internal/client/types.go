package client

import (
	"strconv"
	"strings"

	"nflqb/sync/internal/models"
)

// ESPN scoreboard response types (site.api.espn.com)

type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string        `json:"id"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
	Status      gameStatus   `json:"status"`
}

type competitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     teamInfo `json:"team"`
}

type teamInfo struct {
	Abbreviation string `json:"abbreviation"`
}

type gameStatus struct {
	Type statusType `json:"type"`
}

type statusType struct {
	Completed bool `json:"completed"`
}

// toScheduleRow converts a scoreboard event into a ScheduleRow. Events
// without exactly two competitors are malformed and dropped. Scores are
// attached only for completed games; in-progress scores would otherwise
// leak into the record engine as final results.
func (e *scoreboardEvent) toScheduleRow(season, week int) (models.ScheduleRow, bool) {
	if len(e.Competitions) == 0 {
		return models.ScheduleRow{}, false
	}
	comp := e.Competitions[0]
	if len(comp.Competitors) != 2 {
		return models.ScheduleRow{}, false
	}

	row := models.ScheduleRow{
		GameID:    e.ID,
		Season:    season,
		Week:      week,
		Completed: comp.Status.Type.Completed,
	}

	for _, c := range comp.Competitors {
		if c.HomeAway == "home" {
			row.HomeTeam = c.Team.Abbreviation
			if row.Completed {
				row.HomeScore = parseScore(c.Score)
			}
		} else {
			row.AwayTeam = c.Team.Abbreviation
			if row.Completed {
				row.AwayScore = parseScore(c.Score)
			}
		}
	}

	if row.HomeTeam == "" || row.AwayTeam == "" {
		return models.ScheduleRow{}, false
	}
	return row, true
}

func parseScore(s string) *int {
	score, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &score
}

// ESPN game summary response types

type summaryResponse struct {
	Boxscore boxscore `json:"boxscore"`
}

type boxscore struct {
	Players []teamPlayers `json:"players"`
}

type teamPlayers struct {
	Team       teamInfo    `json:"team"`
	Statistics []statGroup `json:"statistics"`
}

type statGroup struct {
	Name     string        `json:"name"`
	Labels   []string      `json:"labels"`
	Athletes []athleteLine `json:"athletes"`
}

type athleteLine struct {
	Athlete athlete  `json:"athlete"`
	Stats   []string `json:"stats"`
}

type athlete struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Headshot    headshot `json:"headshot"`
	Position    position `json:"position"`
}

type headshot struct {
	Href string `json:"href"`
}

type position struct {
	Abbreviation string `json:"abbreviation"`
}

// Passing group stat columns: C/ATT, YDS, AVG, TD, INT, SACKS, RTG
const (
	passIdxCAtt  = 0
	passIdxYards = 1
	passIdxTDs   = 3
	passIdxInts  = 4
	passIdxSacks = 5
)

// Rushing group stat columns: CAR, YDS, AVG, TD, LONG
const (
	rushIdxYards = 1
	rushIdxTDs   = 3
)

// Fumbles group stat columns: FUM, LOST, REC
const fumIdxLost = 1

// toWeeklyStatRows extracts one WeeklyStatRow per passer with at least
// one attempt from a game summary, merging in the passer's rushing and
// lost-fumble lines when present.
func (s *summaryResponse) toWeeklyStatRows(game *models.ScheduleRow) []models.WeeklyStatRow {
	var rows []models.WeeklyStatRow

	for _, teamData := range s.Boxscore.Players {
		teamAbbr := teamData.Team.Abbreviation

		opponent := game.HomeTeam
		if teamAbbr == game.HomeTeam {
			opponent = game.AwayTeam
		}

		passers := make(map[string]*models.WeeklyStatRow)
		var order []string

		for _, group := range teamData.Statistics {
			if group.Name != "passing" {
				continue
			}
			for _, line := range group.Athletes {
				completions, attempts := parseCompletionsAttempts(statAt(line.Stats, passIdxCAtt))
				if attempts <= 0 {
					continue
				}

				pos := line.Athlete.Position.Abbreviation
				if pos == "" {
					// Summary payloads often omit position; anyone in
					// the passing group is treated as a QB, matching
					// the position-filtered contract downstream.
					pos = "QB"
				}

				passers[line.Athlete.ID] = &models.WeeklyStatRow{
					Season:        game.Season,
					Week:          game.Week,
					Team:          teamAbbr,
					Opponent:      opponent,
					Position:      pos,
					PlayerID:      line.Athlete.ID,
					Name:          line.Athlete.DisplayName,
					HeadshotURL:   line.Athlete.Headshot.Href,
					Completions:   completions,
					PassAttempts:  attempts,
					PassYards:     parseStatInt(statAt(line.Stats, passIdxYards)),
					PassTDs:       parseStatInt(statAt(line.Stats, passIdxTDs)),
					Interceptions: parseStatInt(statAt(line.Stats, passIdxInts)),
					Sacks:         parseSacks(statAt(line.Stats, passIdxSacks)),
				}
				order = append(order, line.Athlete.ID)
			}
		}

		for _, group := range teamData.Statistics {
			switch group.Name {
			case "rushing":
				for _, line := range group.Athletes {
					if row, ok := passers[line.Athlete.ID]; ok {
						row.RushYards = parseStatInt(statAt(line.Stats, rushIdxYards))
						row.RushTDs = parseStatInt(statAt(line.Stats, rushIdxTDs))
					}
				}
			case "fumbles":
				for _, line := range group.Athletes {
					if row, ok := passers[line.Athlete.ID]; ok {
						row.Fumbles = parseStatInt(statAt(line.Stats, fumIdxLost))
					}
				}
			}
		}

		for _, id := range order {
			rows = append(rows, *passers[id])
		}
	}

	return rows
}

func statAt(stats []string, idx int) string {
	if idx < 0 || idx >= len(stats) {
		return ""
	}
	return stats[idx]
}

// parseStatInt coerces an ESPN stat cell to an int; "--", empty and
// non-numeric cells become 0.
func parseStatInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// parseCompletionsAttempts splits the "C/ATT" cell, e.g. "24/38"
func parseCompletionsAttempts(s string) (completions, attempts int) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseStatInt(parts[0]), parseStatInt(parts[1])
}

// parseSacks extracts the sack count from the "SACKS-YDSLOST" cell,
// e.g. "3-21" -> 3
func parseSacks(s string) int {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0
	}
	return parseStatInt(parts[0])
}
