package models

// WeeklyStatRow is one player's stat line for one week, as supplied by
// the upstream data adapter. Rows are immutable inputs and are never
// written back to the store.
type WeeklyStatRow struct {
	Season   int
	Week     int
	Team     string
	Opponent string
	Position string

	PlayerID    string
	Name        string
	HeadshotURL string

	PassYards     int
	PassTDs       int
	PassAttempts  int
	Completions   int
	RushYards     int
	RushTDs       int
	Interceptions int
	Sacks         int
	Fumbles       int // sack fumbles lost
}

// TeamWeekDefense is a derived per-team-per-week defensive line:
// week-only yards allowed plus cumulative totals and competitive ranks
// through that week. Keyed by (Season, Team, Week).
type TeamWeekDefense struct {
	Season int
	Team   string
	Week   int

	// Week-only yards surrendered by this team's defense
	PassYardsAllowed int
	RushYardsAllowed int

	// Running totals through this week
	CumPassYardsAllowed  int
	CumRushYardsAllowed  int
	CumTotalYardsAllowed int

	// Minimum-tie ranks within the (Season, Week) slice, 1 = best
	PassDefRank  int
	RushDefRank  int
	TotalDefRank int
}

// TeamWeekRecord is a team's cumulative win/loss/tie record through a
// given week. Keyed by (Season, Team, Week). A row exists only once the
// team has at least one completed game, so Games is always > 0.
type TeamWeekRecord struct {
	Season int
	Team   string
	Week   int

	Wins   int
	Losses int
	Ties   int
}

// Games returns the total games counted in the record
func (r *TeamWeekRecord) Games() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPct returns wins / games. Callers must not invoke it on a
// zero-game record; rows emitted by the record engine always have at
// least one game.
func (r *TeamWeekRecord) WinPct() float64 {
	return float64(r.Wins) / float64(r.Games())
}

// EnrichedPerformance is a QB week row joined with the opponent's
// standing as of the looked-up week. One row per (PlayerID, Season,
// Week) with at least one pass attempt.
type EnrichedPerformance struct {
	WeeklyStatRow

	OppWinPct       float64
	OppPassDefRank  int
	OppTotalDefRank int
}
