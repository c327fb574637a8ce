package models

// ScheduleRow represents one scheduled NFL game. Scores are nil until
// the game completes; the record engine discards rows with a nil score
// on either side.
type ScheduleRow struct {
	GameID   string
	Season   int
	Week     int
	HomeTeam string
	AwayTeam string

	HomeScore *int
	AwayScore *int

	Completed bool
}

// Played reports whether both scores are recorded
func (s *ScheduleRow) Played() bool {
	return s.HomeScore != nil && s.AwayScore != nil
}

// GameResult is the outcome of a completed game for one side
type GameResult int

const (
	ResultWin GameResult = iota
	ResultLoss
	ResultTie
)

// HomeResult returns the home team's outcome. Only valid when Played.
func (s *ScheduleRow) HomeResult() GameResult {
	switch {
	case *s.HomeScore > *s.AwayScore:
		return ResultWin
	case *s.HomeScore < *s.AwayScore:
		return ResultLoss
	default:
		return ResultTie
	}
}

// AwayResult returns the away team's outcome. Only valid when Played.
func (s *ScheduleRow) AwayResult() GameResult {
	switch s.HomeResult() {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return ResultTie
	}
}
