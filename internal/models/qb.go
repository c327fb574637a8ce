package models

import (
	"database/sql"
	"time"
)

// QB is the persisted quarterback entity. Natural key: GSISID (the
// player's external identifier). ID is a database-generated surrogate
// uuid; it and CreatedAt survive upserts unchanged.
type QB struct {
	ID          string         `db:"id"`
	GSISID      string         `db:"gsis_id"`
	Name        string         `db:"name"`
	HeadshotURL sql.NullString `db:"headshot_url"`
	TeamID      sql.NullString `db:"team_id"`
	IsNotable   bool           `db:"isNotable"`
	CreatedAt   time.Time      `db:"createdAt"`
	UpdatedAt   time.Time      `db:"updatedAt"`
}

// QBPerformance is the persisted per-week stat line for a QB, carrying
// the opponent-context fields resolved at enrichment time. Natural
// key: (QBID, Season, Week).
type QBPerformance struct {
	ID         string    `db:"id"`
	QBID       string    `db:"qb_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	OpponentID string    `db:"opponent_id"`

	PassYards     int `db:"pass_yards"`
	PassTDs       int `db:"pass_tds"`
	PassAttempts  int `db:"pass_attempts"`
	Completions   int `db:"completions"`
	RushYards     int `db:"rush_yards"`
	RushTDs       int `db:"rush_tds"`
	Interceptions int `db:"interceptions"`
	Sacks         int `db:"sacks"`
	Fumbles       int `db:"fumbles"`

	OppWinPct       float64 `db:"opp_win_pct"`
	OppPassDefRank  int     `db:"opp_pass_def_rank"`
	OppTotalDefRank int     `db:"opp_total_def_rank"`

	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}

// TeamDefenseSnapshot is the persisted per-team-per-week defensive
// standing. Natural key: (TeamID, Season, Week). The yardage columns
// hold cumulative-to-date totals; Wins/Losses/Ties hold the team's
// cumulative record when schedule data was available, else zero.
type TeamDefenseSnapshot struct {
	ID     string `db:"id"`
	TeamID string `db:"team_id"`
	Season int    `db:"season"`
	Week   int    `db:"week"`

	PassYardsAllowed  int `db:"pass_yards_allowed"`
	RushYardsAllowed  int `db:"rush_yards_allowed"`
	TotalYardsAllowed int `db:"total_yards_allowed"`
	PointsAllowed     int `db:"points_allowed"`

	Wins   int `db:"wins"`
	Losses int `db:"losses"`
	Ties   int `db:"ties"`

	PassDefRank  int `db:"pass_def_rank"`
	RushDefRank  int `db:"rush_def_rank"`
	TotalDefRank int `db:"total_def_rank"`

	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}
