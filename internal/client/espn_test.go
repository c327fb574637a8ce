package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardWeek1 = `{
	"events": [
		{
			"id": "401001",
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "27", "team": {"abbreviation": "KC"}},
					{"homeAway": "away", "score": "20", "team": {"abbreviation": "NE"}}
				],
				"status": {"type": {"completed": true}}
			}]
		},
		{
			"id": "401002",
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "0", "team": {"abbreviation": "BUF"}},
					{"homeAway": "away", "score": "0", "team": {"abbreviation": "MIA"}}
				],
				"status": {"type": {"completed": false}}
			}]
		}
	]
}`

const summary401001 = `{
	"boxscore": {
		"players": [
			{
				"team": {"abbreviation": "KC"},
				"statistics": [
					{
						"name": "passing",
						"labels": ["C/ATT", "YDS", "AVG", "TD", "INT", "SACKS", "RTG"],
						"athletes": [
							{
								"athlete": {
									"id": "3139477",
									"displayName": "Patrick Mahomes",
									"headshot": {"href": "https://a.espncdn.com/headshots/3139477.png"},
									"position": {"abbreviation": "QB"}
								},
								"stats": ["24/38", "305", "8.0", "2", "1", "3-21", "98.5"]
							},
							{
								"athlete": {"id": "999", "displayName": "Kneel Down"},
								"stats": ["0/0", "--", "--", "--", "--", "--", "--"]
							}
						]
					},
					{
						"name": "rushing",
						"labels": ["CAR", "YDS", "AVG", "TD", "LONG"],
						"athletes": [
							{
								"athlete": {"id": "3139477", "displayName": "Patrick Mahomes"},
								"stats": ["5", "38", "7.6", "1", "15"]
							}
						]
					},
					{
						"name": "fumbles",
						"labels": ["FUM", "LOST", "REC"],
						"athletes": [
							{
								"athlete": {"id": "3139477", "displayName": "Patrick Mahomes"},
								"stats": ["1", "1", "0"]
							}
						]
					}
				]
			},
			{
				"team": {"abbreviation": "NE"},
				"statistics": [
					{
						"name": "passing",
						"labels": ["C/ATT", "YDS", "AVG", "TD", "INT", "SACKS", "RTG"],
						"athletes": [
							{
								"athlete": {"id": "4360310", "displayName": "Drake Maye"},
								"stats": ["19/30", "211", "7.0", "1", "0", "--", "88.1"]
							}
						]
					}
				]
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, Options{MaxWeek: 2})
}

func fixtureHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("week") {
		case "1":
			fmt.Fprint(w, scoreboardWeek1)
		default:
			fmt.Fprint(w, `{"events": []}`)
		}
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("event") == "401001" {
			fmt.Fprint(w, summary401001)
			return
		}
		http.NotFound(w, r)
	})
	return mux
}

func TestFetchSchedules(t *testing.T) {
	c := newTestClient(t, fixtureHandler(t))

	schedules, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	final := schedules[0]
	assert.Equal(t, "KC", final.HomeTeam)
	assert.Equal(t, "NE", final.AwayTeam)
	assert.True(t, final.Completed)
	require.True(t, final.Played())
	assert.Equal(t, 27, *final.HomeScore)
	assert.Equal(t, 20, *final.AwayScore)

	upcoming := schedules[1]
	assert.False(t, upcoming.Completed)
	assert.Nil(t, upcoming.HomeScore, "Incomplete games must not carry scores")
	assert.Nil(t, upcoming.AwayScore)
}

func TestFetchWeeklyStats(t *testing.T) {
	c := newTestClient(t, fixtureHandler(t))

	schedules, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err)

	rows, err := c.FetchWeeklyStats(context.Background(), schedules)
	require.NoError(t, err)
	require.Len(t, rows, 2, "One row per passer with attempts; zero-attempt lines dropped")

	mahomes := rows[0]
	assert.Equal(t, "3139477", mahomes.PlayerID)
	assert.Equal(t, "Patrick Mahomes", mahomes.Name)
	assert.Equal(t, "KC", mahomes.Team)
	assert.Equal(t, "NE", mahomes.Opponent)
	assert.Equal(t, "QB", mahomes.Position)
	assert.Equal(t, 2024, mahomes.Season)
	assert.Equal(t, 1, mahomes.Week)
	assert.Equal(t, 24, mahomes.Completions)
	assert.Equal(t, 38, mahomes.PassAttempts)
	assert.Equal(t, 305, mahomes.PassYards)
	assert.Equal(t, 2, mahomes.PassTDs)
	assert.Equal(t, 1, mahomes.Interceptions)
	assert.Equal(t, 3, mahomes.Sacks, "Sacks parsed from N-yds cell")
	assert.Equal(t, 38, mahomes.RushYards, "Rushing line merged onto passer")
	assert.Equal(t, 1, mahomes.RushTDs)
	assert.Equal(t, 1, mahomes.Fumbles, "Lost fumbles merged onto passer")

	maye := rows[1]
	assert.Equal(t, "NE", maye.Team)
	assert.Equal(t, "KC", maye.Opponent)
	assert.Equal(t, "QB", maye.Position, "Missing position defaults to QB for passing-group athletes")
	assert.Equal(t, 0, maye.Sacks, "Placeholder sack cell coerces to 0")
	assert.Equal(t, 0, maye.RushYards)
}

func TestFetchSchedules_SkipsFailedWeeks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("week") == "2" {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, scoreboardWeek1)
	})
	c := newTestClient(t, mux)

	schedules, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err, "A failed week is skipped, not fatal")
	assert.Len(t, schedules, 2, "Week 1 games survive the week 2 failure")
}

func TestFetchWeeklyStats_SkipsFailedBoxscores(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("week") == "1" {
			fmt.Fprint(w, scoreboardWeek1)
			return
		}
		fmt.Fprint(w, `{"events": []}`)
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no summary", http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	schedules, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err)

	rows, err := c.FetchWeeklyStats(context.Background(), schedules)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchSchedules_SeesUpdatedResults(t *testing.T) {
	// Week 1 as served while game 401002 is still in progress, then
	// after it goes final. A long-lived worker building one Client must
	// pick up the final result on its next run.
	const inProgress = `{
		"events": [{
			"id": "401002",
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "10", "team": {"abbreviation": "BUF"}},
					{"homeAway": "away", "score": "7", "team": {"abbreviation": "MIA"}}
				],
				"status": {"type": {"completed": false}}
			}]
		}]
	}`
	const final = `{
		"events": [{
			"id": "401002",
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "24", "team": {"abbreviation": "BUF"}},
					{"homeAway": "away", "score": "17", "team": {"abbreviation": "MIA"}}
				],
				"status": {"type": {"completed": true}}
			}]
		}]
	}`

	payload := inProgress
	mux := http.NewServeMux()
	mux.HandleFunc("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("week") == "1" {
			fmt.Fprint(w, payload)
			return
		}
		fmt.Fprint(w, `{"events": []}`)
	})
	c := newTestClient(t, mux)

	first, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Completed)
	assert.Nil(t, first[0].HomeScore)

	// The game finishes between two runs of the same process
	payload = final

	second, err := c.FetchSchedules(context.Background(), []int{2024})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Completed, "A later run must see the final result")
	require.True(t, second[0].Played())
	assert.Equal(t, 24, *second[0].HomeScore)
	assert.Equal(t, 17, *second[0].AwayScore)
}

func TestParseHelpers(t *testing.T) {
	comp, att := parseCompletionsAttempts("24/38")
	assert.Equal(t, 24, comp)
	assert.Equal(t, 38, att)

	comp, att = parseCompletionsAttempts("--")
	assert.Equal(t, 0, comp)
	assert.Equal(t, 0, att)

	assert.Equal(t, 3, parseSacks("3-21"))
	assert.Equal(t, 0, parseSacks("--"))
	assert.Equal(t, 0, parseSacks("4"))

	assert.Equal(t, 305, parseStatInt("305"))
	assert.Equal(t, 0, parseStatInt("--"))
	assert.Equal(t, 0, parseStatInt(""))
}
