package aggregate

import (
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// NotableQBs returns the set of player ids whose summed pass attempts
// in the single most-recent season present in rows meet the threshold.
// Recomputed from scratch each run: a player can lose notable status
// when earlier seasons age out of the window.
func NotableQBs(rows []models.EnrichedPerformance, minAttempts int) map[string]bool {
	if len(rows) == 0 {
		return map[string]bool{}
	}

	mostRecent := rows[0].Season
	for _, row := range rows {
		if row.Season > mostRecent {
			mostRecent = row.Season
		}
	}

	attempts := make(map[string]int)
	for _, row := range rows {
		if row.Season == mostRecent {
			attempts[row.PlayerID] += row.PassAttempts
		}
	}

	notable := make(map[string]bool)
	for playerID, total := range attempts {
		if total >= minAttempts {
			notable[playerID] = true
		}
	}

	log.Info().
		Int("season", mostRecent).
		Int("count", len(notable)).
		Int("min_attempts", minAttempts).
		Msg("Notable QBs identified")

	return notable
}
