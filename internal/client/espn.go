package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// regularSeason is the ESPN seasontype for regular-season games
const regularSeason = 2

// ResponseCache stores raw API payloads keyed by request, so repeated
// runs don't re-fetch boxscores that are already final. Staleness is
// bounded by the configured TTLs, never by process lifetime. A nil
// cache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Options configures the ESPN client
type Options struct {
	MaxWeek       int
	Cache         ResponseCache
	ScoreboardTTL time.Duration
	SummaryTTL    time.Duration
}

// Client is the ESPN public API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration

	maxWeek       int
	cache         ResponseCache
	scoreboardTTL time.Duration
	summaryTTL    time.Duration
}

// NewClient creates a new ESPN API client
func NewClient(baseURL string, timeout time.Duration, opts Options) *Client {
	// Rate limiter: max 10 concurrent requests against the public API
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	maxWeek := opts.MaxWeek
	if maxWeek <= 0 {
		maxWeek = 18
	}

	return &Client{
		baseURL:       baseURL,
		rateLimiter:   rateLimiter,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		maxWeek:       maxWeek,
		cache:         opts.Cache,
		scoreboardTTL: opts.ScoreboardTTL,
		summaryTTL:    opts.SummaryTTL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retryable, err := c.doRequest(ctx, url, path, params)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// doRequest performs a single attempt, holding a rate-limiter slot for
// its duration. The second return reports whether the failure is
// retryable.
func (c *Client) doRequest(ctx context.Context, url, path string, params map[string]string) ([]byte, bool, error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APICallsTotal.WithLabelValues(path, "error").Inc()
		return nil, true, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.APICallDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	metrics.APICallsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable error, will retry")
		return nil, true, fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// getCached reads through the response cache
func (c *Client) getCached(ctx context.Context, key, path string, params map[string]string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			metrics.CacheHitsTotal.Inc()
			return body, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && ttl > 0 {
		c.cache.Set(ctx, key, body, ttl)
	}
	return body, nil
}

// fetchScoreboard fetches one week's scoreboard
func (c *Client) fetchScoreboard(ctx context.Context, season, week int) (*scoreboardResponse, error) {
	key := fmt.Sprintf("espn:scoreboard:%d:%d", season, week)

	params := map[string]string{
		"seasontype": strconv.Itoa(regularSeason),
		"week":       strconv.Itoa(week),
		"dates":      strconv.Itoa(season),
	}

	body, err := c.getCached(ctx, key, "scoreboard", params, c.scoreboardTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard season=%d week=%d: %w", season, week, err)
	}

	var sb scoreboardResponse
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	return &sb, nil
}

// fetchSummary fetches one game's boxscore summary
func (c *Client) fetchSummary(ctx context.Context, eventID string) (*summaryResponse, error) {
	key := "espn:summary:" + eventID

	body, err := c.getCached(ctx, key, "summary", map[string]string{"event": eventID}, c.summaryTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary event=%s: %w", eventID, err)
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &summary, nil
}

// FetchSchedules returns one ScheduleRow per game across the requested
// seasons. A failed week is logged and skipped, never fatal.
func (c *Client) FetchSchedules(ctx context.Context, seasons []int) ([]models.ScheduleRow, error) {
	var schedules []models.ScheduleRow

	for _, season := range seasons {
		log.Info().Int("season", season).Msg("Fetching schedule")

		for week := 1; week <= c.maxWeek; week++ {
			sb, err := c.fetchScoreboard(ctx, season, week)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Warn().Err(err).Int("season", season).Int("week", week).Msg("Skipping week: scoreboard fetch failed")
				continue
			}

			for _, event := range sb.Events {
				row, ok := event.toScheduleRow(season, week)
				if !ok {
					continue
				}
				schedules = append(schedules, row)
			}
		}
	}

	log.Info().Int("games", len(schedules)).Msg("Schedules fetched")
	return schedules, nil
}

// FetchWeeklyStats returns one WeeklyStatRow per passer per completed
// game in schedules, which callers obtain from FetchSchedules so each
// run walks the scoreboards exactly once. Failed boxscores are logged
// and skipped.
func (c *Client) FetchWeeklyStats(ctx context.Context, schedules []models.ScheduleRow) ([]models.WeeklyStatRow, error) {
	var rows []models.WeeklyStatRow
	processed := 0
	for i := range schedules {
		game := &schedules[i]
		if !game.Completed {
			continue
		}

		summary, err := c.fetchSummary(ctx, game.GameID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("game_id", game.GameID).Msg("Skipping game: boxscore fetch failed")
			continue
		}

		rows = append(rows, summary.toWeeklyStatRows(game)...)

		processed++
		if processed%50 == 0 {
			log.Info().Int("games", processed).Msg("Boxscores processed")
		}
	}

	log.Info().Int("rows", len(rows)).Msg("Weekly QB stats fetched")
	return rows, nil
}
