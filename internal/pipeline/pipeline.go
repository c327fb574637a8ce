package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nflqb/sync/internal/aggregate"
	"nflqb/sync/internal/metrics"
	"nflqb/sync/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Provider supplies the raw schedule and weekly stat rows. Schedules
// are fetched once per run and handed back for the stats fetch, so a
// provider never walks its upstream twice for the same run.
type Provider interface {
	FetchSchedules(ctx context.Context, seasons []int) ([]models.ScheduleRow, error)
	FetchWeeklyStats(ctx context.Context, schedules []models.ScheduleRow) ([]models.WeeklyStatRow, error)
}

// Store is the persistence surface the pipeline writes through
type Store interface {
	ValidTeamIDs(ctx context.Context) (map[string]struct{}, error)
	UpsertSnapshots(ctx context.Context, snapshots []*models.TeamDefenseSnapshot, validTeams map[string]struct{}, batchSize int) (written, skipped int, err error)
	UpsertQBs(ctx context.Context, qbs []*models.QB, validTeams map[string]struct{}, batchSize int) (written int, err error)
	QBIDsByGSIS(ctx context.Context) (map[string]string, error)
	UpsertPerformances(ctx context.Context, performances []*models.QBPerformance, validTeams map[string]struct{}, batchSize int) (written, skipped int, err error)
}

// Options carries the pipeline's policy configuration
type Options struct {
	Seasons         []int
	MinPassAttempts int
	BatchSize       int
	Enrich          aggregate.EnrichOptions
}

// Summary is the user-visible outcome of one run
type Summary struct {
	WeeklyRows          int
	Games               int
	TeamWeeks           int
	NotableQBs          int
	SnapshotsWritten    int
	SnapshotsSkipped    int
	QBsWritten          int
	PerformancesWritten int
	PerformancesSkipped int
	Duration            time.Duration
}

// Pipeline is the full fetch -> aggregate -> enrich -> persist batch run
type Pipeline struct {
	provider Provider
	store    Store
	opts     Options
}

// New creates a pipeline
func New(provider Provider, store Store, opts Options) *Pipeline {
	return &Pipeline{provider: provider, store: store, opts: opts}
}

// Run executes one full sync. Derived state is recomputed from scratch
// and written via natural-key upserts, so re-running is idempotent.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	log.Info().Ints("seasons", p.opts.Seasons).Msg("Starting sync run")

	summary, err := p.run(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	summary.Duration = time.Since(start)
	metrics.SyncRunsTotal.WithLabelValues("success").Inc()
	metrics.SyncDuration.Observe(summary.Duration.Seconds())

	log.Info().
		Int("weekly_rows", summary.WeeklyRows).
		Int("games", summary.Games).
		Int("snapshots_written", summary.SnapshotsWritten).
		Int("snapshots_skipped", summary.SnapshotsSkipped).
		Int("qbs_written", summary.QBsWritten).
		Int("performances_written", summary.PerformancesWritten).
		Int("performances_skipped", summary.PerformancesSkipped).
		Dur("duration", summary.Duration).
		Msg("Sync run complete")

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context) (*Summary, error) {
	// Verified reference set up front; a dead store aborts before any
	// fetching happens.
	validTeams, err := p.store.ValidTeamIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load valid team set: %w", err)
	}

	schedules, err := p.provider.FetchSchedules(ctx, p.opts.Seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	weekly, err := p.provider.FetchWeeklyStats(ctx, schedules)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weekly stats: %w", err)
	}
	if len(weekly) == 0 {
		return nil, fmt.Errorf("no weekly stats fetched for seasons %v", p.opts.Seasons)
	}

	// The two engines are independent and share no mutable state
	var defense []models.TeamWeekDefense
	var records []models.TeamWeekRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		defense = aggregate.BuildDefenseTable(weekly)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		records = aggregate.BuildRecordTable(schedules)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched := aggregate.EnrichPerformances(weekly, defense, records, p.opts.Enrich)
	notable := aggregate.NotableQBs(enriched, p.opts.MinPassAttempts)

	summary := &Summary{
		WeeklyRows: len(weekly),
		Games:      len(schedules),
		TeamWeeks:  len(defense),
		NotableQBs: len(notable),
	}

	// Phase 1: snapshots
	snapshots := buildSnapshots(defense, records)
	summary.SnapshotsWritten, summary.SnapshotsSkipped, err = p.store.UpsertSnapshots(ctx, snapshots, validTeams, p.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("snapshot upsert phase failed: %w", err)
	}

	// Phase 2: QBs. Must fully commit before performances so every
	// performance can resolve its QB's surrogate id.
	qbs := buildQBs(enriched, notable)
	summary.QBsWritten, err = p.store.UpsertQBs(ctx, qbs, validTeams, p.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("QB upsert phase failed: %w", err)
	}

	qbIDs, err := p.store.QBIDsByGSIS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve QB ids: %w", err)
	}

	// Phase 3: performances
	performances := buildPerformances(enriched, qbIDs)
	summary.PerformancesWritten, summary.PerformancesSkipped, err = p.store.UpsertPerformances(ctx, performances, validTeams, p.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("performance upsert phase failed: %w", err)
	}

	return summary, nil
}

// buildSnapshots merges the defense table with the record table on
// (season, team, week). A missing record leaves zero counts, matching
// the stored contract when schedule data is unavailable.
func buildSnapshots(defense []models.TeamWeekDefense, records []models.TeamWeekRecord) []*models.TeamDefenseSnapshot {
	type key struct {
		season int
		team   string
		week   int
	}

	recByKey := make(map[key]*models.TeamWeekRecord, len(records))
	for i := range records {
		r := &records[i]
		recByKey[key{season: r.Season, team: r.Team, week: r.Week}] = r
	}

	snapshots := make([]*models.TeamDefenseSnapshot, 0, len(defense))
	for i := range defense {
		d := &defense[i]
		snap := &models.TeamDefenseSnapshot{
			TeamID:            d.Team,
			Season:            d.Season,
			Week:              d.Week,
			PassYardsAllowed:  d.CumPassYardsAllowed,
			RushYardsAllowed:  d.CumRushYardsAllowed,
			TotalYardsAllowed: d.CumTotalYardsAllowed,
			PassDefRank:       d.PassDefRank,
			RushDefRank:       d.RushDefRank,
			TotalDefRank:      d.TotalDefRank,
		}
		if r, ok := recByKey[key{season: d.Season, team: d.Team, week: d.Week}]; ok {
			snap.Wins = r.Wins
			snap.Losses = r.Losses
			snap.Ties = r.Ties
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// buildQBs collapses enriched rows to one QB per player id, using the
// player's most recent row for name, team and headshot.
func buildQBs(enriched []models.EnrichedPerformance, notable map[string]bool) []*models.QB {
	latest := make(map[string]*models.EnrichedPerformance)
	var order []string
	for i := range enriched {
		row := &enriched[i]
		cur, ok := latest[row.PlayerID]
		if !ok {
			latest[row.PlayerID] = row
			order = append(order, row.PlayerID)
			continue
		}
		if row.Season > cur.Season || (row.Season == cur.Season && row.Week > cur.Week) {
			latest[row.PlayerID] = row
		}
	}

	qbs := make([]*models.QB, 0, len(order))
	for _, playerID := range order {
		row := latest[playerID]
		qb := &models.QB{
			GSISID:    playerID,
			Name:      row.Name,
			IsNotable: notable[playerID],
		}
		if row.HeadshotURL != "" {
			qb.HeadshotURL = sql.NullString{String: row.HeadshotURL, Valid: true}
		}
		if row.Team != "" {
			qb.TeamID = sql.NullString{String: row.Team, Valid: true}
		}
		qbs = append(qbs, qb)
	}
	return qbs
}

// buildPerformances converts enriched rows to persistable rows,
// resolving each QB's surrogate id. Unresolvable ids are left empty
// for the repository to skip and count.
func buildPerformances(enriched []models.EnrichedPerformance, qbIDs map[string]string) []*models.QBPerformance {
	performances := make([]*models.QBPerformance, 0, len(enriched))
	for i := range enriched {
		row := &enriched[i]
		performances = append(performances, &models.QBPerformance{
			QBID:            qbIDs[row.PlayerID],
			Season:          row.Season,
			Week:            row.Week,
			OpponentID:      row.Opponent,
			PassYards:       row.PassYards,
			PassTDs:         row.PassTDs,
			PassAttempts:    row.PassAttempts,
			Completions:     row.Completions,
			RushYards:       row.RushYards,
			RushTDs:         row.RushTDs,
			Interceptions:   row.Interceptions,
			Sacks:           row.Sacks,
			Fumbles:         row.Fumbles,
			OppWinPct:       row.OppWinPct,
			OppPassDefRank:  row.OppPassDefRank,
			OppTotalDefRank: row.OppTotalDefRank,
		})
	}
	return performances
}
