package scheduler

import (
	"context"
	"fmt"
	"sync"

	"nflqb/sync/internal/config"
	"nflqb/sync/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the sync pipeline on a cron schedule. Runs never
// overlap: a trigger that fires while a run is in flight is skipped.
type Scheduler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	cron     *cron.Cron
	stopChan chan struct{}

	runMu sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipe *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipe:     pipe,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the cron job and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.SyncCron, func() {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		default:
		}
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.SyncCron).
		Msg("Sync scheduled")

	return nil
}

// Stop stops the scheduler. In-flight runs finish; future triggers are
// dropped.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// RunOnce executes a single pipeline run and returns its error so
// callers decide whether a failure is fatal. A trigger that fires
// while a run is in flight is skipped, not an error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.runMu.TryLock() {
		log.Warn().Msg("Sync already in progress, skipping trigger")
		return nil
	}
	defer s.runMu.Unlock()

	summary, err := s.pipe.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("snapshots", summary.SnapshotsWritten).
		Int("qbs", summary.QBsWritten).
		Int("performances", summary.PerformancesWritten).
		Dur("duration", summary.Duration).
		Msg("Sync run finished")
	return nil
}
