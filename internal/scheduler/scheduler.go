package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"nbamodel/pipeline/internal/config"
	"nbamodel/pipeline/internal/features"
	"nbamodel/pipeline/internal/metrics"
	"nbamodel/pipeline/internal/repository"
)

// poolStatsInterval is how often connection pool gauges are refreshed
const poolStatsInterval = 30 * time.Second

// Scheduler manages the background feature pipeline:
// - Nightly incremental materialization (new rows + label backfill)
// - Connection pool gauge refresh
type Scheduler struct {
	cfg          *config.Config
	db           *repository.Database
	materializer *features.Materializer
	cron         *cron.Cron
	ticker       *time.Ticker
	stopChan     chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, db *repository.Database, materializer *features.Materializer) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		db:           db,
		materializer: materializer,
		cron:         cron.New(),
		stopChan:     make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Nightly incremental refresh: materialize rows for newly scheduled
	// games and backfill labels on games that finished since the last run
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly feature refresh...")
		if err := s.runMaterialization(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly feature refresh failed")
			metrics.RecordError("scheduler", "nightly_refresh")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly feature refresh scheduled")

	s.ticker = time.NewTicker(poolStatsInterval)
	go s.pollPoolStats(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// runMaterialization runs one incremental pass over the configured season
func (s *Scheduler) runMaterialization(ctx context.Context) error {
	stats, err := s.materializer.Run(ctx, s.cfg.Season, false)
	if err != nil {
		return err
	}

	log.Info().
		Str("season", s.cfg.Season).
		Int("rolling_created", stats.RollingCreated).
		Int("targets_backfilled", stats.TargetsBackfilled).
		Int("matchup_created", stats.MatchupCreated).
		Int("row_errors", len(stats.Errors)).
		Msg("Nightly feature refresh complete")

	return nil
}

// pollPoolStats keeps the connection pool gauges current
func (s *Scheduler) pollPoolStats(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping pool stats polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping pool stats polling")
			return
		case <-s.ticker.C:
			stat := s.db.Pool.Stat()
			metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
		}
	}
}
