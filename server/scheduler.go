package server

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher reloads a data source, like rupeevest.Catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs the periodic refresh of the fund catalog.
type Scheduler struct {
	Cron *cron.Cron
	ctx  context.Context
	log  zerolog.Logger
}

// NewScheduler creates a Scheduler, jobs run with ctx.
func NewScheduler(ctx context.Context, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		ctx:  ctx,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterRefresh refreshes r on the cron spec, with a seconds field.
func (s *Scheduler) RegisterRefresh(spec, name string, r Refresher) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.refresh(name, r) }); err != nil {
		return fmt.Errorf("register %s refresh: %w", name, err)
	}
	return nil
}

func (s *Scheduler) refresh(name string, r Refresher) {
	if err := r.Refresh(s.ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("refresh failed")
		return
	}
	s.log.Info().Str("job", name).Msg("refreshed")
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}
