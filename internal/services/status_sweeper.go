package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSweepSchedule = "@every 1h"

// StatusRefresher persists derived contract statuses that drifted from the stored value.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context) (int, error)
}

// StatusSweeper runs the refresher on a cron schedule so stored statuses
// catch up even for contracts nobody reads.
type StatusSweeper struct {
	refresher StatusRefresher
	monitor   ConnectionHealth
	logger    *zap.Logger
	cron      *cron.Cron
	timeout   time.Duration
}

func NewStatusSweeper(refresher StatusRefresher, monitor ConnectionHealth, schedule string, logger *zap.Logger) (*StatusSweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &StatusSweeper{
		refresher: refresher,
		monitor:   monitor,
		logger:    logger,
		cron:      cron.New(),
		timeout:   5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Sweep runs one refresh pass and returns the number of contracts updated.
func (s *StatusSweeper) Sweep(ctx context.Context) int {
	if s == nil || s.refresher == nil {
		return 0
	}
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping status sweep (offline)")
		return 0
	}
	started := time.Now()
	updated, err := s.refresher.RefreshStatuses(ctx)
	if err != nil {
		s.logger.Error("status sweep failed", zap.Int("updated", updated), zap.Error(err))
		return updated
	}
	s.logger.Info("status sweep finished",
		zap.Int("updated", updated),
		zap.Duration("elapsed", time.Since(started)))
	return updated
}

func (s *StatusSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("status sweeper started")
}

func (s *StatusSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info("status sweeper stopped")
}
