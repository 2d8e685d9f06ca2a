// Package sweeper removes pending transfers that outlived their validity window.
// DynamoDB TTL deletes expired items eventually; the sweep bounds how long they linger.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/otp-transfers/pkg/metrics"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/robfig/cron/v3"
)

const sweepTimeout = 50 * time.Second

// Sweeper deletes expired pending transfers.
type Sweeper struct {
	Store  storage.PendingTransferSweeper
	Logger *slog.Logger
	Now    func() time.Time
}

// New creates a Sweeper using the wall clock.
func New(store storage.PendingTransferSweeper, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		Store:  store,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sweep runs one pass and returns how many records it removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := s.Store.SweepExpiredPendingTransfers(ctx, s.Now())
	metrics.PendingTransfersSwept.Add(float64(removed))
	if err != nil {
		return removed, fmt.Errorf("failed to sweep expired pending transfers: %w", err)
	}
	if removed > 0 {
		s.Logger.InfoContext(ctx, "swept expired pending transfers", "removed", removed)
	}
	return removed, nil
}

// Scheduler runs the sweep on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  *Sweeper
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(sweeper *Sweeper, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:     c,
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule expiry sweep %q: %w", s.schedule, err)
	}
	s.logger.Info("scheduled expiry sweep", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop gracefully stops the cron scheduler. The returned context is done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
	}
}
