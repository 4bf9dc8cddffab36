// Package purge deletes stored posts once they reach a configured age.
package purge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/robalyx/embedder/internal/worker/core"
	"github.com/robalyx/embedder/pkg/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultSchedule runs the purge once a day at midnight.
	DefaultSchedule = "@daily"
	// DefaultOlderThan is the age of posts deleted when none is configured.
	DefaultOlderThan = "30d"
	// DefaultBatchSize is the number of posts deleted per batch when none is configured.
	DefaultBatchSize = 500
)

// ErrInvalidBatchSize is returned for batch sizes below one.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Purger deletes posts created before the cutoff, at most limit at a time.
type Purger interface {
	PurgePosts(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Worker removes old posts in batches.
type Worker struct {
	purger    Purger
	reporter  *core.StatusReporter
	schedule  string
	olderThan time.Duration
	batchSize int
	sleep     time.Duration
	logger    *zap.Logger
}

// New creates a purge worker from its configuration.
func New(purger Purger, reporter *core.StatusReporter, cfg *config.Purge, logger *zap.Logger) (*Worker, error) {
	olderThan := cfg.OlderThan
	if olderThan == "" {
		olderThan = DefaultOlderThan
	}

	age, err := utils.ParseAge(olderThan)
	if err != nil {
		return nil, fmt.Errorf("invalid purge age: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	return &Worker{
		purger:    purger,
		reporter:  reporter,
		schedule:  schedule,
		olderThan: age,
		batchSize: batchSize,
		sleep:     cfg.SleepDuration(),
		logger:    logger.Named("purge_worker"),
	}, nil
}

// RunOnce deletes every post older than the configured age and returns the
// number of deleted posts. Batches are separated by the configured pause.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-w.olderThan)

	w.logger.Info("Purging posts", zap.Time("cutoff", cutoff), zap.Int("batch_size", w.batchSize))
	w.setStatus("Purging posts", 0)

	total := 0
	for {
		deleted, err := w.purger.PurgePosts(ctx, cutoff, w.batchSize)
		if err != nil {
			w.reporter.SetHealthy(false)
			return total, fmt.Errorf("failed to purge posts: %w", err)
		}

		total += deleted
		w.logger.Debug("Purged batch", zap.Int("deleted", deleted), zap.Int("total", total))

		if deleted < w.batchSize {
			break
		}

		if !utils.IntervalSleep(ctx, w.sleep, w.logger, "purge worker") {
			return total, ctx.Err()
		}
	}

	w.reporter.SetHealthy(true)
	w.setStatus("Idle", 100)
	w.logger.Info("Purged posts", zap.Int("deleted", total), zap.Time("cutoff", cutoff))

	return total, nil
}

// Start runs the purge on its schedule until ctx is done.
// Runs never overlap; a run still in progress skips the next tick.
func (w *Worker) Start(ctx context.Context) error {
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() {
		if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Purge run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", w.schedule, err)
	}

	c.Start()
	w.logger.Info("Purge worker started",
		zap.String("worker_id", w.reporter.GetWorkerID()),
		zap.String("schedule", w.schedule),
		zap.Duration("older_than", w.olderThan))
	w.setStatus("Idle", 0)

	<-ctx.Done()
	<-c.Stop().Done()

	w.logger.Info("Purge worker stopped")
	return nil
}

func (w *Worker) setStatus(task string, progress int) {
	w.reporter.UpdateStatus(task, progress)
}
