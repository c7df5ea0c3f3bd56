package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Expirer fails dispatches left pending for too long.
type Expirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// StaleDispatchJob marks unanswered mint dispatches as failed so the
// items behind them become retryable.
type StaleDispatchJob struct {
	expirer  Expirer
	interval time.Duration
	after    time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewStaleDispatchJob expires dispatches pending for longer than after,
// checking every interval.
func NewStaleDispatchJob(expirer Expirer, interval, after time.Duration, logger *slog.Logger) *StaleDispatchJob {
	return &StaleDispatchJob{
		expirer:  expirer,
		interval: interval,
		after:    after,
		timeout:  interval,
		logger:   logger,
	}
}

// GetName implements Job.
func (j *StaleDispatchJob) GetName() string {
	return "stale_mint_dispatch_sweeper"
}

// GetSchedule runs the job every interval.
func (j *StaleDispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute runs one expiry pass and logs its outcome.
func (j *StaleDispatchJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.expirer.ExpireStale(ctx, j.after)
	if err != nil {
		j.logger.Error("stale dispatch sweep failed", slog.Int("expired", n), slog.Any("error", err))
		return
	}
	if n > 0 {
		j.logger.Warn("stale dispatch sweep completed", slog.Int("expired", n))
	}
}
