package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// Job is a periodic background task.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the gocron scheduler and its jobs.
type Manager struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewManager creates a stopped scheduler.
func NewManager(logger *slog.Logger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Manager{scheduler: s, logger: logger}, nil
}

// Register adds job. A run still in progress when the next one is due is
// rescheduled instead of overlapping.
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", job.GetName(), err)
	}
	m.logger.Info("job registered", slog.String("job", job.GetName()))
	return nil
}

// Start begins running registered jobs.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Info("scheduler started", slog.Int("jobs", len(m.scheduler.Jobs())))
}

// Stop waits for running jobs and shuts the scheduler down.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Error("scheduler shutdown", slog.Any("error", err))
		return
	}
	m.logger.Info("scheduler stopped")
}
