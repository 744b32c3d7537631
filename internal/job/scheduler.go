package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the background jobs on cron schedules.
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	ctx    context.Context
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// NewScheduler creates a new job scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	cronLogger := &cronLogger{logger: logger.Named("cron")}
	cronOptions := []cron.Option{
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cronLogger)),
	}

	return &Scheduler{
		logger: logger,
		cron:   cron.New(cronOptions...),
		ctx:    context.Background(),
	}
}

// Add registers a job under a six-field cron expression.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		fn(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.logger.Info("Registered job",
		zap.String("name", name),
		zap.String("spec", spec))
	return nil
}

// AddDaily registers a job that runs once per day at the given "HH:MM"
// local time.
func (s *Scheduler) AddDaily(name, at string, fn func(ctx context.Context)) error {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return fmt.Errorf("invalid time %q for job %s: %w", at, name, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %q for job %s", at, name)
	}
	return s.Add(name, fmt.Sprintf("0 %d %d * * *", minute, hour), fn)
}

// AddEveryMinute registers a job that runs at the top of every minute.
func (s *Scheduler) AddEveryMinute(name string, fn func(ctx context.Context)) error {
	return s.Add(name, "0 * * * * *", fn)
}

// Start starts the scheduler. Jobs registered after Start still run.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
