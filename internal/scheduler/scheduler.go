// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs one job on a cron schedule. Ticks that arrive while the
// previous invocation is still running are skipped.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	job      func(ctx context.Context)
}

// New validates spec, which may be a standard five-field expression or a
// descriptor such as "@every 6h" or "@daily".
func New(spec string, job func(ctx context.Context)) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return &Scheduler{spec: spec, schedule: schedule, job: job}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is done, invoking the job on every tick with ctx.
// It waits for a running job to return before returning itself.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.job(ctx) }))

	c.Start()
	slog.Info("scheduler started", "schedule", s.spec, "next", s.Next(time.Now()))

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	slog.Info("scheduler stopped")
	return nil
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
