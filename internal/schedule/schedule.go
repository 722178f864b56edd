// Package schedule binds the morning and evening fan-out runs to fixed
// wall-clock times in the operating timezone.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/albapepper/usage-relay/internal/notifications"
)

// Runner executes one fan-out run.
type Runner interface {
	Run(ctx context.Context, dir notifications.Direction) (*notifications.Result, error)
}

// Clock is a daily fire time.
type Clock struct {
	Hour   int
	Minute int
}

// Spec returns the five-field cron expression firing daily at c.
func (c Clock) Spec() string {
	return fmt.Sprintf("%d %d * * *", c.Minute, c.Hour)
}

// Config holds the trigger times and per-run timeout.
type Config struct {
	Location   *time.Location
	Morning    Clock
	Evening    Clock
	RunTimeout time.Duration
}

// DefaultConfig returns 07:00 and 19:00 in loc with a ten minute budget.
func DefaultConfig(loc *time.Location) Config {
	return Config{
		Location:   loc,
		Morning:    Clock{Hour: 7},
		Evening:    Clock{Hour: 19},
		RunTimeout: 10 * time.Minute,
	}
}

// Scheduler owns the cron instance. Each direction is an independent entry;
// a failed or panicking run leaves both entries registered.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	cfg     Config
	logger  *slog.Logger
	entries map[notifications.Direction]cron.EntryID
}

// New registers the morning and evening jobs without starting them.
func New(runner Runner, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		runner:  runner,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[notifications.Direction]cron.EntryID, 2),
	}
	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.Recover(cronLogger{logger})),
	)

	for dir, at := range map[notifications.Direction]Clock{
		notifications.Morning: cfg.Morning,
		notifications.Evening: cfg.Evening,
	} {
		dir := dir
		id, err := s.cron.AddFunc(at.Spec(), func() { s.fire(dir) })
		if err != nil {
			return nil, fmt.Errorf("register %s job %q: %w", dir, at.Spec(), err)
		}
		s.entries[dir] = id
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	now := time.Now()
	s.logger.Info("Scheduler started",
		"morning", s.NextAfter(notifications.Morning, now),
		"evening", s.NextAfter(notifications.Evening, now),
		"tz", s.cfg.Location.String())
}

// Stop prevents new runs and waits for a running job, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next fire time of dir as tracked by the running
// scheduler, or zero before it has started.
func (s *Scheduler) Next(dir notifications.Direction) time.Time {
	id, ok := s.entries[dir]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// NextAfter computes the fire time of dir following t, independent of
// whether the scheduler is running.
func (s *Scheduler) NextAfter(dir notifications.Direction, t time.Time) time.Time {
	id, ok := s.entries[dir]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Schedule.Next(t.In(s.cfg.Location))
}

func (s *Scheduler) fire(dir notifications.Direction) {
	ctx := context.Background()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, dir)
	if err != nil {
		s.logger.Error("Scheduled run failed", "direction", dir, "error", err)
		return
	}
	s.logger.Info("Scheduled run finished", "direction", dir, "summary", res.Summary())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
