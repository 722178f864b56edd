// Package maintenance runs periodic background housekeeping as tickers:
// purging old delivery log rows and evicting expired cache entries.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/quartz"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration // Delivery log purge
	EvictInterval   time.Duration // Expired cache entries
	Retain          time.Duration // Delivery log retention
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: 6 * time.Hour,
		EvictInterval:   5 * time.Minute,
		Retain:          30 * 24 * time.Hour,
	}
}

// Purger deletes delivery rows older than cutoff.
type Purger interface {
	PurgeDeliveries(ctx context.Context, cutoff time.Time) (int64, error)
}

// Evicter drops expired cache entries.
type Evicter interface {
	Evict() int
}

// Tasks are the targets of maintenance. A nil target disables its task.
type Tasks struct {
	Deliveries Purger
	Cache      Evicter
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, clock quartz.Clock, logger *slog.Logger) {
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval,
		"evict", cfg.EvictInterval,
		"retain", cfg.Retain)

	var tickers []*quartz.Ticker
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.CleanupInterval > 0 && tasks.Deliveries != nil {
		t := clock.NewTicker(cfg.CleanupInterval, "maintenance", "cleanup")
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { cleanup(ctx, tasks.Deliveries, clock.Now().Add(-cfg.Retain), logger) })
	}

	if cfg.EvictInterval > 0 && tasks.Cache != nil {
		t := clock.NewTicker(cfg.EvictInterval, "maintenance", "evict")
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			if n := tasks.Cache.Evict(); n > 0 {
				logger.Debug("Evicted expired cache entries", "count", n)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// cleanup removes delivery rows created before cutoff.
func cleanup(ctx context.Context, p Purger, cutoff time.Time, logger *slog.Logger) {
	n, err := p.PurgeDeliveries(ctx, cutoff)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old deliveries", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Cleanup: purged old deliveries", "count", n, "before", cutoff)
	}
}
