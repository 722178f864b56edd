package notifications

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultReportTimeout = 15 * time.Second
	reportQueueSize      = 256
)

// reportQueue hands reporter calls to one background worker so a slow or
// hung log sink never spends the caller's send budget. Calls run in order
// on a context detached from the run, each bounded by timeout.
type reportQueue struct {
	calls   chan func(context.Context)
	done    chan struct{}
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger
}

func (n *Notifier) startReports(ctx context.Context, logger *slog.Logger) *reportQueue {
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &reportQueue{
		calls:   make(chan func(context.Context), reportQueueSize),
		done:    make(chan struct{}),
		cancel:  cancel,
		timeout: n.opts.ReportTimeout,
		logger:  logger,
	}
	go func() {
		defer close(q.done)
		for fn := range q.calls {
			rctx, rcancel := context.WithTimeout(base, q.timeout)
			fn(rctx)
			rcancel()
		}
	}()
	return q
}

// push queues fn, dropping it when the queue is full.
func (q *reportQueue) push(fn func(context.Context)) {
	select {
	case q.calls <- fn:
	default:
		q.logger.Warn("report queue full, dropping report")
	}
}

// drain waits up to one timeout for queued reports, then cancels whatever
// is left and waits for the worker to exit.
func (q *reportQueue) drain() {
	close(q.calls)
	t := time.NewTimer(q.timeout)
	defer t.Stop()
	select {
	case <-q.done:
	case <-t.C:
		q.logger.Warn("reporter did not finish in time, remaining reports cancelled")
		q.cancel()
		<-q.done
	}
	q.cancel()
}
