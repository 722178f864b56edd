package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/albapepper/usage-relay/internal/roster"
	"github.com/albapepper/usage-relay/internal/sms"
)

// Deps are the collaborators of a Notifier. Roster, Usage and Sender are
// required; the rest may be nil.
type Deps struct {
	Roster     roster.Source
	Usage      UsageAggregator
	Sender     sms.Sender
	Recipients Recipients
	Reporter   Reporter
	Log        DeliveryLog
	Metrics    *Metrics
	Clock      quartz.Clock
	Logger     *slog.Logger
}

// Options holds the run policy.
type Options struct {
	Location            *time.Location
	Ceiling             time.Duration
	Role                string
	RequireActiveWindow bool
	SendTimeout         time.Duration
	// ReportTimeout bounds each reporter call and the wait for queued
	// reports once the sends are done.
	ReportTimeout time.Duration
}

// Notifier runs scheduled fan-outs and manual sends. Fan-outs and
// broadcasts are serialized so no recipient gets a duplicate from
// overlapping runs.
type Notifier struct {
	roster     roster.Source
	usage      UsageAggregator
	sender     sms.Sender
	recipients Recipients
	reporter   Reporter
	log        DeliveryLog
	metrics    *Metrics
	clock      quartz.Clock
	logger     *slog.Logger
	opts       Options

	lock *semaphore.Weighted
}

// New creates a Notifier.
func New(deps Deps, opts Options) *Notifier {
	if deps.Reporter == nil {
		deps.Reporter = nopReporter{}
	}
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = defaultReportTimeout
	}
	return &Notifier{
		roster:     deps.Roster,
		usage:      deps.Usage,
		sender:     deps.Sender,
		recipients: deps.Recipients,
		reporter:   deps.Reporter,
		log:        deps.Log,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		logger:     deps.Logger,
		opts:       opts,
		lock:       semaphore.NewWeighted(1),
	}
}

// Run fetches the roster, filters it, and sends each eligible user a message
// about their usage on the direction's target date. Per-entry failures are
// tallied in the result. Only a roster fetch failure (or losing the wait for
// the run lock) returns an error, and in that case nothing is sent or
// reported.
func (n *Notifier) Run(ctx context.Context, dir Direction) (*Result, error) {
	if _, err := ParseDirection(string(dir)); err != nil {
		return nil, err
	}
	if err := n.lock.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	defer n.lock.Release(1)

	started := n.clock.Now()
	res := &Result{
		RunID:      uuid.NewString(),
		Direction:  dir,
		TargetDate: TargetDate(dir, started, n.opts.Location),
		StartedAt:  started,
		Outcomes:   []Outcome{},
	}
	logger := n.logger.With("run_id", res.RunID, "direction", dir, "date", res.TargetDate)

	entries, err := n.roster.Roster(ctx, n.opts.Role)
	if err != nil {
		logger.Error("Roster fetch failed, run aborted", "error", err)
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	eligible := roster.Filter(entries, roster.FilterOptions{
		Role:                n.opts.Role,
		RequireActiveWindow: n.opts.RequireActiveWindow,
		Now:                 started,
		Location:            n.opts.Location,
	})
	res.TotalCount = len(eligible)
	logger.Info("Notification run started", "roster", len(entries), "eligible", len(eligible))

	reports := n.startReports(ctx, logger)
	for _, e := range eligible {
		res.add(n.notifyEntry(ctx, logger, reports, res, e))
	}

	res.Duration = n.clock.Since(started)
	n.metrics.recordRun(res)
	total, success, failed := res.TotalCount, res.SuccessCount, res.FailedCount
	reports.push(func(rctx context.Context) { n.reporter.BroadcastResult(rctx, total, success, failed) })
	reports.drain()
	logger.Info("Notification run complete", "summary", res.Summary())
	return res, nil
}

func (n *Notifier) notifyEntry(ctx context.Context, logger *slog.Logger, reports *reportQueue, res *Result, e roster.Entry) Outcome {
	out := Outcome{UserID: e.UserID, Name: e.Name(), Phone: e.Phone}

	summary, err := n.usage.Aggregate(ctx, e.UserID, res.TargetDate, res.TargetDate)
	if err != nil {
		logger.Warn("usage aggregation failed", "user_id", e.UserID, "error", err)
		out.Status = StatusFailed
		out.Error = err.Error()
		return out
	}
	out.UsageSeconds = summary.TotalSeconds

	text, ok := Compose(res.Direction, e.Name(), summary, n.opts.Ceiling)
	if !ok {
		logger.Info("Usage goal met, message suppressed", "user_id", e.UserID, "usage", summary.Formatted)
		out.Status = StatusSkipped
		return out
	}
	out.Message = text

	userInfo := fmt.Sprintf("%s (%s) %s %s", e.Name(), e.UserID, res.Direction, summary.Formatted)
	return n.deliver(ctx, logger, reports, res.RunID, string(res.Direction), userInfo, out)
}

// deliver sends out.Message to out.Phone under the per-send timeout and
// records the attempt. It never returns an error; the outcome carries it.
// Reporter calls go through reports and never wait on the log sink.
func (n *Notifier) deliver(ctx context.Context, logger *slog.Logger, reports *reportQueue, runID, kind, userInfo string, out Outcome) Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, n.opts.SendTimeout)
	d, err := n.sender.Send(sendCtx, out.Phone, out.Message)
	cancel()

	if err != nil {
		logger.Warn("send failed", "user_id", out.UserID, "phone", out.Phone, "error", err)
		out.Status = StatusFailed
		out.Error = err.Error()
		phone, msg, errMsg := out.Phone, out.Message, out.Error
		reports.push(func(rctx context.Context) { n.reporter.SMSFailure(rctx, phone, msg, errMsg, userInfo) })
	} else {
		out.Status = StatusSent
		if d != nil {
			out.MessageID = d.MessageID
		}
		phone, msg := out.Phone, out.Message
		reports.push(func(rctx context.Context) { n.reporter.SMSSuccess(rctx, phone, msg, userInfo) })
	}

	n.metrics.recordSend(kind, out.Status)
	if n.log != nil {
		rec := Delivery{
			RunID:     runID,
			Kind:      kind,
			UserID:    out.UserID,
			Phone:     out.Phone,
			Message:   out.Message,
			Status:    out.Status,
			MessageID: out.MessageID,
			Error:     out.Error,
			CreatedAt: n.clock.Now(),
		}
		if err := n.log.Record(ctx, rec); err != nil {
			logger.Warn("delivery log write failed", "phone", out.Phone, "error", err)
		}
	}
	return out
}
