package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/albapepper/usage-relay/internal/sms"
)

// SendOne sends body to a registered phone. Unlike fan-out runs, a send
// failure is returned to the caller.
func (n *Notifier) SendOne(ctx context.Context, phone, body string) (*sms.Delivery, error) {
	if n.recipients == nil {
		return nil, ErrRecipientsMissing
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultSingleBody
	}

	ok, err := n.recipients.Contains(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipient, phone)
	}

	logger := n.logger.With("kind", KindSingle)
	reports := n.startReports(ctx, logger)
	out := n.deliver(ctx, logger, reports, uuid.NewString(), KindSingle, "", Outcome{Phone: phone, Message: body})
	reports.drain()
	if out.Status != StatusSent {
		return nil, fmt.Errorf("send to %s: %s", phone, out.Error)
	}
	return &sms.Delivery{MessageID: out.MessageID, To: phone}, nil
}

// Broadcast sends body to every registered recipient, one at a time. It
// shares the run lock with Run. Per-recipient failures are listed in the
// report; only an empty or unreadable recipient list is an error.
func (n *Notifier) Broadcast(ctx context.Context, body string) (*BroadcastReport, error) {
	if n.recipients == nil {
		return nil, ErrRecipientsMissing
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultBroadcastBody
	}

	phones, err := n.recipients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	if len(phones) == 0 {
		return nil, ErrNoRecipients
	}

	if err := n.lock.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	defer n.lock.Release(1)

	report := &BroadcastReport{
		RunID:      uuid.NewString(),
		TotalCount: len(phones),
		Results:    make([]Outcome, 0, len(phones)),
	}
	logger := n.logger.With("run_id", report.RunID, "kind", KindBroadcast)

	reports := n.startReports(ctx, logger)
	for _, phone := range phones {
		out := n.deliver(ctx, logger, reports, report.RunID, KindBroadcast, "", Outcome{Phone: phone, Message: body})
		if out.Status == StatusSent {
			report.SuccessCount++
		} else {
			report.FailedCount++
		}
		report.Results = append(report.Results, out)
	}

	total, success, failed := report.TotalCount, report.SuccessCount, report.FailedCount
	reports.push(func(rctx context.Context) { n.reporter.BroadcastResult(rctx, total, success, failed) })
	reports.drain()
	logger.Info("Broadcast complete",
		"total", report.TotalCount, "sent", report.SuccessCount, "failed", report.FailedCount)
	return report, nil
}
