package notifications

import (
	"context"

	"github.com/albapepper/usage-relay/internal/usage"
)

// UsageAggregator computes usage for one user over an inclusive date range.
type UsageAggregator interface {
	Aggregate(ctx context.Context, userID, startDate, endDate string) (*usage.Summary, error)
}

// Reporter mirrors send outcomes to an operator channel. Implementations
// must be best-effort and never block a run on their own failures.
type Reporter interface {
	SMSSuccess(ctx context.Context, phone, message, userInfo string)
	SMSFailure(ctx context.Context, phone, message, errMsg, userInfo string)
	BroadcastResult(ctx context.Context, total, success, failed int)
}

// DeliveryLog persists one row per attempted send.
type DeliveryLog interface {
	Record(ctx context.Context, d Delivery) error
}

// Recipients is the registered phone list used by manual sends.
type Recipients interface {
	List(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, phone string) (bool, error)
}

// nopReporter is used when no reporter is configured.
type nopReporter struct{}

func (nopReporter) SMSSuccess(context.Context, string, string, string)         {}
func (nopReporter) SMSFailure(context.Context, string, string, string, string) {}
func (nopReporter) BroadcastResult(context.Context, int, int, int)             {}
