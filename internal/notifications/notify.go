// Package notifications composes personalized usage messages and fans them
// out to eligible users over SMS.
//
// Pipeline: fetch roster → filter → aggregate usage → compose → send → tally.
// The same Notifier also serves the manual single-send and broadcast paths,
// and a run-level lock keeps fan-outs from overlapping.
package notifications

import (
	"errors"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultSingleBody is sent by SendOne when no body is given.
	DefaultSingleBody = "실험 알림입니다."
	// DefaultBroadcastBody is sent by Broadcast when no body is given.
	DefaultBroadcastBody = "실험 알림입니다. 오늘도 좋은 하루 되십시오."

	defaultSendTimeout = 5 * time.Second
)

var (
	ErrInvalidDirection  = errors.New("direction must be morning or evening")
	ErrNoRecipients      = errors.New("recipient list is empty")
	ErrUnknownRecipient  = errors.New("recipient not registered")
	ErrRecipientsMissing = errors.New("recipient store not configured")
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Direction selects which day a run reports on.
type Direction string

const (
	// Morning reports the previous calendar day.
	Morning Direction = "morning"
	// Evening reports the current calendar day so far.
	Evening Direction = "evening"
)

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Morning, Evening:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Status is the per-entry outcome of a run.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one roster entry or recipient.
type Outcome struct {
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone"`
	Status       Status `json:"status"`
	UsageSeconds int64  `json:"usage_seconds,omitempty"`
	Message      string `json:"message,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Result tracks the outcome of one fan-out run. Skipped entries count toward
// TotalCount only.
type Result struct {
	RunID        string        `json:"run_id"`
	Direction    Direction     `json:"direction"`
	TargetDate   string        `json:"target_date"`
	TotalCount   int           `json:"total_count"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	SkippedCount int           `json:"skipped_count"`
	Outcomes     []Outcome     `json:"outcomes"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
}

func (r *Result) add(o Outcome) {
	switch o.Status {
	case StatusSent:
		r.SuccessCount++
	case StatusFailed:
		r.FailedCount++
	case StatusSkipped:
		r.SkippedCount++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("direction=%s date=%s total=%d sent=%d failed=%d skipped=%d dur=%s",
		r.Direction, r.TargetDate, r.TotalCount, r.SuccessCount, r.FailedCount,
		r.SkippedCount, r.Duration.Round(time.Millisecond))
}

// BroadcastReport is the result of a manual broadcast. Failures are listed
// inline rather than returned as an error.
type BroadcastReport struct {
	RunID        string    `json:"run_id"`
	TotalCount   int       `json:"total_count"`
	SuccessCount int       `json:"success_count"`
	FailedCount  int       `json:"failed_count"`
	Results      []Outcome `json:"results"`
}
