// Package usage aggregates app session records into per-user daily usage.
//
// Sessions come from an external document store through SessionSource. The
// aggregator owns date-window resolution in the operating timezone, the
// inclusion rules for partial or inverted records, and duration formatting.
package usage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted by Aggregate.
const DateLayout = "2006-01-02"

var (
	ErrEmptyUser   = errors.New("user id is required")
	ErrInvalidDate = errors.New("invalid date")
)

// Record is one usage interval as stored upstream. Start or End may be nil
// when the client never closed (or never opened) the session.
type Record struct {
	SessionID string
	TaskName  string
	Start     *time.Time
	End       *time.Time
}

// SessionSource returns the sessions of one user whose start time lies in
// [from, to], both inclusive.
type SessionSource interface {
	Sessions(ctx context.Context, userID string, from, to time.Time) ([]Record, error)
}

// Session is the per-record detail retained for display.
type Session struct {
	SessionID         string `json:"session_id"`
	TaskName          string `json:"task_name"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	DurationSeconds   int64  `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
	DurationHMS       string `json:"duration_hms"`

	start time.Time
}

// Summary is the aggregated usage of one user over an inclusive date range.
type Summary struct {
	UserID       string    `json:"user_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	TotalSeconds int64     `json:"total_seconds"`
	SessionCount int       `json:"session_count"`
	Formatted    string    `json:"formatted"`
	FormattedHMS string    `json:"formatted_hms"`
	Hours        int64     `json:"hours"`
	Minutes      int64     `json:"minutes"`
	Seconds      int64     `json:"seconds"`
	Sessions     []Session `json:"sessions"`
}

// Total returns the summed usage as a duration.
func (s *Summary) Total() time.Duration {
	return time.Duration(s.TotalSeconds) * time.Second
}

// Aggregator computes Summaries from a SessionSource.
type Aggregator struct {
	source SessionSource
	loc    *time.Location
}

// NewAggregator creates an aggregator interpreting dates in loc.
func NewAggregator(source SessionSource, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{source: source, loc: loc}
}

// Aggregate sums the sessions of userID that started between startDate
// 00:00:00 and endDate 23:59:59. A start date after the end date yields an
// empty summary without querying the source.
func (a *Aggregator) Aggregate(ctx context.Context, userID, startDate, endDate string) (*Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUser
	}
	from, err := a.parseDate(startDate)
	if err != nil {
		return nil, err
	}
	day, err := a.parseDate(endDate)
	if err != nil {
		return nil, err
	}
	to := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, a.loc)

	summary := &Summary{UserID: userID, StartDate: startDate, EndDate: endDate}
	if from.After(day) {
		summary.finish()
		return summary, nil
	}

	records, err := a.source.Sessions(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sessions for %s: %w", userID, err)
	}

	// Sum exact spans and truncate once, so sub-second remainders add up.
	var total time.Duration
	for _, r := range records {
		span, ok := Span(r)
		if !ok {
			continue
		}
		total += span
		secs := int64(span / time.Second)
		summary.Sessions = append(summary.Sessions, Session{
			SessionID:         r.SessionID,
			TaskName:          r.TaskName,
			StartTime:         r.Start.In(a.loc).Format(time.RFC3339),
			EndTime:           r.End.In(a.loc).Format(time.RFC3339),
			DurationSeconds:   secs,
			DurationFormatted: FormatKorean(secs),
			DurationHMS:       FormatHMS(secs),
			start:             *r.Start,
		})
	}

	summary.TotalSeconds = int64(total / time.Second)

	// Query order is not guaranteed upstream; sort for reproducible output.
	sort.SliceStable(summary.Sessions, func(i, j int) bool {
		return summary.Sessions[i].start.Before(summary.Sessions[j].start)
	})
	summary.finish()
	return summary, nil
}

// Span reports the exact time covered by r, and false when r must be
// excluded: a missing timestamp or an end not strictly after the start.
func Span(r Record) (time.Duration, bool) {
	if r.Start == nil || r.End == nil || r.Start.IsZero() || r.End.IsZero() {
		return 0, false
	}
	d := r.End.Sub(*r.Start)
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// Duration reports the whole seconds covered by r, with the same exclusions
// as Span.
func Duration(r Record) (int64, bool) {
	d, ok := Span(r)
	if !ok {
		return 0, false
	}
	return int64(d / time.Second), true
}

func (s *Summary) finish() {
	s.SessionCount = len(s.Sessions)
	if s.Sessions == nil {
		s.Sessions = []Session{}
	}
	s.Hours = s.TotalSeconds / 3600
	s.Minutes = (s.TotalSeconds % 3600) / 60
	s.Seconds = s.TotalSeconds % 60
	s.Formatted = FormatKorean(s.TotalSeconds)
	s.FormattedHMS = FormatHMS(s.TotalSeconds)
}

func (a *Aggregator) parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}
