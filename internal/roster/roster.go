// Package roster defines the users eligible for usage notifications and the
// eligibility filter applied on every fan-out run.
package roster

import (
	"context"
	"strings"
	"time"
)

// Window is an optional active period. A nil End is open-ended.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Entry is one user from the roster source. Entries are read fresh for each
// run and never cached.
type Entry struct {
	UserID      string
	DisplayName string
	Phone       string
	Role        string
	Active      *Window
}

// Name returns the display name, falling back to the user id.
func (e Entry) Name() string {
	if n := strings.TrimSpace(e.DisplayName); n != "" {
		return n
	}
	return e.UserID
}

// Source lists roster entries, optionally restricted to one role.
type Source interface {
	Roster(ctx context.Context, role string) ([]Entry, error)
}

// FilterOptions controls which entries survive Filter.
type FilterOptions struct {
	// Role, when non-empty, must equal the entry's trimmed role exactly.
	Role string
	// RequireActiveWindow drops entries outside their active window.
	RequireActiveWindow bool
	Now                 time.Time
	Location            *time.Location
}

// Filter returns the entries eligible for notification, preserving input
// order. It does not modify entries.
func Filter(entries []Entry, opts FilterOptions) []Entry {
	role := strings.TrimSpace(opts.Role)
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now.In(loc)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if role != "" && strings.TrimSpace(e.Role) != role {
			continue
		}
		if strings.TrimSpace(e.Phone) == "" {
			continue
		}
		if opts.RequireActiveWindow && !e.Active.Contains(now, loc) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Contains reports whether now lies within the window. A nil window or a
// missing start is never active.
func (w *Window) Contains(now time.Time, loc *time.Location) bool {
	if w == nil || w.Start == nil {
		return false
	}
	now = now.In(loc)
	if w.Start.In(loc).After(now) {
		return false
	}
	if w.End != nil && w.End.In(loc).Before(now) {
		return false
	}
	return true
}
