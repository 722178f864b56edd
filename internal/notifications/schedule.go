package notifications

import (
	"time"

	"github.com/albapepper/usage-relay/internal/usage"
)

// TargetDate returns the calendar date a run reports on: yesterday for
// Morning and today for Evening, both in loc.
func TargetDate(dir Direction, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if dir == Morning {
		day = day.AddDate(0, 0, -1)
	}
	return day.Format(usage.DateLayout)
}
