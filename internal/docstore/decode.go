package docstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/albapepper/usage-relay/internal/roster"
	"github.com/albapepper/usage-relay/internal/usage"
)

// recordFromData maps a session document. Timestamps of any type other than
// a Firestore timestamp are treated as missing.
func recordFromData(id string, data map[string]any) usage.Record {
	r := usage.Record{SessionID: id, TaskName: stringField(data, "task_name")}
	if t, ok := data["start_time"].(time.Time); ok {
		r.Start = &t
	}
	if t, ok := data["end_time"].(time.Time); ok {
		r.End = &t
	}
	return r
}

// entryFromData maps a personal_dashboard document. An active window
// boundary that cannot be placed on the timeline is an error.
func entryFromData(id string, data map[string]any) (roster.Entry, error) {
	e := roster.Entry{
		UserID:      id,
		DisplayName: stringField(data, "name"),
		Phone:       stringField(data, "phone"),
		Role:        stringField(data, "role"),
	}

	start, err := instant(data["active_start"])
	if err != nil {
		return roster.Entry{}, fmt.Errorf("active_start: %w", err)
	}
	end, err := instant(data["active_end"])
	if err != nil {
		return roster.Entry{}, fmt.Errorf("active_end: %w", err)
	}
	if start != nil || end != nil {
		e.Active = &roster.Window{Start: start, End: end}
	}
	return e, nil
}

// instant accepts a Firestore timestamp or an RFC 3339 string carrying a
// zone offset. Strings without a zone are rejected rather than assumed.
func instant(v any) (*time.Time, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%q is not an RFC 3339 instant with zone", s)
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}
