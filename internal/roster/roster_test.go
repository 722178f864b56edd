package roster

import (
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

func ptr(t time.Time) *time.Time { return &t }

func sampleRoster(now time.Time) []Entry {
	return []Entry{
		{UserID: "a", Phone: "01011112222", Role: "real", Active: &Window{Start: ptr(now.Add(-48 * time.Hour))}},
		{UserID: "b", Phone: "01011113333", Role: " real ", Active: &Window{Start: ptr(now.Add(-time.Hour)), End: ptr(now.Add(time.Hour))}},
		{UserID: "c", Phone: "  ", Role: "real", Active: &Window{Start: ptr(now.Add(-time.Hour))}},
		{UserID: "d", Phone: "01011114444", Role: "test", Active: &Window{Start: ptr(now.Add(-time.Hour))}},
		{UserID: "e", Phone: "01011115555", Role: "Real", Active: &Window{Start: ptr(now.Add(-time.Hour))}},
		{UserID: "f", Phone: "01011116666", Role: "real"},
		{UserID: "g", Phone: "01011117777", Role: "real", Active: &Window{Start: ptr(now.Add(time.Hour))}},
		{UserID: "h", Phone: "01011118888", Role: "real", Active: &Window{Start: ptr(now.Add(-48 * time.Hour)), End: ptr(now.Add(-time.Hour))}},
		{UserID: "i", Phone: "01011119999", Role: "real", Active: &Window{End: ptr(now.Add(time.Hour))}},
	}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.UserID)
	}
	return out
}

func TestFilterRoleAndPhoneAndWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	got := Filter(sampleRoster(now), FilterOptions{
		Role:                "real",
		RequireActiveWindow: true,
		Now:                 now,
		Location:            kst,
	})
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestFilterWithoutWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	got := Filter(sampleRoster(now), FilterOptions{Role: "real", Now: now, Location: kst})
	assert.Equal(t, []string{"a", "b", "f", "g", "h", "i"}, ids(got))
}

func TestFilterNoRole(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	got := Filter(sampleRoster(now), FilterOptions{Now: now, Location: kst})
	// Only the blank phone is dropped.
	assert.Len(t, got, 8)
	assert.NotContains(t, ids(got), "c")
}

func TestFilterNormalizesZones(t *testing.T) {
	t.Parallel()

	// 09:30 UTC is 18:30 KST, before a window that opens 19:00 KST.
	now := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
	start := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	entries := []Entry{{UserID: "a", Phone: "010", Active: &Window{Start: &start}}}

	assert.Empty(t, Filter(entries, FilterOptions{RequireActiveWindow: true, Now: now, Location: kst}))
	assert.Len(t, Filter(entries, FilterOptions{RequireActiveWindow: true, Now: now.Add(time.Hour), Location: kst}), 1)
}

func TestFilterWindowBoundsInclusive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	entries := []Entry{{UserID: "a", Phone: "010", Active: &Window{Start: ptr(now), End: ptr(now)}}}
	assert.Len(t, Filter(entries, FilterOptions{RequireActiveWindow: true, Now: now, Location: kst}), 1)
}

func TestFilterIdempotentAndOrderIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 19, 0, 0, 0, kst)
	opts := FilterOptions{Role: "real", RequireActiveWindow: true, Now: now, Location: kst}
	entries := sampleRoster(now)

	once := Filter(entries, opts)
	twice := Filter(once, opts)
	assert.Equal(t, ids(once), ids(twice))

	want := ids(once)
	sort.Strings(want)
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := append([]Entry(nil), entries...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ids(Filter(shuffled, opts))
		sort.Strings(got)
		require.Equal(t, want, got)
	}
}

func TestEntryName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "u1", Entry{UserID: "u1"}.Name())
	assert.Equal(t, "u1", Entry{UserID: "u1", DisplayName: "  "}.Name())
	assert.Equal(t, "홍길동", Entry{UserID: "u1", DisplayName: "홍길동"}.Name())
}
