package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

type fakeSource struct {
	records []Record
	err     error

	calls    int
	from, to time.Time
}

func (f *fakeSource) Sessions(_ context.Context, _ string, from, to time.Time) ([]Record, error) {
	f.calls++
	f.from, f.to = from, to
	return f.records, f.err
}

func at(h, m, s int) *time.Time {
	t := time.Date(2025, time.March, 10, h, m, s, 0, kst)
	return &t
}

func TestAggregateSumsValidRecordsOnly(t *testing.T) {
	t.Parallel()

	src := &fakeSource{records: []Record{
		{SessionID: "b", TaskName: "read", Start: at(10, 0, 0), End: at(10, 30, 0)},   // 1800
		{SessionID: "a", TaskName: "write", Start: at(9, 0, 0), End: at(10, 1, 1)},    // 3661
		{SessionID: "open", Start: at(11, 0, 0)},                                      // no end
		{SessionID: "nostart", End: at(12, 0, 0)},                                     // no start
		{SessionID: "skew", Start: at(13, 0, 0), End: at(12, 59, 0)},                  // negative
		{SessionID: "zero", Start: at(14, 0, 0), End: at(14, 0, 0)},                   // zero
	}}
	agg := NewAggregator(src, kst)

	s, err := agg.Aggregate(context.Background(), "u1", "2025-03-10", "2025-03-10")
	require.NoError(t, err)

	assert.EqualValues(t, 1800+3661, s.TotalSeconds)
	assert.Equal(t, 2, s.SessionCount)
	require.Len(t, s.Sessions, 2)
	// Sorted by start ascending regardless of source order.
	assert.Equal(t, "a", s.Sessions[0].SessionID)
	assert.Equal(t, "b", s.Sessions[1].SessionID)
	assert.Equal(t, "1시간 1분", s.Sessions[0].DurationFormatted)
	assert.Equal(t, "01:01:01", s.Sessions[0].DurationHMS)
	assert.Equal(t, "2025-03-10T09:00:00+09:00", s.Sessions[0].StartTime)

	assert.Equal(t, "1시간 31분", s.Formatted)
	assert.Equal(t, "01:31:01", s.FormattedHMS)
	assert.EqualValues(t, 1, s.Hours)
	assert.EqualValues(t, 31, s.Minutes)
	assert.EqualValues(t, 1, s.Seconds)
}

func TestAggregateQueryWindow(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	agg := NewAggregator(src, kst)

	_, err := agg.Aggregate(context.Background(), "u1", "2025-03-09", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, kst), src.from)
	assert.Equal(t, time.Date(2025, time.March, 10, 23, 59, 59, 0, kst), src.to)
}

func TestAggregateInvertedRangeIsEmpty(t *testing.T) {
	t.Parallel()

	src := &fakeSource{records: []Record{{SessionID: "x", Start: at(1, 0, 0), End: at(2, 0, 0)}}}
	agg := NewAggregator(src, kst)

	s, err := agg.Aggregate(context.Background(), "u1", "2025-03-11", "2025-03-10")
	require.NoError(t, err)
	assert.Zero(t, src.calls)
	assert.Zero(t, s.TotalSeconds)
	assert.Zero(t, s.SessionCount)
	assert.Empty(t, s.Sessions)
	assert.Equal(t, "1분 미만", s.Formatted)
}

func TestAggregateValidation(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(&fakeSource{}, kst)

	_, err := agg.Aggregate(context.Background(), "  ", "2025-03-10", "2025-03-10")
	assert.ErrorIs(t, err, ErrEmptyUser)

	_, err = agg.Aggregate(context.Background(), "u1", "2025/03/10", "2025-03-10")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = agg.Aggregate(context.Background(), "u1", "2025-03-10", "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAggregatePropagatesQueryFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("unavailable")
	agg := NewAggregator(&fakeSource{err: boom}, kst)

	_, err := agg.Aggregate(context.Background(), "u1", "2025-03-10", "2025-03-10")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDurationTruncatesToSeconds(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, kst)
	end := start.Add(1500 * time.Millisecond)
	secs, ok := Duration(Record{Start: &start, End: &end})
	assert.True(t, ok)
	assert.EqualValues(t, 1, secs)

	// Half a second is still strictly positive and counts as a session.
	end = start.Add(500 * time.Millisecond)
	secs, ok = Duration(Record{Start: &start, End: &end})
	assert.True(t, ok)
	assert.Zero(t, secs)
}

func TestAggregateTruncatesTotalOnce(t *testing.T) {
	t.Parallel()

	start1 := time.Date(2025, time.March, 10, 9, 0, 0, 0, kst)
	end1 := start1.Add(1500 * time.Millisecond)
	start2 := time.Date(2025, time.March, 10, 10, 0, 0, 0, kst)
	end2 := start2.Add(1500 * time.Millisecond)

	src := &fakeSource{records: []Record{
		{SessionID: "a", Start: &start1, End: &end1},
		{SessionID: "b", Start: &start2, End: &end2},
	}}
	s, err := NewAggregator(src, kst).Aggregate(context.Background(), "u1", "2025-03-10", "2025-03-10")
	require.NoError(t, err)

	// Two 1.5s sessions add up to 3s; each row still shows its own whole seconds.
	assert.EqualValues(t, 3, s.TotalSeconds)
	require.Len(t, s.Sessions, 2)
	assert.EqualValues(t, 1, s.Sessions[0].DurationSeconds)
	assert.EqualValues(t, 1, s.Sessions[1].DurationSeconds)
}
