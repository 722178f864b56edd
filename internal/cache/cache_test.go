package cache

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestSetGetExpire(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	c := NewWithClock(true, clock)

	etag := c.Set("usage:u1", []byte(`{"total_seconds":60}`), time.Minute)
	data, got, ok := c.Get("usage:u1")
	assert.True(t, ok)
	assert.Equal(t, etag, got)
	assert.JSONEq(t, `{"total_seconds":60}`, string(data))

	clock.Advance(2 * time.Minute)
	_, _, ok = c.Get("usage:u1")
	assert.False(t, ok)

	assert.Equal(t, 1, c.Stats()["expired_keys"])
	assert.Equal(t, 1, c.Evict())
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	c := New(false)
	etag := c.Set("k", []byte("v"), time.Hour)
	assert.Equal(t, ComputeETag([]byte("v")), etag)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestETag(t *testing.T) {
	t.Parallel()

	a := ComputeETag([]byte("a"))
	assert.NotEqual(t, a, ComputeETag([]byte("b")))
	assert.Regexp(t, `^W/"[0-9a-f]{16}"$`, a)

	assert.True(t, CheckETagMatch(a, a))
	assert.True(t, CheckETagMatch("*", a))
	assert.False(t, CheckETagMatch("", a))
	assert.False(t, CheckETagMatch(`W/"other"`, a))
}

func TestETagList(t *testing.T) {
	t.Parallel()

	a := ComputeETag([]byte("a"))
	strong := a[2:]

	assert.True(t, CheckETagMatch(`"x", `+a, a))
	assert.True(t, CheckETagMatch(strong, a), "weak comparison ignores W/")
	assert.False(t, CheckETagMatch(`"x", "y"`, a))
}

func TestInvalidatePrefixAndCounters(t *testing.T) {
	t.Parallel()

	c := NewWithClock(true, quartz.NewMock(t))
	c.Set("usage:u1:2025-03-01:2025-03-01", []byte("1"), time.Hour)
	c.Set("usage:u1:2025-03-02:2025-03-02", []byte("2"), time.Hour)
	c.Set("usage:u10:2025-03-01:2025-03-01", []byte("3"), time.Hour)

	_, _, _ = c.Get("usage:u1:2025-03-01:2025-03-01")
	_, _, _ = c.Get("missing")

	assert.Equal(t, 2, c.InvalidatePrefix("usage:u1:"))
	_, _, ok := c.Get("usage:u10:2025-03-01:2025-03-01")
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_keys"])
	assert.Equal(t, int64(2), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}
