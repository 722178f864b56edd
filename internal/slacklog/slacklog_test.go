package slacklog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

type capture struct {
	mu       sync.Mutex
	payloads []map[string]any
	status   int
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var p map[string]any
	_ = json.Unmarshal(raw, &p)

	c.mu.Lock()
	c.payloads = append(c.payloads, p)
	status := c.status
	c.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte("ok"))
}

func newTestLogger(t *testing.T, c *capture) *Logger {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	t.Cleanup(srv.Close)

	l := New(srv.URL, kst, nil)
	l.now = func() time.Time { return time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC) }
	l.backoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return l
}

func texts(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload["blocks"])
	require.NoError(t, err)
	return string(raw)
}

func TestNewEmptyURLIsNil(t *testing.T) {
	t.Parallel()

	l := New("", nil, nil)
	assert.Nil(t, l)
	// All methods are safe on nil.
	l.SMSSuccess(context.Background(), "010", "m", "")
	l.SMSFailure(context.Background(), "010", "m", "e", "")
	l.BroadcastResult(context.Background(), 1, 1, 0)
}

func TestSMSSuccess(t *testing.T) {
	t.Parallel()

	c := &capture{}
	l := newTestLogger(t, c)
	l.SMSSuccess(context.Background(), "01011112222", "hello", "user u1")

	require.Len(t, c.payloads, 1)
	p := c.payloads[0]
	assert.Equal(t, "✅ SMS 발송 성공", p["text"])
	body := texts(t, p)
	assert.Contains(t, body, "01011112222")
	assert.Contains(t, body, "2025-03-10 19:00:00")
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "user u1")
	assert.Len(t, p["blocks"], 4)
}

func TestSMSFailureIncludesError(t *testing.T) {
	t.Parallel()

	c := &capture{}
	l := newTestLogger(t, c)
	l.SMSFailure(context.Background(), "01011112222", "hello", "provider down", "")

	require.Len(t, c.payloads, 1)
	body := texts(t, c.payloads[0])
	assert.Contains(t, body, "provider down")
	assert.Contains(t, body, "실패 시간")
	assert.Len(t, c.payloads[0]["blocks"], 4)
}

func TestBroadcastResult(t *testing.T) {
	t.Parallel()

	c := &capture{}
	l := newTestLogger(t, c)
	l.BroadcastResult(context.Background(), 3, 2, 1)

	require.Len(t, c.payloads, 1)
	body := texts(t, c.payloads[0])
	assert.Contains(t, body, "3명")
	assert.Contains(t, body, "66.7%")
}

func TestPostRetriesThenGivesUp(t *testing.T) {
	t.Parallel()

	c := &capture{status: http.StatusInternalServerError}
	l := newTestLogger(t, c)
	l.BroadcastResult(context.Background(), 0, 0, 0)

	assert.Len(t, c.payloads, 1+maxPostRetries)
}

func TestPostClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
		c := &capture{status: status}
		l := newTestLogger(t, c)
		l.SMSFailure(context.Background(), "01012345678", "m", "boom", "")

		assert.Len(t, c.payloads, 1, "status %d", status)
	}
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	assert.True(t, permanent(slack.StatusCodeError{Code: http.StatusNotFound, Status: "404 Not Found"}))
	assert.False(t, permanent(slack.StatusCodeError{Code: http.StatusBadGateway, Status: "502 Bad Gateway"}))
	assert.False(t, permanent(&slack.RateLimitedError{RetryAfter: time.Second}))
	assert.False(t, permanent(context.DeadlineExceeded))
	assert.False(t, permanent(nil))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Preview("short"))

	long := strings.Repeat("가", 150)
	got := Preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("가", 100)+"...", got)

	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, Preview(exact))
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0%", SuccessRate(0, 0))
	assert.Equal(t, "100.0%", SuccessRate(4, 4))
	assert.Equal(t, "66.7%", SuccessRate(3, 2))
}
