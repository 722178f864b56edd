package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOne(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	h.recipients.phones = []string{"01011112222"}

	d, err := h.notifier.SendOne(context.Background(), "01011112222", "")
	require.NoError(t, err)
	assert.Equal(t, "m-01011112222", d.MessageID)

	require.Len(t, h.sender.calls, 1)
	assert.Equal(t, DefaultSingleBody, h.sender.calls[0].text)
	assert.Equal(t, []string{"01011112222"}, h.reporter.successes)
	require.Len(t, h.log.rows, 1)
	assert.Equal(t, KindSingle, h.log.rows[0].Kind)
	assert.Empty(t, h.reporter.results)
}

func TestSendOneUnknownRecipient(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	_, err := h.notifier.SendOne(context.Background(), "01099999999", "hi")
	assert.ErrorIs(t, err, ErrUnknownRecipient)
	assert.Empty(t, h.sender.calls)
}

func TestSendOneProviderFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	h.recipients.phones = []string{"01011112222"}
	h.sender.fail["01011112222"] = errors.New("invalid sender")

	_, err := h.notifier.SendOne(context.Background(), "01011112222", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sender")
	assert.Equal(t, []string{"01011112222"}, h.reporter.failures)
}

func TestSendOneWithoutRecipientStore(t *testing.T) {
	t.Parallel()

	n := New(Deps{Sender: &fakeSender{}}, Options{})
	_, err := n.SendOne(context.Background(), "01011112222", "hi")
	assert.ErrorIs(t, err, ErrRecipientsMissing)
}

func TestBroadcastMixedResults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	h.recipients.phones = []string{"01000000001", "01000000002", "01000000003"}
	h.sender.fail["01000000002"] = errors.New("blocked number")

	report, err := h.notifier.Broadcast(context.Background(), "공지")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalCount)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailedCount)
	require.Len(t, report.Results, 3)
	assert.Equal(t, StatusFailed, report.Results[1].Status)
	assert.Equal(t, "blocked number", report.Results[1].Error)
	assert.Equal(t, h.recipients.phones, h.sender.phones())
	assert.Equal(t, [][3]int{{3, 2, 1}}, h.reporter.results)
	for _, c := range h.sender.calls {
		assert.Equal(t, "공지", c.text)
	}
}

func TestBroadcastDefaultBody(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	h.recipients.phones = []string{"01000000001"}

	_, err := h.notifier.Broadcast(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultBroadcastBody, h.sender.calls[0].text)
}

func TestBroadcastEmptyList(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	_, err := h.notifier.Broadcast(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Empty(t, h.reporter.results)
}

func TestBroadcastListError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, time.Now())
	h.recipients.err = errors.New("disk I/O error")
	_, err := h.notifier.Broadcast(context.Background(), "hi")
	assert.ErrorIs(t, err, h.recipients.err)
}
