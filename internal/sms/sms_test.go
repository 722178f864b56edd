package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pinpointsmsvoicev2"
	"github.com/aws/aws-sdk-go-v2/service/pinpointsmsvoicev2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolapi(t *testing.T, h http.HandlerFunc) *Solapi {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewSolapi(srv.URL+"/", "key-1", "secret-1", "0212345678", nil)
	c.now = func() time.Time { return time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC) }
	c.salt = func() string { return "abc123" }
	return c
}

func TestSolapiSend(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody solapiRequest
	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages/v4/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_, _ = w.Write([]byte(`{"groupId":"G1","messageId":"M1","to":"01011112222","statusCode":"2000","statusMessage":"정상 접수"}`))
	})

	d, err := c.Send(context.Background(), "01011112222", "hello")
	require.NoError(t, err)
	assert.Equal(t, "solapi", d.Provider)
	assert.Equal(t, "M1", d.MessageID)
	assert.Equal(t, "G1", d.GroupID)
	assert.Equal(t, "2000", d.StatusCode)

	assert.Equal(t, solapiMessage{To: "01011112222", From: "0212345678", Text: "hello"}, gotBody.Message)

	date := "2025-03-10T10:00:00Z"
	want := "HMAC-SHA256 apiKey=key-1, date=" + date + ", salt=abc123, signature=" + sign("secret-1", date+"abc123")
	assert.Equal(t, want, gotAuth)
}

func TestSolapiRejectedStatus(t *testing.T) {
	t.Parallel()

	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":"3059","statusMessage":"invalid number"}`))
	})

	_, err := c.Send(context.Background(), "010", "hello")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "3059", pe.Code)
	assert.Equal(t, "invalid number", pe.Message)
}

func TestSolapiHTTPError(t *testing.T) {
	t.Parallel()

	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errorCode":"InvalidAPIKey","errorMessage":"unknown api key"}`))
	})

	_, err := c.Send(context.Background(), "01011112222", "hello")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "InvalidAPIKey", pe.Code)
}

func TestSolapiNonJSONError(t *testing.T) {
	t.Parallel()

	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	})

	_, err := c.Send(context.Background(), "01011112222", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 502")
	assert.Less(t, len(err.Error()), 300)
}

func TestSolapiEmptyMessage(t *testing.T) {
	t.Parallel()

	called := false
	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Send(context.Background(), "01011112222", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = c.Send(context.Background(), " ", "hello")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.False(t, called)
}

func TestSolapiContextCanceled(t *testing.T) {
	t.Parallel()

	c := newTestSolapi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":"2000"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, "01011112222", "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeTextAPI struct {
	in  *pinpointsmsvoicev2.SendTextMessageInput
	err error
}

func (f *fakeTextAPI) SendTextMessage(_ context.Context, in *pinpointsmsvoicev2.SendTextMessageInput, _ ...func(*pinpointsmsvoicev2.Options)) (*pinpointsmsvoicev2.SendTextMessageOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &pinpointsmsvoicev2.SendTextMessageOutput{MessageId: aws.String("pp-1")}, nil
}

func TestPinpointSend(t *testing.T) {
	t.Parallel()

	api := &fakeTextAPI{}
	p := newPinpoint(api, "+8225550000", nil)

	d, err := p.Send(context.Background(), "+821011112222", "hello")
	require.NoError(t, err)
	assert.Equal(t, &Delivery{Provider: "pinpoint", MessageID: "pp-1", To: "+821011112222"}, d)

	require.NotNil(t, api.in)
	assert.Equal(t, "+821011112222", aws.ToString(api.in.DestinationPhoneNumber))
	assert.Equal(t, "+8225550000", aws.ToString(api.in.OriginationIdentity))
	assert.Equal(t, "hello", aws.ToString(api.in.MessageBody))
	assert.Equal(t, types.MessageTypeTransactional, api.in.MessageType)
}

func TestPinpointSendError(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	p := newPinpoint(&fakeTextAPI{err: boom}, "+8225550000", nil)

	_, err := p.Send(context.Background(), "+821011112222", "hello")
	assert.ErrorIs(t, err, boom)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncate([]byte("abcdef"), 2))
}
