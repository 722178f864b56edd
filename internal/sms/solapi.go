package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	solapiSendPath       = "/messages/v4/send"
	solapiOKStatus       = "2000"
	solapiRequestsPerSec = 10
)

// Solapi sends SMS through the SOLAPI v4 REST API.
type Solapi struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	from       string
	limiter    *rate.Limiter
	logger     *slog.Logger

	now  func() time.Time
	salt func() string
}

// NewSolapi creates a SOLAPI client sending from the registered sender number.
func NewSolapi(baseURL, apiKey, apiSecret, from string, logger *slog.Logger) *Solapi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solapi{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		from:       from,
		limiter:    rate.NewLimiter(rate.Limit(solapiRequestsPerSec), 1),
		logger:     logger,
		now:        time.Now,
		salt:       func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

type solapiMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type solapiRequest struct {
	Message solapiMessage `json:"message"`
}

type solapiResponse struct {
	GroupID       string `json:"groupId"`
	MessageID     string `json:"messageId"`
	To            string `json:"to"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	ErrorCode     string `json:"errorCode"`
	ErrorMessage  string `json:"errorMessage"`
}

// Send delivers one message. The caller's context bounds the whole exchange.
func (c *Solapi) Send(ctx context.Context, to, text string) (*Delivery, error) {
	if strings.TrimSpace(to) == "" || text == "" {
		return nil, ErrEmptyMessage
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(solapiRequest{Message: solapiMessage{To: to, From: c.from, Text: text}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+solapiSendPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorization())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", solapiSendPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var out solapiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("SOLAPI %s returned %d: %s", solapiSendPath, resp.StatusCode, truncate(body, 200))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "solapi", Code: out.ErrorCode, Message: out.ErrorMessage}
	}
	if out.StatusCode != "" && out.StatusCode != solapiOKStatus {
		return nil, &ProviderError{Provider: "solapi", Code: out.StatusCode, Message: out.StatusMessage}
	}

	c.logger.Debug("SOLAPI message accepted", "to", to, "message_id", out.MessageID, "group_id", out.GroupID)
	return &Delivery{
		Provider:      "solapi",
		MessageID:     out.MessageID,
		GroupID:       out.GroupID,
		To:            to,
		StatusCode:    out.StatusCode,
		StatusMessage: out.StatusMessage,
	}, nil
}

// authorization builds the HMAC-SHA256 header: the signature covers
// date+salt keyed with the API secret.
func (c *Solapi) authorization() string {
	date := c.now().UTC().Format(time.RFC3339)
	salt := c.salt()
	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		c.apiKey, date, salt, sign(c.apiSecret, date+salt))
}

func sign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
