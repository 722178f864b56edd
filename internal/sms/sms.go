// Package sms sends single text messages through a third-party provider.
//
// Two providers are supported: SOLAPI (REST with HMAC-SHA256 auth) and AWS
// Pinpoint SMS Voice v2. Both satisfy Sender.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albapepper/usage-relay/internal/config"
)

// Delivery describes a message accepted by the provider.
type Delivery struct {
	Provider      string `json:"provider"`
	MessageID     string `json:"message_id"`
	GroupID       string `json:"group_id,omitempty"`
	To            string `json:"to"`
	StatusCode    string `json:"status_code,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
}

// Sender sends one message and reports the provider's delivery descriptor.
type Sender interface {
	Send(ctx context.Context, to, text string) (*Delivery, error)
}

// ProviderError is a rejection reported by the provider itself, as opposed to
// a transport failure.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s rejected message: %s - %s", e.Provider, e.Code, e.Message)
}

// ErrEmptyMessage is returned before contacting the provider.
var ErrEmptyMessage = errors.New("empty destination or message body")

// New builds the Sender selected by cfg.SMSProvider.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Sender, error) {
	switch cfg.SMSProvider {
	case config.ProviderSolapi:
		return NewSolapi(cfg.SolapiBaseURL, cfg.SolapiAPIKey, cfg.SolapiAPISecret, cfg.SenderPhone, logger), nil
	case config.ProviderPinpoint:
		return NewPinpoint(ctx, cfg.AWSRegion, cfg.SenderPhone, logger)
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.SMSProvider)
	}
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
