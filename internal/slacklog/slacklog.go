// Package slacklog posts delivery outcomes to a Slack incoming webhook.
//
// Posting is best-effort: failures are logged and never surface to callers.
// A nil *Logger is valid and does nothing, so an unset webhook URL disables
// Slack reporting without branching at call sites.
package slacklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/slack-go/slack"
)

const (
	previewRunes   = 100
	postTimeout    = 10 * time.Second
	maxPostRetries = 2
	timeLayout     = "2006-01-02 15:04:05"
)

// Logger sends formatted Slack block messages.
type Logger struct {
	webhookURL string
	httpClient *http.Client
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
	backoff    func() backoff.BackOff
}

// New returns a Logger for webhookURL, or nil when webhookURL is empty.
func New(webhookURL string, loc *time.Location, logger *slog.Logger) *Logger {
	if webhookURL == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: postTimeout},
		loc:        loc,
		logger:     logger,
		now:        time.Now,
		backoff:    func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// SMSSuccess reports one accepted message.
func (l *Logger) SMSSuccess(ctx context.Context, phone, message, userInfo string) {
	if l == nil {
		return
	}
	blocks := []slack.Block{
		header("📱 SMS 발송 성공"),
		fields(field("전화번호", phone), field("발송 시간", l.stamp())),
		section(fmt.Sprintf("*메시지 내용:*\n```%s```", Preview(message))),
	}
	if userInfo != "" {
		blocks = append(blocks, section("*사용자 정보:*\n"+userInfo))
	}
	l.post(ctx, "✅ SMS 발송 성공", blocks)
}

// SMSFailure reports one failed message with the provider or transport error.
func (l *Logger) SMSFailure(ctx context.Context, phone, message, errMsg, userInfo string) {
	if l == nil {
		return
	}
	blocks := []slack.Block{
		header("🚨 SMS 발송 실패"),
		fields(field("전화번호", phone), field("실패 시간", l.stamp())),
		section(fmt.Sprintf("*메시지 내용:*\n```%s```", Preview(message))),
		section(fmt.Sprintf("*오류 내용:*\n```%s```", errMsg)),
	}
	if userInfo != "" {
		blocks = append(blocks, section("*사용자 정보:*\n"+userInfo))
	}
	l.post(ctx, "❌ SMS 발송 실패", blocks)
}

// BroadcastResult reports the tally of a completed run.
func (l *Logger) BroadcastResult(ctx context.Context, total, success, failed int) {
	if l == nil {
		return
	}
	blocks := []slack.Block{
		header("📢 SMS 브로드캐스트 완료"),
		fields(
			field("전체 수신자", fmt.Sprintf("%d명", total)),
			field("성공", fmt.Sprintf("%d명", success)),
			field("실패", fmt.Sprintf("%d명", failed)),
			field("성공률", SuccessRate(total, success)),
		),
		section("*완료 시간:*\n" + l.stamp()),
	}
	l.post(ctx, "📢 브로드캐스트 완료", blocks)
}

// Preview shortens message to the first 100 runes plus an ellipsis.
func Preview(message string) string {
	if utf8.RuneCountInString(message) <= previewRunes {
		return message
	}
	return string([]rune(message)[:previewRunes]) + "..."
}

// SuccessRate formats success/total as a percentage with one decimal.
// Zero total reports 0.0%.
func SuccessRate(total, success int) string {
	rate := 0.0
	if total > 0 {
		rate = float64(success) / float64(total) * 100
	}
	return fmt.Sprintf("%.1f%%", rate)
}

func (l *Logger) stamp() string {
	return l.now().In(l.loc).Format(timeLayout)
}

func (l *Logger) post(ctx context.Context, text string, blocks []slack.Block) {
	msg := &slack.WebhookMessage{Text: text, Blocks: &slack.Blocks{BlockSet: blocks}}

	op := func() error {
		err := slack.PostWebhookCustomHTTPContext(ctx, l.webhookURL, l.httpClient, msg)
		if permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(l.backoff(), maxPostRetries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		l.logger.Warn("Slack webhook post failed", "title", text, "error", err)
	}
}

// permanent reports whether err is a 4xx webhook response, such as a revoked
// URL or rejected blocks. 429 arrives as *slack.RateLimitedError and retries.
func permanent(err error) bool {
	var sce slack.StatusCodeError
	return errors.As(err, &sce) &&
		sce.Code >= http.StatusBadRequest && sce.Code < http.StatusInternalServerError
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, false, false))
}

func section(markdown string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false), nil, nil)
}

func fields(objs ...*slack.TextBlockObject) slack.Block {
	return slack.NewSectionBlock(nil, objs, nil)
}

func field(label, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s:*\n%s", label, value), false, false)
}
