// Package handler provides HTTP handlers for all API endpoints.
// Handlers depend on narrow interfaces so each can be exercised with fakes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/albapepper/usage-relay/internal/api/respond"
	"github.com/albapepper/usage-relay/internal/cache"
	"github.com/albapepper/usage-relay/internal/notifications"
	"github.com/albapepper/usage-relay/internal/sms"
	"github.com/albapepper/usage-relay/internal/usage"
)

// Notifier runs fan-outs and manual sends.
type Notifier interface {
	Run(ctx context.Context, dir notifications.Direction) (*notifications.Result, error)
	SendOne(ctx context.Context, phone, body string) (*sms.Delivery, error)
	Broadcast(ctx context.Context, body string) (*notifications.BroadcastReport, error)
}

// RecipientStore manages the registered phone list.
type RecipientStore interface {
	Add(ctx context.Context, phone string) (int, error)
	List(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// UsageAggregator computes a usage summary.
type UsageAggregator interface {
	Aggregate(ctx context.Context, userID, startDate, endDate string) (*usage.Summary, error)
}

// HealthChecker verifies a backing service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DeliveryStats reports delivery log counts.
type DeliveryStats interface {
	Counts(ctx context.Context, since time.Time) (sent, failed int, err error)
}

// Deps are the handler collaborators. DB and Deliveries are nil when the
// delivery log is disabled.
type Deps struct {
	Notifier   Notifier
	Recipients RecipientStore
	Usage      UsageAggregator
	DB         HealthChecker
	Deliveries DeliveryStats
	Cache      *cache.Cache
	Location   *time.Location
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	notifier   Notifier
	recipients RecipientStore
	usage      UsageAggregator
	db         HealthChecker
	deliveries DeliveryStats
	cache      *cache.Cache
	loc        *time.Location
	now        func() time.Time
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	if d.Cache == nil {
		d.Cache = cache.New(false)
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &Handler{
		notifier:   d.Notifier,
		recipients: d.Recipients,
		usage:      d.Usage,
		db:         d.DB,
		deliveries: d.Deliveries,
		cache:      d.Cache,
		loc:        d.Location,
		now:        time.Now,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the documentation path.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "Usage Relay API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and the recipient store state.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	store := "ok"
	if err := h.recipients.Ping(r.Context()); err != nil {
		status, code, store = "unhealthy", http.StatusServiceUnavailable, "unavailable"
	}
	respond.WriteJSONObject(w, code, map[string]any{
		"status":     status,
		"recipients": store,
		"timestamp":  h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies delivery log connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity for the delivery log.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory usage cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
