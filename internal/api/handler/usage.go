package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/usage-relay/internal/api/respond"
	"github.com/albapepper/usage-relay/internal/cache"
	"github.com/albapepper/usage-relay/internal/usage"
)

// GetUsage returns one user's aggregated usage over a date range.
// @Summary Get user usage
// @Description Sums the user's session durations between start_date 00:00 and end_date 23:59:59 in the operating timezone. Both dates default to today.
// @Tags usage
// @Produce json
// @Param userID path string true "User ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param refresh query bool false "Drop this user's cached ranges before answering"
// @Success 200 {object} usage.Summary
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /usage/{userID} [get]
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	today := h.now().In(h.loc).Format(usage.DateLayout)

	start := r.URL.Query().Get("start_date")
	if start == "" {
		start = today
	}
	end := r.URL.Query().Get("end_date")
	if end == "" {
		end = today
	}

	// Ranges reaching today are still growing.
	ttl := cache.TTLUsageSettled
	if end >= today {
		ttl = cache.TTLUsageLive
	}

	if r.URL.Query().Get("refresh") == "true" {
		h.cache.InvalidatePrefix("usage:" + userID + ":")
	}

	cacheKey := fmt.Sprintf("usage:%s:%s:%s", userID, start, end)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteCached(w, data, etag, ttl, true)
		return
	}

	summary, err := h.usage.Aggregate(r.Context(), userID, start, end)
	switch {
	case errors.Is(err, usage.ErrEmptyUser), errors.Is(err, usage.ErrInvalidDate):
		respond.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	case err != nil:
		respond.WriteErrorDetail(w, http.StatusBadGateway, "USAGE_UNAVAILABLE", "Session query failed", err.Error())
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode usage")
		return
	}
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteCached(w, data, etag, ttl, false)
}

// DeliveryStatsResponse is the delivery log tally for a trailing window.
type DeliveryStatsResponse struct {
	Since  string `json:"since"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

// GetDeliveryStats returns sent/failed counts from the delivery log.
// @Summary Delivery statistics
// @Description Counts logged sends in the trailing window (default 24 hours).
// @Tags notifications
// @Produce json
// @Param hours query int false "Trailing window in hours" default(24)
// @Success 200 {object} DeliveryStatsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /deliveries/stats [get]
func (h *Handler) GetDeliveryStats(w http.ResponseWriter, r *http.Request) {
	if h.deliveries == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DISABLED", "Delivery log is not configured")
		return
	}

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_HOURS", "hours must be a positive integer")
			return
		}
		hours = n
	}

	since := h.now().Add(-time.Duration(hours) * time.Hour)
	sent, failed, err := h.deliveries.Counts(r.Context(), since)
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_ERROR", "Failed to read delivery log")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, DeliveryStatsResponse{
		Since:  since.In(h.loc).Format(time.RFC3339),
		Sent:   sent,
		Failed: failed,
	})
}
