package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/usage-relay/internal/api/respond"
	"github.com/albapepper/usage-relay/internal/notifications"
)

// SendOne sends a message to one registered recipient.
// @Summary Send to one recipient
// @Description Sends body (default "실험 알림입니다.") to a registered phone. Provider failures surface as 502.
// @Tags send
// @Produce json
// @Param phone path string true "Registered phone number"
// @Param body query string false "Message body"
// @Success 200 {object} sms.Delivery
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /send/{phone} [post]
func (h *Handler) SendOne(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	body := r.URL.Query().Get("body")

	d, err := h.notifier.SendOne(r.Context(), phone, body)
	switch {
	case errors.Is(err, notifications.ErrUnknownRecipient):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Phone number is not a registered recipient")
		return
	case errors.Is(err, notifications.ErrRecipientsMissing):
		respond.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Recipient store not configured")
		return
	case err != nil:
		respond.WriteErrorDetail(w, http.StatusBadGateway, "SEND_FAILED", "SMS provider did not accept the message", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, d)
}

// Broadcast sends a message to every registered recipient.
// @Summary Broadcast to all recipients
// @Description Sends body (default "실험 알림입니다. 오늘도 좋은 하루 되십시오.") to every recipient. Per-recipient failures are listed inline.
// @Tags send
// @Produce json
// @Param body query string false "Message body"
// @Success 200 {object} notifications.BroadcastReport
// @Failure 400 {object} respond.ErrorResponse
// @Router /send/broadcast [post]
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	report, err := h.notifier.Broadcast(r.Context(), r.URL.Query().Get("body"))
	switch {
	case errors.Is(err, notifications.ErrNoRecipients):
		respond.WriteError(w, http.StatusBadRequest, "NO_RECIPIENTS", "Recipient list is empty")
		return
	case err != nil:
		writeRunError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// TriggerRun runs the morning or evening routine immediately.
// @Summary Trigger a notification run
// @Description Runs the personalized usage notification for every eligible user, as the scheduler would.
// @Tags notifications
// @Produce json
// @Param direction path string true "Run direction" Enums(morning, evening)
// @Success 200 {object} notifications.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /notifications/{direction} [post]
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	dir, err := notifications.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DIRECTION", "Direction must be 'morning' or 'evening'")
		return
	}

	res, err := h.notifier.Run(r.Context(), dir)
	if err != nil {
		writeRunError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

func writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respond.WriteError(w, http.StatusServiceUnavailable, "BUSY", "Another run is in progress")
		return
	}
	respond.WriteErrorDetail(w, http.StatusBadGateway, "RUN_FAILED", "Run aborted", err.Error())
}
