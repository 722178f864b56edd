package handler

import (
	"errors"
	"net/http"

	"github.com/albapepper/usage-relay/internal/api/respond"
	"github.com/albapepper/usage-relay/internal/recipients"
)

// AddRecipientResponse reports the registered phone and the new list size.
type AddRecipientResponse struct {
	Count int    `json:"count"`
	Phone string `json:"phone"`
}

// RecipientsResponse lists registered phones.
type RecipientsResponse struct {
	Recipients []string `json:"recipients"`
}

// AddRecipient registers a phone number.
// @Summary Register recipient
// @Description Adds a phone number (10-15 digits, optional leading +) to the recipient list.
// @Tags recipients
// @Accept json
// @Produce json
// @Param body body recipients.Input true "Phone number"
// @Success 201 {object} AddRecipientResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /recipients [post]
func (h *Handler) AddRecipient(w http.ResponseWriter, r *http.Request) {
	var in recipients.Input
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be {\"phone\": \"...\"}", err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PHONE", err.Error())
		return
	}

	count, err := h.recipients.Add(r.Context(), in.Phone)
	switch {
	case errors.Is(err, recipients.ErrDuplicate):
		respond.WriteError(w, http.StatusConflict, "DUPLICATE", "Phone number already registered")
		return
	case errors.Is(err, recipients.ErrInvalidPhone):
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PHONE", err.Error())
		return
	case err != nil:
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to register recipient")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, AddRecipientResponse{Count: count, Phone: in.Phone})
}

// ListRecipients returns all registered phones.
// @Summary List recipients
// @Description Returns every registered phone number in registration order.
// @Tags recipients
// @Produce json
// @Success 200 {object} RecipientsResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /recipients [get]
func (h *Handler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	phones, err := h.recipients.List(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to list recipients")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, RecipientsResponse{Recipients: phones})
}
