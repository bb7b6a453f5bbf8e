package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/registration"
)

type joinEventRequest struct {
	EventID uuid.UUID `json:"eventId"`
}

func (a *API) joinEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req joinEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == uuid.Nil {
		a.writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	member, err := registration.AttemptJoin(r.Context(), req.EventID, user, time.Now(), a.db, a.db)
	if err != nil {
		var registrationErr *registration.Error
		if errors.As(err, &registrationErr) {
			switch registrationErr.Reason {
			case registration.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
				a.writeError(w, http.StatusNotFound, "Event not found")
				return
			case registration.REASON_EVENT_FULL:
				a.writeError(w, http.StatusConflict, "Event is full")
				return
			case registration.REASON_ALREADY_JOINED:
				a.writeError(w, http.StatusConflict, "Already joined this event")
				return
			case registration.REASON_REGISTRATION_CLOSED:
				a.writeError(w, http.StatusConflict, "Registration is closed for this event")
				return
			case registration.REASON_PAYMENT_REQUIRED:
				a.writeJSON(w, http.StatusPaymentRequired, map[string]any{
					"success":         false,
					"requiresPayment": true,
					"message":         "Payment required. Please complete payment first.",
				})
				return
			}
		}

		a.logger.Error("Failed to join event", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to join event")
		return
	}

	a.sendJoinConfirmation(r.Context(), member)

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Event joined successfully",
		"event_member_code": member.Token,
		"qr_value":          member.Token,
		"price_paid":        moneyMajorUnits(member.PricePaid),
	})
}

// sendJoinConfirmation emails the ticket. A failed email never fails the
// join, the registration is already committed.
func (a *API) sendJoinConfirmation(ctx context.Context, member registration.EventMember) {
	event, err := a.db.GetEvent(ctx, member.EventID)
	if err != nil {
		a.logger.Error("Failed to load event for confirmation email", "error", err)
		return
	}
	user, err := a.db.GetUser(ctx, member.UserID)
	if err != nil {
		a.logger.Error("Failed to load user for confirmation email", "error", err)
		return
	}

	if err := registration.SendJoinConfirmationEmail(ctx, a.emailSender, a.fromAddress, member, event, user); err != nil {
		a.logger.Error("Failed to send confirmation email", "error", err)
	}
}
