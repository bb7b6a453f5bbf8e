package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gulf-dental-association/member-portal/registration"
)

type ticketRequest struct {
	Token string `json:"token"`
}

type apiTicket struct {
	Token         string     `json:"token"`
	EventTitle    string     `json:"eventTitle"`
	EventDate     string     `json:"eventDate"`
	HolderName    string     `json:"holderName"`
	PaymentStatus string     `json:"paymentStatus"`
	CheckedInAt   *time.Time `json:"checkedInAt"`
}

func ticketToAPITicket(details registration.TicketDetails) apiTicket {
	return apiTicket{
		Token:         details.Member.Token,
		EventTitle:    details.Event.Title,
		EventDate:     details.Event.DateDisplay(),
		HolderName:    details.Holder.FullName,
		PaymentStatus: details.Member.PaymentStatus.String(),
		CheckedInAt:   details.Member.CheckedInAt,
	}
}

func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Login required")
		return false
	}
	if !user.IsAdmin() {
		a.writeError(w, http.StatusForbidden, "Admin access required")
		return false
	}
	return true
}

func (a *API) validateTicket(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}

	var req ticketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	details, err := registration.LookupTicket(r.Context(), req.Token, a.db, a.db, a.db)
	if err != nil {
		a.respondTicketError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"ticket":  ticketToAPITicket(details),
	})
}

func (a *API) checkIn(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}

	var req ticketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	details, err := registration.CheckIn(r.Context(), req.Token, time.Now(), a.db, a.db, a.db)
	if err != nil {
		a.respondTicketError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Checked in successfully",
		"ticket":  ticketToAPITicket(details),
	})
}

func (a *API) respondTicketError(w http.ResponseWriter, err error) {
	var registrationErr *registration.Error
	if errors.As(err, &registrationErr) {
		switch registrationErr.Reason {
		case registration.REASON_INVALID_TOKEN:
			a.writeError(w, http.StatusNotFound, "Ticket not found")
			return
		case registration.REASON_PAYMENT_REQUIRED:
			a.writeError(w, http.StatusConflict, "Payment for this ticket was never completed")
			return
		case registration.REASON_ALREADY_CHECKED_IN:
			a.writeError(w, http.StatusConflict, "Ticket was already checked in")
			return
		}
	}

	a.logger.Error("Ticket request failed", "error", err)
	a.writeError(w, http.StatusInternalServerError, "Internal server error")
}
