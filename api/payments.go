package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/callback"
	"github.com/gulf-dental-association/member-portal/registration"
)

type apiPaymentMethod struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ImageURL      string  `json:"imageUrl"`
	ServiceCharge float64 `json:"serviceCharge"`
	TotalAmount   float64 `json:"totalAmount"`
	Currency      string  `json:"currency"`
}

type createInvoiceRequest struct {
	EventID uuid.UUID `json:"eventId"`
}

func (a *API) createInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == uuid.Nil {
		a.writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	methods, price, event, err := registration.ListPaymentMethods(r.Context(), req.EventID, user, time.Now(), a.db, a.db, a.gateway)
	if err != nil {
		a.respondPaymentError(w, err)
		return
	}

	apiMethods := make([]apiPaymentMethod, 0, len(methods))
	for _, m := range methods {
		apiMethods = append(apiMethods, apiPaymentMethod{
			ID:            m.ID,
			Name:          m.Name,
			ImageURL:      m.ImageURL,
			ServiceCharge: m.ServiceCharge,
			TotalAmount:   m.TotalAmount,
			Currency:      m.Currency,
		})
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"paymentMethods": apiMethods,
		"amount":         price.AsMajorUnits(),
		"currency":       price.Currency().Code,
		"event_title":    event.Title,
	})
}

type executePaymentRequest struct {
	EventID         uuid.UUID `json:"eventId"`
	PaymentMethodID int64     `json:"paymentMethodId"`
}

func (a *API) executePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req executePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == uuid.Nil {
		a.writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	info, err := registration.StartPayment(r.Context(), registration.StartPaymentParams{
		EventID:     req.EventID,
		User:        user,
		MethodID:    req.PaymentMethodID,
		CallbackURL: a.gatewayCallbackURL(req.EventID, user.ID),
		ErrorURL:    a.gatewayCallbackURL(req.EventID, user.ID),
		Now:         time.Now(),
	}, a.db, a.db, a.gateway)
	if err != nil {
		a.respondPaymentError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"paymentUrl": info.PaymentURL,
		"invoiceId":  info.InvoiceID,
	})
}

// gatewayCallbackURL is where the gateway sends the payer after the hosted
// page, on success and on failure alike. The callback handler asks the
// gateway which of the two it was.
func (a *API) gatewayCallbackURL(eventID uuid.UUID, userID uuid.UUID) string {
	query := url.Values{}
	query.Set("eventId", eventID.String())
	query.Set("userId", userID.String())
	return a.baseURL + "/api/payments/event/callback?" + query.Encode()
}

func (a *API) respondPaymentError(w http.ResponseWriter, err error) {
	var registrationErr *registration.Error
	if errors.As(err, &registrationErr) {
		switch registrationErr.Reason {
		case registration.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
			a.writeError(w, http.StatusNotFound, "Event not found")
			return
		case registration.REASON_EVENT_NOT_PAID:
			a.writeError(w, http.StatusBadRequest, "This event does not require payment")
			return
		case registration.REASON_PRICE_NOT_SET:
			a.writeError(w, http.StatusBadRequest, "Event price is not configured")
			return
		case registration.REASON_NO_PAYMENT_METHOD:
			a.writeError(w, http.StatusBadRequest, "Please select a payment method")
			return
		case registration.REASON_ALREADY_PAID:
			a.writeError(w, http.StatusConflict, "You have already paid for this event")
			return
		case registration.REASON_ALREADY_JOINED:
			a.writeError(w, http.StatusConflict, "Already joined this event")
			return
		case registration.REASON_EVENT_FULL:
			a.writeError(w, http.StatusConflict, "Event is full")
			return
		case registration.REASON_REGISTRATION_CLOSED:
			a.writeError(w, http.StatusConflict, "Registration is closed for this event")
			return
		case registration.REASON_GATEWAY_FAILURE:
			a.logger.Error("Payment gateway failure", "error", err)
			a.writeError(w, http.StatusBadGateway, "Payment service is unavailable. Please try again.")
			return
		}
	}

	a.logger.Error("Payment request failed", "error", err)
	a.writeError(w, http.StatusInternalServerError, "Internal server error")
}

// paymentCallback is the landing point after the hosted payment page. It
// verifies the invoice with the gateway and redirects to the events listing
// with the outcome in the query string.
func (a *API) paymentCallback(w http.ResponseWriter, r *http.Request) {
	eventsURL := a.frontendURL + "/events"
	query := r.URL.Query()

	eventID, err := uuid.Parse(query.Get("eventId"))
	if err != nil {
		a.redirect(w, r, callback.ErrorURL(eventsURL, callback.ErrorInvalidCallback, ""))
		return
	}
	userID, err := uuid.Parse(query.Get("userId"))
	if err != nil {
		a.redirect(w, r, callback.ErrorURL(eventsURL, callback.ErrorInvalidCallback, ""))
		return
	}

	member, event, err := registration.ConfirmPayment(r.Context(), eventID, userID, "", a.db, a.db, a.db, a.gateway)
	if err != nil {
		a.logger.Error("Payment callback failed", "error", err, "eventId", eventID, "userId", userID)
		a.redirect(w, r, callback.ErrorURL(eventsURL, callbackErrorCode(err), ""))
		return
	}

	a.sendJoinConfirmation(r.Context(), member)
	a.logger.Info("Payment confirmed",
		"eventId", eventID,
		"userId", userID,
		"token", member.Token,
	)
	a.redirect(w, r, callback.SuccessURL(eventsURL, event.Title))
}

func callbackErrorCode(err error) string {
	var registrationErr *registration.Error
	if !errors.As(err, &registrationErr) {
		return callback.ErrorProcessing
	}

	switch registrationErr.Reason {
	case registration.REASON_PAYMENT_NOT_FOUND:
		return callback.ErrorNotFound
	case registration.REASON_PAYMENT_NOT_CONFIRMED:
		return callback.ErrorFailed
	case registration.REASON_PAYMENT_VERIFICATION_FAILED:
		return callback.ErrorVerificationFailed
	case registration.REASON_PAYMENT_UPDATE_FAILED:
		return callback.ErrorUpdateFailed
	default:
		return callback.ErrorProcessing
	}
}

func (a *API) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if _, err := url.Parse(target); err != nil {
		a.logger.Error("Invalid redirect target", "error", err, "target", target)
		a.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Invalid redirect target %q", target))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
