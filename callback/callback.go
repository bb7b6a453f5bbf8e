// Package callback translates the query parameters a payer comes back with
// from the hosted payment page into a single user-facing notice, and builds
// the redirect URLs that carry those parameters in the first place.
package callback

import (
	"fmt"
	"net/url"
)

type Kind int

const (
	KIND_NONE Kind = iota
	KIND_SUCCESS
	KIND_ERROR
)

// Notice is the one banner shown after a payment round trip.
type Notice struct {
	Kind    Kind
	Message string
}

const (
	SuccessCompleted = "payment_completed"

	ErrorFailed             = "payment_failed"
	ErrorProcessing         = "payment_error"
	ErrorInvalidCallback    = "invalid_callback"
	ErrorNotFound           = "payment_not_found"
	ErrorUpdateFailed       = "payment_update_failed"
	ErrorVerificationFailed = "payment_verification_failed"
)

// errorCopy is fixed user-facing text per error code. Unrecognized codes fall
// back to showing the raw code.
var errorCopy = map[string]string{
	ErrorFailed:             "Payment was not completed. Please try again.",
	ErrorProcessing:         "An error occurred during payment processing. Please contact support if payment was deducted.",
	ErrorInvalidCallback:    "Invalid payment callback. Please contact support.",
	ErrorNotFound:           "Payment record not found. Please contact support if payment was deducted.",
	ErrorUpdateFailed:       "Payment was successful but could not update registration. Please contact support.",
	ErrorVerificationFailed: "Payment verification failed. Please contact support if payment was deducted.",
}

// NoticeFromQuery reduces the query parameters to at most one notice. An
// explicit "message" parameter always wins over the mapped copy. Returns
// false when the query carries no payment outcome at all.
func NoticeFromQuery(query url.Values) (Notice, bool) {
	if explicit := query.Get("message"); explicit != "" {
		kind := KIND_ERROR
		if query.Get("success") != "" {
			kind = KIND_SUCCESS
		}
		return Notice{Kind: kind, Message: explicit}, true
	}

	if success := query.Get("success"); success != "" {
		if eventName := query.Get("event"); eventName != "" {
			return Notice{
				Kind:    KIND_SUCCESS,
				Message: fmt.Sprintf("Payment completed successfully! You are now registered for %q.", eventName),
			}, true
		}
		return Notice{
			Kind:    KIND_SUCCESS,
			Message: "Payment completed successfully! You are now registered for the event.",
		}, true
	}

	if code := query.Get("error"); code != "" {
		message, ok := errorCopy[code]
		if !ok {
			message = code
		}
		return Notice{Kind: KIND_ERROR, Message: message}, true
	}

	return Notice{}, false
}

// Consume reads the notice and returns the query with the payment parameters
// stripped, so a reload of the resulting URL shows no banner.
func Consume(query url.Values) (Notice, url.Values, bool) {
	notice, ok := NoticeFromQuery(query)

	remaining := url.Values{}
	for key, values := range query {
		switch key {
		case "success", "error", "message", "event":
		default:
			remaining[key] = values
		}
	}
	return notice, remaining, ok
}

// SuccessURL builds the redirect target for a completed payment.
func SuccessURL(base string, eventTitle string) string {
	query := url.Values{}
	query.Set("success", SuccessCompleted)
	if eventTitle != "" {
		query.Set("event", eventTitle)
	}
	return base + "?" + query.Encode()
}

// ErrorURL builds the redirect target for a failed payment. message is
// optional and overrides the mapped copy on the receiving end.
func ErrorURL(base string, code string, message string) string {
	query := url.Values{}
	query.Set("error", code)
	if message != "" {
		query.Set("message", message)
	}
	return base + "?" + query.Encode()
}
