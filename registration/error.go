package registration

import "fmt"

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_MEMBER_DOES_NOT_EXIST           ErrorReason = "MEMBER_DOES_NOT_EXIST"
	REASON_MEMBER_ALREADY_EXISTS           ErrorReason = "MEMBER_ALREADY_EXISTS"
	REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST ErrorReason = "ASSOCIATED_EVENT_DOES_NOT_EXIST"
	REASON_REGISTRATION_CLOSED             ErrorReason = "REGISTRATION_CLOSED"
	REASON_EVENT_FULL                      ErrorReason = "EVENT_FULL"
	REASON_ALREADY_JOINED                  ErrorReason = "ALREADY_JOINED"
	REASON_PAYMENT_REQUIRED                ErrorReason = "PAYMENT_REQUIRED"
	REASON_EVENT_NOT_PAID                  ErrorReason = "EVENT_NOT_PAID"
	REASON_PRICE_NOT_SET                   ErrorReason = "PRICE_NOT_SET"
	REASON_ALREADY_PAID                    ErrorReason = "ALREADY_PAID"
	REASON_NO_PAYMENT_METHOD               ErrorReason = "NO_PAYMENT_METHOD"
	REASON_GATEWAY_FAILURE                 ErrorReason = "GATEWAY_FAILURE"
	REASON_PAYMENT_NOT_FOUND               ErrorReason = "PAYMENT_NOT_FOUND"
	REASON_PAYMENT_NOT_CONFIRMED           ErrorReason = "PAYMENT_NOT_CONFIRMED"
	REASON_PAYMENT_VERIFICATION_FAILED     ErrorReason = "PAYMENT_VERIFICATION_FAILED"
	REASON_PAYMENT_UPDATE_FAILED           ErrorReason = "PAYMENT_UPDATE_FAILED"
	REASON_INVALID_TOKEN                   ErrorReason = "INVALID_TOKEN"
	REASON_ALREADY_CHECKED_IN              ErrorReason = "ALREADY_CHECKED_IN"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewMemberDoesNotExistError(message string, cause error) *Error {
	return newRegistrationError(REASON_MEMBER_DOES_NOT_EXIST, message, cause)
}

func NewMemberAlreadyExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_MEMBER_ALREADY_EXISTS, message, cause)
}

func NewAssociatedEventDoesNotExistError(message string, cause error) *Error {
	return newRegistrationError(REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST, message, cause)
}

func NewRegistrationClosedError(message string) *Error {
	return newRegistrationError(REASON_REGISTRATION_CLOSED, message, nil)
}

func NewEventFullError(message string) *Error {
	return newRegistrationError(REASON_EVENT_FULL, message, nil)
}

func NewAlreadyJoinedError(message string) *Error {
	return newRegistrationError(REASON_ALREADY_JOINED, message, nil)
}

func NewPaymentRequiredError(message string) *Error {
	return newRegistrationError(REASON_PAYMENT_REQUIRED, message, nil)
}

func NewEventNotPaidError(message string) *Error {
	return newRegistrationError(REASON_EVENT_NOT_PAID, message, nil)
}

func NewPriceNotSetError(message string) *Error {
	return newRegistrationError(REASON_PRICE_NOT_SET, message, nil)
}

func NewAlreadyPaidError(message string) *Error {
	return newRegistrationError(REASON_ALREADY_PAID, message, nil)
}

func NewNoPaymentMethodError(message string) *Error {
	return newRegistrationError(REASON_NO_PAYMENT_METHOD, message, nil)
}

func NewGatewayFailureError(message string, cause error) *Error {
	return newRegistrationError(REASON_GATEWAY_FAILURE, message, cause)
}

func NewPaymentNotFoundError(message string, cause error) *Error {
	return newRegistrationError(REASON_PAYMENT_NOT_FOUND, message, cause)
}

func NewPaymentNotConfirmedError(message string) *Error {
	return newRegistrationError(REASON_PAYMENT_NOT_CONFIRMED, message, nil)
}

func NewPaymentVerificationFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_PAYMENT_VERIFICATION_FAILED, message, cause)
}

func NewPaymentUpdateFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_PAYMENT_UPDATE_FAILED, message, cause)
}

func NewInvalidTokenError(message string) *Error {
	return newRegistrationError(REASON_INVALID_TOKEN, message, nil)
}

func NewAlreadyCheckedInError(message string) *Error {
	return newRegistrationError(REASON_ALREADY_CHECKED_IN, message, nil)
}
