package registration

import (
	"context"
	"errors"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/users"
)

// PaymentMethod is a way to pay offered by the gateway for a given amount,
// e.g. a local debit network or a card scheme.
type PaymentMethod struct {
	ID              int64
	Name            string
	ImageURL        string
	ServiceCharge   float64
	TotalAmount     float64
	Currency        string
	IsDirectPayment bool
}

// PaymentInfo is what the gateway hands back when an invoice is created: the
// hosted page to redirect the payer to, and the invoice to reconcile later.
type PaymentInfo struct {
	PaymentURL string
	InvoiceID  string
}

type InvoiceStatus string

const (
	INVOICE_PAID    InvoiceStatus = "Paid"
	INVOICE_PENDING InvoiceStatus = "Pending"
	INVOICE_FAILED  InvoiceStatus = "Failed"
)

type ExecutePaymentParams struct {
	MethodID       int64
	Amount         *money.Money
	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	ItemName       string
	Reference      string
	CallbackURL    string
	ErrorURL       string
}

// PaymentGateway abstracts the hosted payment provider. Amounts cross this
// boundary as money values, never floats.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, amount *money.Money) ([]PaymentMethod, error)
	ExecutePayment(ctx context.Context, params ExecutePaymentParams) (PaymentInfo, error)
	PaymentStatus(ctx context.Context, invoiceID string) (InvoiceStatus, error)
}

// paymentGuards checks that the event can be paid for by this user right now
// and returns the amount owed.
func paymentGuards(
	ctx context.Context,
	eventID uuid.UUID,
	user users.User,
	now time.Time,
	eventRepo events.Repository,
	memberRepo Repository,
) (events.Event, *money.Money, error) {
	event, err := eventRepo.GetEvent(ctx, eventID)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			return events.Event{}, nil, NewAssociatedEventDoesNotExistError("Event not found", err)
		}
		return events.Event{}, nil, NewFailedToFetchError("Failed to load event", err)
	}

	if !event.IsPaid {
		return events.Event{}, nil, NewEventNotPaidError("This event does not require payment")
	}
	price := event.PriceFor(user.IsPaidMember())
	if price == nil || price.IsZero() {
		return events.Event{}, nil, NewPriceNotSetError("Event price is not configured")
	}
	if status := event.DerivedStatus(now); status != events.STATUS_UPCOMING {
		return events.Event{}, nil, NewRegistrationClosedError("Registration is closed for this event")
	}

	existing, err := memberRepo.GetEventMember(ctx, eventID, user.ID)
	if err == nil {
		if existing.PaymentStatus == PAYMENT_PAID {
			return events.Event{}, nil, NewAlreadyPaidError("You have already paid for this event")
		}
		if existing.PaymentStatus == PAYMENT_FREE {
			return events.Event{}, nil, NewAlreadyJoinedError("Already joined this event")
		}
		// A pending registration may retry payment.
		return event, price, nil
	}
	var memberErr *Error
	if !errors.As(err, &memberErr) || memberErr.Reason != REASON_MEMBER_DOES_NOT_EXIST {
		return events.Event{}, nil, NewFailedToFetchError("Failed to check existing registration", err)
	}

	if event.IsFull() {
		return events.Event{}, nil, NewEventFullError("Event is full")
	}
	return event, price, nil
}

// ListPaymentMethods asks the gateway which payment methods are available for
// the price this user owes for the event.
func ListPaymentMethods(
	ctx context.Context,
	eventID uuid.UUID,
	user users.User,
	now time.Time,
	eventRepo events.Repository,
	memberRepo Repository,
	gateway PaymentGateway,
) ([]PaymentMethod, *money.Money, events.Event, error) {
	event, price, err := paymentGuards(ctx, eventID, user, now, eventRepo, memberRepo)
	if err != nil {
		return nil, nil, events.Event{}, err
	}

	methods, err := gateway.InitiatePayment(ctx, price)
	if err != nil {
		return nil, nil, events.Event{}, NewGatewayFailureError("Failed to fetch payment methods", err)
	}
	return methods, price, event, nil
}

type StartPaymentParams struct {
	EventID     uuid.UUID
	User        users.User
	MethodID    int64
	CallbackURL string
	ErrorURL    string
	Now         time.Time
}

// StartPayment creates a gateway invoice for the event and returns the hosted
// payment page URL with the invoice id. A pending registration is recorded
// (or refreshed) so the callback can find it once the payer returns.
func StartPayment(
	ctx context.Context,
	params StartPaymentParams,
	eventRepo events.Repository,
	memberRepo Repository,
	gateway PaymentGateway,
) (PaymentInfo, error) {
	if params.MethodID <= 0 {
		return PaymentInfo{}, NewNoPaymentMethodError("Please select a payment method")
	}

	event, price, err := paymentGuards(ctx, params.EventID, params.User, params.Now, eventRepo, memberRepo)
	if err != nil {
		return PaymentInfo{}, err
	}

	info, err := gateway.ExecutePayment(ctx, ExecutePaymentParams{
		MethodID:       params.MethodID,
		Amount:         price,
		CustomerName:   params.User.FullName,
		CustomerEmail:  params.User.Email,
		CustomerMobile: params.User.Mobile,
		ItemName:       event.Title,
		Reference:      "EVT-" + event.ID.String() + "-" + params.User.ID.String(),
		CallbackURL:    params.CallbackURL,
		ErrorURL:       params.ErrorURL,
	})
	if err != nil {
		return PaymentInfo{}, NewGatewayFailureError("Failed to create payment invoice", err)
	}
	if info.PaymentURL == "" {
		return PaymentInfo{}, NewGatewayFailureError("Gateway returned no payment URL", nil)
	}

	existing, err := memberRepo.GetEventMember(ctx, params.EventID, params.User.ID)
	if err == nil {
		// Retried payment: point the pending registration at the new invoice.
		if err := memberRepo.SetInvoice(ctx, existing.ID, info.InvoiceID); err != nil {
			return PaymentInfo{}, err
		}
		return info, nil
	}
	var memberErr *Error
	if !errors.As(err, &memberErr) || memberErr.Reason != REASON_MEMBER_DOES_NOT_EXIST {
		return PaymentInfo{}, NewFailedToFetchError("Failed to check existing registration", err)
	}

	member := EventMember{
		ID:            uuid.New(),
		EventID:       event.ID,
		UserID:        params.User.ID,
		Token:         NewMemberToken(),
		PaymentStatus: PAYMENT_PENDING,
		InvoiceID:     &info.InvoiceID,
		JoinedAt:      params.Now,
	}
	event.RegisteredCount++
	event.Version++
	if err := memberRepo.CreateEventMember(ctx, member, event); err != nil {
		return PaymentInfo{}, err
	}
	return info, nil
}

// ConfirmPayment verifies an invoice with the gateway and flips the pending
// registration to paid. It is idempotent: confirming an already-paid
// registration succeeds without touching the gateway again.
func ConfirmPayment(
	ctx context.Context,
	eventID uuid.UUID,
	userID uuid.UUID,
	invoiceID string,
	eventRepo events.Repository,
	memberRepo Repository,
	userRepo users.Repository,
	gateway PaymentGateway,
) (EventMember, events.Event, error) {
	member, err := memberRepo.GetEventMember(ctx, eventID, userID)
	if err != nil {
		var memberErr *Error
		if errors.As(err, &memberErr) && memberErr.Reason == REASON_MEMBER_DOES_NOT_EXIST {
			return EventMember{}, events.Event{}, NewPaymentNotFoundError("Payment record not found", err)
		}
		return EventMember{}, events.Event{}, NewFailedToFetchError("Failed to load registration", err)
	}

	event, err := eventRepo.GetEvent(ctx, eventID)
	if err != nil {
		return EventMember{}, events.Event{}, NewFailedToFetchError("Failed to load event", err)
	}

	if member.PaymentStatus == PAYMENT_PAID {
		return member, event, nil
	}

	if invoiceID == "" {
		if member.InvoiceID == nil {
			return EventMember{}, events.Event{}, NewPaymentVerificationFailedError("No invoice to verify", nil)
		}
		invoiceID = *member.InvoiceID
	}

	status, err := gateway.PaymentStatus(ctx, invoiceID)
	if err != nil {
		return EventMember{}, events.Event{}, NewPaymentVerificationFailedError("Failed to verify payment with gateway", err)
	}
	if status != INVOICE_PAID {
		return EventMember{}, events.Event{}, NewPaymentNotConfirmedError("Payment is not confirmed by the gateway")
	}

	user, err := userRepo.GetUser(ctx, userID)
	if err != nil {
		return EventMember{}, events.Event{}, NewFailedToFetchError("Failed to load user", err)
	}
	price := event.PriceFor(user.IsPaidMember())

	if err := memberRepo.MarkPaid(ctx, member.ID, price, invoiceID); err != nil {
		return EventMember{}, events.Event{}, NewPaymentUpdateFailedError("Payment was successful but the registration could not be updated", err)
	}

	member.PaymentStatus = PAYMENT_PAID
	member.PricePaid = price
	member.InvoiceID = &invoiceID
	return member, event, nil
}
