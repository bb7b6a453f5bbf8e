package registration

import (
	"context"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/events"
)

type PaymentStatus int

const (
	PAYMENT_FREE PaymentStatus = iota
	PAYMENT_PENDING
	PAYMENT_PAID
)

func (p PaymentStatus) String() string {
	switch p {
	case PAYMENT_FREE:
		return "free"
	case PAYMENT_PENDING:
		return "pending"
	case PAYMENT_PAID:
		return "paid"
	default:
		return "unknown"
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch s {
	case "free":
		return PAYMENT_FREE, true
	case "pending":
		return PAYMENT_PENDING, true
	case "paid":
		return PAYMENT_PAID, true
	default:
		return PAYMENT_FREE, false
	}
}

// EventMember ties a user to an event they joined. Token is the value encoded
// in the member's QR code and is unique across all registrations.
type EventMember struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	UserID        uuid.UUID
	Token         string
	PaymentStatus PaymentStatus
	PricePaid     *money.Money
	InvoiceID     *string
	JoinedAt      time.Time
	CheckedInAt   *time.Time
}

// Confirmed reports whether the registration counts as attending, i.e. it is
// not waiting on a payment.
func (m EventMember) Confirmed() bool {
	return m.PaymentStatus != PAYMENT_PENDING
}

type Repository interface {
	// CreateEventMember persists the member and the updated event counts in
	// one transaction, so a full event can never be oversubscribed.
	CreateEventMember(ctx context.Context, member EventMember, event events.Event) error
	GetEventMember(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (EventMember, error)
	GetEventMemberByToken(ctx context.Context, token string) (EventMember, error)
	ListEventMembersForUser(ctx context.Context, userID uuid.UUID) ([]EventMember, error)
	SetInvoice(ctx context.Context, memberID uuid.UUID, invoiceID string) error
	MarkPaid(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error
	MarkCheckedIn(ctx context.Context, memberID uuid.UUID, at time.Time) error
}

// NewMemberToken generates the QR token for a registration, e.g. "EVT-9F2C41A8".
func NewMemberToken() string {
	return "EVT-" + strings.ToUpper(strings.Split(uuid.New().String(), "-")[0])
}
