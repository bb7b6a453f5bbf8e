package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/users"
)

// AttemptJoin runs every guard for joining an event and, when they all pass,
// records the registration. Paid events with a non-zero price for this user
// are never joined here: the caller gets a PAYMENT_REQUIRED error and must
// send the user through the payment flow instead.
func AttemptJoin(
	ctx context.Context,
	eventID uuid.UUID,
	user users.User,
	now time.Time,
	eventRepo events.Repository,
	memberRepo Repository,
) (EventMember, error) {
	event, err := eventRepo.GetEvent(ctx, eventID)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			return EventMember{}, NewAssociatedEventDoesNotExistError("Event not found", err)
		}
		return EventMember{}, NewFailedToFetchError("Failed to load event", err)
	}

	if status := event.DerivedStatus(now); status != events.STATUS_UPCOMING {
		return EventMember{}, NewRegistrationClosedError(fmt.Sprintf("Registration is closed, event is %s", status))
	}

	if event.IsFull() {
		return EventMember{}, NewEventFullError("Event is full")
	}

	existing, err := memberRepo.GetEventMember(ctx, eventID, user.ID)
	if err == nil {
		if existing.PaymentStatus == PAYMENT_PENDING && event.IsPaid {
			return EventMember{}, NewPaymentRequiredError("Payment required. Please complete payment first.")
		}
		return EventMember{}, NewAlreadyJoinedError("Already joined this event")
	}
	var memberErr *Error
	if !errors.As(err, &memberErr) || memberErr.Reason != REASON_MEMBER_DOES_NOT_EXIST {
		return EventMember{}, NewFailedToFetchError("Failed to check existing registration", err)
	}

	price := event.PriceFor(user.IsPaidMember())
	if event.IsPaid && price != nil && !price.IsZero() {
		return EventMember{}, NewPaymentRequiredError("Payment required. Please complete payment first.")
	}

	member := EventMember{
		ID:            uuid.New(),
		EventID:       event.ID,
		UserID:        user.ID,
		Token:         NewMemberToken(),
		PaymentStatus: PAYMENT_FREE,
		JoinedAt:      now,
	}

	event.RegisteredCount++
	event.Version++
	if err := memberRepo.CreateEventMember(ctx, member, event); err != nil {
		return EventMember{}, err
	}
	return member, nil
}
