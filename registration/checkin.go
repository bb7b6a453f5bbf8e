package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/users"
)

// TicketDetails is everything a door scanner needs to show for a QR token.
type TicketDetails struct {
	Member EventMember
	Event  events.Event
	Holder users.User
}

// LookupTicket resolves a QR token to the registration behind it. Pending
// registrations are rejected, their payment never completed.
func LookupTicket(
	ctx context.Context,
	token string,
	memberRepo Repository,
	eventRepo events.Repository,
	userRepo users.Repository,
) (TicketDetails, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TicketDetails{}, NewInvalidTokenError("No ticket code provided")
	}

	member, err := memberRepo.GetEventMemberByToken(ctx, token)
	if err != nil {
		var memberErr *Error
		if errors.As(err, &memberErr) && memberErr.Reason == REASON_MEMBER_DOES_NOT_EXIST {
			return TicketDetails{}, NewInvalidTokenError("Ticket not found")
		}
		return TicketDetails{}, NewFailedToFetchError("Failed to look up ticket", err)
	}
	if !member.Confirmed() {
		return TicketDetails{}, NewPaymentRequiredError("Payment for this ticket was never completed")
	}

	event, err := eventRepo.GetEvent(ctx, member.EventID)
	if err != nil {
		return TicketDetails{}, NewFailedToFetchError("Failed to load event for ticket", err)
	}
	holder, err := userRepo.GetUser(ctx, member.UserID)
	if err != nil {
		return TicketDetails{}, NewFailedToFetchError("Failed to load ticket holder", err)
	}

	return TicketDetails{Member: member, Event: event, Holder: holder}, nil
}

// CheckIn marks the ticket as used. A ticket checks in at most once.
func CheckIn(
	ctx context.Context,
	token string,
	now time.Time,
	memberRepo Repository,
	eventRepo events.Repository,
	userRepo users.Repository,
) (TicketDetails, error) {
	details, err := LookupTicket(ctx, token, memberRepo, eventRepo, userRepo)
	if err != nil {
		return TicketDetails{}, err
	}
	if details.Member.CheckedInAt != nil {
		return TicketDetails{}, NewAlreadyCheckedInError("Ticket was already checked in")
	}

	if err := memberRepo.MarkCheckedIn(ctx, details.Member.ID, now); err != nil {
		return TicketDetails{}, err
	}
	details.Member.CheckedInAt = &now
	return details, nil
}
