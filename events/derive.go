package events

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
)

// PriceFor resolves the price the given user pays for this event. A nil
// result means the event is free for that user. Paid members get the member
// price when one is set, everyone else pays the regular price.
func (e Event) PriceFor(isPaidMember bool) *money.Money {
	if !e.IsPaid {
		return nil
	}

	if isPaidMember && e.MemberPrice != nil {
		return e.MemberPrice
	}
	return e.RegularPrice
}

// Savings is the discount a paid member gets against the regular price. Nil
// when the user does not qualify or when either price is missing.
func (e Event) Savings(isPaidMember bool) *money.Money {
	if !e.IsPaid || !isPaidMember || e.RegularPrice == nil || e.MemberPrice == nil {
		return nil
	}

	diff, err := e.RegularPrice.Subtract(e.MemberPrice)
	if err != nil {
		return nil
	}
	return diff
}

// Progress is the registration fill percentage, capped at 100. Unbounded
// events always report 0.
func (e Event) Progress() float64 {
	if e.Capacity == nil || *e.Capacity == 0 {
		return 0
	}

	return min(100, float64(e.RegisteredCount)/float64(*e.Capacity)*100)
}

func (e Event) IsFull() bool {
	return e.Progress() >= 100
}

func (e Event) IsAlmostFull() bool {
	p := e.Progress()
	return p >= 80 && p < 100
}

// RelativeDateLabel renders a short urgency label for events starting within
// the next week, or "" for anything further out or in the past.
func (e Event) RelativeDateLabel(now time.Time) string {
	days := daysUntil(now, e.StartTime)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days > 1 && days <= 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return ""
	}
}

func daysUntil(now, start time.Time) int {
	start = start.In(now.Location())
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startDate := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())

	return int(startDate.Sub(nowDate) / (24 * time.Hour))
}

// DateDisplay renders the start date the way the events listing shows it.
func (e Event) DateDisplay() string {
	if e.StartTime.IsZero() {
		return "TBD"
	}
	return e.StartTime.Format("Mon, Jan 2, 2006")
}

// TimeDisplay renders the start and end times as a range.
func (e Event) TimeDisplay() string {
	if e.StartTime.IsZero() {
		return ""
	}

	start := e.StartTime.Format("03:04 PM")
	if e.EndTime.IsZero() {
		return start
	}
	return fmt.Sprintf("%s - %s", start, e.EndTime.Format("03:04 PM"))
}

// LocationDisplay falls back from venue to city to address.
func (e Event) LocationDisplay() string {
	switch {
	case e.Venue.Name != "":
		return e.Venue.Name
	case e.Venue.City != "":
		return e.Venue.City
	case e.Venue.Address != "":
		return e.Venue.Address
	default:
		return "Location TBD"
	}
}

// PriceDisplay renders the user's price, or "FREE" when there is nothing to
// pay.
func (e Event) PriceDisplay(isPaidMember bool) string {
	price := e.PriceFor(isPaidMember)
	if price == nil || price.IsZero() {
		return "FREE"
	}
	return price.Display()
}
