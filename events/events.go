package events

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

// Event is an association event that members can join. Prices are only set
// when IsPaid is true; a nil Capacity means the event is unbounded.
type Event struct {
	ID              uuid.UUID
	Version         int
	Slug            string
	Title           string
	Description     string
	BannerURL       *string
	Type            EventType
	Venue           Location
	StartTime       time.Time
	EndTime         time.Time
	Capacity        *int
	IsPaid          bool
	RegularPrice    *money.Money
	MemberPrice     *money.Money
	RegisteredCount int
	Status          Status
}

type Location struct {
	Name    string
	Address string
	City    string
}

// Status is the stored lifecycle state. Cancelled and completed are set by
// administrators; upcoming/ongoing/completed are otherwise derived from the
// schedule.
type Status string

const (
	STATUS_UPCOMING  Status = "upcoming"
	STATUS_ONGOING   Status = "ongoing"
	STATUS_COMPLETED Status = "completed"
	STATUS_CANCELLED Status = "cancelled"
)

// DerivedStatus resolves the effective status at a point in time. A stored
// cancelled or completed status always wins over the schedule.
func (e Event) DerivedStatus(now time.Time) Status {
	switch e.Status {
	case STATUS_CANCELLED, STATUS_COMPLETED:
		return e.Status
	}

	if now.Before(e.StartTime) {
		return STATUS_UPCOMING
	}
	if now.After(e.EndTime) {
		return STATUS_COMPLETED
	}
	return STATUS_ONGOING
}

type ListParams struct {
	Page         int
	Limit        int
	Search       string
	Type         *EventType
	UpcomingOnly bool
}

type ListEventsResponse struct {
	Data  []Event
	Total int
}

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	GetEventBySlug(ctx context.Context, slug string) (Event, error)
	ListEvents(ctx context.Context, params ListParams) (ListEventsResponse, error)
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
}
