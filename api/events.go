package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/registration"
	"github.com/gulf-dental-association/member-portal/users"
)

type apiEvent struct {
	ID              uuid.UUID  `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	BannerURL       *string    `json:"bannerUrl"`
	Type            string     `json:"type"`
	TypeLabel       string     `json:"typeLabel"`
	VenueName       string     `json:"venueName"`
	VenueAddress    string     `json:"venueAddress"`
	VenueCity       string     `json:"venueCity"`
	LocationDisplay string     `json:"locationDisplay"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	DateDisplay     string     `json:"dateDisplay"`
	TimeDisplay     string     `json:"timeDisplay"`
	RelativeDate    string     `json:"relativeDate"`
	Capacity        *int       `json:"capacity"`
	RegisteredCount int        `json:"registeredCount"`
	Progress        float64    `json:"progress"`
	IsFull          bool       `json:"isFull"`
	IsAlmostFull    bool       `json:"isAlmostFull"`
	IsPaid          bool       `json:"isPaid"`
	RegularPrice    *float64   `json:"regularPrice"`
	MemberPrice     *float64   `json:"memberPrice"`
	Price           *float64   `json:"price"`
	PriceDisplay    string     `json:"priceDisplay"`
	Savings         *float64   `json:"savings"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	Joined          bool       `json:"joined"`
	PaymentStatus   *string    `json:"paymentStatus"`
	CheckedInAt     *time.Time `json:"checkedInAt"`
}

func moneyMajorUnits(m *money.Money) *float64 {
	if m == nil {
		return nil
	}
	v := m.AsMajorUnits()
	return &v
}

func eventToAPIEvent(event events.Event, now time.Time, user *users.User, member *registration.EventMember) apiEvent {
	isPaidMember := user != nil && user.IsPaidMember()

	out := apiEvent{
		ID:              event.ID,
		Slug:            event.Slug,
		Title:           event.Title,
		Description:     event.Description,
		BannerURL:       event.BannerURL,
		Type:            event.Type.String(),
		TypeLabel:       event.Type.Label(),
		VenueName:       event.Venue.Name,
		VenueAddress:    event.Venue.Address,
		VenueCity:       event.Venue.City,
		LocationDisplay: event.LocationDisplay(),
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		DateDisplay:     event.DateDisplay(),
		TimeDisplay:     event.TimeDisplay(),
		RelativeDate:    event.RelativeDateLabel(now),
		Capacity:        event.Capacity,
		RegisteredCount: event.RegisteredCount,
		Progress:        event.Progress(),
		IsFull:          event.IsFull(),
		IsAlmostFull:    event.IsAlmostFull(),
		IsPaid:          event.IsPaid,
		RegularPrice:    moneyMajorUnits(event.RegularPrice),
		MemberPrice:     moneyMajorUnits(event.MemberPrice),
		Price:           moneyMajorUnits(event.PriceFor(isPaidMember)),
		PriceDisplay:    event.PriceDisplay(isPaidMember),
		Savings:         moneyMajorUnits(event.Savings(isPaidMember)),
		Currency:        money.BHD,
		Status:          string(event.DerivedStatus(now)),
	}
	if event.RegularPrice != nil {
		out.Currency = event.RegularPrice.Currency().Code
	}
	if member != nil {
		out.Joined = true
		status := member.PaymentStatus.String()
		out.PaymentStatus = &status
		out.CheckedInAt = member.CheckedInAt
	}
	return out
}

type apiPagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func (a *API) listPublicEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if v, err := strconv.Atoi(query.Get("page")); err == nil && v > 0 {
		page = v
	}
	limit := 10
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}

	params := events.ListParams{
		Page:         page,
		Limit:        limit,
		Search:       query.Get("search"),
		UpcomingOnly: query.Get("isUpcoming") == "true",
	}
	if typeName := query.Get("type"); typeName != "" {
		eventType, ok := events.ParseEventType(typeName)
		if !ok {
			a.writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown event type %q", typeName))
			return
		}
		params.Type = &eventType
	}

	result, err := a.db.ListEvents(r.Context(), params)
	if err != nil {
		a.logger.Error("Failed to list events", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	user, loggedIn := getUserFromCtx(r.Context())

	// One membership fetch covers the whole page of events.
	membersByEvent := map[uuid.UUID]registration.EventMember{}
	if loggedIn {
		members, err := a.db.ListEventMembersForUser(r.Context(), user.ID)
		if err != nil {
			a.logger.Error("Failed to list event members for user", "error", err)
			a.writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		for _, m := range members {
			membersByEvent[m.EventID] = m
		}
	}

	apiEvents := make([]apiEvent, 0, len(result.Data))
	for _, event := range result.Data {
		var userPtr *users.User
		if loggedIn {
			userPtr = &user
		}
		var memberPtr *registration.EventMember
		if m, ok := membersByEvent[event.ID]; ok {
			memberPtr = &m
		}
		apiEvents = append(apiEvents, eventToAPIEvent(event, now, userPtr, memberPtr))
	}

	totalPages := (result.Total + limit - 1) / limit
	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"events":  apiEvents,
		"pagination": apiPagination{
			Total:      result.Total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

func (a *API) getEventBySlug(w http.ResponseWriter, r *http.Request) {
	event, err := a.db.GetEventBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			a.writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		a.logger.Error("Failed to fetch event by slug", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var userPtr *users.User
	var memberPtr *registration.EventMember
	if user, ok := getUserFromCtx(r.Context()); ok {
		userPtr = &user
		member, err := a.db.GetEventMember(r.Context(), event.ID, user.ID)
		if err == nil {
			memberPtr = &member
		}
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"event":   eventToAPIEvent(event, time.Now(), userPtr, memberPtr),
	})
}

type createEventRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	BannerURL    *string  `json:"bannerUrl"`
	VenueName    string   `json:"venueName"`
	VenueAddress string   `json:"venueAddress"`
	VenueCity    string   `json:"venueCity"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Capacity     *int     `json:"capacity"`
	IsPaid       bool     `json:"isPaid"`
	RegularPrice *float64 `json:"regularPrice"`
	MemberPrice  *float64 `json:"memberPrice"`
	Currency     string   `json:"currency"`
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Login required")
		return
	}
	if !user.IsAdmin() {
		a.writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		a.writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "startTime must be RFC 3339")
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "endTime must be RFC 3339")
		return
	}
	if !endTime.After(startTime) {
		a.writeError(w, http.StatusBadRequest, "endTime must be after startTime")
		return
	}
	if req.IsPaid && req.RegularPrice == nil {
		a.writeError(w, http.StatusBadRequest, "Paid events need a regular price")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = money.BHD
	}

	id := uuid.New()
	event := events.Event{
		ID:          id,
		Version:     1,
		Slug:        slug.Make(req.Title) + "-" + id.String()[:8],
		Title:       req.Title,
		Description: req.Description,
		BannerURL:   req.BannerURL,
		Type:        events.ClassifyEventType(req.Title, req.Description),
		Venue: events.Location{
			Name:    req.VenueName,
			Address: req.VenueAddress,
			City:    req.VenueCity,
		},
		StartTime: startTime,
		EndTime:   endTime,
		Capacity:  req.Capacity,
		IsPaid:    req.IsPaid,
		Status:    events.STATUS_UPCOMING,
	}
	if req.RegularPrice != nil {
		event.RegularPrice = money.NewFromFloat(*req.RegularPrice, currency)
	}
	if req.MemberPrice != nil {
		event.MemberPrice = money.NewFromFloat(*req.MemberPrice, currency)
	}

	if err := a.db.CreateEvent(r.Context(), event); err != nil {
		a.logger.Error("Failed to create event", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to create the event")
		return
	}

	a.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"event":   eventToAPIEvent(event, time.Now(), nil, nil),
	})
}
