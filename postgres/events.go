package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gulf-dental-association/member-portal/events"
)

const uniqueViolationCode = "23505"

const eventColumns = `id, version, slug, title, description, banner_url, event_type,
	venue_name, venue_address, venue_city, start_time, end_time, capacity,
	is_paid, regular_price_fils, member_price_fils, currency, registered_count, status`

type eventRow struct {
	event            events.Event
	eventType        string
	status           string
	regularPriceFils *int64
	memberPriceFils  *int64
	currency         string
}

func scanEvent(row pgx.Row, extra ...any) (events.Event, error) {
	var r eventRow
	dest := []any{
		&r.event.ID, &r.event.Version, &r.event.Slug, &r.event.Title, &r.event.Description,
		&r.event.BannerURL, &r.eventType,
		&r.event.Venue.Name, &r.event.Venue.Address, &r.event.Venue.City,
		&r.event.StartTime, &r.event.EndTime, &r.event.Capacity,
		&r.event.IsPaid, &r.regularPriceFils, &r.memberPriceFils, &r.currency,
		&r.event.RegisteredCount, &r.status,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return events.Event{}, err
	}

	eventType, ok := events.ParseEventType(r.eventType)
	if !ok {
		return events.Event{}, events.NewFailedToTranslateToDBModelError(fmt.Sprintf("unknown event type %q", r.eventType), nil)
	}
	r.event.Type = eventType
	r.event.Status = events.Status(r.status)
	if r.regularPriceFils != nil {
		r.event.RegularPrice = money.New(*r.regularPriceFils, r.currency)
	}
	if r.memberPriceFils != nil {
		r.event.MemberPrice = money.New(*r.memberPriceFils, r.currency)
	}
	return r.event, nil
}

func eventWriteArgs(event events.Event) []any {
	var regularFils, memberFils *int64
	currency := money.BHD
	if event.RegularPrice != nil {
		amount := event.RegularPrice.Amount()
		regularFils = &amount
		currency = event.RegularPrice.Currency().Code
	}
	if event.MemberPrice != nil {
		amount := event.MemberPrice.Amount()
		memberFils = &amount
	}

	return []any{
		event.ID, event.Version, event.Slug, event.Title, event.Description,
		event.BannerURL, event.Type.String(),
		event.Venue.Name, event.Venue.Address, event.Venue.City,
		event.StartTime, event.EndTime, event.Capacity,
		event.IsPaid, regularFils, memberFils, currency,
		event.RegisteredCount, string(event.Status),
	}
}

func (db *DB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.NewEventDoesNotExistsError(fmt.Sprintf("no event with id %s", id), err)
		}
		return events.Event{}, events.NewFailedToFetchError("failed to get event", err)
	}
	return event, nil
}

func (db *DB) GetEventBySlug(ctx context.Context, slug string) (events.Event, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.NewEventDoesNotExistsError(fmt.Sprintf("no event with slug %q", slug), err)
		}
		return events.Event{}, events.NewFailedToFetchError("failed to get event by slug", err)
	}
	return event, nil
}

func (db *DB) ListEvents(ctx context.Context, params events.ListParams) (events.ListEventsResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}

	var conditions []string
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Search != "" {
		placeholder := arg("%" + params.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR venue_name ILIKE %s)", placeholder, placeholder, placeholder))
	}
	if params.Type != nil {
		conditions = append(conditions, "event_type = "+arg(params.Type.String()))
	}
	if params.UpcomingOnly {
		conditions = append(conditions, "start_time > now()")
		conditions = append(conditions, "status NOT IN ('cancelled', 'completed')")
	}

	query := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC"
	query += " LIMIT " + arg(limit) + " OFFSET " + arg((page-1)*limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return events.ListEventsResponse{}, events.NewFailedToFetchError("failed to list events", err)
	}
	defer rows.Close()

	var resp events.ListEventsResponse
	for rows.Next() {
		var total int
		event, err := scanEvent(rows, &total)
		if err != nil {
			return events.ListEventsResponse{}, events.NewFailedToFetchError("failed to scan event", err)
		}
		resp.Data = append(resp.Data, event)
		resp.Total = total
	}
	if err := rows.Err(); err != nil {
		return events.ListEventsResponse{}, events.NewFailedToFetchError("failed to list events", err)
	}

	if resp.Data == nil {
		// An empty page past the end still needs the real total.
		countQuery := `SELECT COUNT(*) FROM events`
		if len(conditions) > 0 {
			countQuery += " WHERE " + strings.Join(conditions, " AND ")
		}
		if err := db.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&resp.Total); err != nil {
			return events.ListEventsResponse{}, events.NewFailedToFetchError("failed to count events", err)
		}
	}
	return resp, nil
}

func (db *DB) CreateEvent(ctx context.Context, event events.Event) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		eventWriteArgs(event)...,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return events.NewEventAlreadyExistsError(fmt.Sprintf("event with slug %q already exists", event.Slug), err)
		}
		return events.NewFailedToWriteError("failed to create event", err)
	}
	return nil
}

// UpdateEvent writes the event only if nobody else has bumped the version
// since it was read.
func (db *DB) UpdateEvent(ctx context.Context, event events.Event) error {
	tag, err := db.pool.Exec(ctx, `
		UPDATE events SET
			version = $2, slug = $3, title = $4, description = $5, banner_url = $6,
			event_type = $7, venue_name = $8, venue_address = $9, venue_city = $10,
			start_time = $11, end_time = $12, capacity = $13, is_paid = $14,
			regular_price_fils = $15, member_price_fils = $16, currency = $17,
			registered_count = $18, status = $19
		WHERE id = $1 AND version = $2 - 1`,
		eventWriteArgs(event)...,
	)
	if err != nil {
		return events.NewFailedToWriteError("failed to update event", err)
	}
	if tag.RowsAffected() == 0 {
		return events.NewFailedToWriteError("event was modified concurrently", nil)
	}
	return nil
}
