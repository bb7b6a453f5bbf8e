package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/registration"
)

const memberColumns = `id, event_id, user_id, token, payment_status, price_paid_fils, currency, invoice_id, joined_at, checked_in_at`

func scanEventMember(row pgx.Row) (registration.EventMember, error) {
	var member registration.EventMember
	var status string
	var pricePaidFils *int64
	var currency string
	err := row.Scan(
		&member.ID, &member.EventID, &member.UserID, &member.Token,
		&status, &pricePaidFils, &currency, &member.InvoiceID,
		&member.JoinedAt, &member.CheckedInAt,
	)
	if err != nil {
		return registration.EventMember{}, err
	}

	paymentStatus, ok := registration.ParsePaymentStatus(status)
	if !ok {
		return registration.EventMember{}, registration.NewFailedToTranslateToDBModelError(fmt.Sprintf("unknown payment status %q", status), nil)
	}
	member.PaymentStatus = paymentStatus
	if pricePaidFils != nil {
		member.PricePaid = money.New(*pricePaidFils, currency)
	}
	return member, nil
}

// CreateEventMember inserts the registration and writes back the event's
// bumped counters in one transaction, with an optimistic version check so two
// racing joins cannot both take the last seat.
func (db *DB) CreateEventMember(ctx context.Context, member registration.EventMember, event events.Event) (err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return registration.NewFailedToWriteError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var pricePaidFils *int64
	currency := money.BHD
	if member.PricePaid != nil {
		amount := member.PricePaid.Amount()
		pricePaidFils = &amount
		currency = member.PricePaid.Currency().Code
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		member.ID, member.EventID, member.UserID, member.Token,
		member.PaymentStatus.String(), pricePaidFils, currency, member.InvoiceID,
		member.JoinedAt, member.CheckedInAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return registration.NewMemberAlreadyExistsError("user already joined this event", err)
		}
		return registration.NewFailedToWriteError("failed to create event member", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE events SET registered_count = $2, version = $3
		WHERE id = $1 AND version = $3 - 1`,
		event.ID, event.RegisteredCount, event.Version,
	)
	if err != nil {
		return registration.NewFailedToWriteError("failed to update event counts", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.NewFailedToWriteError("event was modified concurrently", nil)
	}

	if err = tx.Commit(ctx); err != nil {
		return registration.NewFailedToWriteError("failed to commit transaction", err)
	}
	return nil
}

func (db *DB) GetEventMember(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (registration.EventMember, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM event_members WHERE event_id = $1 AND user_id = $2`, eventID, userID)

	member, err := scanEventMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.EventMember{}, registration.NewMemberDoesNotExistError("user has not joined this event", err)
		}
		return registration.EventMember{}, registration.NewFailedToFetchError("failed to get event member", err)
	}
	return member, nil
}

func (db *DB) GetEventMemberByToken(ctx context.Context, token string) (registration.EventMember, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM event_members WHERE token = $1`, token)

	member, err := scanEventMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.EventMember{}, registration.NewMemberDoesNotExistError(fmt.Sprintf("no registration with token %q", token), err)
		}
		return registration.EventMember{}, registration.NewFailedToFetchError("failed to get event member by token", err)
	}
	return member, nil
}

func (db *DB) ListEventMembersForUser(ctx context.Context, userID uuid.UUID) ([]registration.EventMember, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+memberColumns+` FROM event_members WHERE user_id = $1 ORDER BY joined_at DESC`, userID)
	if err != nil {
		return nil, registration.NewFailedToFetchError("failed to list event members", err)
	}
	defer rows.Close()

	var members []registration.EventMember
	for rows.Next() {
		member, err := scanEventMember(rows)
		if err != nil {
			return nil, registration.NewFailedToFetchError("failed to scan event member", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, registration.NewFailedToFetchError("failed to list event members", err)
	}
	return members, nil
}

func (db *DB) SetInvoice(ctx context.Context, memberID uuid.UUID, invoiceID string) error {
	tag, err := db.pool.Exec(ctx, `UPDATE event_members SET invoice_id = $2 WHERE id = $1`, memberID, invoiceID)
	if err != nil {
		return registration.NewFailedToWriteError("failed to set invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.NewMemberDoesNotExistError("no registration to set invoice on", nil)
	}
	return nil
}

func (db *DB) MarkPaid(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error {
	var pricePaidFils *int64
	currency := money.BHD
	if pricePaid != nil {
		amount := pricePaid.Amount()
		pricePaidFils = &amount
		currency = pricePaid.Currency().Code
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE event_members SET payment_status = 'paid', price_paid_fils = $2, currency = $3, invoice_id = $4
		WHERE id = $1`,
		memberID, pricePaidFils, currency, invoiceID,
	)
	if err != nil {
		return registration.NewFailedToWriteError("failed to mark registration paid", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.NewMemberDoesNotExistError("no registration to mark paid", nil)
	}
	return nil
}

func (db *DB) MarkCheckedIn(ctx context.Context, memberID uuid.UUID, at time.Time) error {
	tag, err := db.pool.Exec(ctx, `UPDATE event_members SET checked_in_at = $2 WHERE id = $1 AND checked_in_at IS NULL`, memberID, at)
	if err != nil {
		return registration.NewFailedToWriteError("failed to mark registration checked in", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.NewAlreadyCheckedInError("registration was already checked in")
	}
	return nil
}
