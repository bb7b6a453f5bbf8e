package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gulf-dental-association/member-portal/users"
)

const userColumns = `id, email, full_name, mobile, role, membership_type, membership_expiry, password_hash, created_at`

func scanUser(row pgx.Row) (users.User, error) {
	var user users.User
	var role, membershipType string
	err := row.Scan(
		&user.ID, &user.Email, &user.FullName, &user.Mobile,
		&role, &membershipType, &user.MembershipExpiry,
		&user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return users.User{}, err
	}
	user.Role = users.Role(role)
	user.MembershipType = users.MembershipType(membershipType)
	return user, nil
}

func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (users.User, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.NewUserDoesNotExistError(fmt.Sprintf("no user with id %s", id), err)
		}
		return users.User{}, users.NewFailedToFetchError("failed to get user", err)
	}
	return user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (users.User, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.NewUserDoesNotExistError(fmt.Sprintf("no user with email %q", email), err)
		}
		return users.User{}, users.NewFailedToFetchError("failed to get user by email", err)
	}
	return user, nil
}

func (db *DB) CreateUser(ctx context.Context, user users.User) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, strings.ToLower(user.Email), user.FullName, user.Mobile,
		string(user.Role), string(user.MembershipType), user.MembershipExpiry,
		user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return users.NewUserAlreadyExistsError(fmt.Sprintf("user with email %q already exists", user.Email), err)
		}
		return users.NewFailedToWriteError("failed to create user", err)
	}
	return nil
}
