// Package postgres implements the events, users, and registration
// repositories on PostgreSQL using pgx directly.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/registration"
	"github.com/gulf-dental-association/member-portal/users"
)

var _ events.Repository = &DB{}
var _ users.Repository = &DB{}
var _ registration.Repository = &DB{}

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}
