package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Structured error kinds surfaced by the store. Callers branch with
// errors.Is instead of inspecting driver error strings.
var (
	ErrNotFound        = errors.New("record not found")
	ErrSchemaMissing   = errors.New("schema missing")
	ErrDuplicateSerial = errors.New("duplicate serial number")
	ErrDuplicatePlate  = errors.New("duplicate plate number")
)

const (
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// classify maps driver errors onto the store's error kinds. This is the only
// place Postgres error codes are inspected.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case "tires_serial_number_uidx":
				return ErrDuplicateSerial
			case "vehicles_plate_number_uidx":
				return ErrDuplicatePlate
			}
		}
	}
	return err
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

func datePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format("2006-01-02")
	return &v
}
