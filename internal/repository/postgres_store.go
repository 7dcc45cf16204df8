package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithinTx runs fn in a READ COMMITTED transaction. Row locks taken by the
// repositories provide per-spot and per-lot serialization.
func (s *PostgresStore) WithinTx(ctx context.Context, fn TxFunc) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, newPostgresRepositories(tx))
	})
	return mapError(err)
}

// Repositories returns pool-backed repositories.
func (s *PostgresStore) Repositories() Repositories {
	return newPostgresRepositories(s.pool)
}

func newPostgresRepositories(db DBTX) Repositories {
	return Repositories{
		Users:        NewUserRepository(db),
		Lots:         NewParkingLotRepository(db),
		Spots:        NewParkingSpotRepository(db),
		Reservations: NewReservationRepository(db),
	}
}

// mapError translates driver errors into repository sentinels. Errors that
// did not come from the driver pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &DuplicateError{Constraint: pgErr.ConstraintName}
		case "23503", "22P02": // foreign_key_violation, invalid_text_representation (malformed uuid)
			return ErrNotFound
		case "22001": // string_data_right_truncation
			return fmt.Errorf("%w: %s", ErrValueTooLong, pgErr.Message)
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}

func lockClause(lock LockMode) string {
	switch lock {
	case LockShare:
		return " FOR SHARE"
	case LockUpdate:
		return " FOR UPDATE"
	default:
		return ""
	}
}
