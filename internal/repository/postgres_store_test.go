package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, mapError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	})

	t.Run("unique violation keeps the constraint name", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: ConstraintEmail})

		var dup *DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, ConstraintEmail, dup.Constraint)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("malformed ids and dangling references are not found", func(t *testing.T) {
		assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "22P02"}), ErrNotFound)
		assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}), ErrNotFound)
	})

	t.Run("overlong strings are reported as too long", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "22001", Message: "value too long for type character varying(100)"})
		assert.ErrorIs(t, err, ErrValueTooLong)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("serialization failures and deadlocks are conflicts", func(t *testing.T) {
		for _, code := range []string{"40001", "40P01", "55P03"} {
			assert.ErrorIs(t, mapError(&pgconn.PgError{Code: code, Message: "retry"}), ErrConflict, code)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("connection reset")
		assert.Same(t, cause, mapError(cause))
	})
}

func TestLockClause(t *testing.T) {
	assert.Equal(t, "", lockClause(LockNone))
	assert.Equal(t, " FOR SHARE", lockClause(LockShare))
	assert.Equal(t, " FOR UPDATE", lockClause(LockUpdate))
}
