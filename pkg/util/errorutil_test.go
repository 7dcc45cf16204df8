package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("reserve: %w", NewNoAvailableSpot("lot-1"))

		domainErr := ToDomainError(err)
		require.NotNil(t, domainErr)
		assert.Equal(t, CodeNoAvailableSpot, domainErr.Code)
		assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
		assert.Equal(t, "lot-1", domainErr.Details["lot_id"])
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		cause := errors.New("boom")
		domainErr := ToDomainError(cause)

		assert.Equal(t, CodeInternal, domainErr.Code)
		assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
		assert.ErrorIs(t, domainErr, cause)
	})
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewLotNotEmpty("lot", 1), CodeLotNotEmpty))
	assert.True(t, HasCode(fmt.Errorf("wrap: %w", NewAlreadyReleased("r")), CodeAlreadyReleased))
	assert.False(t, HasCode(NewLotNotEmpty("lot", 1), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestAuthenticationAndPermissionStatuses(t *testing.T) {
	forbidden := ToDomainError(NewForbidden("not your reservation"))
	assert.Equal(t, CodeForbidden, forbidden.Code)
	assert.Equal(t, http.StatusForbidden, forbidden.HTTPStatus)

	unauthorized := ToDomainError(NewUnauthorized("invalid token"))
	assert.Equal(t, CodeUnauthorized, unauthorized.Code)
	assert.Equal(t, http.StatusUnauthorized, unauthorized.HTTPStatus)
}

func TestNewConflictIsRetryable(t *testing.T) {
	cause := errors.New("serialization failure")
	err := NewConflict("spot taken concurrently", cause)

	domainErr := ToDomainError(err)
	assert.Equal(t, CodeConflict, domainErr.Code)
	assert.Equal(t, true, domainErr.Details["retryable"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "serialization failure")
}

func TestNewInsufficientRemovableCapacityDetails(t *testing.T) {
	domainErr := ToDomainError(NewInsufficientRemovableCapacity("lot-9", 3, 1))

	assert.Equal(t, 3, domainErr.Details["requested"])
	assert.Equal(t, 1, domainErr.Details["removable"])
}
