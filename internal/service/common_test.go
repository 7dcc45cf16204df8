package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", repository.ErrNotFound, apperrors.CodeNotFound},
		{"stale state", repository.ErrStaleState, apperrors.CodeConflict},
		{"duplicate", &repository.DuplicateError{Constraint: "x"}, apperrors.CodeConflict},
		{"value too long", fmt.Errorf("%w: varying(100)", repository.ErrValueTooLong), apperrors.CodeValidation},
		{"cancelled", context.Canceled, apperrors.CodeRequestCancelled},
		{"domain error passes through", apperrors.NewLotNotEmpty("lot", 1), apperrors.CodeLotNotEmpty},
		{"unknown", errors.New("boom"), apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperrors.HasCode(translate(tt.err, "parking lot", "id"), tt.code))
		})
	}
	assert.NoError(t, translate(nil, "parking lot", "id"))
}
