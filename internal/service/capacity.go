package service

import (
	"context"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// resizeResult describes what a capacity change did to the spot pool.
type resizeResult struct {
	OldCapacity int
	NewCapacity int
	Added       int
	Removed     int
}

func (r resizeResult) changed() bool {
	return r.Added > 0 || r.Removed > 0
}

func validateCapacity(capacity int) error {
	if capacity < 0 || capacity > domain.MaxLotCapacity {
		return apperrors.NewValidationError("maximum_number_of_spots out of range", map[string]any{
			"field": "maximum_number_of_spots",
			"min":   0,
			"max":   domain.MaxLotCapacity,
		})
	}
	return nil
}

// resizeSpots grows or shrinks the spot pool of a lot that the caller holds
// an exclusive lock on. New spots are numbered after the current maximum;
// shrinking removes the highest numbered available spots and never touches
// an occupied one. lot.Capacity is updated in memory only.
func resizeSpots(ctx context.Context, repos repository.Repositories, lot *domain.ParkingLot, newCapacity int) (resizeResult, error) {
	occ, err := repos.Spots.Occupancy(ctx, lot.ID)
	if err != nil {
		return resizeResult{}, err
	}
	result := resizeResult{OldCapacity: occ.Total, NewCapacity: newCapacity}

	switch {
	case newCapacity > occ.Total:
		highest, err := repos.Spots.MaxNumber(ctx, lot.ID)
		if err != nil {
			return resizeResult{}, err
		}
		want := newCapacity - occ.Total
		created, err := repos.Spots.CreateRange(ctx, lot.ID, highest+1, highest+want)
		if err != nil {
			return resizeResult{}, err
		}
		if created != want {
			return resizeResult{}, repository.ErrStaleState
		}
		result.Added = created

	case newCapacity < occ.Total:
		want := occ.Total - newCapacity
		if occ.Available() < want {
			return resizeResult{}, apperrors.NewInsufficientRemovableCapacity(lot.ID, want, occ.Available())
		}
		spots, err := repos.Spots.AvailableForRemoval(ctx, lot.ID, want)
		if err != nil {
			return resizeResult{}, err
		}
		if len(spots) < want {
			return resizeResult{}, apperrors.NewInsufficientRemovableCapacity(lot.ID, want, len(spots))
		}
		ids := make([]string, 0, len(spots))
		for _, spot := range spots {
			ids = append(ids, spot.ID)
		}
		deleted, err := repos.Spots.DeleteByIDs(ctx, ids)
		if err != nil {
			return resizeResult{}, err
		}
		if deleted != want {
			return resizeResult{}, repository.ErrStaleState
		}
		result.Removed = deleted
	}

	lot.Capacity = newCapacity
	return result, nil
}
