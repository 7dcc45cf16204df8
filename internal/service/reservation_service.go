package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

const maxVehicleNumberLength = 20

// ReservationService allocates spots to users and releases them.
type ReservationService struct {
	deps   Dependencies
	events eventPublisher
}

// NewReservationService constructs the service.
func NewReservationService(deps Dependencies) *ReservationService {
	deps = deps.withDefaults()
	return &ReservationService{deps: deps, events: deps.publisher()}
}

// ReserveSpot assigns the lowest numbered available spot of a lot to the
// actor. The lot price at this moment becomes the reservation's hourly rate.
func (s *ReservationService) ReserveSpot(ctx context.Context, actor domain.Actor, lotID, vehicleNumber string) (*domain.Reservation, error) {
	if actor.Role != domain.RoleUser {
		return nil, apperrors.NewForbidden("only parking users can reserve spots")
	}
	vehicle, err := normalizeVehicleNumber(vehicleNumber)
	if err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err = s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lot, err := repos.Lots.GetByID(ctx, lotID, repository.LockShare)
		if err != nil {
			return translate(err, "parking lot", lotID)
		}
		if _, err := repos.Users.GetByID(ctx, actor.UserID); err != nil {
			return translate(err, "user", actor.UserID)
		}

		spot, err := repos.Spots.FirstAvailable(ctx, lotID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNoAvailableSpot(lotID)
		}
		if err != nil {
			return err
		}
		if err := repos.Spots.SetStatus(ctx, spot.ID, domain.SpotAvailable, domain.SpotOccupied); err != nil {
			return err
		}

		res = &domain.Reservation{
			SpotID:        spot.ID,
			UserID:        actor.UserID,
			VehicleNumber: vehicle,
			ParkingCost:   lot.Price,
			ParkedAt:      s.deps.Clock(),
			LotID:         lot.ID,
			SpotNumber:    spot.Number,
		}
		return repos.Reservations.Create(ctx, res)
	})
	if err != nil {
		err = translate(err, "parking lot", lotID)
		switch {
		case apperrors.HasCode(err, apperrors.CodeNoAvailableSpot):
			s.deps.Metrics.RecordAllocation(observability.AllocationNoSpot)
		case apperrors.HasCode(err, apperrors.CodeConflict):
			s.deps.Metrics.RecordAllocation(observability.AllocationConflict)
			s.deps.Logger.Warn("reservation lost a race", zap.String("lot_id", lotID), zap.Error(err))
		}
		return nil, err
	}

	s.deps.Metrics.RecordAllocation(observability.AllocationGranted)
	s.deps.Logger.Info("spot reserved",
		zap.String("reservation_id", res.ID),
		zap.String("lot_id", res.LotID),
		zap.Int("spot_number", res.SpotNumber),
		zap.String("user_id", res.UserID))
	s.events.publish(ctx, events.EventSpotReserved, res.LotID, actor, events.SpotReservedPayload{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		VehicleNumber: res.VehicleNumber,
		ParkingCost:   res.ParkingCost,
	})
	return res, nil
}

// ReleaseReservation ends the actor's active reservation and frees its spot.
func (s *ReservationService) ReleaseReservation(ctx context.Context, actor domain.Actor, reservationID string) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = repos.Reservations.GetByID(ctx, reservationID, repository.LockUpdate)
		if err != nil {
			return translate(err, "reservation", reservationID)
		}
		if res.UserID != actor.UserID {
			return apperrors.NewForbidden("reservation belongs to another user")
		}
		if !res.Active() {
			return apperrors.NewAlreadyReleased(reservationID)
		}

		leftAt := s.deps.Clock()
		if err := repos.Reservations.Close(ctx, res.ID, leftAt); err != nil {
			return err
		}
		res.LeftAt = &leftAt
		return repos.Spots.SetStatus(ctx, res.SpotID, domain.SpotOccupied, domain.SpotAvailable)
	})
	if err != nil {
		return nil, translate(err, "reservation", reservationID)
	}

	s.deps.Metrics.RecordRelease()
	s.deps.Logger.Info("spot released",
		zap.String("reservation_id", res.ID),
		zap.String("lot_id", res.LotID),
		zap.Int("spot_number", res.SpotNumber))
	s.events.publish(ctx, events.EventSpotReleased, res.LotID, actor, events.SpotReleasedPayload{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		BilledHours:   res.BilledHours(*res.LeftAt),
		AmountDue:     res.AmountDue(*res.LeftAt),
	})
	return res, nil
}

// ListUserReservations returns the actor's reservations, newest first.
func (s *ReservationService) ListUserReservations(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	var result []domain.Reservation
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		result, err = repos.Reservations.ListByUser(ctx, actor.UserID)
		return err
	})
	if err != nil {
		return nil, translate(err, "reservation", "")
	}
	return result, nil
}

func normalizeVehicleNumber(raw string) (string, error) {
	vehicle := strings.ToUpper(strings.TrimSpace(raw))
	if vehicle == "" {
		return "", apperrors.NewValidationError("vehicle_number is required", map[string]any{"field": "vehicle_number"})
	}
	if utf8.RuneCountInString(vehicle) > maxVehicleNumberLength {
		return "", apperrors.NewValidationError("vehicle_number is too long", map[string]any{
			"field": "vehicle_number",
			"max":   maxVehicleNumberLength,
		})
	}
	return vehicle, nil
}
