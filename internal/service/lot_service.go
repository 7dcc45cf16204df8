package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// Column widths of parking_lots.
const (
	maxLotNameLength = 100
	maxPinCodeLength = 10
)

// LotService manages the lot lifecycle and capacity of parking lots.
type LotService struct {
	deps   Dependencies
	events eventPublisher
}

// LotInput describes the editable attributes of a lot.
type LotInput struct {
	Name     string
	Price    float64
	Address  string
	PinCode  string
	Capacity int
}

// LotDetails is the administrator view of one lot.
type LotDetails struct {
	Lot   domain.ParkingLot
	Spots []SpotDetail
}

// SpotDetail pairs a spot with its active reservation, if any.
type SpotDetail struct {
	Spot        domain.ParkingSpot
	Reservation *domain.Reservation
}

// NewLotService constructs the service.
func NewLotService(deps Dependencies) *LotService {
	deps = deps.withDefaults()
	return &LotService{deps: deps, events: deps.publisher()}
}

// CreateLot inserts a lot together with exactly Capacity available spots.
func (s *LotService) CreateLot(ctx context.Context, actor domain.Actor, input LotInput) (*domain.ParkingLot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := normalizeLotInput(input)
	if err != nil {
		return nil, err
	}

	lot := &domain.ParkingLot{
		Name:     input.Name,
		Price:    input.Price,
		Address:  input.Address,
		PinCode:  input.PinCode,
		Capacity: input.Capacity,
	}
	err = s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Lots.Create(ctx, lot); err != nil {
			return err
		}
		created, err := repos.Spots.CreateRange(ctx, lot.ID, 1, lot.Capacity)
		if err != nil {
			return err
		}
		if created != lot.Capacity {
			return apperrors.NewInternalError(nil)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "parking lot", lot.ID)
	}
	lot.Occupancy = &domain.Occupancy{Total: lot.Capacity}

	s.deps.Logger.Info("lot created",
		zap.String("lot_id", lot.ID),
		zap.String("name", lot.Name),
		zap.Int("capacity", lot.Capacity))
	s.deps.Metrics.RecordSpotsChanged(lot.Capacity, 0)
	s.events.publish(ctx, events.EventLotCreated, lot.ID, actor, events.LotCreatedPayload{
		Name:     lot.Name,
		Price:    lot.Price,
		Capacity: lot.Capacity,
	})
	return lot, nil
}

// ResizeLot changes the number of spots of a lot.
func (s *LotService) ResizeLot(ctx context.Context, actor domain.Actor, lotID string, newCapacity int) (*domain.ParkingLot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateCapacity(newCapacity); err != nil {
		return nil, err
	}

	var (
		lot    *domain.ParkingLot
		result resizeResult
	)
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		lot, err = repos.Lots.GetByID(ctx, lotID, repository.LockUpdate)
		if err != nil {
			return err
		}
		if result, err = resizeSpots(ctx, repos, lot, newCapacity); err != nil {
			return err
		}
		if err := repos.Lots.Update(ctx, lot); err != nil {
			return err
		}
		occ, err := repos.Spots.Occupancy(ctx, lot.ID)
		lot.Occupancy = &occ
		return err
	})
	if err != nil {
		return nil, translate(err, "parking lot", lotID)
	}

	s.recordResize(ctx, actor, lot, result)
	return lot, nil
}

// UpdateLot edits lot attributes and applies a capacity change in the same
// transaction. Existing reservations keep the price they were created with.
func (s *LotService) UpdateLot(ctx context.Context, actor domain.Actor, lotID string, input LotInput) (*domain.ParkingLot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := normalizeLotInput(input)
	if err != nil {
		return nil, err
	}

	var (
		lot      *domain.ParkingLot
		oldPrice float64
		result   resizeResult
	)
	err = s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		lot, err = repos.Lots.GetByID(ctx, lotID, repository.LockUpdate)
		if err != nil {
			return err
		}
		oldPrice = lot.Price
		lot.Name = input.Name
		lot.Price = input.Price
		lot.Address = input.Address
		lot.PinCode = input.PinCode
		if result, err = resizeSpots(ctx, repos, lot, input.Capacity); err != nil {
			return err
		}
		if err := repos.Lots.Update(ctx, lot); err != nil {
			return err
		}
		occ, err := repos.Spots.Occupancy(ctx, lot.ID)
		lot.Occupancy = &occ
		return err
	})
	if err != nil {
		return nil, translate(err, "parking lot", lotID)
	}

	s.deps.Logger.Info("lot updated", zap.String("lot_id", lot.ID), zap.Float64("price", lot.Price))
	s.events.publish(ctx, events.EventLotUpdated, lot.ID, actor, events.LotUpdatedPayload{
		Name:     lot.Name,
		OldPrice: oldPrice,
		NewPrice: lot.Price,
	})
	if result.changed() {
		s.recordResize(ctx, actor, lot, result)
	}
	return lot, nil
}

func (s *LotService) recordResize(ctx context.Context, actor domain.Actor, lot *domain.ParkingLot, result resizeResult) {
	s.deps.Logger.Info("lot resized",
		zap.String("lot_id", lot.ID),
		zap.Int("old_capacity", result.OldCapacity),
		zap.Int("new_capacity", result.NewCapacity),
		zap.Int("spots_added", result.Added),
		zap.Int("spots_removed", result.Removed))
	s.deps.Metrics.RecordSpotsChanged(result.Added, result.Removed)
	s.events.publish(ctx, events.EventLotResized, lot.ID, actor, events.LotResizedPayload{
		OldCapacity:  result.OldCapacity,
		NewCapacity:  result.NewCapacity,
		SpotsAdded:   result.Added,
		SpotsRemoved: result.Removed,
	})
}

// DeleteLot removes an unoccupied lot with its spots and their history.
func (s *LotService) DeleteLot(ctx context.Context, actor domain.Actor, lotID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var (
		name  string
		spots int
	)
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lot, err := repos.Lots.GetByID(ctx, lotID, repository.LockUpdate)
		if err != nil {
			return err
		}
		occ, err := repos.Spots.Occupancy(ctx, lotID)
		if err != nil {
			return err
		}
		if occ.Occupied > 0 {
			return apperrors.NewLotNotEmpty(lotID, occ.Occupied)
		}
		name, spots = lot.Name, occ.Total
		return repos.Lots.Delete(ctx, lotID)
	})
	if err != nil {
		return translate(err, "parking lot", lotID)
	}

	s.deps.Logger.Info("lot deleted", zap.String("lot_id", lotID), zap.Int("spots_removed", spots))
	s.deps.Metrics.RecordSpotsChanged(0, spots)
	s.events.publish(ctx, events.EventLotDeleted, lotID, actor, events.LotDeletedPayload{
		Name:         name,
		SpotsRemoved: spots,
	})
	return nil
}

// GetLot returns one lot with its current occupancy.
func (s *LotService) GetLot(ctx context.Context, lotID string) (*domain.ParkingLot, error) {
	var lot *domain.ParkingLot
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		if lot, err = repos.Lots.GetByID(ctx, lotID, repository.LockNone); err != nil {
			return err
		}
		occ, err := repos.Spots.Occupancy(ctx, lotID)
		lot.Occupancy = &occ
		return err
	})
	if err != nil {
		return nil, translate(err, "parking lot", lotID)
	}
	return lot, nil
}

// ListLots returns every lot with its occupancy.
func (s *LotService) ListLots(ctx context.Context) ([]domain.ParkingLot, error) {
	var lots []domain.ParkingLot
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		lots, err = listLotsWithOccupancy(ctx, repos)
		return err
	})
	if err != nil {
		return nil, translate(err, "parking lot", "")
	}
	return lots, nil
}

// LotDetails returns a lot, its spots ordered by number and the active
// reservation of each occupied spot.
func (s *LotService) LotDetails(ctx context.Context, actor domain.Actor, lotID string) (*LotDetails, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	details := &LotDetails{}
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lot, err := repos.Lots.GetByID(ctx, lotID, repository.LockNone)
		if err != nil {
			return err
		}
		spots, err := repos.Spots.ListByLot(ctx, lotID)
		if err != nil {
			return err
		}
		active, err := repos.Reservations.ListActiveByLot(ctx, lotID)
		if err != nil {
			return err
		}

		bySpot := make(map[string]*domain.Reservation, len(active))
		for i := range active {
			bySpot[active[i].SpotID] = &active[i]
		}
		occ := domain.Occupancy{Total: len(spots)}
		details.Spots = make([]SpotDetail, 0, len(spots))
		for _, spot := range spots {
			if spot.Status == domain.SpotOccupied {
				occ.Occupied++
			}
			details.Spots = append(details.Spots, SpotDetail{Spot: spot, Reservation: bySpot[spot.ID]})
		}
		lot.Occupancy = &occ
		details.Lot = *lot
		return nil
	})
	if err != nil {
		return nil, translate(err, "parking lot", lotID)
	}
	return details, nil
}

func listLotsWithOccupancy(ctx context.Context, repos repository.Repositories) ([]domain.ParkingLot, error) {
	lots, err := repos.Lots.List(ctx)
	if err != nil {
		return nil, err
	}
	occupancy, err := repos.Spots.OccupancyByLot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lots {
		occ := occupancy[lots[i].ID]
		lots[i].Occupancy = &occ
	}
	return lots, nil
}

func normalizeLotInput(input LotInput) (LotInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.PinCode = strings.TrimSpace(input.PinCode)

	missing := []string{}
	if input.Name == "" {
		missing = append(missing, "prime_location_name")
	}
	if input.Address == "" {
		missing = append(missing, "address")
	}
	if input.PinCode == "" {
		missing = append(missing, "pin_code")
	}
	if len(missing) > 0 {
		return input, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	tooLong := map[string]any{}
	if utf8.RuneCountInString(input.Name) > maxLotNameLength {
		tooLong["prime_location_name"] = maxLotNameLength
	}
	if utf8.RuneCountInString(input.PinCode) > maxPinCodeLength {
		tooLong["pin_code"] = maxPinCodeLength
	}
	if len(tooLong) > 0 {
		return input, apperrors.NewValidationError("fields exceed maximum length", map[string]any{"max_length": tooLong})
	}
	if input.Price < 0 || math.IsNaN(input.Price) || math.IsInf(input.Price, 0) {
		return input, apperrors.NewValidationError("price must be a non-negative number", map[string]any{"field": "price"})
	}
	if err := validateCapacity(input.Capacity); err != nil {
		return input, err
	}
	return input, nil
}
