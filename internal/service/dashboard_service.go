package service

import (
	"context"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

// DashboardService builds the read models shown on the dashboards.
type DashboardService struct {
	deps Dependencies
}

// AdminSummary is the administrator overview.
type AdminSummary struct {
	TotalLots  int
	TotalUsers int
	Occupancy  domain.Occupancy
	Lots       []domain.ParkingLot
	Users      []domain.User
}

// UserDashboard is what a parking user sees after logging in.
type UserDashboard struct {
	Lots         []domain.ParkingLot
	Reservations []domain.Reservation
}

// NewDashboardService constructs the service.
func NewDashboardService(deps Dependencies) *DashboardService {
	return &DashboardService{deps: deps.withDefaults()}
}

// AdminSummary counts lots, users and spots across the whole system.
func (s *DashboardService) AdminSummary(ctx context.Context, actor domain.Actor) (*AdminSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	summary := &AdminSummary{}
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lots, err := listLotsWithOccupancy(ctx, repos)
		if err != nil {
			return err
		}
		users, err := repos.Users.ListByRole(ctx, domain.RoleUser)
		if err != nil {
			return err
		}
		for _, lot := range lots {
			summary.Occupancy.Total += lot.Occupancy.Total
			summary.Occupancy.Occupied += lot.Occupancy.Occupied
		}
		summary.Lots = lots
		summary.Users = users
		summary.TotalLots = len(lots)
		summary.TotalUsers = len(users)
		return nil
	})
	if err != nil {
		return nil, translate(err, "dashboard", "")
	}
	return summary, nil
}

// UserDashboard lists lots with availability and the actor's reservations.
func (s *DashboardService) UserDashboard(ctx context.Context, actor domain.Actor) (*UserDashboard, error) {
	dashboard := &UserDashboard{}
	err := s.deps.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		lots, err := listLotsWithOccupancy(ctx, repos)
		if err != nil {
			return err
		}
		reservations, err := repos.Reservations.ListByUser(ctx, actor.UserID)
		if err != nil {
			return err
		}
		dashboard.Lots = lots
		dashboard.Reservations = reservations
		return nil
	})
	if err != nil {
		return nil, translate(err, "dashboard", "")
	}
	return dashboard, nil
}
