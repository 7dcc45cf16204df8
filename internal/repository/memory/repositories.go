package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type userRepository struct {
	store  *Store
	access accessor
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	return r.access(func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == user.Username {
				return &repository.DuplicateError{Constraint: repository.ConstraintUsername}
			}
			if existing.Email == user.Email {
				return &repository.DuplicateError{Constraint: repository.ConstraintEmail}
			}
		}
		now := r.store.now()
		user.ID = r.store.newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		st.writableUsers()[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var users []domain.User
	err := r.access(func(st *state) error {
		for _, u := range st.users {
			if u.Role == role {
				users = append(users, u)
			}
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, err
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	users, err := r.ListByRole(ctx, role)
	return len(users), err
}

func (r *userRepository) find(match func(domain.User) bool) (*domain.User, error) {
	var found *domain.User
	err := r.access(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				found = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

type lotRepository struct {
	store  *Store
	access accessor
}

func (r *lotRepository) Create(_ context.Context, lot *domain.ParkingLot) error {
	return r.access(func(st *state) error {
		now := r.store.now()
		lot.ID = r.store.newID()
		lot.CreatedAt = now
		lot.UpdatedAt = now
		stored := *lot
		stored.Occupancy = nil
		st.writableLots()[lot.ID] = stored
		return nil
	})
}

func (r *lotRepository) Update(_ context.Context, lot *domain.ParkingLot) error {
	return r.access(func(st *state) error {
		if _, ok := st.lots[lot.ID]; !ok {
			return repository.ErrNotFound
		}
		lot.UpdatedAt = r.store.now()
		stored := *lot
		stored.Occupancy = nil
		st.writableLots()[lot.ID] = stored
		return nil
	})
}

func (r *lotRepository) Delete(_ context.Context, id string) error {
	return r.access(func(st *state) error {
		if _, ok := st.lots[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.writableLots(), id)
		for spotID, spot := range st.spots {
			if spot.LotID == id {
				st.deleteSpot(spotID)
			}
		}
		return nil
	})
}

// GetByID ignores lock: transactions are already exclusive.
func (r *lotRepository) GetByID(_ context.Context, id string, _ repository.LockMode) (*domain.ParkingLot, error) {
	var found *domain.ParkingLot
	err := r.access(func(st *state) error {
		lot, ok := st.lots[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &lot
		return nil
	})
	return found, err
}

func (r *lotRepository) List(_ context.Context) ([]domain.ParkingLot, error) {
	var lots []domain.ParkingLot
	err := r.access(func(st *state) error {
		for _, lot := range st.lots {
			lots = append(lots, lot)
		}
		return nil
	})
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].CreatedAt.Equal(lots[j].CreatedAt) {
			return lots[i].CreatedAt.Before(lots[j].CreatedAt)
		}
		return lots[i].Name < lots[j].Name
	})
	return lots, err
}

type spotRepository struct {
	store  *Store
	access accessor
}

func (r *spotRepository) CreateRange(_ context.Context, lotID string, from, to int) (int, error) {
	created := 0
	err := r.access(func(st *state) error {
		if _, ok := st.lots[lotID]; !ok {
			return repository.ErrNotFound
		}
		for n := from; n <= to; n++ {
			id := r.store.newID()
			st.writableSpots()[id] = domain.ParkingSpot{ID: id, LotID: lotID, Number: n, Status: domain.SpotAvailable}
			created++
		}
		return nil
	})
	return created, err
}

func (r *spotRepository) GetByID(_ context.Context, id string) (*domain.ParkingSpot, error) {
	var found *domain.ParkingSpot
	err := r.access(func(st *state) error {
		spot, ok := st.spots[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &spot
		return nil
	})
	return found, err
}

func (r *spotRepository) ListByLot(_ context.Context, lotID string) ([]domain.ParkingSpot, error) {
	var spots []domain.ParkingSpot
	err := r.access(func(st *state) error {
		spots = spotsOfLot(st, lotID, func(domain.ParkingSpot) bool { return true })
		return nil
	})
	return spots, err
}

func (r *spotRepository) FirstAvailable(_ context.Context, lotID string) (*domain.ParkingSpot, error) {
	var found *domain.ParkingSpot
	err := r.access(func(st *state) error {
		available := spotsOfLot(st, lotID, isAvailable)
		if len(available) == 0 {
			return repository.ErrNotFound
		}
		found = &available[0]
		return nil
	})
	return found, err
}

func (r *spotRepository) AvailableForRemoval(_ context.Context, lotID string, limit int) ([]domain.ParkingSpot, error) {
	var spots []domain.ParkingSpot
	err := r.access(func(st *state) error {
		available := spotsOfLot(st, lotID, isAvailable)
		for i := len(available) - 1; i >= 0 && len(spots) < limit; i-- {
			spots = append(spots, available[i])
		}
		return nil
	})
	return spots, err
}

func (r *spotRepository) SetStatus(_ context.Context, id string, from, to domain.SpotStatus) error {
	return r.access(func(st *state) error {
		spot, ok := st.spots[id]
		if !ok || spot.Status != from {
			return repository.ErrStaleState
		}
		spot.Status = to
		st.writableSpots()[id] = spot
		return nil
	})
}

func (r *spotRepository) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	deleted := 0
	err := r.access(func(st *state) error {
		for _, id := range ids {
			if _, ok := st.spots[id]; ok {
				st.deleteSpot(id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (r *spotRepository) MaxNumber(_ context.Context, lotID string) (int, error) {
	highest := 0
	err := r.access(func(st *state) error {
		for _, spot := range st.spots {
			if spot.LotID == lotID && spot.Number > highest {
				highest = spot.Number
			}
		}
		return nil
	})
	return highest, err
}

func (r *spotRepository) Occupancy(ctx context.Context, lotID string) (domain.Occupancy, error) {
	all, err := r.OccupancyByLot(ctx)
	if err != nil {
		return domain.Occupancy{}, err
	}
	return all[lotID], nil
}

func (r *spotRepository) OccupancyByLot(_ context.Context) (map[string]domain.Occupancy, error) {
	result := make(map[string]domain.Occupancy)
	err := r.access(func(st *state) error {
		for _, spot := range st.spots {
			occ := result[spot.LotID]
			occ.Total++
			if spot.Status == domain.SpotOccupied {
				occ.Occupied++
			}
			result[spot.LotID] = occ
		}
		return nil
	})
	return result, err
}

func isAvailable(spot domain.ParkingSpot) bool {
	return spot.Status == domain.SpotAvailable
}

// spotsOfLot returns the matching spots of a lot ordered by number.
func spotsOfLot(st *state, lotID string, match func(domain.ParkingSpot) bool) []domain.ParkingSpot {
	var spots []domain.ParkingSpot
	for _, spot := range st.spots {
		if spot.LotID == lotID && match(spot) {
			spots = append(spots, spot)
		}
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].Number < spots[j].Number })
	return spots
}

type reservationRepository struct {
	store  *Store
	access accessor
}

func (r *reservationRepository) Create(_ context.Context, res *domain.Reservation) error {
	return r.access(func(st *state) error {
		if _, ok := st.spots[res.SpotID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.users[res.UserID]; !ok {
			return repository.ErrNotFound
		}
		for _, existing := range st.reservations {
			if existing.SpotID == res.SpotID && existing.LeftAt == nil {
				return &repository.DuplicateError{Constraint: "reservations_one_active_per_spot"}
			}
		}
		res.ID = r.store.newID()
		stored := *res
		stored.LotID = ""
		stored.SpotNumber = 0
		st.writableReservations()[res.ID] = stored
		return nil
	})
}

func (r *reservationRepository) GetByID(_ context.Context, id string, _ repository.LockMode) (*domain.Reservation, error) {
	var found *domain.Reservation
	err := r.access(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		res = st.withSpot(res)
		found = &res
		return nil
	})
	return found, err
}

func (r *reservationRepository) Close(_ context.Context, id string, leftAt time.Time) error {
	return r.access(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		if res.LeftAt != nil {
			return repository.ErrStaleState
		}
		ts := leftAt
		res.LeftAt = &ts
		st.writableReservations()[id] = res
		return nil
	})
}

func (r *reservationRepository) ListByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	var result []domain.Reservation
	err := r.access(func(st *state) error {
		for _, res := range st.reservations {
			if res.UserID == userID {
				result = append(result, st.withSpot(res))
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ParkedAt.Equal(result[j].ParkedAt) {
			return result[i].ParkedAt.After(result[j].ParkedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, err
}

func (r *reservationRepository) ListActiveByLot(_ context.Context, lotID string) ([]domain.Reservation, error) {
	var result []domain.Reservation
	err := r.access(func(st *state) error {
		for _, res := range st.reservations {
			res = st.withSpot(res)
			if res.LotID == lotID && res.LeftAt == nil {
				result = append(result, res)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].SpotNumber < result[j].SpotNumber })
	return result, err
}
