package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is matched by *DuplicateError.
	ErrDuplicate = errors.New("repository: duplicate entry")
	// ErrStaleState is returned by conditional updates whose precondition no
	// longer holds because another transaction got there first.
	ErrStaleState = errors.New("repository: row changed concurrently")
	// ErrConflict wraps serialization failures and deadlocks reported by the database.
	ErrConflict = errors.New("repository: transaction conflict")
	// ErrValueTooLong is returned when a string exceeds its column width.
	ErrValueTooLong = errors.New("repository: value too long")
)

// DuplicateError reports a unique constraint violation.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "repository: duplicate entry for " + e.Constraint
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Unique constraint names shared by every store implementation.
const (
	ConstraintUsername = "users_username_key"
	ConstraintEmail    = "users_email_key"
)

// LockMode selects the row lock taken by a read inside a transaction.
type LockMode int

const (
	LockNone LockMode = iota
	LockShare
	LockUpdate
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// ParkingLotRepository encapsulates lot persistence.
type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) error
	Update(ctx context.Context, lot *domain.ParkingLot) error
	// Delete removes the lot; its spots and their reservations go with it.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string, lock LockMode) (*domain.ParkingLot, error)
	List(ctx context.Context) ([]domain.ParkingLot, error)
}

// ParkingSpotRepository encapsulates spot persistence.
type ParkingSpotRepository interface {
	// CreateRange inserts AVAILABLE spots numbered from..to inclusive.
	CreateRange(ctx context.Context, lotID string, from, to int) (int, error)
	GetByID(ctx context.Context, id string) (*domain.ParkingSpot, error)
	ListByLot(ctx context.Context, lotID string) ([]domain.ParkingSpot, error)
	// FirstAvailable locks and returns the lowest numbered AVAILABLE spot,
	// skipping spots locked by other transactions. ErrNotFound when none.
	FirstAvailable(ctx context.Context, lotID string) (*domain.ParkingSpot, error)
	// AvailableForRemoval locks up to limit AVAILABLE spots, highest numbers first.
	AvailableForRemoval(ctx context.Context, lotID string, limit int) ([]domain.ParkingSpot, error)
	// SetStatus moves a spot from one status to another, returning
	// ErrStaleState if the spot is not currently in status from.
	SetStatus(ctx context.Context, id string, from, to domain.SpotStatus) error
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	MaxNumber(ctx context.Context, lotID string) (int, error)
	Occupancy(ctx context.Context, lotID string) (domain.Occupancy, error)
	OccupancyByLot(ctx context.Context) (map[string]domain.Occupancy, error)
}

// ReservationRepository encapsulates reservation persistence. Reads fill in
// the LotID and SpotNumber read-model fields.
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id string, lock LockMode) (*domain.Reservation, error)
	// Close sets the leaving timestamp, returning ErrStaleState if it is already set.
	Close(ctx context.Context, id string, leftAt time.Time) error
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	ListActiveByLot(ctx context.Context, lotID string) ([]domain.Reservation, error)
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Users        UserRepository
	Lots         ParkingLotRepository
	Spots        ParkingSpotRepository
	Reservations ReservationRepository
}

// TxFunc is the body of a transaction.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store is the persistence gateway used by services.
type Store interface {
	// WithinTx runs fn in a single transaction. Any error returned by fn rolls
	// the transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn TxFunc) error
	// Repositories returns repositories that run outside a transaction.
	Repositories() Repositories
}
