// Package memory provides an in-process implementation of repository.Store.
// It is used when no Postgres DSN is configured and as the test harness for
// services. Transactions are fully serialized: a single mutex is held for the
// whole transaction, which works on a copy-on-write draft of the state that
// replaces the committed state only when the transaction body succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

// Store is a mutex-guarded in-process repository.Store.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
	newID func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithinTx implements repository.Store.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.fork()
	if err := fn(ctx, s.repositories(func(apply func(*state) error) error {
		return apply(draft)
	})); err != nil {
		return err
	}
	draft.shared = 0
	s.state = draft
	return nil
}

// Repositories implements repository.Store. Each call locks the store for
// its own duration only.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(func(apply func(*state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return apply(s.state)
	})
}

// accessor runs apply against the state visible to a repository.
type accessor func(apply func(*state) error) error

func (s *Store) repositories(access accessor) repository.Repositories {
	return repository.Repositories{
		Users:        &userRepository{store: s, access: access},
		Lots:         &lotRepository{store: s, access: access},
		Spots:        &spotRepository{store: s, access: access},
		Reservations: &reservationRepository{store: s, access: access},
	}
}

type state struct {
	users        map[string]domain.User
	lots         map[string]domain.ParkingLot
	spots        map[string]domain.ParkingSpot
	reservations map[string]domain.Reservation
	// shared marks maps still owned by the committed state.
	shared tables
}

type tables uint8

const (
	usersTable tables = 1 << iota
	lotsTable
	spotsTable
	reservationsTable

	allTables = usersTable | lotsTable | spotsTable | reservationsTable
)

func newState() *state {
	return &state{
		users:        make(map[string]domain.User),
		lots:         make(map[string]domain.ParkingLot),
		spots:        make(map[string]domain.ParkingSpot),
		reservations: make(map[string]domain.Reservation),
	}
}

// fork returns a draft that shares every map with st. A map is copied the
// first time the draft writes to it, so read-only transactions copy nothing.
// Values are stored by value and pointer fields inside them are replaced,
// never mutated, so a shallow copy is enough.
func (st *state) fork() *state {
	return &state{
		users:        st.users,
		lots:         st.lots,
		spots:        st.spots,
		reservations: st.reservations,
		shared:       allTables,
	}
}

func (st *state) owns(t tables) bool {
	if st.shared&t == 0 {
		return true
	}
	st.shared &^= t
	return false
}

func (st *state) writableUsers() map[string]domain.User {
	if !st.owns(usersTable) {
		st.users = copyMap(st.users)
	}
	return st.users
}

func (st *state) writableLots() map[string]domain.ParkingLot {
	if !st.owns(lotsTable) {
		st.lots = copyMap(st.lots)
	}
	return st.lots
}

func (st *state) writableSpots() map[string]domain.ParkingSpot {
	if !st.owns(spotsTable) {
		st.spots = copyMap(st.spots)
	}
	return st.spots
}

func (st *state) writableReservations() map[string]domain.Reservation {
	if !st.owns(reservationsTable) {
		st.reservations = copyMap(st.reservations)
	}
	return st.reservations
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// deleteSpot removes a spot and its reservation history.
func (st *state) deleteSpot(id string) {
	delete(st.writableSpots(), id)
	for resID, res := range st.reservations {
		if res.SpotID == id {
			delete(st.writableReservations(), resID)
		}
	}
}

// withSpot fills the read-model fields of a reservation.
func (st *state) withSpot(res domain.Reservation) domain.Reservation {
	if spot, ok := st.spots[res.SpotID]; ok {
		res.LotID = spot.LotID
		res.SpotNumber = spot.Number
	}
	return res
}
