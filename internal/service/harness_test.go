package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	"github.com/spec-kit/parking-service/internal/repository/memory"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	store        repository.Store
	clock        *testClock
	recorded     *recordedEvents
	lots         *LotService
	reservations *ReservationService
	dashboards   *DashboardService
	auth         *AuthService
	admin        domain.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewStore())
}

func newHarnessWithStore(t *testing.T, store repository.Store) *harness {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	recorded := &recordedEvents{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			recorded.mu.Lock()
			defer recorded.mu.Unlock()
			recorded.events = append(recorded.events, e)
			return nil
		})
	}

	deps := Dependencies{Store: store, Dispatcher: dispatcher, Clock: clock.Now}
	cfg := config.Config{
		Auth:  config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: 4},
		Admin: config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "admin-pass", FullName: "Admin"},
	}
	h := &harness{
		store:        store,
		clock:        clock,
		recorded:     recorded,
		lots:         NewLotService(deps),
		reservations: NewReservationService(deps),
		dashboards:   NewDashboardService(deps),
		auth:         NewAuthService(cfg, AuthDependencies{Store: store}),
	}

	admin, err := h.auth.EnsureAdmin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, admin)
	h.admin = domain.Actor{UserID: admin.ID, Role: domain.RoleAdmin}
	return h
}

func (h *harness) addUser(t *testing.T, username string) domain.Actor {
	t.Helper()
	session, err := h.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
		FullName: "Driver " + username,
	})
	require.NoError(t, err)
	return domain.Actor{UserID: session.User.ID, Role: domain.RoleUser}
}

func (h *harness) createLot(t *testing.T, capacity int, price float64) *domain.ParkingLot {
	t.Helper()
	lot, err := h.lots.CreateLot(context.Background(), h.admin, LotInput{
		Name:     "Central",
		Price:    price,
		Address:  "1 Main Street",
		PinCode:  "560001",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return lot
}

// assertConsistent checks that every lot has exactly Capacity spots and that
// a spot is OCCUPIED iff exactly one active reservation references it.
func assertConsistent(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()
	repos := store.Repositories()

	lots, err := repos.Lots.List(ctx)
	require.NoError(t, err)
	for _, lot := range lots {
		spots, err := repos.Spots.ListByLot(ctx, lot.ID)
		require.NoError(t, err)
		assert.Len(t, spots, lot.Capacity, "spot count of lot %s", lot.ID)

		active, err := repos.Reservations.ListActiveByLot(ctx, lot.ID)
		require.NoError(t, err)
		perSpot := map[string]int{}
		for _, res := range active {
			perSpot[res.SpotID]++
		}
		for _, spot := range spots {
			switch spot.Status {
			case domain.SpotOccupied:
				assert.Equal(t, 1, perSpot[spot.ID], "spot %d should have one active reservation", spot.Number)
			default:
				assert.Zero(t, perSpot[spot.ID], "spot %d should have no active reservation", spot.Number)
			}
		}
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func spotNumbers(t *testing.T, store repository.Store, lotID string) []int {
	t.Helper()
	spots, err := store.Repositories().Spots.ListByLot(context.Background(), lotID)
	require.NoError(t, err)
	numbers := make([]int, 0, len(spots))
	for _, spot := range spots {
		numbers = append(numbers, spot.Number)
	}
	return numbers
}
