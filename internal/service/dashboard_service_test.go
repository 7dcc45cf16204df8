package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-service/internal/domain"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

func TestAdminSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	h.addUser(t, "bob")
	lot := h.createLot(t, 3, 10)
	h.createLot(t, 2, 4)
	_, err := h.reservations.ReserveSpot(ctx, alice, lot.ID, "A1")
	require.NoError(t, err)

	summary, err := h.dashboards.AdminSummary(ctx, h.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalLots)
	assert.Equal(t, 2, summary.TotalUsers)
	assert.Equal(t, domain.Occupancy{Total: 5, Occupied: 1}, summary.Occupancy)
	for _, u := range summary.Users {
		assert.Equal(t, domain.RoleUser, u.Role)
	}

	_, err = h.dashboards.AdminSummary(ctx, alice)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestUserDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	lot := h.createLot(t, 2, 10)
	_, err := h.reservations.ReserveSpot(ctx, alice, lot.ID, "A1")
	require.NoError(t, err)
	_, err = h.reservations.ReserveSpot(ctx, bob, lot.ID, "B1")
	require.NoError(t, err)

	dashboard, err := h.dashboards.UserDashboard(ctx, alice)
	require.NoError(t, err)
	require.Len(t, dashboard.Lots, 1)
	assert.Equal(t, 0, dashboard.Lots[0].Occupancy.Available())
	require.Len(t, dashboard.Reservations, 1)
	assert.Equal(t, alice.UserID, dashboard.Reservations[0].UserID)
}
