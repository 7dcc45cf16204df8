package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/repository/memory"
)

func TestAuditServiceRecordsCommittedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(dispatcher, nil, observability.NewMetrics("audit_test"))
	audit.RegisterHandlers()

	store := memory.NewStore()
	deps := Dependencies{Store: store, Dispatcher: dispatcher}
	lots := NewLotService(deps)
	h := newHarnessWithStore(t, store)

	lot, err := lots.CreateLot(context.Background(), h.admin, LotInput{Name: "A", Address: "a", PinCode: "1", Capacity: 2})
	require.NoError(t, err)
	_, err = lots.ResizeLot(context.Background(), h.admin, lot.ID, 4)
	require.NoError(t, err)

	recent := audit.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, events.EventLotResized, recent[0].Type)
	assert.Equal(t, events.EventLotCreated, recent[1].Type)
	assert.Equal(t, lot.ID, recent[0].LotID)
	assert.Equal(t, h.admin.UserID, recent[0].Actor.UserID)
}

func TestAuditRetention(t *testing.T) {
	audit := NewAuditService(events.NewInMemoryDispatcher(), nil, nil)
	audit.retention = 3
	for i := 0; i < 5; i++ {
		require.NoError(t, audit.handle(context.Background(), events.Event{ID: string(rune('a' + i))}))
	}

	recent := audit.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].ID)
	assert.Equal(t, "c", recent[2].ID)
	assert.Len(t, audit.Recent(1), 1)
}
