package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventLotCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.LotID)
		return nil
	})
	d.Subscribe(EventLotCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.LotID)
		return nil
	})
	d.Subscribe(EventLotDeleted, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLotCreated, LotID: "lot-1"}))
	assert.Equal(t, []string{"first:lot-1", "second:lot-1"}, got)
}

func TestDispatcherRunsAllHandlersOnFailure(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventSpotReserved, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventSpotReserved, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSpotReserved})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventSpotReleased}))
}
