package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversByType(t *testing.T) {
	bus := NewInMemoryDispatcher()
	var got []string
	bus.Subscribe(EventOrderCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ResourceID)
		return nil
	})
	bus.Subscribe(EventOrderCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ResourceID)
		return nil
	})
	bus.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		t.Fatal("user_deleted handler must not run")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{Type: EventOrderCreated, ResourceID: "o1"}))
	assert.Equal(t, []string{"first:o1", "second:o1"}, got)

	assert.NoError(t, bus.Publish(context.Background(), Event{Type: EventLaundryJobStatusChanged}))
}

func TestBusRunsAllHandlersAndJoinsErrors(t *testing.T) {
	bus := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	bus.Subscribe(EventOrderStatusChanged, func(context.Context, Event) error {
		calls++
		return boom
	})
	bus.Subscribe(EventOrderStatusChanged, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := bus.Publish(context.Background(), Event{Type: EventOrderStatusChanged})
	assert.Equal(t, 2, calls)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "order_status_changed handler 0")
}
