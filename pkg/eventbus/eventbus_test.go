package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type createdEvent struct {
	ID uint
}

type deletedEvent struct {
	ID uint
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestEventBus_PublishMatchesHandlerByArgumentType(t *testing.T) {
	bus := NewEventPublisher(testLogger())

	var got *createdEvent
	bus.Subscribe(func(ev *createdEvent) {
		got = ev
	})

	bus.Publish(&createdEvent{ID: 7})
	require.NotNil(t, got)
	require.Equal(t, uint(7), got.ID)
}

func TestEventBus_PublishSkipsMismatchedHandlers(t *testing.T) {
	bus := NewEventPublisher(testLogger())

	deletedCalls := 0
	bus.Subscribe(func(ev *deletedEvent) {
		deletedCalls++
	})
	createdCalls := 0
	bus.Subscribe(func(ev *createdEvent) {
		createdCalls++
	})

	bus.Publish(&createdEvent{ID: 1})
	require.Equal(t, 0, deletedCalls)
	require.Equal(t, 1, createdCalls)
}

func TestEventBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewEventPublisher(testLogger())

	bus.Subscribe(func(ev *createdEvent) {
		panic("boom")
	})
	delivered := false
	bus.Subscribe(func(ev *createdEvent) {
		delivered = true
	})

	require.NotPanics(t, func() {
		bus.Publish(&createdEvent{ID: 2})
	})
	require.True(t, delivered)
}

func TestEventBus_UnsubscribeRemovesHandler(t *testing.T) {
	bus := NewEventPublisher(testLogger())

	calls := 0
	handler := func(ev *createdEvent) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())

	bus.Publish(&createdEvent{ID: 3})
	require.Equal(t, 0, calls)
}

func TestEventBus_Clear(t *testing.T) {
	bus := NewEventPublisher(testLogger())
	bus.Subscribe(func(ev *createdEvent) {})
	bus.Subscribe(func(ev *deletedEvent) {})
	require.Equal(t, 2, bus.SubscribersCount())

	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())
}
