package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type scored struct{ Points int }

type cleared struct{}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	Subscribe(bus, func(e scored) { order = append(order, "a") })
	Subscribe(bus, func(e scored) { order = append(order, "b") })
	Subscribe(bus, func(cleared) { order = append(order, "other") })

	Publish(bus, scored{Points: 1})
	require.Equal(t, []string{"a", "b"}, order)
}

func TestHandleCloseUnsubscribes(t *testing.T) {
	bus := NewBus()
	calls := 0
	h := Subscribe(bus, func(scored) { calls++ })

	Publish(bus, scored{})
	h.Close()
	h.Close()
	Publish(bus, scored{})
	require.Equal(t, 1, calls)
}

func TestCloseInsideHandlerKeepsCurrentDelivery(t *testing.T) {
	bus := NewBus()
	var h *Handle
	calls, others := 0, 0
	h = Subscribe(bus, func(scored) {
		calls++
		h.Close()
	})
	Subscribe(bus, func(scored) { others++ })

	Publish(bus, scored{})
	Publish(bus, scored{})
	require.Equal(t, 1, calls)
	require.Equal(t, 2, others)
}

func TestPostIsDeferredUntilDrain(t *testing.T) {
	bus := NewBus()
	var got []int
	Subscribe(bus, func(e scored) {
		got = append(got, e.Points)
		if e.Points == 1 {
			bus.Post(scored{Points: 3})
		}
	})

	bus.Post(scored{Points: 1})
	bus.Post(scored{Points: 2})
	bus.Post(nil)
	require.Empty(t, got)
	require.Equal(t, 2, bus.Pending())

	require.Equal(t, 2, bus.Drain())
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, 1, bus.Pending())

	require.Equal(t, 1, bus.Drain())
	require.Equal(t, []int{1, 2, 3}, got)
	require.Equal(t, 0, bus.Drain())
}

func TestStickyReplaysLastValue(t *testing.T) {
	bus := NewBus()
	PublishSticky(bus, scored{Points: 5})
	PublishSticky(bus, scored{Points: 7})

	var got []int
	SubscribeSticky(bus, func(e scored) { got = append(got, e.Points) })
	require.Equal(t, []int{7}, got)

	Publish(bus, scored{Points: 9})
	require.Equal(t, []int{7, 9}, got)

	var none []cleared
	SubscribeSticky(bus, func(e cleared) { none = append(none, e) })
	require.Empty(t, none)
}

func TestResetDropsEverything(t *testing.T) {
	bus := NewBus()
	calls := 0
	Subscribe(bus, func(scored) { calls++ })
	PublishSticky(bus, scored{})
	bus.Post(scored{})
	bus.Reset()

	require.Equal(t, 0, bus.Pending())
	Publish(bus, scored{})
	require.Equal(t, 1, calls)
}
