package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/scene"
)

type spinner struct{ total float64 }

func (s *spinner) Update(dt float64) { s.total += dt }

type ping struct{ n int }

func TestTickDrainsThenUpdatesThenHooks(t *testing.T) {
	world := scene.NewWorld()
	bus := events.NewBus()
	loop := New(world, bus)

	sp := &spinner{}
	world.NewNode("spinner", nil).AddComponent(sp)

	var order []string
	events.Subscribe(bus, func(p ping) {
		order = append(order, "event")
		assert.Zero(t, sp.total, "events are delivered before the world update")
	})
	loop.OnTick(func(dt float64) {
		order = append(order, "hook")
		assert.InDelta(t, 0.5, sp.total, 1e-9)
	})

	bus.Post(ping{n: 1})
	loop.Tick(0.5)

	assert.Equal(t, []string{"event", "hook"}, order)
	assert.Equal(t, uint64(1), loop.Ticks())
	assert.Zero(t, bus.Pending())
}

func TestTickWithoutBus(t *testing.T) {
	loop := New(nil, nil)
	require.NotNil(t, loop.World())

	calls := 0
	loop.OnTick(func(float64) { calls++ })
	loop.OnTick(nil)
	loop.Tick(0.016)
	loop.Tick(0.016)
	assert.Equal(t, 2, calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	loop := New(scene.NewWorld(), events.NewBus())

	ctx, cancel := context.WithCancel(context.Background())
	var elapsed float64
	loop.OnTick(func(dt float64) {
		elapsed += dt
		if loop.Ticks() >= 2 {
			cancel()
		}
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, time.Millisecond) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.GreaterOrEqual(t, loop.Ticks(), uint64(2))
	assert.Greater(t, elapsed, 0.0)
}
