// Package host drives the single-threaded tick that every pool, scene and
// event operation runs on.
package host

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/scene"
	"github.com/coachpo/spawnpool/internal/telemetry"
)

// DefaultInterval is a 60Hz frame.
const DefaultInterval = 16 * time.Millisecond

// TickFunc runs once per tick after the world update.
type TickFunc func(dt float64)

// Loop pumps the event bus and the world. Tick and every hook run on the
// goroutine that calls Tick or Run.
type Loop struct {
	world *scene.World
	bus   *events.Bus
	hooks []TickFunc
	ticks uint64
	now   func() time.Time

	tickDuration metric.Float64Histogram
	attrs        metric.MeasurementOption
}

// New creates a loop over world and bus. A nil bus is allowed.
func New(world *scene.World, bus *events.Bus) *Loop {
	if world == nil {
		world = scene.NewWorld()
	}
	l := &Loop{
		world: world,
		bus:   bus,
		now:   time.Now,
		attrs: metric.WithAttributes(telemetry.AttrEnvironment.String(telemetry.Environment())),
	}
	l.tickDuration, _ = otel.Meter("host").Float64Histogram("host.tick.duration",
		metric.WithDescription("Duration of one host tick"),
		metric.WithUnit("ms"))
	return l
}

func (l *Loop) World() *scene.World { return l.world }

func (l *Loop) Bus() *events.Bus { return l.bus }

// Ticks reports how many ticks have completed.
func (l *Loop) Ticks() uint64 { return l.ticks }

// OnTick appends fn to the hooks run after each world update.
func (l *Loop) OnTick(fn TickFunc) {
	if fn != nil {
		l.hooks = append(l.hooks, fn)
	}
}

// Tick delivers queued events, updates the world by dt seconds and then runs
// the hooks.
func (l *Loop) Tick(dt float64) {
	start := l.now()
	if l.bus != nil {
		l.bus.Drain()
	}
	l.world.Update(dt)
	for _, fn := range l.hooks {
		fn(dt)
	}
	l.ticks++
	if l.tickDuration != nil {
		l.tickDuration.Record(context.Background(), float64(l.now().Sub(start).Microseconds())/1000, l.attrs)
	}
}

// Run ticks every interval until ctx is done, passing the wall time elapsed
// since the previous tick as dt. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	observability.Log().Debug("host loop started", observability.F("interval", interval.String()))
	last := l.now()
	for {
		select {
		case <-ctx.Done():
			observability.Log().Debug("host loop stopped", observability.F("ticks", l.ticks))
			return nil
		case <-ticker.C:
			now := l.now()
			l.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}
