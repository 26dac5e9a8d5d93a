package pool

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/coachpo/spawnpool/internal/telemetry"
)

// instruments are updated synchronously from Get/Release so they never read
// pool state off the tick goroutine.
type instruments struct {
	attrs              metric.MeasurementOption
	spawnedCounter     metric.Int64Counter
	despawnedCounter   metric.Int64Counter
	instantiateCounter metric.Int64Counter
	destroyedCounter   metric.Int64Counter
	overCapCounter     metric.Int64Counter
	activeGauge        metric.Int64UpDownCounter
	inactiveGauge      metric.Int64UpDownCounter
	spawnDuration      metric.Float64Histogram
}

func newInstruments(key, template string) instruments {
	ins := instruments{
		attrs: metric.WithAttributes(telemetry.PoolAttributes(telemetry.Environment(), key, template)...),
	}
	meter := otel.Meter("pool")
	ins.spawnedCounter, _ = meter.Int64Counter("pool.spawned",
		metric.WithDescription("Number of instances handed out"),
		metric.WithUnit("{instance}"))
	ins.despawnedCounter, _ = meter.Int64Counter("pool.despawned",
		metric.WithDescription("Number of instances returned to the free list"),
		metric.WithUnit("{instance}"))
	ins.instantiateCounter, _ = meter.Int64Counter("pool.instantiated",
		metric.WithDescription("Number of instances created from the template"),
		metric.WithUnit("{instance}"))
	ins.destroyedCounter, _ = meter.Int64Counter("pool.destroyed",
		metric.WithDescription("Number of foreign instances destroyed on release"),
		metric.WithUnit("{instance}"))
	ins.overCapCounter, _ = meter.Int64Counter("pool.overcapacity",
		metric.WithDescription("Number of spawns served past the soft capacity"),
		metric.WithUnit("{instance}"))
	ins.activeGauge, _ = meter.Int64UpDownCounter("pool.active",
		metric.WithDescription("Instances currently leased"),
		metric.WithUnit("{instance}"))
	ins.inactiveGauge, _ = meter.Int64UpDownCounter("pool.inactive",
		metric.WithDescription("Instances idle in the free list"),
		metric.WithUnit("{instance}"))
	ins.spawnDuration, _ = meter.Float64Histogram("pool.spawn.duration",
		metric.WithDescription("Latency of pool spawn operations"),
		metric.WithUnit("ms"))
	return ins
}

func (i instruments) add(c metric.Int64Counter, n int64) {
	if c != nil && n != 0 {
		c.Add(context.Background(), n, i.attrs)
	}
}

func (i instruments) move(activeDelta, inactiveDelta int64) {
	if i.activeGauge != nil && activeDelta != 0 {
		i.activeGauge.Add(context.Background(), activeDelta, i.attrs)
	}
	if i.inactiveGauge != nil && inactiveDelta != 0 {
		i.inactiveGauge.Add(context.Background(), inactiveDelta, i.attrs)
	}
}

func (i instruments) recordSpawn(start time.Time, result string) {
	if i.spawnDuration == nil {
		return
	}
	i.spawnDuration.Record(context.Background(), float64(time.Since(start).Microseconds())/1000,
		i.attrs, metric.WithAttributes(telemetry.AttrResult.String(result)))
}

// managerCounter counts manager requests by operation and result.
type managerCounter struct {
	requests metric.Int64Counter
}

func newManagerCounter() managerCounter {
	var c managerCounter
	c.requests, _ = otel.Meter("pool").Int64Counter("pool.manager.requests",
		metric.WithDescription("Number of manager operations by result"),
		metric.WithUnit("{request}"))
	return c
}

func (c managerCounter) record(operation, result string) {
	if c.requests == nil {
		return
	}
	c.requests.Add(context.Background(), 1,
		metric.WithAttributes(telemetry.OperationResultAttributes(telemetry.Environment(), operation, result)...))
}
