// Package events is a type-keyed publish/subscribe dispatcher. Publish
// delivers synchronously; Post enqueues for delivery on the next Drain, which
// the host calls once per tick from its single consumer goroutine.
package events

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/coachpo/spawnpool/internal/telemetry"
)

type subscription struct {
	id      uint64
	deliver func(any)
}

// Bus routes events to subscribers by their Go type. It is not safe for
// concurrent use.
type Bus struct {
	subs   map[reflect.Type][]subscription
	sticky map[reflect.Type]any
	queue  []any
	nextID uint64

	publishedCounter metric.Int64Counter
	postedCounter    metric.Int64Counter
	drainHistogram   metric.Int64Histogram
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	b := &Bus{
		subs:   make(map[reflect.Type][]subscription),
		sticky: make(map[reflect.Type]any),
	}

	meter := otel.Meter("events")
	b.publishedCounter, _ = meter.Int64Counter("events.published",
		metric.WithDescription("Number of events delivered synchronously"),
		metric.WithUnit("{event}"))
	b.postedCounter, _ = meter.Int64Counter("events.posted",
		metric.WithDescription("Number of events queued for the next drain"),
		metric.WithUnit("{event}"))
	b.drainHistogram, _ = meter.Int64Histogram("events.drain.size",
		metric.WithDescription("Number of queued events delivered per drain"),
		metric.WithUnit("{event}"))
	return b
}

// Handle cancels a subscription.
type Handle struct {
	bus *Bus
	typ reflect.Type
	id  uint64
}

// Close removes the subscription. It is safe to call more than once and from
// inside a handler.
func (h *Handle) Close() {
	if h == nil || h.bus == nil {
		return
	}
	h.bus.unsubscribe(h.typ, h.id)
	h.bus = nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers fn for events of type T. Handlers run in subscription order.
func Subscribe[T any](b *Bus, fn func(T)) *Handle {
	typ := typeOf[T]()
	b.nextID++
	id := b.nextID
	b.subs[typ] = append(b.subs[typ], subscription{
		id: id,
		deliver: func(v any) {
			fn(v.(T))
		},
	})
	return &Handle{bus: b, typ: typ, id: id}
}

// SubscribeSticky subscribes and immediately replays the last sticky T, if any.
func SubscribeSticky[T any](b *Bus, fn func(T)) *Handle {
	h := Subscribe(b, fn)
	if last, ok := b.sticky[typeOf[T]()]; ok {
		fn(last.(T))
	}
	return h
}

// Publish delivers evt to the current subscribers of T before returning.
func Publish[T any](b *Bus, evt T) {
	b.deliver(typeOf[T](), evt)
}

// PublishSticky records evt as the last T and publishes it.
func PublishSticky[T any](b *Bus, evt T) {
	b.sticky[typeOf[T]()] = evt
	Publish(b, evt)
}

// Post enqueues evt; it is delivered to subscribers of its dynamic type on the next Drain.
func (b *Bus) Post(evt any) {
	if evt == nil {
		return
	}
	b.queue = append(b.queue, evt)
	if b.postedCounter != nil {
		b.postedCounter.Add(context.Background(), 1,
			metric.WithAttributes(telemetry.EventAttributes(telemetry.Environment(), reflect.TypeOf(evt).String())...))
	}
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.queue)
}

// Drain delivers every event queued before the call, in FIFO order, and
// returns how many were delivered. Events posted by handlers are left for the
// next Drain.
func (b *Bus) Drain() int {
	batch := b.queue
	b.queue = nil
	for _, evt := range batch {
		b.deliver(reflect.TypeOf(evt), evt)
	}
	if b.drainHistogram != nil {
		b.drainHistogram.Record(context.Background(), int64(len(batch)),
			metric.WithAttributes(telemetry.AttrEnvironment.String(telemetry.Environment())))
	}
	return len(batch)
}

// Reset drops every subscription, sticky value and queued event.
func (b *Bus) Reset() {
	b.subs = make(map[reflect.Type][]subscription)
	b.sticky = make(map[reflect.Type]any)
	b.queue = nil
}

func (b *Bus) deliver(typ reflect.Type, evt any) {
	current := b.subs[typ]
	if len(current) == 0 {
		return
	}
	snapshot := make([]subscription, len(current))
	copy(snapshot, current)
	for _, sub := range snapshot {
		sub.deliver(evt)
	}
	if b.publishedCounter != nil {
		b.publishedCounter.Add(context.Background(), int64(len(snapshot)),
			metric.WithAttributes(telemetry.EventAttributes(telemetry.Environment(), typ.String())...))
	}
}

func (b *Bus) unsubscribe(typ reflect.Type, id uint64) {
	current := b.subs[typ]
	for i, sub := range current {
		if sub.id != id {
			continue
		}
		next := make([]subscription, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, typ)
		} else {
			b.subs[typ] = next
		}
		return
	}
}
