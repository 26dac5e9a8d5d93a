package pool

import (
	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/scene"
)

type options struct {
	logger observability.Logger
	bus    *events.Bus
	parent *scene.Node
}

// Option configures a Pool or Manager.
type Option interface {
	applyTo(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyTo(o *options) { f(o) }

// WithLogger routes diagnostics to l instead of the global logger.
func WithLogger(l observability.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithEvents posts lifecycle events to bus.
func WithEvents(bus *events.Bus) Option {
	return optionFunc(func(o *options) { o.bus = bus })
}

// WithContainerParent places the pool container under parent instead of the world root.
func WithContainerParent(parent *scene.Node) Option {
	return optionFunc(func(o *options) { o.parent = parent })
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt.applyTo(&o)
		}
	}
	return o
}

func (o options) log() observability.Logger {
	base := o.logger
	if base == nil {
		base = observability.Log()
	}
	return observability.With(base, observability.F("component", "pool"))
}

func (o options) post(evt any) {
	if o.bus != nil {
		o.bus.Post(evt)
	}
}
