package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/pool"
)

type statusLine struct {
	Time      time.Time    `json:"time"`
	Spawns    uint64       `json:"spawns"`
	Despawns  uint64       `json:"despawns"`
	LiveNodes int          `json:"liveNodes"`
	Pools     []pool.Stats `json:"pools"`
}

// statusReporter writes one JSON line of pool statistics every interval of
// tick time. It runs on the host loop.
type statusReporter struct {
	out      io.Writer
	manager  *pool.Manager
	interval float64
	since    float64
	spawns   uint64
	despawns uint64
	now      func() time.Time
}

func newStatusReporter(out io.Writer, manager *pool.Manager, interval time.Duration) *statusReporter {
	if interval <= 0 {
		interval = time.Second
	}
	return &statusReporter{
		out:      out,
		manager:  manager,
		interval: interval.Seconds(),
		now:      time.Now,
	}
}

// Subscribe counts spawn and despawn events delivered by bus.
func (r *statusReporter) Subscribe(bus *events.Bus) {
	events.Subscribe(bus, func(pool.Spawned) { r.spawns++ })
	events.Subscribe(bus, func(pool.Despawned) { r.despawns++ })
}

func (r *statusReporter) Tick(dt float64) {
	r.since += dt
	if r.since < r.interval {
		return
	}
	r.since = 0
	_ = r.Report()
}

// Report writes the current status line.
func (r *statusReporter) Report() error {
	line := statusLine{
		Time:      r.now().UTC(),
		Spawns:    r.spawns,
		Despawns:  r.despawns,
		LiveNodes: r.manager.World().Count(),
		Pools:     r.manager.Stats(),
	}
	payload, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(payload))
	return err
}
