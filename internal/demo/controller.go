package demo

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

// ControllerConfig sets the auto-spawn cadence.
type ControllerConfig struct {
	AutoSpawn         bool
	AutoSpawnInterval time.Duration
	AutoSpawnCount    int
}

// Controller spawns bullets in bursts, either on demand or on a fixed cadence
// driven by Tick.
type Controller struct {
	manager   *pool.Manager
	pattern   *Pattern
	limiter   *rate.Limiter
	now       func() time.Time
	autoSpawn bool
	autoCount int
	elapsed   float64
	spawned   uint64
}

// NewController creates a controller that spawns through m. A nil pattern
// uses the default scatter.
func NewController(m *pool.Manager, pattern *Pattern, cfg ControllerConfig) *Controller {
	if pattern == nil {
		pattern = DefaultPattern()
	}
	interval := cfg.AutoSpawnInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	count := cfg.AutoSpawnCount
	if count <= 0 {
		count = 3
	}
	return &Controller{
		manager:   m,
		pattern:   pattern,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		now:       time.Now,
		autoSpawn: cfg.AutoSpawn,
		autoCount: count,
	}
}

// SpawnBurst spawns n bullets placed by the pattern, each facing the origin.
// It returns how many were spawned.
func (c *Controller) SpawnBurst(n int) int {
	spawned := 0
	for i := 0; i < n; i++ {
		pos, err := c.pattern.Place(i, n, c.elapsed)
		if err != nil {
			observability.Log().Warn("demo pattern failed",
				observability.F("pattern", c.pattern.Name()),
				observability.F("error", err))
			break
		}
		rot := scene.LookRotation(scene.Zero.Sub(pos))
		if _, err := c.manager.Spawn(KeyBullet, pool.At(pos, rot)); err != nil {
			break
		}
		spawned++
	}
	c.spawned += uint64(spawned)
	return spawned
}

// SetAutoSpawn turns the timed bursts on or off.
func (c *Controller) SetAutoSpawn(enabled bool) { c.autoSpawn = enabled }

func (c *Controller) AutoSpawn() bool { return c.autoSpawn }

// Spawned is the total number of bullets spawned by the controller.
func (c *Controller) Spawned() uint64 { return c.spawned }

// Tick advances the pattern clock and fires an auto-spawn burst when one is due.
func (c *Controller) Tick(dt float64) {
	c.elapsed += dt
	if !c.autoSpawn {
		return
	}
	if c.limiter.AllowN(c.now(), 1) {
		c.SpawnBurst(c.autoCount)
	}
}

// ClearAll releases every leased bullet, explosion and floating label.
func (c *Controller) ClearAll() {
	c.manager.ReleaseAllOf(KeyBullet)
	c.manager.ReleaseAllOf(KeyExplosion)
	c.manager.ReleaseAllOf(KeyFloatingText)
}
