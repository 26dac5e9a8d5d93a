// Package spawnpool recycles scene nodes built from templates. It re-exports
// the pool, scene and event types and exposes a process-wide default manager
// for callers that do not wire their own.
package spawnpool

import (
	"fmt"

	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/registry"
	"github.com/coachpo/spawnpool/internal/scene"
)

type (
	Manager        = pool.Manager
	Pool           = pool.Pool
	Definition     = pool.Definition
	Placement      = pool.Placement
	Stats          = pool.Stats
	Poolable       = pool.Poolable
	PooledInstance = pool.PooledInstance
	Option         = pool.Option
	Template       = scene.Template
	Node           = scene.Node
	World          = scene.World
	Vec3           = scene.Vec3
	Quat           = scene.Quat
	Bus            = events.Bus
)

var (
	ErrPoolNotFound    = pool.ErrPoolNotFound
	ErrInvalidTemplate = pool.ErrInvalidTemplate
)

// DefaultManagerName is the registry name of the process default manager.
const DefaultManagerName = "pool.manager"

var process = registry.New()

func init() {
	process.Register(DefaultManagerName, func() any {
		return pool.NewManager(scene.NewWorld())
	})
}

// Registry is the process registry backing Default.
func Registry() *registry.Registry { return process }

// NewManager constructs a manager over world. A nil world gets a fresh one.
func NewManager(world *World, opts ...Option) *Manager {
	return pool.NewManager(world, opts...)
}

// NewDefinition returns a Definition with the default sizing.
func NewDefinition(key string, template *Template) Definition {
	return pool.NewDefinition(key, template)
}

// At is a Placement at pos facing rot, with no parent.
func At(pos Vec3, rot Quat) Placement { return pool.At(pos, rot) }

// Default returns the process default manager, creating it on first use.
func Default() *Manager {
	m, err := registry.Resolve[*pool.Manager](process, DefaultManagerName)
	if err != nil {
		panic(fmt.Sprintf("spawnpool: default manager: %v", err))
	}
	return m
}

// Spawn leases a node from the default manager's pool under key.
func Spawn(key string, at Placement) (*Node, error) {
	return Default().Spawn(key, at)
}

// SpawnTemplate leases a node from the default manager's pool for template,
// creating that pool with the given sizing on first use.
func SpawnTemplate(template *Template, at Placement, initialSize, maxSize int, autoExpand bool) (*Node, error) {
	return Default().SpawnTemplate(template, at, initialSize, maxSize, autoExpand)
}

// Despawn routes n back to the pool that created it.
func Despawn(n *Node) {
	Default().Despawn(n)
}

// ResetDefault clears the default manager, if one was created, and drops it
// so the next Default call builds a fresh manager and world.
func ResetDefault() {
	if inst, ok := process.Lookup(DefaultManagerName); ok {
		if m, ok := inst.(*pool.Manager); ok {
			m.ClearAll()
		}
	}
	process.Reset()
}
