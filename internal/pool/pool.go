// Package pool recycles scene nodes built from a template. A Pool keeps idle
// nodes in a LIFO free list and leased nodes in an active set; a Manager
// registers pools by key and by template and is the spawn/despawn entry point.
//
// Nothing here is safe for concurrent use. Every call is expected on the
// host's tick goroutine.
package pool

import (
	"strings"
	"time"
	"weak"

	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/scene"
	"github.com/coachpo/spawnpool/internal/telemetry"
)

const instanceSuffix = "_Pooled"

// Placement positions a spawned node. A nil Parent places it at the world root.
type Placement struct {
	Position scene.Vec3
	Rotation scene.Quat
	Parent   *scene.Node
}

// At is a Placement at pos facing rot, with no parent.
func At(pos scene.Vec3, rot scene.Quat) Placement {
	return Placement{Position: pos, Rotation: rot}
}

// Stats is a point-in-time view of a pool's counters.
type Stats struct {
	Key          string `json:"key"`
	Template     string `json:"template"`
	Active       int    `json:"active"`
	Inactive     int    `json:"inactive"`
	All          int    `json:"all"`
	MaxSize      int    `json:"maxSize"`
	AutoExpand   bool   `json:"autoExpand"`
	OverCapacity bool   `json:"overCapacity"`
}

// Pool owns the free list and active set for one template.
type Pool struct {
	key        string
	template   *scene.Template
	world      *scene.World
	container  *scene.Node
	maxSize    int
	autoExpand bool

	free    []*scene.Node
	active  map[*scene.Node]struct{}
	cleared bool

	opts  options
	debug *debugState
	ins   instruments
}

// New builds a pool for def inside world and prewarms def.InitialSize idle
// instances. MaxSize is clamped to at least 1.
func New(world *scene.World, def Definition, opts ...Option) (*Pool, error) {
	if def.Template == nil {
		return nil, invalidTemplate("pool", def.Key, "template required")
	}
	if strings.TrimSpace(def.Key) == "" {
		return nil, invalidTemplate("pool", def.Key, "key required")
	}
	if world == nil {
		world = scene.NewWorld()
	}

	o := buildOptions(opts)
	p := &Pool{
		key:        def.Key,
		template:   def.Template,
		world:      world,
		maxSize:    max(1, def.MaxSize),
		autoExpand: def.AutoExpand,
		active:     make(map[*scene.Node]struct{}),
		opts:       o,
		debug:      newDebugState(def.Key),
		ins:        newInstruments(def.Key, def.Template.Name()),
	}
	p.container = world.NewNode("[Pool] "+def.Key, o.parent)

	for i := 0; i < def.InitialSize; i++ {
		p.returnToPool(p.createInstance())
		p.ins.move(0, 1)
	}
	return p, nil
}

func (p *Pool) Key() string { return p.key }

func (p *Pool) Template() *scene.Template { return p.template }

// Container is the scope idle instances are parented under.
func (p *Pool) Container() *scene.Node { return p.container }

func (p *Pool) MaxSize() int { return p.maxSize }

func (p *Pool) AutoExpand() bool { return p.autoExpand }

func (p *Pool) CountActive() int { return len(p.active) }

func (p *Pool) CountInactive() int { return len(p.free) }

func (p *Pool) CountAll() int { return len(p.free) + len(p.active) }

// Stats snapshots the pool's counters without mutating it.
func (p *Pool) Stats() Stats {
	all := p.CountAll()
	return Stats{
		Key:          p.key,
		Template:     p.template.Name(),
		Active:       len(p.active),
		Inactive:     len(p.free),
		All:          all,
		MaxSize:      p.maxSize,
		AutoExpand:   p.autoExpand,
		OverCapacity: all > p.maxSize,
	}
}

// Get leases a node. The most recently released idle node is reused first;
// otherwise a new one is instantiated. MaxSize is a soft cap: when the free
// list is empty a new node is created even if autoExpand is off and the pool
// is already at capacity.
func (p *Pool) Get(at Placement) *scene.Node {
	start := time.Now()
	result := telemetry.ResultReused

	n := p.popFree()
	if n == nil {
		overCapacity := !p.autoExpand && p.CountAll() >= p.maxSize
		n = p.createInstance()
		result = telemetry.ResultInstantiated
		if overCapacity {
			result = telemetry.ResultOverCapacity
			p.ins.add(p.ins.overCapCounter, 1)
			p.opts.log().Debug("pool over soft capacity",
				observability.F("pool", p.key),
				observability.F("count_all", p.CountAll()),
				observability.F("max_size", p.maxSize))
		}
	} else {
		p.ins.move(0, -1)
	}

	p.active[n] = struct{}{}
	p.ins.move(1, 0)

	rot := at.Rotation
	if rot == (scene.Quat{}) {
		rot = scene.Identity()
	}
	n.SetParent(at.Parent)
	n.SetPlacement(at.Position, rot)
	n.SetActive(true)
	if pi, ok := Of(n); ok {
		markSpawned(pi)
	}
	p.debug.recordSpawn(n)

	for _, hook := range scene.Components[Poolable](n) {
		hook.OnSpawned()
	}

	p.ins.add(p.ins.spawnedCounter, 1)
	p.ins.recordSpawn(start, result)
	p.opts.post(Spawned{Key: p.key, Node: n})
	return n
}

// GetAs leases a node and returns its first component of type T.
func GetAs[T any](p *Pool, at Placement) (T, bool) {
	return scene.Component[T](p.Get(at))
}

// Release returns a leased node to the free list. A node that is not in this
// pool's active set is foreign and is destroyed instead, without touching the
// pool's counters. Releasing a node that is already idle in this pool is
// ignored.
func (p *Pool) Release(n *scene.Node) {
	if n == nil {
		return
	}
	if _, ok := p.active[n]; !ok {
		if pi, ok := Of(n); ok && isIdleMember(p, pi) {
			p.opts.log().Warn("pool release ignored: instance already idle",
				observability.F("pool", p.key),
				observability.F("instance", n.ID().String()))
			return
		}
		p.destroyForeign(n)
		return
	}

	delete(p.active, n)
	p.ins.move(-1, 0)
	p.debug.recordRelease(n)

	pi, hasRecord := Of(n)
	if hasRecord {
		// marked before the hooks so a re-entrant Despawn is treated as a double release
		markReturned(pi)
	}

	if n.Destroyed() {
		p.opts.log().Debug("pool dropped destroyed instance",
			observability.F("pool", p.key),
			observability.F("instance", n.ID().String()))
		return
	}

	for _, hook := range scene.Components[Poolable](n) {
		hook.OnDespawned()
	}

	p.returnToPool(n)
	p.ins.move(0, 1)
	p.ins.add(p.ins.despawnedCounter, 1)
	p.opts.post(Despawned{Key: p.key, Node: n})
}

// ReleaseAll releases every currently leased node.
func (p *Pool) ReleaseAll() {
	snapshot := make([]*scene.Node, 0, len(p.active))
	for n := range p.active {
		snapshot = append(snapshot, n)
	}
	for _, n := range snapshot {
		p.Release(n)
	}
}

// Clear destroys every instance and the container. The pool must not be used afterwards.
func (p *Pool) Clear() {
	for _, n := range p.free {
		n.Destroy()
	}
	for n := range p.active {
		p.debug.recordRelease(n)
		n.Destroy()
	}
	p.ins.move(-int64(len(p.active)), -int64(len(p.free)))
	p.free = nil
	p.active = make(map[*scene.Node]struct{})
	if p.container != nil {
		p.container.Destroy()
	}
	p.cleared = true
}

// LeakStacks returns acquisition stacks of still-leased nodes. Empty unless
// built with the debug tag.
func (p *Pool) LeakStacks() []string {
	return p.debug.activeStacks()
}

func (p *Pool) popFree() *scene.Node {
	for len(p.free) > 0 {
		last := len(p.free) - 1
		n := p.free[last]
		p.free[last] = nil
		p.free = p.free[:last]
		if n.Destroyed() {
			p.ins.move(0, -1)
			continue
		}
		return n
	}
	return nil
}

func (p *Pool) createInstance() *scene.Node {
	n := p.template.Instantiate(p.world, p.container)
	n.SetName(p.template.Name() + instanceSuffix)

	pi, ok := Of(n)
	if !ok {
		pi = &PooledInstance{}
		n.AddComponent(pi)
	}
	pi.pool = weak.Make(p)
	n.SetActive(false)

	p.ins.add(p.ins.instantiateCounter, 1)
	return n
}

// returnToPool is shared by prewarm and Release.
func (p *Pool) returnToPool(n *scene.Node) {
	n.SetActive(false)
	n.SetParent(p.container)
	if pi, ok := Of(n); ok {
		markReturned(pi)
	}
	p.free = append(p.free, n)
}

func (p *Pool) destroyForeign(n *scene.Node) {
	p.opts.log().Warn("pool release of foreign instance; destroying",
		observability.F("pool", p.key),
		observability.F("instance", n.ID().String()),
		observability.F("name", n.Name()))
	n.Destroy()
	p.ins.add(p.ins.destroyedCounter, 1)
	p.opts.post(ForeignDestroyed{Key: p.key, Node: n})
}
