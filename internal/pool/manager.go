package pool

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/scene"
	"github.com/coachpo/spawnpool/internal/telemetry"
)

const managerNodeName = "PoolManager"

// Manager registers pools by key and by template and routes spawn and despawn
// requests to them.
type Manager struct {
	world      *scene.World
	root       *scene.Node
	pools      map[string]*Pool
	byTemplate map[*scene.Template]*Pool
	opts       options
	rawOpts    []Option
	counter    managerCounter
}

// NewManager constructs an empty manager whose pool containers live under a
// "PoolManager" node in world. A nil world gets a fresh one.
func NewManager(world *scene.World, opts ...Option) *Manager {
	if world == nil {
		world = scene.NewWorld()
	}
	m := &Manager{
		world:      world,
		pools:      make(map[string]*Pool),
		byTemplate: make(map[*scene.Template]*Pool),
		opts:       buildOptions(opts),
		rawOpts:    opts,
		counter:    newManagerCounter(),
	}
	m.root = world.NewNode(managerNodeName, m.opts.parent)
	return m
}

// World is the scene the manager's pools instantiate into.
func (m *Manager) World() *scene.World { return m.world }

// Bootstrap creates a pool per definition. Definitions without a template or
// with a blank key are skipped. It returns how many definitions were applied.
func (m *Manager) Bootstrap(defs []Definition) int {
	applied := 0
	for _, def := range defs {
		if !def.Valid() {
			continue
		}
		if _, err := m.CreatePool(def.Key, def.Template, def.InitialSize, def.MaxSize, def.AutoExpand); err != nil {
			m.opts.log().Error("pool bootstrap failed", observability.F("key", def.Key), observability.F("error", err))
			continue
		}
		applied++
	}
	return applied
}

// GetPool returns the pool registered under key. Unknown keys are logged and
// reported as an error wrapping ErrPoolNotFound.
func (m *Manager) GetPool(key string) (*Pool, error) {
	if p, ok := m.pools[key]; ok {
		return p, nil
	}
	m.opts.log().Error("no pool registered with key", observability.F("key", key))
	return nil, notFound(key)
}

// GetOrCreatePool returns the pool already serving template, ignoring the
// sizing arguments, or creates one keyed by the template name with a numeric
// suffix (name_1, name_2, ...) when that key is taken.
func (m *Manager) GetOrCreatePool(template *scene.Template, initialSize, maxSize int, autoExpand bool) (*Pool, error) {
	if template == nil {
		return nil, invalidTemplate("pool/manager", "", "template required")
	}
	if p, ok := m.byTemplate[template]; ok {
		m.counter.record(telemetry.OpCreatePool, telemetry.ResultExisting)
		return p, nil
	}
	return m.CreatePool(m.uniqueKey(template.Name()), template, initialSize, maxSize, autoExpand)
}

// CreatePool creates a pool under key. If key is taken the existing pool is
// returned unchanged and a warning is logged.
func (m *Manager) CreatePool(key string, template *scene.Template, initialSize, maxSize int, autoExpand bool) (*Pool, error) {
	if template == nil {
		m.counter.record(telemetry.OpCreatePool, telemetry.ResultInvalid)
		return nil, invalidTemplate("pool/manager", key, "template required")
	}
	if strings.TrimSpace(key) == "" {
		m.counter.record(telemetry.OpCreatePool, telemetry.ResultInvalid)
		return nil, invalidTemplate("pool/manager", key, "key required")
	}
	if existing, ok := m.pools[key]; ok {
		m.opts.log().Warn("pool with key already exists",
			observability.F("key", key),
			observability.F("template", template.Name()))
		m.counter.record(telemetry.OpCreatePool, telemetry.ResultDuplicate)
		return existing, nil
	}

	opts := append(append([]Option(nil), m.rawOpts...), WithContainerParent(m.root))
	p, err := New(m.world, Definition{
		Key:         key,
		Template:    template,
		InitialSize: initialSize,
		MaxSize:     maxSize,
		AutoExpand:  autoExpand,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("pool manager: create %s: %w", key, err)
	}

	m.pools[key] = p
	if _, ok := m.byTemplate[template]; !ok {
		m.byTemplate[template] = p
	}
	m.opts.log().Debug("pool created",
		observability.F("key", key),
		observability.F("template", template.Name()),
		observability.F("initial_size", initialSize),
		observability.F("max_size", p.MaxSize()),
		observability.F("auto_expand", autoExpand))
	m.counter.record(telemetry.OpCreatePool, telemetry.ResultCreated)
	m.opts.post(PoolCreated{Key: key, Template: template.Name()})
	return p, nil
}

// ReleaseAllOf releases every leased node of the pool under key.
func (m *Manager) ReleaseAllOf(key string) {
	p, ok := m.pools[key]
	if !ok {
		m.opts.log().Debug("release all skipped: unknown pool", observability.F("key", key))
		return
	}
	p.ReleaseAll()
}

// ClearAll destroys every pool and empties both registries. Leased nodes are
// destroyed too; under the debug build tag their acquisition stacks are logged.
func (m *Manager) ClearAll() {
	count := len(m.pools)
	for _, key := range m.Keys() {
		p := m.pools[key]
		for _, stack := range p.LeakStacks() {
			m.opts.log().Warn("pool cleared with leased instance",
				observability.F("key", key),
				observability.F("stack", stack))
		}
		p.Clear()
	}
	m.pools = make(map[string]*Pool)
	m.byTemplate = make(map[*scene.Template]*Pool)
	m.opts.post(PoolsCleared{Count: count})
}

// Spawn leases a node from the pool under key.
func (m *Manager) Spawn(key string, at Placement) (*scene.Node, error) {
	p, err := m.GetPool(key)
	if err != nil {
		m.counter.record(telemetry.OpSpawn, telemetry.ResultNotFound)
		return nil, err
	}
	m.counter.record(telemetry.OpSpawn, telemetry.ResultOK)
	return p.Get(at), nil
}

// SpawnAs leases a node from the pool under key and returns its first T component.
func SpawnAs[T any](m *Manager, key string, at Placement) (T, error) {
	var zero T
	n, err := m.Spawn(key, at)
	if err != nil {
		return zero, err
	}
	c, ok := scene.Component[T](n)
	if !ok {
		return zero, fmt.Errorf("pool manager: %s instance has no %T component", key, zero)
	}
	return c, nil
}

// SpawnTemplate leases a node from the pool serving template, creating the
// pool with the given sizing on first use.
func (m *Manager) SpawnTemplate(template *scene.Template, at Placement, initialSize, maxSize int, autoExpand bool) (*scene.Node, error) {
	p, err := m.GetOrCreatePool(template, initialSize, maxSize, autoExpand)
	if err != nil {
		return nil, err
	}
	return p.Get(at), nil
}

// Despawn routes n back to the pool that created it. Nodes with no pool
// record, or whose pool is gone, are destroyed.
func (m *Manager) Despawn(n *scene.Node) {
	if n == nil {
		return
	}
	if pi, ok := Of(n); ok {
		if p := pi.Pool(); p != nil {
			m.counter.record(telemetry.OpDespawn, telemetry.ResultReleased)
			p.Release(n)
			return
		}
	}
	m.counter.record(telemetry.OpDespawn, telemetry.ResultForeign)
	m.opts.log().Warn("despawn of unpooled instance; destroying",
		observability.F("instance", n.ID().String()),
		observability.F("name", n.Name()))
	n.Destroy()
	m.opts.post(ForeignDestroyed{Node: n})
}

// Keys returns the registered pool keys in sorted order.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.pools))
	for k := range m.pools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a snapshot of every pool's counters, sorted by key.
func (m *Manager) Stats() []Stats {
	out := make([]Stats, 0, len(m.pools))
	for _, k := range m.Keys() {
		out = append(out, m.pools[k].Stats())
	}
	return out
}

// Len returns the number of registered pools.
func (m *Manager) Len() int { return len(m.pools) }

func (m *Manager) uniqueKey(base string) string {
	if strings.TrimSpace(base) == "" {
		base = "pool"
	}
	key := base
	for counter := 1; ; counter++ {
		if _, taken := m.pools[key]; !taken {
			return key
		}
		key = fmt.Sprintf("%s_%d", base, counter)
	}
}
