package pool

import (
	"errors"
	"testing"

	"github.com/coachpo/spawnpool/errs"
	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/scene"
)

type probe struct {
	node      *scene.Node
	spawned   int
	despawned int
	trace     *[]string
	onSpawn   func(*probe)
}

func (p *probe) Attach(n *scene.Node) { p.node = n }

func (p *probe) OnSpawned() {
	p.spawned++
	if p.trace != nil {
		*p.trace = append(*p.trace, "spawned")
	}
	if p.onSpawn != nil {
		p.onSpawn(p)
	}
}

func (p *probe) OnDespawned() {
	p.despawned++
	if p.trace != nil {
		*p.trace = append(*p.trace, "despawned")
	}
}

func probeTemplate(name string) *scene.Template {
	return scene.NewTemplate(name, func(n *scene.Node) { n.AddComponent(&probe{}) })
}

func newTestPool(t *testing.T, key string, initial, maxSize int, autoExpand bool, opts ...Option) *Pool {
	t.Helper()
	p, err := New(scene.NewWorld(), Definition{
		Key:         key,
		Template:    probeTemplate(key),
		InitialSize: initial,
		MaxSize:     maxSize,
		AutoExpand:  autoExpand,
	}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func assertCounts(t *testing.T, p *Pool, active, inactive int) {
	t.Helper()
	if got := p.CountActive(); got != active {
		t.Fatalf("expected %d active, got %d", active, got)
	}
	if got := p.CountInactive(); got != inactive {
		t.Fatalf("expected %d inactive, got %d", inactive, got)
	}
	if p.CountAll() != p.CountActive()+p.CountInactive() {
		t.Fatalf("countAll %d != active %d + inactive %d", p.CountAll(), p.CountActive(), p.CountInactive())
	}
}

// assertExclusive checks every created node sits in exactly one of the free list or active set.
func assertExclusive(t *testing.T, p *Pool) {
	t.Helper()
	seen := make(map[*scene.Node]int)
	for _, n := range p.free {
		seen[n]++
		if n.Active() {
			t.Fatalf("idle node %s is active", n.ID())
		}
	}
	for n := range p.active {
		seen[n]++
	}
	for n, count := range seen {
		if count != 1 {
			t.Fatalf("node %s tracked %d times", n.ID(), count)
		}
	}
}

func TestNewRejectsMissingTemplateOrKey(t *testing.T) {
	_, err := New(scene.NewWorld(), Definition{Key: "bullet"})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if !errs.Is(err, errs.CodeInvalidTemplate) {
		t.Fatalf("expected invalid_template code, got %v", err)
	}

	_, err = New(scene.NewWorld(), Definition{Key: "  ", Template: probeTemplate("bullet")})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for blank key, got %v", err)
	}
}

func TestPrewarmFillsFreeList(t *testing.T) {
	p := newTestPool(t, "bullet", 5, 10, false)
	assertCounts(t, p, 0, 5)
	assertExclusive(t, p)

	for _, n := range p.free {
		if n.Parent() != p.Container() {
			t.Fatalf("prewarmed node not parented under container")
		}
		if n.Name() != "bullet_Pooled" {
			t.Fatalf("unexpected instance name %q", n.Name())
		}
		pr, _ := scene.Component[*probe](n)
		if pr.spawned != 0 || pr.despawned != 0 {
			t.Fatal("prewarm must not run lifecycle hooks")
		}
	}
	if p.Container().Name() != "[Pool] bullet" {
		t.Fatalf("unexpected container name %q", p.Container().Name())
	}
}

func TestMaxSizeClampedToOne(t *testing.T) {
	p := newTestPool(t, "bullet", 0, -3, false)
	if p.MaxSize() != 1 {
		t.Fatalf("expected maxSize clamp to 1, got %d", p.MaxSize())
	}
}

func TestBulletScenario(t *testing.T) {
	p := newTestPool(t, "bullet", 5, 10, false)
	assertCounts(t, p, 0, 5)

	var leased []*scene.Node
	for i := 0; i < 5; i++ {
		leased = append(leased, p.Get(Placement{}))
	}
	assertCounts(t, p, 5, 0)

	sixth := p.Get(Placement{})
	leased = append(leased, sixth)
	assertCounts(t, p, 6, 0)
	if p.CountAll() != 6 {
		t.Fatalf("expected countAll 6, got %d", p.CountAll())
	}

	p.Release(leased[0])
	assertCounts(t, p, 5, 1)
	assertExclusive(t, p)
}

func TestOverCapacitySpawnSucceeds(t *testing.T) {
	p := newTestPool(t, "bullet", 2, 2, false)
	p.Get(Placement{})
	p.Get(Placement{})
	if p.CountAll() != p.MaxSize() {
		t.Fatalf("expected pool at capacity")
	}

	n := p.Get(Placement{})
	if n == nil {
		t.Fatal("over-capacity spawn must succeed")
	}
	if p.CountAll() != 3 {
		t.Fatalf("expected countAll to exceed maxSize, got %d", p.CountAll())
	}
	if !p.Stats().OverCapacity {
		t.Fatal("expected stats to flag over capacity")
	}
}

func TestRoundTripReusesSameInstance(t *testing.T) {
	p := newTestPool(t, "bullet", 3, 10, true)
	beforeActive, beforeInactive := p.CountActive(), p.CountInactive()

	n := p.Get(Placement{})
	p.Release(n)
	assertCounts(t, p, beforeActive, beforeInactive)

	if again := p.Get(Placement{}); again != n {
		t.Fatal("expected LIFO reuse of the most recently released instance")
	}
}

func TestGetAppliesPlacementBeforeHook(t *testing.T) {
	p := newTestPool(t, "bullet", 1, 10, true)
	parent := p.world.NewNode("turret", nil)
	pos := scene.V(1, 2, 3)
	rot := scene.LookRotation(scene.V(1, 0, 0))

	pr, _ := scene.Component[*probe](p.free[0])
	var seenPos scene.Vec3
	var seenActive bool
	var seenParent *scene.Node
	pr.onSpawn = func(pr *probe) {
		seenPos = pr.node.Position
		seenActive = pr.node.Active()
		seenParent = pr.node.Parent()
	}

	n := p.Get(Placement{Position: pos, Rotation: rot, Parent: parent})
	if seenPos != pos || !seenActive || seenParent != parent {
		t.Fatalf("hook saw pos=%v active=%v parent=%v", seenPos, seenActive, seenParent)
	}
	if n.Rotation != rot {
		t.Fatalf("rotation not applied")
	}

	other := p.Get(Placement{Position: pos})
	if other.Rotation != scene.Identity() {
		t.Fatalf("zero rotation should default to identity, got %v", other.Rotation)
	}
	if other.Parent() != p.world.Root() {
		t.Fatal("nil parent should place node at world root")
	}
}

func TestReleaseRunsHookThenDeactivatesAndReparents(t *testing.T) {
	var trace []string
	tpl := scene.NewTemplate("fx", func(n *scene.Node) { n.AddComponent(&probe{trace: &trace}) })
	p, err := New(scene.NewWorld(), Definition{Key: "fx", Template: tpl, MaxSize: 4, AutoExpand: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n := p.Get(Placement{})
	pr, _ := scene.Component[*probe](n)
	pi, _ := Of(n)
	if !pi.IsSpawned() {
		t.Fatal("expected spawned instance")
	}

	p.Release(n)
	if n.Active() || n.Parent() != p.Container() {
		t.Fatal("released node must be inactive under the container")
	}
	if pr.spawned != 1 || pr.despawned != 1 {
		t.Fatalf("unexpected hook counts %d/%d", pr.spawned, pr.despawned)
	}
	if len(trace) != 2 || trace[0] != "spawned" || trace[1] != "despawned" {
		t.Fatalf("unexpected hook order %v", trace)
	}
	if pi.IsSpawned() {
		t.Fatal("released instance must not report spawned")
	}
}

func TestReleaseForeignDestroysWithoutTouchingCounters(t *testing.T) {
	rec := observability.NewRecorder()
	p := newTestPool(t, "bullet", 2, 10, true, WithLogger(rec))
	p.Get(Placement{})

	stranger := p.world.NewNode("stranger", nil)
	p.Release(stranger)
	if !stranger.Destroyed() {
		t.Fatal("foreign node must be destroyed")
	}
	assertCounts(t, p, 1, 1)
	if rec.Count("warn") != 1 {
		t.Fatalf("expected one warning, got %d", rec.Count("warn"))
	}

	other := newTestPool(t, "other", 1, 10, true)
	borrowed := other.Get(Placement{})
	p.Release(borrowed)
	if !borrowed.Destroyed() {
		t.Fatal("node leased from another pool is foreign here")
	}
	assertCounts(t, p, 1, 1)

	p.Release(nil)
}

func TestDoubleReleaseIsIgnored(t *testing.T) {
	rec := observability.NewRecorder()
	p := newTestPool(t, "bullet", 0, 10, true, WithLogger(rec))
	n := p.Get(Placement{})
	p.Release(n)
	p.Release(n)

	if n.Destroyed() {
		t.Fatal("double release must not destroy an idle member")
	}
	assertCounts(t, p, 0, 1)
	assertExclusive(t, p)
	if p.Get(Placement{}) != n {
		t.Fatal("idle member should still be reusable")
	}
}

func TestReentrantDespawnFromHook(t *testing.T) {
	p := newTestPool(t, "bullet", 0, 10, true)
	n := p.Get(Placement{})
	pr, _ := scene.Component[*probe](n)
	pi, _ := Of(n)

	hooked := &despawnOnRelease{pi: pi}
	n.AddComponent(hooked)
	p.Release(n)

	if n.Destroyed() {
		t.Fatal("re-entrant despawn must not destroy the node")
	}
	assertCounts(t, p, 0, 1)
	if pr.despawned != 1 {
		t.Fatalf("expected single despawn hook, got %d", pr.despawned)
	}
}

type despawnOnRelease struct {
	pi *PooledInstance
}

func (d *despawnOnRelease) OnSpawned() {}

func (d *despawnOnRelease) OnDespawned() { d.pi.Despawn() }

func TestExternallyDestroyedInstancesAreDropped(t *testing.T) {
	p := newTestPool(t, "bullet", 2, 10, true)
	p.free[1].Destroy()

	n := p.Get(Placement{})
	if n.Destroyed() {
		t.Fatal("destroyed idle node must be skipped")
	}
	assertCounts(t, p, 1, 0)

	n.Destroy()
	p.Release(n)
	assertCounts(t, p, 0, 0)
}

func TestReleaseAllUsesSnapshot(t *testing.T) {
	p := newTestPool(t, "bullet", 0, 10, true)
	for i := 0; i < 7; i++ {
		p.Get(Placement{})
	}
	p.ReleaseAll()
	assertCounts(t, p, 0, 7)
	assertExclusive(t, p)
}

func TestClearDestroysEverything(t *testing.T) {
	p := newTestPool(t, "bullet", 3, 10, true)
	leased := p.Get(Placement{})
	idle := p.free[0]
	pi, _ := Of(leased)

	p.Clear()
	if !leased.Destroyed() || !idle.Destroyed() || !p.Container().Destroyed() {
		t.Fatal("clear must destroy instances and container")
	}
	assertCounts(t, p, 0, 0)
	if pi.Pool() != nil {
		t.Fatal("cleared pool must not be reachable from instances")
	}
	if p.world.Count() != 0 {
		t.Fatalf("expected empty world, got %d nodes", p.world.Count())
	}
}

func TestPooledInstanceDespawnWithoutPoolDestroys(t *testing.T) {
	w := scene.NewWorld()
	n := w.NewNode("loose", nil)
	pi := &PooledInstance{}
	n.AddComponent(pi)

	if pi.IsSpawned() {
		t.Fatal("instance without pool is never spawned")
	}
	pi.Despawn()
	if !n.Destroyed() {
		t.Fatal("despawn without pool must destroy")
	}
}

func TestGetAsReturnsAspect(t *testing.T) {
	p := newTestPool(t, "bullet", 0, 10, true)
	pr, ok := GetAs[*probe](p, Placement{})
	if !ok || pr == nil || pr.spawned != 1 {
		t.Fatalf("expected spawned probe aspect, got %v %v", pr, ok)
	}
	if _, ok := GetAs[*despawnOnRelease](p, Placement{}); ok {
		t.Fatal("absent aspect must report false")
	}
}

func TestTemplateProvidedRecordIsReused(t *testing.T) {
	tpl := scene.NewTemplate("tagged", func(n *scene.Node) { n.AddComponent(&PooledInstance{}) })
	p, err := New(scene.NewWorld(), Definition{Key: "tagged", Template: tpl, InitialSize: 1, MaxSize: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	records := scene.Components[*PooledInstance](p.free[0])
	if len(records) != 1 || records[0].Pool() != p {
		t.Fatalf("expected a single record bound to the pool, got %d", len(records))
	}
}
