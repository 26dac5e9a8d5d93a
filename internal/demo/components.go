package demo

import (
	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

// despawn hands n back to its pool, or destroys it if it has none.
func despawn(n *scene.Node) {
	if pi, ok := pool.Of(n); ok {
		pi.Despawn()
		return
	}
	n.Destroy()
}

// Bullet flies along its forward axis and, at the end of its lifetime,
// despawns itself and leaves an explosion and a floating label behind.
type Bullet struct {
	node     *scene.Node
	manager  *pool.Manager
	speed    float64
	lifetime float64
	age      float64
}

func (b *Bullet) Attach(n *scene.Node) { b.node = n }

func (b *Bullet) OnSpawned() { b.age = 0 }

func (b *Bullet) OnDespawned() {}

func (b *Bullet) Update(dt float64) {
	b.age += dt
	dir := b.node.Rotation.Rotate(scene.Forward)
	b.node.Position = b.node.Position.Add(dir.Scale(b.speed * dt))
	if b.age < b.lifetime {
		return
	}

	pos := b.node.Position
	despawn(b.node)
	if b.manager == nil {
		return
	}
	if _, err := b.manager.Spawn(KeyExplosion, pool.At(pos, scene.Identity())); err != nil {
		return
	}
	_, _ = SpawnText(b.manager, pos, "hit")
}

// Age is the time since the bullet was last spawned, in seconds.
func (b *Bullet) Age() float64 { return b.age }

// Explosion grows from half to one and a half times its original scale, then
// despawns itself.
type Explosion struct {
	node       *scene.Node
	duration   float64
	timer      float64
	startScale scene.Vec3
}

func (e *Explosion) Attach(n *scene.Node) {
	e.node = n
	e.startScale = n.Scale
}

func (e *Explosion) OnSpawned() {
	e.timer = 0
	e.node.Scale = e.startScale.Scale(0.5)
}

func (e *Explosion) OnDespawned() {}

func (e *Explosion) Update(dt float64) {
	e.timer += dt
	t := 1.0
	if e.duration > 0 {
		t = scene.Clamp01(e.timer / e.duration)
	}
	e.node.Scale = scene.Lerp(e.startScale.Scale(0.5), e.startScale.Scale(1.5), t)
	if e.timer >= e.duration {
		despawn(e.node)
	}
}

// FloatingText rises from a world position while fading out, then despawns.
type FloatingText struct {
	node     *scene.Node
	duration float64
	rise     float64
	timer    float64
	start    scene.Vec3
	text     string
	alpha    float64
}

func (f *FloatingText) Attach(n *scene.Node) { f.node = n }

func (f *FloatingText) OnSpawned() {
	f.timer = 0
	f.alpha = 1
}

func (f *FloatingText) OnDespawned() { f.text = "" }

func (f *FloatingText) Update(dt float64) {
	f.timer += dt
	t := 1.0
	if f.duration > 0 {
		t = scene.Clamp01(f.timer / f.duration)
	}
	f.node.Position = f.start.Add(scene.Up.Scale(f.rise * t))
	f.alpha = 1 - t
	if f.timer >= f.duration {
		despawn(f.node)
	}
}

// SetWorldStart sets the position the text rises from.
func (f *FloatingText) SetWorldStart(pos scene.Vec3) {
	f.start = pos
	f.node.Position = pos
}

func (f *FloatingText) SetText(msg string) { f.text = msg }

func (f *FloatingText) Text() string { return f.text }

// Alpha is the current opacity, 1 when spawned and 0 when finished.
func (f *FloatingText) Alpha() float64 { return f.alpha }

// SpawnText leases a floating label from the floating_text pool and starts it at pos.
func SpawnText(m *pool.Manager, pos scene.Vec3, msg string) (*FloatingText, error) {
	ft, err := pool.SpawnAs[*FloatingText](m, KeyFloatingText, pool.At(scene.Zero, scene.Identity()))
	if err != nil {
		return nil, err
	}
	ft.SetWorldStart(pos)
	ft.SetText(msg)
	return ft, nil
}
