// Package demo is a small bullet/explosion/floating text scene that exercises
// the pools the way a game would: bursts of short-lived objects that despawn
// themselves and spawn follow-up effects.
package demo

import (
	"sort"
	"time"

	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

// Pool keys and template names used by the demo.
const (
	KeyBullet       = "bullet"
	KeyExplosion    = "explosion"
	KeyFloatingText = "floating_text"
)

// Settings tunes the demo components.
type Settings struct {
	BulletSpeed          float64
	BulletLifetime       time.Duration
	ExplosionDuration    time.Duration
	FloatingTextDuration time.Duration
	FloatingTextRise     float64
}

// DefaultSettings mirrors the defaults of the demo config section.
func DefaultSettings() Settings {
	return Settings{
		BulletSpeed:          10,
		BulletLifetime:       2 * time.Second,
		ExplosionDuration:    time.Second,
		FloatingTextDuration: time.Second,
		FloatingTextRise:     1.5,
	}
}

// Catalog maps template names to the demo templates.
type Catalog struct {
	templates map[string]*scene.Template
}

// NewCatalog builds the demo templates. Bullets spawn their follow-up effects
// through m.
func NewCatalog(m *pool.Manager, s Settings) *Catalog {
	c := &Catalog{templates: make(map[string]*scene.Template, 3)}
	c.templates[KeyBullet] = scene.NewTemplate(KeyBullet, func(n *scene.Node) {
		n.AddComponent(&Bullet{
			manager:  m,
			speed:    s.BulletSpeed,
			lifetime: s.BulletLifetime.Seconds(),
		})
	})
	c.templates[KeyExplosion] = scene.NewTemplate(KeyExplosion, func(n *scene.Node) {
		n.AddComponent(&Explosion{duration: s.ExplosionDuration.Seconds()})
	})
	c.templates[KeyFloatingText] = scene.NewTemplate(KeyFloatingText, func(n *scene.Node) {
		n.AddComponent(&FloatingText{
			duration: s.FloatingTextDuration.Seconds(),
			rise:     s.FloatingTextRise,
		})
	})
	return c
}

// Lookup returns the template named name, or nil.
func (c *Catalog) Lookup(name string) *scene.Template {
	return c.templates[name]
}

// Names lists the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns one default-sized definition per template, keyed by name.
func (c *Catalog) Definitions() []pool.Definition {
	defs := make([]pool.Definition, 0, len(c.templates))
	for _, name := range c.Names() {
		defs = append(defs, pool.NewDefinition(name, c.templates[name]))
	}
	return defs
}
