package demo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/coachpo/spawnpool/internal/scene"
)

// DefaultPatternScript scatters bullets over a 16x16 square at height 1.
const DefaultPatternScript = `
function place(i, n, t) {
	return { x: Math.random() * 16 - 8, y: 1, z: Math.random() * 16 - 8 };
}
`

// ErrPlaceMissing reports a pattern script without a place function.
var ErrPlaceMissing = errors.New("pattern: place function missing")

// Pattern evaluates a placement script. The script defines
// place(i, n, t) returning {x, y, z} for the i-th of n spawns at time t.
// A Pattern is bound to one goroutine, like the rest of the tick.
type Pattern struct {
	name  string
	rt    *goja.Runtime
	place goja.Callable
}

// NewPattern compiles and runs source, then binds its place function.
func NewPattern(name, source string) (*Pattern, error) {
	if strings.TrimSpace(name) == "" {
		name = "pattern.js"
	}
	prog, err := goja.Compile(name, source, true)
	if err != nil {
		return nil, fmt.Errorf("pattern: compile %q: %w", name, err)
	}
	rt := goja.New()
	if _, err := rt.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("pattern: execute %q: %w", name, err)
	}
	value := rt.Get("place")
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("%w in %q", ErrPlaceMissing, name)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("pattern: %q place is not callable", name)
	}
	return &Pattern{name: name, rt: rt, place: fn}, nil
}

// DefaultPattern returns the built-in scatter pattern.
func DefaultPattern() *Pattern {
	p, err := NewPattern("default.js", DefaultPatternScript)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPattern reads a pattern script from path. An empty path yields the default pattern.
func LoadPattern(path string) (*Pattern, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPattern(), nil
	}
	source, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is operator controlled.
	if err != nil {
		return nil, fmt.Errorf("pattern: read %q: %w", path, err)
	}
	return NewPattern(filepath.Base(path), string(source))
}

func (p *Pattern) Name() string { return p.name }

// Place returns the spawn position for the i-th of n spawns at time t.
func (p *Pattern) Place(i, n int, t float64) (scene.Vec3, error) {
	res, err := p.place(goja.Undefined(), p.rt.ToValue(i), p.rt.ToValue(n), p.rt.ToValue(t))
	if err != nil {
		return scene.Vec3{}, fmt.Errorf("pattern: %s place(%d): %w", p.name, i, err)
	}
	obj, ok := res.(*goja.Object)
	if !ok {
		return scene.Vec3{}, fmt.Errorf("pattern: %s place(%d) must return an object", p.name, i)
	}
	var out [3]float64
	for idx, axis := range []string{"x", "y", "z"} {
		v := obj.Get(axis)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		f := v.ToFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return scene.Vec3{}, fmt.Errorf("pattern: %s place(%d) returned non-finite %s", p.name, i, axis)
		}
		out[idx] = f
	}
	return scene.V(out[0], out[1], out[2]), nil
}
