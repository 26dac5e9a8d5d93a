//go:build debug

package pool

import (
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/coachpo/spawnpool/internal/scene"
)

type debugState struct {
	name   string
	stacks map[uuid.UUID]string
}

func newDebugState(name string) *debugState {
	return &debugState{
		name:   name,
		stacks: make(map[uuid.UUID]string),
	}
}

func (d *debugState) recordSpawn(n *scene.Node) {
	if d == nil || n == nil {
		return
	}
	d.stacks[n.ID()] = string(debug.Stack())
}

func (d *debugState) recordRelease(n *scene.Node) {
	if d == nil || n == nil {
		return
	}
	delete(d.stacks, n.ID())
}

func (d *debugState) activeStacks() []string {
	if d == nil || len(d.stacks) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.stacks))
	for _, stack := range d.stacks {
		out = append(out, stack)
	}
	return out
}
