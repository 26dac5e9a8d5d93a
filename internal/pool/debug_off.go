//go:build !debug

package pool

import "github.com/coachpo/spawnpool/internal/scene"

type debugState struct{}

func newDebugState(string) *debugState { return nil }

func (d *debugState) recordSpawn(*scene.Node) {}

func (d *debugState) recordRelease(*scene.Node) {}

func (d *debugState) activeStacks() []string { return nil }
