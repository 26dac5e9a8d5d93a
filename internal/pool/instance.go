package pool

import (
	"weak"

	"github.com/coachpo/spawnpool/internal/scene"
)

// PooledInstance is attached to every node a pool creates. It remembers the
// owning pool without keeping it alive, so a despawn can be routed back to it.
type PooledInstance struct {
	node     *scene.Node
	pool     weak.Pointer[Pool]
	returned bool
}

// Attach implements scene.Attachable.
func (pi *PooledInstance) Attach(n *scene.Node) { pi.node = n }

// Node returns the node the record is attached to.
func (pi *PooledInstance) Node() *scene.Node { return pi.node }

// Pool returns the owning pool, or nil once it has been cleared or collected.
func (pi *PooledInstance) Pool() *Pool {
	p := pi.pool.Value()
	if p == nil || p.cleared {
		return nil
	}
	return p
}

// IsSpawned reports whether the node is currently leased from a live pool.
func (pi *PooledInstance) IsSpawned() bool {
	return pi.Pool() != nil && pi.node != nil && pi.node.Active()
}

// Despawn returns the node to its pool, or destroys it when the pool is gone.
func (pi *PooledInstance) Despawn() {
	if p := pi.Pool(); p != nil {
		p.Release(pi.node)
		return
	}
	if pi.node != nil {
		pi.node.Destroy()
	}
}

// Of returns the pool record attached to n, if any.
func Of(n *scene.Node) (*PooledInstance, bool) {
	return scene.Component[*PooledInstance](n)
}
