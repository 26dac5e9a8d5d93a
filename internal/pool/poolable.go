package pool

// Poolable is implemented by components that need to react to leasing.
// OnSpawned runs after the node is placed and activated; OnDespawned runs
// before it is deactivated and returned to the free list. Both may run any
// number of times over a node's lifetime.
type Poolable interface {
	OnSpawned()
	OnDespawned()
}
