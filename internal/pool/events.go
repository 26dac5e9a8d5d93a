package pool

import "github.com/coachpo/spawnpool/internal/scene"

// Lifecycle events posted to the bus configured with WithEvents. They are
// delivered on the host's next drain, not inline.
type (
	// PoolCreated is posted once per new pool.
	PoolCreated struct {
		Key      string
		Template string
	}
	// Spawned is posted when a pool hands out a node.
	Spawned struct {
		Key  string
		Node *scene.Node
	}
	// Despawned is posted when a node goes back to its free list.
	Despawned struct {
		Key  string
		Node *scene.Node
	}
	// ForeignDestroyed is posted when a node that was not leased from the
	// addressed pool is destroyed instead of recycled. Key is empty when
	// the manager could not route the node to any pool.
	ForeignDestroyed struct {
		Key  string
		Node *scene.Node
	}
	// PoolsCleared is posted by Manager.ClearAll.
	PoolsCleared struct {
		Count int
	}
)
