package scene

// World owns the node hierarchy. It is not safe for concurrent use; all calls
// happen on the host's tick goroutine.
type World struct {
	root *Node
	live int
}

// NewWorld returns an empty world.
func NewWorld() *World {
	w := &World{}
	w.root = newNode(w, "")
	return w
}

// Root is the implicit parent of every top-level node.
func (w *World) Root() *Node { return w.root }

// NewNode creates an active node under parent (nil for the root).
func (w *World) NewNode(name string, parent *Node) *Node {
	n := newNode(w, name)
	w.live++
	if parent == nil || parent.destroyed {
		parent = w.root
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	return n
}

// Count returns the number of live nodes, excluding the root.
func (w *World) Count() int { return w.live }

// Update ticks every Updater on every node active in hierarchy. The set of
// updaters is captured before any is called, and each is skipped if its node
// was deactivated or destroyed earlier in the same pass.
func (w *World) Update(dt float64) {
	type pending struct {
		node *Node
		u    Updater
	}
	var batch []pending
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.active {
			return
		}
		for _, c := range n.components {
			if u, ok := c.(Updater); ok {
				batch = append(batch, pending{node: n, u: u})
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(w.root)

	for _, p := range batch {
		if p.node.destroyed || !p.node.ActiveInHierarchy() {
			continue
		}
		p.u.Update(dt)
	}
}

// Find returns the first live node named name, searching depth-first.
func (w *World) Find(name string) *Node {
	var found *Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		for _, c := range n.children {
			if c.name == name {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(w.root)
	return found
}
