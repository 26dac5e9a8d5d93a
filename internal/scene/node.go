// Package scene is the minimal host object model pooled instances live in:
// templates, nodes with transforms and components, and a world that owns the
// hierarchy and drives per-tick updates.
package scene

import (
	"github.com/google/uuid"
)

// Attachable components are told which node they were added to.
type Attachable interface {
	Attach(n *Node)
}

// Updater components are ticked by World.Update while their node is active.
type Updater interface {
	Update(dt float64)
}

// Node is one materialized object in a World.
type Node struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3

	id         uuid.UUID
	name       string
	world      *World
	parent     *Node
	children   []*Node
	components []any
	active     bool
	destroyed  bool
}

func newNode(w *World, name string) *Node {
	return &Node{
		Position: Zero,
		Rotation: Identity(),
		Scale:    One,
		id:       uuid.New(),
		name:     name,
		world:    w,
		active:   true,
	}
}

func (n *Node) ID() uuid.UUID { return n.id }

func (n *Node) Name() string { return n.name }

// SetName renames the node.
func (n *Node) SetName(name string) { n.name = name }

func (n *Node) World() *World { return n.world }

func (n *Node) Parent() *Node { return n.parent }

// Children returns a snapshot of the direct children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Active reports the node's own active flag.
func (n *Node) Active() bool { return n.active }

// SetActive toggles the node's own active flag.
func (n *Node) SetActive(active bool) {
	if n.destroyed {
		return
	}
	n.active = active
}

// ActiveInHierarchy reports whether the node and all of its ancestors are active.
func (n *Node) ActiveInHierarchy() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.active || cur.destroyed {
			return false
		}
	}
	return true
}

// Destroyed reports whether Destroy has been called on the node or an ancestor.
func (n *Node) Destroyed() bool { return n.destroyed }

// SetPlacement sets position and rotation together.
func (n *Node) SetPlacement(pos Vec3, rot Quat) {
	n.Position = pos
	n.Rotation = rot
}

// SetParent moves the node under parent; nil means the world root.
func (n *Node) SetParent(parent *Node) {
	if n.destroyed {
		return
	}
	if parent == nil && n.world != nil {
		parent = n.world.root
	}
	if parent == n.parent || parent == n {
		return
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// AddComponent attaches c to the node.
func (n *Node) AddComponent(c any) {
	if c == nil || n.destroyed {
		return
	}
	n.components = append(n.components, c)
	if a, ok := c.(Attachable); ok {
		a.Attach(n)
	}
}

// Components returns a snapshot of the attached components in attachment order.
func (n *Node) Components() []any {
	out := make([]any, len(n.components))
	copy(out, n.components)
	return out
}

// Destroy removes the node and its subtree from the world. Calling it again is a no-op.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.destroyRecursive()
}

func (n *Node) destroyRecursive() {
	n.destroyed = true
	n.active = false
	if n.world != nil {
		n.world.live--
	}
	for _, c := range n.children {
		c.destroyRecursive()
	}
	n.children = nil
	n.parent = nil
}

// Component returns the first component of n that is a T.
func Component[T any](n *Node) (T, bool) {
	var zero T
	if n == nil {
		return zero, false
	}
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	return zero, false
}

// Components returns every component of n that is a T, in attachment order.
func Components[T any](n *Node) []T {
	if n == nil {
		return nil
	}
	var out []T
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
