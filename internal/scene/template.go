package scene

// Template describes how to build a node. Templates are compared by pointer
// identity: two templates with the same name and build function are distinct.
type Template struct {
	name  string
	build func(*Node)
}

// NewTemplate returns a template named name; build attaches components to each new node.
func NewTemplate(name string, build func(*Node)) *Template {
	return &Template{name: name, build: build}
}

func (t *Template) Name() string { return t.name }

// Instantiate materializes a new active node from the template under parent.
func (t *Template) Instantiate(w *World, parent *Node) *Node {
	n := w.NewNode(t.name, parent)
	if t.build != nil {
		t.build(n)
	}
	return n
}
