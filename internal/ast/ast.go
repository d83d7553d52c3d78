// Package ast holds the dialect-neutral syntax tree the lint engine walks.
// Trees are produced by the parse package; the engine only reads them.
package ast

// Dialect identifies which grammar produced a node.
type Dialect int

const (
	// Host nodes come from the TypeScript source itself.
	Host Dialect = iota
	// Template nodes come from an embedded template string.
	Template
)

func (d Dialect) String() string {
	switch d {
	case Host:
		return "host"
	case Template:
		return "template"
	default:
		return "unknown"
	}
}

// Node is one syntax node. Start and End are byte offsets into the buffer
// the node was parsed from: the host Unit for Host nodes, the template
// text for Template nodes. Parent is a back reference only.
type Node struct {
	Kind     string
	Field    string
	Named    bool
	Dialect  Dialect
	Start    int
	End      int
	Parent   *Node
	Children []*Node
}

// Text returns the slice of src covered by n.
func (n *Node) Text(src string) string {
	if n == nil {
		return ""
	}
	return src[n.Start:n.End]
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// FirstChildOfKind returns the first direct child of the given kind.
func (n *Node) FirstChildOfKind(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenByKind returns all direct children of the given kind in order.
func (n *Node) ChildrenByKind(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named (non-punctuation) children.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n == nil || n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling immediately before n.
func (n *Node) PrevSibling() *Node {
	i := n.Index()
	if i <= 0 {
		return nil
	}
	return n.Parent.Children[i-1]
}

// Ancestor returns the nearest ancestor of the given kind.
func (n *Node) Ancestor(kind string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// Walk calls fn for n and its descendants in pre-order. Children of a node
// are skipped when fn returns false for it.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns every node in the subtree (n included) of the given kind.
func (n *Node) Find(kind string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}
