package doctree

// DocTree is the root of a parsed document.
type DocTree struct {
	Title string // Document title (from metadata or filename)
	Root  *Node  // Parsed content, nil for an empty document
}

// Node is one element of a parsed document: a heading, paragraph, list, etc.
type Node struct {
	Name       string         // Node kind, e.g. "Heading" or "Paragraph"
	Attributes map[string]any // Scalar attributes such as id and level
	Children   []Child        // Ordered text leaves and nested nodes
}

// Child is either a text leaf or a nested node.
type Child struct {
	Text string
	Node *Node
}

// Text returns a text leaf.
func Text(s string) Child {
	return Child{Text: s}
}

// Elem returns a child wrapping n.
func Elem(n *Node) Child {
	return Child{Node: n}
}

// IsText reports whether c is a text leaf.
func (c Child) IsText() bool {
	return c.Node == nil
}

// Attr returns the named attribute, or nil.
func (n *Node) Attr(key string) any {
	if n == nil || n.Attributes == nil {
		return nil
	}
	return n.Attributes[key]
}

// SetAttr sets an attribute, allocating the map if needed.
func (n *Node) SetAttr(key string, v any) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]any)
	}
	n.Attributes[key] = v
}

// Append adds children to n.
func (n *Node) Append(children ...Child) {
	n.Children = append(n.Children, children...)
}

// TextContent concatenates every text leaf below n in document order.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var buf []byte
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.IsText() {
				buf = append(buf, c.Text...)
			} else {
				walk(c.Node)
			}
		}
	}
	walk(n)
	return string(buf)
}

// Walk visits n and its descendants in depth-first pre-order.
// Returning false from fn stops descent into that node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		if !c.IsText() {
			Walk(c.Node, fn)
		}
	}
}
