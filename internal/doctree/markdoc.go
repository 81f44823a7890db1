package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// markdocNode mirrors a serialized Markdoc render-tree tag:
// {"$$mdtype":"Tag","name":"Heading","attributes":{...},"children":[...]}.
type markdocNode struct {
	Name       string            `json:"name"`
	Attributes map[string]any    `json:"attributes"`
	Children   []json.RawMessage `json:"children"`
}

// DecodeMarkdoc decodes a Markdoc render tree. The top level may be a single
// tag or an array of tags, which is wrapped in a "Fragment" node.
func DecodeMarkdoc(data []byte) (*Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode markdoc fragment: %w", err)
		}
		root := &Node{Name: "Fragment"}
		for _, raw := range items {
			c, ok, err := decodeChild(raw)
			if err != nil {
				return nil, err
			}
			if ok {
				root.Append(c)
			}
		}
		return root, nil
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UnmarshalJSON decodes a Markdoc tag into n.
func (n *Node) UnmarshalJSON(data []byte) error {
	var m markdocNode
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode markdoc node: %w", err)
	}
	n.Name = m.Name
	n.Attributes = m.Attributes
	n.Children = nil
	for _, raw := range m.Children {
		c, ok, err := decodeChild(raw)
		if err != nil {
			return err
		}
		if ok {
			n.Children = append(n.Children, c)
		}
	}
	return nil
}

// MarshalJSON encodes n in the Markdoc render-tree shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	children := make([]any, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsText() {
			children = append(children, c.Text)
		} else {
			children = append(children, c.Node)
		}
	}
	attrs := n.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return json.Marshal(map[string]any{
		"$$mdtype":   "Tag",
		"name":       n.Name,
		"attributes": attrs,
		"children":   children,
	})
}

// decodeChild returns ok=false for null, number and boolean children, which
// Markdoc renders as nothing.
func decodeChild(raw json.RawMessage) (Child, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Child{}, false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Child{}, false, fmt.Errorf("decode markdoc text: %w", err)
		}
		return Text(s), true, nil
	case '{':
		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			return Child{}, false, err
		}
		return Elem(&n), true, nil
	case '[':
		// Nested arrays are fragments; splice them in as a node.
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Child{}, false, fmt.Errorf("decode markdoc fragment: %w", err)
		}
		frag := &Node{Name: "Fragment"}
		for _, item := range items {
			c, ok, err := decodeChild(item)
			if err != nil {
				return Child{}, false, err
			}
			if ok {
				frag.Append(c)
			}
		}
		return Elem(frag), true, nil
	}
	return Child{}, false, nil
}
