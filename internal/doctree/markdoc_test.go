package doctree

import (
	"encoding/json"
	"testing"
)

const sampleTree = `{
  "$$mdtype": "Tag",
  "name": "article",
  "attributes": {},
  "children": [
    {"$$mdtype": "Tag", "name": "Heading", "attributes": {"id": "intro", "level": 2}, "children": ["Intro"]},
    {"$$mdtype": "Tag", "name": "Paragraph", "attributes": {}, "children": ["Hello ", {"name": "strong", "children": ["world"]}, null, 3]}
  ]
}`

func TestDecodeMarkdoc_Tag(t *testing.T) {
	root, err := DecodeMarkdoc([]byte(sampleTree))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Name != "article" {
		t.Errorf("expected name %q, got %q", "article", root.Name)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	h := root.Children[0].Node
	if h == nil || h.Name != "Heading" {
		t.Fatalf("expected Heading node, got %+v", root.Children[0])
	}
	if h.Attr("id") != "intro" {
		t.Errorf("expected id %q, got %v", "intro", h.Attr("id"))
	}
	if lvl, ok := h.Attr("level").(float64); !ok || lvl != 2 {
		t.Errorf("expected level 2, got %v", h.Attr("level"))
	}

	// null and numeric children are dropped.
	p := root.Children[1].Node
	if len(p.Children) != 2 {
		t.Fatalf("expected 2 paragraph children, got %d", len(p.Children))
	}
	if got := p.TextContent(); got != "Hello world" {
		t.Errorf("expected text %q, got %q", "Hello world", got)
	}
}

func TestDecodeMarkdoc_ArrayAndEmpty(t *testing.T) {
	root, err := DecodeMarkdoc([]byte(`[{"name":"Heading","attributes":{"level":2},"children":["A"]}, "tail"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Name != "Fragment" || len(root.Children) != 2 {
		t.Fatalf("expected fragment with 2 children, got %+v", root)
	}

	for _, in := range []string{"", "  ", "null"} {
		root, err := DecodeMarkdoc([]byte(in))
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", in, err)
		}
		if root != nil {
			t.Errorf("input %q: expected nil root, got %+v", in, root)
		}
	}
}

func TestDecodeMarkdoc_Invalid(t *testing.T) {
	if _, err := DecodeMarkdoc([]byte(`{"name": 5}`)); err == nil {
		t.Error("expected error for non-string name")
	}
}

func TestNode_MarshalRoundTripShape(t *testing.T) {
	n := &Node{Name: "Heading"}
	n.SetAttr("level", 2)
	n.Append(Text("Usage"))

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := DecodeMarkdoc(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Name != "Heading" || back.TextContent() != "Usage" {
		t.Errorf("unexpected decoded node %+v", back)
	}
}

func TestWalk_PreOrderAndPrune(t *testing.T) {
	leaf := &Node{Name: "c"}
	mid := &Node{Name: "b", Children: []Child{Elem(leaf)}}
	root := &Node{Name: "a", Children: []Child{Elem(mid), Text("x"), Elem(&Node{Name: "d"})}}

	var names []string
	Walk(root, func(n *Node) bool {
		names = append(names, n.Name)
		return n.Name != "b"
	})
	want := "a,b,d"
	got := ""
	for i, n := range names {
		if i > 0 {
			got += ","
		}
		got += n
	}
	if got != want {
		t.Errorf("expected visit order %q, got %q", want, got)
	}

	Walk(nil, func(*Node) bool {
		t.Error("callback must not run for nil root")
		return true
	})
}
