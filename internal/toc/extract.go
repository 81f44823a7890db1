// Package toc extracts headings from parsed documents and folds them into a
// two-level table of contents.
package toc

import (
	"strconv"

	"github.com/dgallion1/doctoc/internal/doctree"
)

// HeadingNode is the node name parsers give to headings.
const HeadingNode = "Heading"

// Heading is a heading found in a document.
type Heading struct {
	Title      string         `json:"title" yaml:"title"`
	ID         string         `json:"id" yaml:"id"`
	Level      int            `json:"level" yaml:"level"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"` // everything except id and level
}

// ExtractHeadings walks root in pre-order and returns every heading node whose
// first child is text. Headings with a non-numeric level are skipped. Nodes
// without an explicit id get a generated one, unique within this call.
func ExtractHeadings(root *doctree.Node) []Heading {
	headings := []Heading{}
	var slugs Slugger

	// Explicit ids are reserved up front so generated ids never shadow an
	// id that appears later in the document.
	doctree.Walk(root, func(n *doctree.Node) bool {
		if n.Name == HeadingNode {
			if id, ok := n.Attr("id").(string); ok && id != "" {
				slugs.Reserve(id)
			}
		}
		return true
	})

	doctree.Walk(root, func(n *doctree.Node) bool {
		if n.Name != HeadingNode || len(n.Children) == 0 || !n.Children[0].IsText() {
			return true
		}
		level, ok := levelOf(n.Attr("level"))
		if !ok {
			return true
		}
		id, _ := n.Attr("id").(string)
		if id == "" {
			id = slugs.Unique(GenerateID(n.Children, n.Attributes))
		}
		headings = append(headings, Heading{
			Title:      n.Children[0].Text,
			ID:         id,
			Level:      level,
			Attributes: otherAttributes(n.Attributes),
		})
		return true
	})
	return headings
}

func levelOf(v any) (int, bool) {
	switch l := v.(type) {
	case int:
		return l, true
	case int64:
		return int(l), true
	case float64:
		if l != float64(int(l)) {
			return 0, false
		}
		return int(l), true
	case string:
		n, err := strconv.Atoi(l)
		return n, err == nil
	}
	return 0, false
}

func otherAttributes(attrs map[string]any) map[string]any {
	var out map[string]any
	for k, v := range attrs {
		if k == "id" || k == "level" {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
