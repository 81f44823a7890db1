package toc

import "github.com/dgallion1/doctoc/internal/doctree"

// Outline is the navigable summary of one document.
type Outline struct {
	Title    string    `json:"title" yaml:"title"`
	Headings []Heading `json:"headings" yaml:"headings"`
	Entries  []Entry   `json:"entries" yaml:"entries"`
	Dropped  []Heading `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// NewOutline extracts and builds the outline for a parsed document.
func NewOutline(tree *doctree.DocTree) Outline {
	if tree == nil {
		return Outline{Headings: []Heading{}, Entries: []Entry{}}
	}
	headings := ExtractHeadings(tree.Root)
	b := NewBuilder()
	for _, h := range headings {
		b.Add(h)
	}
	return Outline{
		Title:    tree.Title,
		Headings: headings,
		Entries:  b.Entries(),
		Dropped:  b.Dropped(),
	}
}
