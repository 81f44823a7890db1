package toc

import "github.com/dgallion1/doctoc/internal/doctree"

// Entry is one line of the table of contents. Only level-2 entries have
// children, and those children are level-3 entries.
type Entry struct {
	Title    string  `json:"title" yaml:"title"`
	Slug     string  `json:"slug" yaml:"slug"`
	Children []Entry `json:"children" yaml:"children"`
}

// Builder folds a flat heading sequence into entries.
type Builder struct {
	entries []Entry
	last    int // index of the most recent level-2 entry, -1 before any
	dropped []Heading
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: []Entry{}, last: -1}
}

// Add appends h. A level-3 heading with no preceding level-2 heading has no
// parent and is dropped; levels other than 2 and 3 are ignored.
func (b *Builder) Add(h Heading) {
	switch h.Level {
	case 2:
		b.entries = append(b.entries, Entry{Title: h.Title, Slug: h.ID, Children: []Entry{}})
		b.last = len(b.entries) - 1
	case 3:
		if b.last < 0 {
			b.dropped = append(b.dropped, h)
			return
		}
		parent := &b.entries[b.last]
		parent.Children = append(parent.Children, Entry{Title: h.Title, Slug: h.ID, Children: []Entry{}})
	}
}

// Entries returns the entries built so far.
func (b *Builder) Entries() []Entry {
	return b.entries
}

// Dropped returns level-3 headings that arrived before any level-2 heading.
func (b *Builder) Dropped() []Heading {
	return b.dropped
}

// FromHeadings builds entries from an already extracted sequence.
func FromHeadings(headings []Heading) []Entry {
	b := NewBuilder()
	for _, h := range headings {
		b.Add(h)
	}
	return b.Entries()
}

// Build extracts the headings of root and returns its table of contents.
func Build(root *doctree.Node) []Entry {
	return FromHeadings(ExtractHeadings(root))
}

// IsActive reports whether e should be highlighted for the current section:
// either e itself or one of its children is current.
func IsActive(e Entry, current string) bool {
	if current == "" {
		return false
	}
	if e.Slug == current {
		return true
	}
	for _, c := range e.Children {
		if c.Slug == current {
			return true
		}
	}
	return false
}

// FirstSlug returns the slug of the first top-level entry, or "".
func FirstSlug(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Slug
}

// Slugs returns every slug in entries, parents before their children.
func Slugs(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Slug)
		for _, c := range e.Children {
			out = append(out, c.Slug)
		}
	}
	return out
}
