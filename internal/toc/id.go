package toc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/doctoc/internal/doctree"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// GenerateID returns the anchor id for a heading. An explicit string "id"
// attribute wins; otherwise the text leaves are joined with spaces, question
// marks stripped, whitespace collapsed to hyphens and the result lowercased.
func GenerateID(children []doctree.Child, attributes map[string]any) string {
	if id, ok := attributes["id"].(string); ok && id != "" {
		return id
	}
	var parts []string
	for _, c := range children {
		if c.IsText() {
			parts = append(parts, c.Text)
		}
	}
	return Slugify(strings.Join(parts, " "))
}

// Slugify applies the heading id transformation to plain text.
func Slugify(s string) string {
	s = strings.ReplaceAll(s, "?", "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

// Slugger hands out unique heading ids within one document.
// The zero value is ready to use.
type Slugger struct {
	seen map[string]bool
}

// Reserve marks an explicit id as taken without altering it.
func (s *Slugger) Reserve(id string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	s.seen[id] = true
}

// Unique returns id if unused, else the first free id-1, id-2, ...
func (s *Slugger) Unique(id string) string {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[id] {
		s.seen[id] = true
		return id
	}
	for n := 1; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if !s.seen[candidate] {
			s.seen[candidate] = true
			return candidate
		}
	}
}

// Assign resolves the id for a heading node: an explicit id is reserved and
// returned unchanged, a generated one is made unique.
func (s *Slugger) Assign(children []doctree.Child, attributes map[string]any) string {
	if id, ok := attributes["id"].(string); ok && id != "" {
		s.Reserve(id)
		return id
	}
	return s.Unique(GenerateID(children, attributes))
}
