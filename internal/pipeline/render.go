package pipeline

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/toc"
)

// Render parses data as filename and returns its outline. A non-empty title
// replaces the one the parser derived.
func Render(data []byte, filename, title string, opts parser.Options) (toc.Outline, error) {
	p, err := parser.ForFileWith(filename, opts)
	if err != nil {
		return toc.Outline{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return toc.Outline{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if title != "" {
		tree.Title = title
	}
	return toc.NewOutline(tree), nil
}
