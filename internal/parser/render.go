package parser

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/yuin/goldmark/text"
)

// RenderMarkdown renders src to HTML and returns the parsed tree alongside.
// Heading anchors in the HTML use the same ids as the tree's headings.
func RenderMarkdown(src []byte, filename string) ([]byte, *doctree.DocTree, error) {
	md := newMarkdown()
	doc := md.Parser().Parse(text.NewReader(src))
	tree := &doctree.DocTree{
		Title: titleFromFilename(filename, ".markdown", ".mdoc", ".md"),
		Root:  convertMarkdown(doc, src),
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), tree, nil
}
