package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/doctoc/internal/doctree"
)

// MarkdocParser handles serialized Markdoc render trees (JSON).
type MarkdocParser struct{}

func (p *MarkdocParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	root, err := doctree.DecodeMarkdoc(data)
	if err != nil {
		return nil, fmt.Errorf("parse markdoc: %w", err)
	}
	return &doctree.DocTree{
		Title: titleFromFilename(filename, ".markdoc.json", ".json"),
		Root:  root,
	}, nil
}
