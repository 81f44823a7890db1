package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/doctoc/internal/doctree"
)

// TextParser handles plain text files. Plain text has no headings, so the
// resulting outline is always empty.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{
		Title: titleFromFilename(filename, ".txt"),
	}
	if len(paragraphs) == 0 {
		return tree, nil
	}

	// Each paragraph becomes a child node.
	tree.Root = &doctree.Node{Name: "Document"}
	for _, para := range paragraphs {
		tree.Root.Append(doctree.Elem(newParagraph(para)))
	}
	return tree, nil
}
