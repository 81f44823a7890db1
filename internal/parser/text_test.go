package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/doctoc/internal/doctree"
)

func paragraphTexts(root *doctree.Node) []string {
	var out []string
	doctree.Walk(root, func(n *doctree.Node) bool {
		if n.Name == "Paragraph" {
			out = append(out, n.TextContent())
		}
		return true
	})
	return out
}

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	got := paragraphTexts(tree.Root)
	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if tree.Root != nil {
		t.Errorf("expected nil root for empty input, got %+v", tree.Root)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(paragraphTexts(tree.Root)); n != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", n)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(paragraphTexts(tree.Root)); n != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", n)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.md", false},
		{"a.MARKDOWN", false},
		{"a.mdoc", false},
		{"tree.json", false},
		{"page.htm", false},
		{"doc.pdf", false},
		{"doc.docx", false},
		{"notes.txt", false},
		{"data.csv", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): expected error=%v, got %v", tt.filename, tt.wantErr, err)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.filename)
		}
	}

	p, err := ForFileWith("scan.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pp, ok := p.(*PDFParser); !ok || !pp.FallbackPdftotext {
		t.Errorf("expected pdf parser with fallback enabled, got %#v", p)
	}
}

func TestPagesToTree(t *testing.T) {
	root := pagesToTree([]string{"first page", "  ", "third page"})
	if root == nil {
		t.Fatal("expected a tree")
	}
	var ids []string
	doctree.Walk(root, func(n *doctree.Node) bool {
		if n.Name == "Heading" {
			ids = append(ids, n.Attr("id").(string))
		}
		return true
	})
	if strings.Join(ids, ",") != "page-1,page-3" {
		t.Errorf("expected page-1,page-3 got %v", ids)
	}

	if pagesToTree([]string{"", " "}) != nil {
		t.Error("expected nil tree for blank pages")
	}
}
