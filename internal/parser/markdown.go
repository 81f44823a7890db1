package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/dgallion1/doctoc/internal/toc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown and Markdoc source files using goldmark.
// Headings accept explicit ids with the attribute syntax: ## Title {#id}.
type MarkdownParser struct{}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithParserOptions(gmparser.WithAttribute()))
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := newMarkdown().Parser().Parse(text.NewReader(src))
	return &doctree.DocTree{
		Title: titleFromFilename(filename, ".markdown", ".mdoc", ".md"),
		Root:  convertMarkdown(doc, src),
	}, nil
}

// convertMarkdown maps a goldmark AST onto doctree nodes. Heading ids are
// assigned here and written back onto the goldmark nodes so a later HTML
// render carries the same anchors.
func convertMarkdown(doc ast.Node, src []byte) *doctree.Node {
	c := &mdConverter{src: src}

	// Explicit ids are reserved before any id is generated.
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			if id := explicitID(h); id != "" {
				c.slugs.Reserve(id)
			}
		}
		return ast.WalkContinue, nil
	})

	return c.block(doc)
}

type mdConverter struct {
	src   []byte
	slugs toc.Slugger
}

func (c *mdConverter) block(n ast.Node) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		out := &doctree.Node{Name: "Heading"}
		c.inlines(out, node)
		trimTrailingText(out)
		id := explicitID(node)
		if id == "" {
			id = c.slugs.Unique(toc.GenerateID(out.Children, nil))
		}
		out.SetAttr("level", node.Level)
		out.SetAttr("id", id)
		node.SetAttributeString("id", []byte(id))
		return out

	case *ast.Paragraph, *ast.TextBlock:
		out := &doctree.Node{Name: "Paragraph"}
		c.inlines(out, node)
		return out

	case *ast.FencedCodeBlock:
		out := &doctree.Node{Name: "Fence"}
		if lang := node.Language(c.src); len(lang) > 0 {
			out.SetAttr("language", string(lang))
		}
		out.Append(doctree.Text(c.lines(node)))
		return out

	case *ast.CodeBlock:
		out := &doctree.Node{Name: "Fence"}
		out.Append(doctree.Text(c.lines(node)))
		return out

	case *ast.HTMLBlock:
		out := &doctree.Node{Name: "HTML"}
		out.Append(doctree.Text(c.lines(node)))
		return out
	}

	out := &doctree.Node{Name: blockName(n)}
	if l, ok := n.(*ast.List); ok {
		out.SetAttr("ordered", l.IsOrdered())
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() == ast.TypeInline {
			c.inline(out, child)
			continue
		}
		out.Append(doctree.Elem(c.block(child)))
	}
	return out
}

func blockName(n ast.Node) string {
	switch n.(type) {
	case *ast.Document:
		return "Document"
	case *ast.List:
		return "List"
	case *ast.ListItem:
		return "Item"
	case *ast.Blockquote:
		return "Blockquote"
	case *ast.ThematicBreak:
		return "Hr"
	}
	return n.Kind().String()
}

func (c *mdConverter) inlines(out *doctree.Node, parent ast.Node) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		c.inline(out, child)
	}
}

func (c *mdConverter) inline(out *doctree.Node, n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		appendText(out, string(node.Segment.Value(c.src)))
		if node.SoftLineBreak() || node.HardLineBreak() {
			appendText(out, "\n")
		}
	case *ast.String:
		appendText(out, string(node.Value))
	case *ast.Emphasis:
		name := "em"
		if node.Level == 2 {
			name = "strong"
		}
		el := &doctree.Node{Name: name}
		c.inlines(el, node)
		out.Append(doctree.Elem(el))
	case *ast.CodeSpan:
		el := &doctree.Node{Name: "code"}
		c.inlines(el, node)
		out.Append(doctree.Elem(el))
	case *ast.Link:
		el := &doctree.Node{Name: "link"}
		el.SetAttr("href", string(node.Destination))
		c.inlines(el, node)
		out.Append(doctree.Elem(el))
	case *ast.AutoLink:
		el := &doctree.Node{Name: "link"}
		el.SetAttr("href", string(node.URL(c.src)))
		el.Append(doctree.Text(string(node.Label(c.src))))
		out.Append(doctree.Elem(el))
	case *ast.Image:
		el := &doctree.Node{Name: "image"}
		el.SetAttr("src", string(node.Destination))
		c.inlines(el, node)
		out.Append(doctree.Elem(el))
	case *ast.RawHTML:
		// Inline HTML is not part of the outline.
	default:
		el := &doctree.Node{Name: n.Kind().String()}
		c.inlines(el, n)
		out.Append(doctree.Elem(el))
	}
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}

// appendText merges s into a trailing text leaf so goldmark's segment splits
// do not fragment a heading title.
func appendText(out *doctree.Node, s string) {
	if s == "" {
		return
	}
	if k := len(out.Children); k > 0 && out.Children[k-1].IsText() {
		out.Children[k-1].Text += s
		return
	}
	out.Append(doctree.Text(s))
}

func trimTrailingText(out *doctree.Node) {
	k := len(out.Children)
	if k == 0 || !out.Children[k-1].IsText() {
		return
	}
	out.Children[k-1].Text = strings.TrimRight(out.Children[k-1].Text, " \t")
	if out.Children[k-1].Text == "" {
		out.Children = out.Children[:k-1]
	}
}

func explicitID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}
