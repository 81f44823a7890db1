package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/dgallion1/doctoc/internal/toc"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{
		Title: titleFromFilename(filename, ".html", ".htm"),
	}

	// Extract title from <title> tag if present.
	if title := findTitle(doc); title != "" {
		tree.Title = title
	}

	// Find <body> or use whole document.
	start := findBody(doc)
	if start == nil {
		start = doc
	}

	var slugs toc.Slugger
	reserveHTMLIDs(start, &slugs)

	root := &doctree.Node{Name: "Document"}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				title := textContent(n)
				if title == "" {
					return
				}
				id := attr(n, "id")
				if id == "" {
					id = slugs.Unique(toc.Slugify(title))
				}
				root.Append(doctree.Elem(newHeading(level, id, title)))
				return // Don't recurse into heading children (already extracted text).
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					root.Append(doctree.Elem(newParagraph(t)))
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(start)

	if len(root.Children) > 0 {
		tree.Root = root
	}
	return tree, nil
}

// reserveHTMLIDs marks ids already present on headings as taken.
func reserveHTMLIDs(n *html.Node, slugs *toc.Slugger) {
	if n.Type == html.ElementNode && headingLevel(n.Data) > 0 {
		if id := attr(n, "id"); id != "" {
			slugs.Reserve(id)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		reserveHTMLIDs(c, slugs)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
