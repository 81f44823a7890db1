package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/toc"
)

// handleTOC renders an uploaded document's outline synchronously.
func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	outline, cached, err := s.orchestrator.RenderSync(data, filename, r.FormValue("title"))
	if err != nil {
		s.log.Warn("outline render failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if cached {
		w.Header().Set("X-Doctoc-Cache", "hit")
	}
	writeJSON(w, http.StatusOK, outline)
}

// handleMarkdocTOC builds an outline from a Markdoc render tree posted as
// JSON. The optional title query parameter names the document.
func (s *Server) handleMarkdocTOC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	root, err := doctree.DecodeMarkdoc(body)
	if err != nil {
		jsonError(w, "invalid render tree: "+err.Error(), http.StatusBadRequest)
		return
	}
	tree := &doctree.DocTree{Title: r.URL.Query().Get("title"), Root: root}
	writeJSON(w, http.StatusOK, toc.NewOutline(tree))
}

// handleRender converts uploaded Markdown to HTML whose heading anchors
// match the returned outline's slugs.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".mdoc":
	default:
		jsonError(w, "render supports markdown files only", http.StatusBadRequest)
		return
	}

	html, tree, err := parser.RenderMarkdown(data, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := r.FormValue("title"); title != "" {
		tree.Title = title
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"html":    string(html),
		"outline": toc.NewOutline(tree),
	})
}
