package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/doctoc/internal/pathstore"
	"github.com/dgallion1/doctoc/internal/toc"
)

// documentSummary is one row of the document listing.
type documentSummary struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	Entries int    `json:"entries"`
}

// handleListDocuments lists all published outlines for a user.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	children, err := s.docs.ListChildren(r.Context(), pathstore.DocumentsPrefix(userID), 500)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), storeErrorCode(err))
		return
	}

	docs := []documentSummary{}
	for _, child := range children {
		docID, ok := outlineDocID(child.Key)
		if !ok {
			continue
		}
		summary := documentSummary{DocID: docID}
		var o toc.Outline
		if err := json.Unmarshal(child.Value, &o); err == nil {
			summary.Title = o.Title
			summary.Entries = len(o.Entries)
		}
		docs = append(docs, summary)
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleGetOutline returns a published outline.
func (s *Server) handleGetOutline(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	o, err := s.docs.GetOutline(r.Context(), userID, docID)
	if err != nil {
		jsonError(w, "failed to load outline: "+err.Error(), storeErrorCode(err))
		return
	}
	if o == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleDeleteDocument deletes a document and everything stored beneath it.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	if err := s.docs.DeleteDocument(r.Context(), userID, docID); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), storeErrorCode(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

// outlineDocID extracts the document id from an outline key such as
// docs/users/u/documents/{doc}/outline. Pathstore may report keys with
// either '/' or '.' separators.
func outlineDocID(key string) (string, bool) {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '.' })
	if len(parts) < 2 || parts[len(parts)-1] != "outline" {
		return "", false
	}
	return parts[len(parts)-2], true
}

// storeErrorCode maps pathstore failures onto response codes.
func storeErrorCode(err error) int {
	var se *pathstore.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
