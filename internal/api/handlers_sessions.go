package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/doctoc/internal/session"
	"github.com/dgallion1/doctoc/internal/toc"
)

const maxSessionBody = 1 << 20

type createSessionRequest struct {
	Entries      []toc.Entry `json:"entries"`
	ScrollMargin string      `json:"scroll_margin"`
}

type headingRequest struct {
	Top   float64 `json:"top"`
	Level int     `json:"level"`
}

type scrollRequest struct {
	Offset       float64 `json:"offset"`
	ScrollMargin *string `json:"scroll_margin,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	margin := req.ScrollMargin
	if margin == "" {
		margin = s.cfg.DefaultScrollMargin
	}
	sess := s.sessions.Create(req.Entries, margin)
	writeJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "sessionID")) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRegisterHeading records or moves a heading's measured position.
func (s *Server) handleRegisterHeading(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req headingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Level < 1 || req.Level > 6 {
		jsonError(w, "level must be between 1 and 6", http.StatusBadRequest)
		return
	}
	sess.Tracker.RegisterHeading(chi.URLParam(r, "headingID"), req.Top, req.Level)
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleUnregisterHeading(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Tracker.UnregisterHeading(chi.URLParam(r, "headingID"))
	writeJSON(w, http.StatusOK, sess.State())
}

// handleScroll moves the session's viewport, optionally updating the
// scroll margin first.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ScrollMargin != nil {
		sess.Viewport.SetScrollMargin(*req.ScrollMargin)
	}
	sess.Viewport.Scroll(req.Offset)
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSessionBody))
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
