// Package session keeps server-side trackers for clients that report
// heading positions and scroll offsets over HTTP.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/doctoc/internal/toc"
	"github.com/dgallion1/doctoc/internal/tracker"
)

// Session pairs a tracker with the viewport the client drives.
type Session struct {
	ID        string
	Tracker   *tracker.Tracker
	Viewport  *tracker.ManualViewport
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// State is a JSON-safe view of a session.
type State struct {
	ID             string                   `json:"session_id"`
	CurrentSection string                   `json:"current_section"`
	ScrollOffset   float64                  `json:"scroll_offset"`
	ScrollMarginPx float64                  `json:"scroll_margin_px"`
	Listening      bool                     `json:"listening"`
	Entries        []toc.Entry              `json:"entries"`
	Headings       []tracker.ContentHeading `json:"headings"`
}

// State returns the session's current state.
func (s *Session) State() State {
	entries := s.Tracker.Entries()
	if entries == nil {
		entries = []toc.Entry{}
	}
	return State{
		ID:             s.ID,
		CurrentSection: s.Tracker.CurrentSection(),
		ScrollOffset:   s.Viewport.ScrollOffset(),
		ScrollMarginPx: s.Viewport.ScrollMarginPx(),
		Listening:      s.Tracker.Listening(),
		Entries:        entries,
		Headings:       s.Tracker.Headings(),
	}
}

// Store is a thread-safe session registry with idle-TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *slog.Logger
}

func NewStore(ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
	}
}

// Create starts a session for entries. scrollMargin is a CSS length such
// as "80px"; unparseable values count as 0.
func (s *Store) Create(entries []toc.Entry, scrollMargin string) *Session {
	id := uuid.NewString()
	vp := tracker.NewManualViewport(scrollMargin)
	now := time.Now()
	sess := &Session{
		ID:        id,
		Viewport:  vp,
		Tracker:   tracker.New(vp, entries, tracker.WithLogger(s.log.With("session_id", id))),
		CreatedAt: now,
		lastUsed:  now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Debug("session created", "session_id", id, "entries", len(entries))
	return sess
}

// Get returns a session and marks it used, or nil when it does not exist.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess != nil {
		sess.Touch()
	}
	return sess
}

// Delete closes and removes a session. It reports whether one existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Tracker.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup closes and removes sessions idle for longer than the TTL and
// returns how many were evicted.
func (s *Store) Cleanup() int {
	now := time.Now()
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsed()) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Tracker.Close()
	}
	if len(expired) > 0 {
		s.log.Info("evicted idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// CloseAll closes and removes every session.
func (s *Store) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range all {
		sess.Tracker.Close()
	}
}
