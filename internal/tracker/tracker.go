// Package tracker decides which table-of-contents section is active as a
// reader scrolls through a rendered document.
package tracker

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/dgallion1/doctoc/internal/toc"
)

// Viewport is the rendering environment the tracker observes.
type Viewport interface {
	// ScrollOffset is the current vertical scroll position in pixels.
	ScrollOffset() float64
	// ScrollMarginPx is the document-wide scroll margin, 0 when unset.
	ScrollMarginPx() float64
	// OnScroll subscribes fn to scroll events and returns its unsubscribe.
	OnScroll(fn func()) (unsubscribe func())
}

// ContentHeading is a heading's measured position.
type ContentHeading struct {
	ID    string  `json:"id"`
	Top   float64 `json:"top"`
	Level int     `json:"level"`
}

// Tracker owns the active-section state for one rendered document.
type Tracker struct {
	mu       sync.Mutex
	viewport Viewport
	log      *slog.Logger

	entries  []toc.Entry
	headings map[string]ContentHeading
	sorted   []ContentHeading // cached ascending order, nil when stale
	current  string

	unsubscribe func()
	closed      bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for listener transitions.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// New returns a tracker whose current section starts at the first entry.
func New(v Viewport, entries []toc.Entry, opts ...Option) *Tracker {
	t := &Tracker{
		viewport: v,
		log:      slog.New(slog.DiscardHandler),
		entries:  entries,
		headings: make(map[string]ContentHeading),
		current:  toc.FirstSlug(entries),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CurrentSection returns the active slug, or "" when there is none.
func (t *Tracker) CurrentSection() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Entries returns the table of contents the tracker highlights.
func (t *Tracker) Entries() []toc.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries
}

// Headings returns the registered headings in ascending position.
func (t *Tracker) Headings() []ContentHeading {
	t.mu.Lock()
	defer t.mu.Unlock()
	sorted := t.sortedLocked()
	out := make([]ContentHeading, len(sorted))
	copy(out, sorted)
	return out
}

// Listening reports whether the scroll listener is attached.
func (t *Tracker) Listening() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsubscribe != nil
}

// RegisterHeading records or replaces the position of heading id.
func (t *Tracker) RegisterHeading(id string, top float64, level int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.headings[id] = ContentHeading{ID: id, Top: top, Level: level}
	t.sorted = nil
	t.syncLocked()
}

// UnregisterHeading forgets heading id. Unknown ids are ignored.
func (t *Tracker) UnregisterHeading(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.headings[id]; !ok {
		return
	}
	delete(t.headings, id)
	t.sorted = nil
	if !t.closed {
		t.syncLocked()
	}
}

// SetEntries switches to a new document's table of contents and resets the
// current section to its first entry.
func (t *Tracker) SetEntries(entries []toc.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.entries = entries
	t.current = toc.FirstSlug(entries)
	t.syncLocked()
}

// Close detaches the scroll listener. Later registrations are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.detachLocked()
}

// syncLocked attaches the listener while both entries and headings exist,
// detaches it otherwise, and recomputes once.
func (t *Tracker) syncLocked() {
	if len(t.entries) == 0 || len(t.headings) == 0 {
		t.detachLocked()
		return
	}
	if t.unsubscribe == nil {
		t.unsubscribe = t.viewport.OnScroll(t.onScroll)
		t.log.Debug("scroll listener attached", "headings", len(t.headings))
	}
	t.recomputeLocked()
}

func (t *Tracker) detachLocked() {
	if t.unsubscribe == nil {
		return
	}
	t.unsubscribe()
	t.unsubscribe = nil
	t.log.Debug("scroll listener detached")
}

func (t *Tracker) onScroll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.recomputeLocked()
}

func (t *Tracker) recomputeLocked() {
	if len(t.entries) == 0 || len(t.headings) == 0 {
		return
	}
	threshold := t.viewport.ScrollOffset() + t.viewport.ScrollMarginPx() + 1

	sorted := t.sortedLocked()
	current := sorted[0].ID
	for _, h := range sorted {
		if h.Top > threshold {
			break
		}
		if h.Level == 2 || h.Level == 3 {
			current = h.ID
		}
	}
	t.current = current
}

func (t *Tracker) sortedLocked() []ContentHeading {
	if t.sorted != nil {
		return t.sorted
	}
	sorted := make([]ContentHeading, 0, len(t.headings))
	for _, h := range t.headings {
		sorted = append(sorted, h)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].ID < sorted[j].ID
	})
	t.sorted = sorted
	return sorted
}
