package tracker

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// ParsePixels reads the leading number of a CSS length such as "96px" or
// "4.5rem". Values without a leading number parse as 0.
func ParsePixels(s string) float64 {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0
	}
	return v
}

// ManualViewport is a Viewport driven by explicit calls rather than a
// rendering engine. Remote clients report their scroll position through it.
type ManualViewport struct {
	mu        sync.Mutex
	offset    float64
	margin    string
	nextID    int
	listeners map[int]func()
}

// NewManualViewport returns a viewport at offset 0 with the given CSS
// scroll-margin value.
func NewManualViewport(scrollMargin string) *ManualViewport {
	return &ManualViewport{
		margin:    scrollMargin,
		listeners: make(map[int]func()),
	}
}

func (v *ManualViewport) ScrollOffset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

func (v *ManualViewport) ScrollMarginPx() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ParsePixels(v.margin)
}

// SetScrollMargin replaces the CSS scroll-margin value.
func (v *ManualViewport) SetScrollMargin(margin string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.margin = margin
}

func (v *ManualViewport) OnScroll(fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.listeners, id)
		})
	}
}

// Listeners returns the number of subscribed callbacks.
func (v *ManualViewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}

// Scroll moves to offset and notifies every subscriber. Callbacks run
// outside the viewport lock so they may read the viewport.
func (v *ManualViewport) Scroll(offset float64) {
	v.mu.Lock()
	v.offset = offset
	fns := make([]func(), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
