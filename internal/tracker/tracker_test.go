package tracker

import (
	"sync"
	"testing"

	"github.com/dgallion1/doctoc/internal/toc"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var sampleEntries = []toc.Entry{
	{Title: "Intro", Slug: "intro", Children: []toc.Entry{}},
	{Title: "Setup", Slug: "setup", Children: []toc.Entry{
		{Title: "Usage", Slug: "usage", Children: []toc.Entry{}},
	}},
}

func TestTracker_InitialSection(t *testing.T) {
	tr := New(NewManualViewport(""), sampleEntries)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected initial section %q, got %q", "intro", got)
	}

	empty := New(NewManualViewport(""), nil)
	if got := empty.CurrentSection(); got != "" {
		t.Errorf("expected empty section for empty toc, got %q", got)
	}
}

func TestTracker_NoHeadingsKeepsFirstSlug(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)
	vp.Scroll(5000)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected %q with no registered headings, got %q", "intro", got)
	}
	if tr.Listening() {
		t.Error("listener must not attach without headings")
	}
}

func TestTracker_RecomputeOnScroll(t *testing.T) {
	vp := NewManualViewport("0px")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("setup", 500, 2)
	tr.RegisterHeading("usage", 1000, 3)

	// threshold = 599 + 0 + 1 = 600
	vp.Scroll(599)
	if got := tr.CurrentSection(); got != "setup" {
		t.Errorf("expected %q at threshold 600, got %q", "setup", got)
	}

	vp.Scroll(999)
	if got := tr.CurrentSection(); got != "usage" {
		t.Errorf("expected %q at threshold 1000, got %q", "usage", got)
	}

	vp.Scroll(0)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected %q at top, got %q", "intro", got)
	}
}

func TestTracker_ScrollMarginShiftsThreshold(t *testing.T) {
	vp := NewManualViewport("100px")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("setup", 500, 2)

	vp.Scroll(399) // 399 + 100 + 1 = 500
	if got := tr.CurrentSection(); got != "setup" {
		t.Errorf("expected margin to reach %q, got %q", "setup", got)
	}

	vp.SetScrollMargin("auto")
	vp.Scroll(399)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected unparseable margin to count as 0, got %q", got)
	}
}

func TestTracker_FallbackToFirstSortedHeading(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("usage", 900, 3)
	tr.RegisterHeading("setup", 800, 2)

	vp.Scroll(0)
	if got := tr.CurrentSection(); got != "setup" {
		t.Errorf("expected fallback to first sorted heading %q, got %q", "setup", got)
	}
}

func TestTracker_LevelOneIgnored(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("page-title", 100, 1)

	vp.Scroll(500)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected level-1 heading to be ignored, got %q", got)
	}
}

func TestTracker_UnregisterCleanup(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("setup", 500, 2)
	tr.RegisterHeading("usage", 1000, 3)

	tr.UnregisterHeading("setup")
	tr.UnregisterHeading("missing")
	vp.Scroll(599)
	if got := tr.CurrentSection(); got == "setup" {
		t.Error("unregistered heading must never become active")
	}
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected %q, got %q", "intro", got)
	}
	if n := len(tr.Headings()); n != 2 {
		t.Errorf("expected 2 headings, got %d", n)
	}
}

func TestTracker_RegisterIsUpsert(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("setup", 500, 2)
	tr.RegisterHeading("setup", 2000, 2)

	hs := tr.Headings()
	if len(hs) != 2 {
		t.Fatalf("expected 2 headings after upsert, got %d", len(hs))
	}
	if hs[1].ID != "setup" || hs[1].Top != 2000 {
		t.Errorf("expected setup at 2000, got %+v", hs[1])
	}

	vp.Scroll(600)
	if got := tr.CurrentSection(); got != "intro" {
		t.Errorf("expected %q after setup moved down, got %q", "intro", got)
	}
}

func TestTracker_RegistrationRecomputesImmediately(t *testing.T) {
	vp := NewManualViewport("")
	vp.Scroll(700)
	tr := New(vp, sampleEntries)
	tr.RegisterHeading("intro", 0, 2)
	tr.RegisterHeading("setup", 500, 2)
	if got := tr.CurrentSection(); got != "setup" {
		t.Errorf("expected registration to recompute to %q, got %q", "setup", got)
	}
}

func TestTracker_ListenerLifecycle(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)

	tr.RegisterHeading("intro", 0, 2)
	if !tr.Listening() || vp.Listeners() != 1 {
		t.Fatalf("expected one attached listener, got listening=%v listeners=%d", tr.Listening(), vp.Listeners())
	}

	tr.RegisterHeading("setup", 500, 2)
	if vp.Listeners() != 1 {
		t.Errorf("expected listener to be attached once, got %d", vp.Listeners())
	}

	tr.UnregisterHeading("intro")
	tr.UnregisterHeading("setup")
	if tr.Listening() || vp.Listeners() != 0 {
		t.Errorf("expected listener detached when headings empty, got %d", vp.Listeners())
	}

	tr.RegisterHeading("intro", 0, 2)
	if vp.Listeners() != 1 {
		t.Errorf("expected listener reattached, got %d", vp.Listeners())
	}

	tr.SetEntries(nil)
	if vp.Listeners() != 0 {
		t.Errorf("expected listener detached for empty toc, got %d", vp.Listeners())
	}
	if tr.CurrentSection() != "" {
		t.Errorf("expected empty current section, got %q", tr.CurrentSection())
	}

	tr.SetEntries(sampleEntries)
	if vp.Listeners() != 1 {
		t.Errorf("expected listener reattached for new toc, got %d", vp.Listeners())
	}

	tr.Close()
	if vp.Listeners() != 0 {
		t.Errorf("expected close to detach, got %d", vp.Listeners())
	}
	tr.RegisterHeading("setup", 10, 2)
	if vp.Listeners() != 0 {
		t.Error("registration after close must not reattach")
	}
}

func TestTracker_ConcurrentUse(t *testing.T) {
	vp := NewManualViewport("")
	tr := New(vp, sampleEntries)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 50 {
				tr.RegisterHeading("setup", float64(j*10), 2)
				tr.RegisterHeading("intro", 0, 2)
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 50 {
				vp.Scroll(float64(i*100 + j))
				_ = tr.CurrentSection()
			}
		}()
	}
	wg.Wait()
	tr.Close()

	if cur := tr.CurrentSection(); cur != "intro" && cur != "setup" {
		t.Errorf("unexpected current section %q", cur)
	}
}

func TestParsePixels(t *testing.T) {
	tests := map[string]float64{
		"96px":    96,
		" 4.5rem": 4.5,
		"-8px":    -8,
		".5px":    0.5,
		"1e2px":   100,
		"":        0,
		"auto":    0,
		"px":      0,
	}
	for in, want := range tests {
		if got := ParsePixels(in); got != want {
			t.Errorf("ParsePixels(%q): expected %v, got %v", in, want, got)
		}
	}
}
