package cache

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/doctoc/internal/toc"
	"github.com/google/go-cmp/cmp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCache_PutGetDelete(t *testing.T) {
	c, err := Open(t.TempDir(), time.Hour, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if _, ok, err := c.Get("abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := toc.Outline{
		Title:    "Guide",
		Headings: []toc.Heading{{Title: "Intro", ID: "intro", Level: 2}},
		Entries:  []toc.Entry{{Title: "Intro", Slug: "intro", Children: []toc.Entry{}}},
	}
	if err := c.Put("abc", want); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	got, ok, err := c.Get("abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}

	if err := c.Delete("abc"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, ok, _ := c.Get("abc"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	c1, err := Open(dir, 0, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c1.Put("h", toc.Outline{Title: "Kept"}); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	c2, err := Open(dir, 0, testLogger())
	if err != nil {
		t.Fatalf("unexpected reopen error: %v", err)
	}
	t.Cleanup(func() { c2.Close() })
	got, ok, err := c2.Get("h")
	if err != nil || !ok || got.Title != "Kept" {
		t.Errorf("expected persisted outline, got %+v ok=%v err=%v", got, ok, err)
	}
}

func TestCache_InMemory(t *testing.T) {
	c, err := OpenInMemory(time.Hour, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	if err := c.Put("x", toc.Outline{Title: "Mem"}); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if got, ok, _ := c.Get("x"); !ok || got.Title != "Mem" {
		t.Errorf("expected in-memory hit, got %+v", got)
	}
}

func TestCache_NilIsDisabled(t *testing.T) {
	var c *Cache
	if err := c.Put("x", toc.Outline{}); err != nil {
		t.Errorf("expected nil cache put to succeed, got %v", err)
	}
	if _, ok, err := c.Get("x"); ok || err != nil {
		t.Errorf("expected nil cache miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("expected nil cache close to succeed, got %v", err)
	}
}
