package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/toc"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRenderFiles_KeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"a.md", "b.md", "c.md", "d.txt"} {
		paths = append(paths, writeFile(t, dir, name, strings.Repeat("## Section\n\n", i+1)))
	}

	results, err := renderFiles(context.Background(), paths, "", parser.Options{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.File != paths[i] {
			t.Errorf("result %d: expected file %q, got %q", i, paths[i], r.File)
		}
	}
	if n := len(results[2].Outline.Entries); n != 3 {
		t.Errorf("expected 3 entries for c.md, got %d", n)
	}
	if slugs := toc.Slugs(results[2].Outline.Entries); slugs[1] != "section-1" {
		t.Errorf("expected deduplicated slug section-1, got %v", slugs)
	}
	if n := len(results[3].Outline.Entries); n != 0 {
		t.Errorf("expected no entries for text, got %d", n)
	}
}

func TestRenderFiles_Error(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.md", "## A\n")
	_, err := renderFiles(context.Background(), []string{good, filepath.Join(dir, "missing.md")}, "", parser.Options{}, 1)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOutlineCommand_YAML(t *testing.T) {
	t.Setenv("DOCTOC_CONFIG", "")
	path := writeFile(t, t.TempDir(), "guide.md", "## Intro\n\n### Detail\n")

	cmd := newOutlineCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--format", "yaml", "--title", "Guide", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got toc.Outline
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode yaml %q: %v", out.String(), err)
	}
	if got.Title != "Guide" {
		t.Errorf("expected title Guide, got %q", got.Title)
	}
	if len(got.Entries) != 1 || got.Entries[0].Children[0].Slug != "detail" {
		t.Errorf("unexpected entries %+v", got.Entries)
	}
}

func TestOutlineCommand_JSONMultipleFiles(t *testing.T) {
	t.Setenv("DOCTOC_CONFIG", "")
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "## A\n")
	b := writeFile(t, dir, "b.md", "## B\n")

	cmd := newOutlineCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{a, b})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []fileOutline
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(got) != 2 || got[0].Outline.Entries[0].Slug != "a" || got[1].Outline.Entries[0].Slug != "b" {
		t.Errorf("unexpected output %+v", got)
	}
}

func TestOutlineCommand_BadFormat(t *testing.T) {
	cmd := newOutlineCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "x.md"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWatchable(t *testing.T) {
	tests := map[string]bool{
		"/d/guide.md":          true,
		"/d/page.html":         true,
		"/d/guide.md.toc.json": false,
		"/d/.guide.md.swp":     false,
		"/d/.hidden.md":        false,
		"/d/data.xls":          false,
	}
	for path, want := range tests {
		if got := watchable(path); got != want {
			t.Errorf("watchable(%q): expected %v, got %v", path, want, got)
		}
	}
}

func TestWatcher_WritesOutlineOnChange(t *testing.T) {
	dir := t.TempDir()
	w, err := newWatcher(dir, parser.Options{}, 20*time.Millisecond, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	written := make(chan string, 4)
	w.written = func(path string) { written <- path }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	src := writeFile(t, dir, "guide.md", "## Intro\n\n## Usage\n")

	select {
	case path := <-written:
		if path != src+outlineSuffix {
			t.Fatalf("expected %q, got %q", src+outlineSuffix, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outline file")
	}

	data, err := os.ReadFile(src + outlineSuffix)
	if err != nil {
		t.Fatalf("read outline: %v", err)
	}
	var got toc.Outline
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode outline: %v", err)
	}
	if slugs := toc.Slugs(got.Entries); len(slugs) != 2 || slugs[0] != "intro" || slugs[1] != "usage" {
		t.Errorf("unexpected slugs %v", slugs)
	}
}
