package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/pipeline"
)

const outlineSuffix = ".toc.json"

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Rewrite <file>" + outlineSuffix + " whenever a document in DIR changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parserOptions()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newWatcher(args[0], opts, debounce, newLogger())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", args[0])
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Quiet period before a changed file is rendered")
	return cmd
}

// watcher renders outlines for documents in one directory as they change.
type watcher struct {
	dir      string
	opts     parser.Options
	debounce time.Duration
	log      *slog.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time

	// written is called after each outline file is written; tests hook it.
	written func(path string)
}

func newWatcher(dir string, opts parser.Options, debounce time.Duration, log *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &watcher{
		dir:      dir,
		opts:     opts,
		debounce: debounce,
		log:      log,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx ends, then closes the underlying watcher.
func (w *watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := max(w.debounce/3, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !watchable(event.Name) {
		return
	}
	w.log.Debug("change", "file", event.Name, "op", event.Op.String())
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush renders every file whose last change is older than the debounce.
func (w *watcher) flush() {
	now := time.Now()
	var ready []string
	w.mu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if err := w.render(path); err != nil {
			w.log.Error("render failed", "file", path, "error", err)
		}
	}
}

func (w *watcher) render(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	o, err := pipeline.Render(data, path, "", w.opts)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	target := path + outlineSuffix
	if err := os.WriteFile(target, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	w.log.Info("outline written", "file", target, "entries", len(o.Entries))
	if w.written != nil {
		w.written(target)
	}
	return nil
}

// watchable reports whether path is a supported document and not one of
// our own outline files.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, outlineSuffix) || strings.HasPrefix(base, ".") {
		return false
	}
	return parser.IsSupportedExtension(base)
}
