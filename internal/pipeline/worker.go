package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/doctoc/internal/cache"
	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/toc"
)

// Publisher stores finished outlines. *pathstore.Client implements it.
type Publisher interface {
	PutOutline(ctx context.Context, userID, docID string, o toc.Outline, source string) error
}

// Worker processes a single document job.
type Worker struct {
	cache     *cache.Cache
	publisher Publisher
	stats     *RenderStats
	log       *slog.Logger
	opts      parser.Options

	backoff func(attempt int) time.Duration
}

func NewWorker(c *cache.Cache, pub Publisher, stats *RenderStats, log *slog.Logger, opts parser.Options) *Worker {
	return &Worker{
		cache:     c,
		publisher: pub,
		stats:     stats,
		log:       log,
		opts:      opts,
		backoff:   Backoff,
	}
}

// Process renders the job's outline and publishes it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)
	defer job.releaseFileData()

	// Phase 1: Parse and build, or reuse a cached outline.
	job.SetStatus(StatusParsing, "parsing")
	outline, cached, err := w.outline(job.ContentHash, job.FileData(), job.Filename, job.Title)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetStatus(StatusBuilding, "building")
	job.SetOutline(outline, cached)
	if n := len(outline.Dropped); n > 0 {
		log.Warn("dropped level-3 headings without a level-2 parent", "count", n)
	}
	log.Info("outline built", "headings", len(outline.Headings), "entries", len(outline.Entries), "cached", cached)

	if w.publisher == nil || job.UserID == "" {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2: Publish to pathstore.
	job.SetStatus(StatusStoring, "storing")
	if err := w.publish(ctx, log, job, outline); err != nil {
		log.Error("publish failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusPartial, "storing")
		return
	}
	job.MarkPublished()
	job.SetStatus(StatusCompleted, "done")
}

// outline renders data, consulting the cache first. The cache key covers
// the file name because parsers derive titles and formats from it.
func (w *Worker) outline(hash string, data []byte, filename, title string) (toc.Outline, bool, error) {
	if hash == "" {
		hash = ContentHashHex(data)
	}
	key := hash + "/" + filepath.Base(filename)

	o, cached, err := w.cache.Get(key)
	if err != nil {
		w.log.Warn("cache lookup failed, rendering", "key", key, "error", err)
	}
	if !cached {
		start := time.Now()
		o, err = Render(data, filename, "", w.opts)
		if err != nil {
			return toc.Outline{}, false, err
		}
		w.stats.Record(time.Since(start))
		if err := w.cache.Put(key, o); err != nil {
			w.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	if title != "" {
		o.Title = title
	}
	return o, cached, nil
}

func (w *Worker) publish(ctx context.Context, log *slog.Logger, job *Job, o toc.Outline) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.publisher.PutOutline(ctx, job.UserID, job.DocID, o, "doctoc:"+job.DocID)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable publish error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
