package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doctoc/internal/cache"
	"github.com/dgallion1/doctoc/internal/config"
	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/toc"
)

// Orchestrator manages the outline rendering pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	cache     *cache.Cache
	publisher Publisher
	stats     *RenderStats
	log       *slog.Logger
	cfg       config.Config

	cleanupInterval time.Duration

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewOrchestrator creates the pipeline. pub may be nil, in which case
// outlines are rendered and cached but not published.
func NewOrchestrator(cfg config.Config, c *cache.Cache, pub Publisher, stats *RenderStats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:            NewJobStore(cfg.JobTTL),
		queue:           make(chan *Job, cfg.MaxQueueSize),
		cache:           c,
		publisher:       pub,
		stats:           stats,
		log:             log,
		cfg:             cfg,
		cleanupInterval: 5 * time.Minute,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	opts := o.parserOptions()

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.cache, o.publisher, o.stats, o.log, opts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop shuts down the pipeline and waits for workers to exit.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		close(o.queue)
		o.wg.Wait()
	})
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// RenderSync renders data outside the queue, sharing the cache and
// latency stats with the workers. It reports whether the cache was hit.
func (o *Orchestrator) RenderSync(data []byte, filename, title string) (toc.Outline, bool, error) {
	w := NewWorker(o.cache, nil, o.stats, o.log, o.parserOptions())
	return w.outline("", data, filename, title)
}

func (o *Orchestrator) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the render latency tracker.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}

// Cache returns the outline cache, which may be nil.
func (o *Orchestrator) Cache() *cache.Cache {
	return o.cache
}
