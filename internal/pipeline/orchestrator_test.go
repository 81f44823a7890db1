package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/dgallion1/doctoc/internal/cache"
	"github.com/dgallion1/doctoc/internal/config"
)

func testConfig(workers, queue int) config.Config {
	cfg := config.Default()
	cfg.WorkerCount = workers
	cfg.MaxQueueSize = queue
	return cfg
}

func waitForStatus(t *testing.T, job *Job, want JobStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected status %q, got %q", want, job.Snapshot().Status)
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &fakePublisher{}
	o := NewOrchestrator(testConfig(2, 10), nil, pub, NewRenderStats(time.Hour), testLogger())
	o.Start(context.Background())

	jobs := []*Job{
		NewJob("u1", "a", "a.md", "", []byte("## One\n")),
		NewJob("u1", "b", "b.md", "", []byte("## Two\n")),
		NewJob("u1", "c", "c.txt", "", []byte("plain")),
	}
	for _, job := range jobs {
		if err := o.Submit(job); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	for _, job := range jobs {
		waitForStatus(t, job, StatusCompleted)
		if o.GetJob(job.ID) != job {
			t.Errorf("expected job %s in store", job.ID)
		}
	}
	o.Stop()
	o.Stop()

	if pub.calls != 3 {
		t.Errorf("expected 3 publishes, got %d", pub.calls)
	}
	if o.Stats().Snapshot().Count != 3 {
		t.Errorf("expected 3 latency samples, got %d", o.Stats().Snapshot().Count)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Not started: nothing drains the queue.
	o := NewOrchestrator(testConfig(1, 1), nil, nil, nil, testLogger())
	if err := o.Submit(NewJob("", "", "a.md", "", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	overflow := NewJob("", "", "b.md", "", nil)
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := overflow.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", s.Status, s.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
	o.Stop()
}

func TestOrchestrator_RenderSyncSharesCache(t *testing.T) {
	c, err := cache.OpenInMemory(time.Hour, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	o := NewOrchestrator(testConfig(1, 1), c, nil, NewRenderStats(time.Hour), testLogger())

	data := []byte("## One\n\n### Sub\n")
	first, cached, err := o.RenderSync(data, "doc.md", "")
	if err != nil || cached {
		t.Fatalf("expected uncached render, got cached=%v err=%v", cached, err)
	}
	if first.Title != "doc" || len(first.Entries) != 1 {
		t.Errorf("unexpected outline %+v", first)
	}

	second, cached, err := o.RenderSync(data, "doc.md", "Titled")
	if err != nil || !cached {
		t.Fatalf("expected cached render, got cached=%v err=%v", cached, err)
	}
	if second.Title != "Titled" {
		t.Errorf("expected title override, got %q", second.Title)
	}

	// Same bytes under another extension must not reuse the markdown outline.
	plain, cached, err := o.RenderSync(data, "doc.txt", "")
	if err != nil || cached {
		t.Fatalf("expected uncached text render, got cached=%v err=%v", cached, err)
	}
	if len(plain.Entries) != 0 {
		t.Errorf("expected no entries for plain text, got %+v", plain.Entries)
	}
	if o.Stats().Snapshot().Count != 2 {
		t.Errorf("expected 2 latency samples, got %d", o.Stats().Snapshot().Count)
	}
}
