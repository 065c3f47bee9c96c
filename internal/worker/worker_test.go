package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veranemoloko/lecture-companion/internal/domain"
	"github.com/veranemoloko/lecture-companion/internal/pipeline"
	"github.com/veranemoloko/lecture-companion/internal/queue"
	"github.com/veranemoloko/lecture-companion/internal/status"
)

// fakePipeline records run order and can fail or panic per title.
type fakePipeline struct {
	mu     sync.Mutex
	order  []string
	failOn string
	panics bool
	events []pipeline.StageEvent
}

func (p *fakePipeline) Run(ctx context.Context, req domain.ProcessRequest, progress pipeline.ProgressFunc) (pipeline.Result, error) {
	p.mu.Lock()
	p.order = append(p.order, req.Title)
	p.mu.Unlock()

	if p.shouldPanic() {
		panic("stage blew up")
	}
	if req.Title == p.failOn {
		return pipeline.Result{}, errors.New("pipeline failed")
	}
	for _, ev := range p.events {
		progress(ev)
	}
	return pipeline.Result{OutputDir: "/out/" + req.Title}, nil
}

func (p *fakePipeline) shouldPanic() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panics
}

func (p *fakePipeline) setPanics(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panics = v
}

func newTestWorker(p Pipeline) (*Worker, *queue.JobQueue, *status.Store) {
	q := queue.New()
	store := status.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := New(q, store, p, logger)
	w.idleInterval = time.Millisecond
	w.errorBackoff = time.Millisecond
	return w, q, store
}

func enqueue(q *queue.JobQueue, store *status.Store, id, title string) {
	store.PutProcess(domain.ProcessJob{ID: id, Title: title, Status: domain.ProcessQueued})
	q.Enqueue(domain.QueueEntry{ID: id, Request: domain.ProcessRequest{Title: title, VideoPath: "/v"}})
}

func waitForStatus(t *testing.T, store *status.Store, id string, want domain.ProcessStatus) domain.ProcessJob {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		job, err := store.GetProcess(id)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never reached %s, last status %s", id, want, job.Status)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorker_RunsJobsInOrder(t *testing.T) {
	p := &fakePipeline{}
	w, q, store := newTestWorker(p)

	enqueue(q, store, "a", "First")
	enqueue(q, store, "b", "Second")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	jobA := waitForStatus(t, store, "a", domain.ProcessComplete)
	jobB := waitForStatus(t, store, "b", domain.ProcessComplete)

	assert.Equal(t, []string{"First", "Second"}, p.order)
	assert.Equal(t, 100.0, jobA.Progress)
	assert.Equal(t, "/out/Second", jobB.OutputDir)
}

func TestWorker_RecordsFailure(t *testing.T) {
	p := &fakePipeline{failOn: "Broken"}
	w, q, store := newTestWorker(p)

	enqueue(q, store, "a", "Broken")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	job := waitForStatus(t, store, "a", domain.ProcessError)
	assert.Equal(t, "pipeline failed", job.Error)
	assert.Contains(t, job.Message, "Processing failed")
}

func TestWorker_SurvivesPanic(t *testing.T) {
	p := &fakePipeline{panics: true}
	w, q, store := newTestWorker(p)

	enqueue(q, store, "a", "Explodes")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	job := waitForStatus(t, store, "a", domain.ProcessError)
	assert.Contains(t, job.Error, "pipeline panic")

	// The loop keeps draining after the panic.
	p.setPanics(false)
	enqueue(q, store, "b", "Fine")
	waitForStatus(t, store, "b", domain.ProcessComplete)
}

func TestWorker_MapsStageEvents(t *testing.T) {
	p := &fakePipeline{events: []pipeline.StageEvent{
		{Stage: "transcription", Current: 30, Total: 100, Message: "Transcribing audio (Whisper)..."},
	}}
	w, q, store := newTestWorker(p)

	enqueue(q, store, "a", "L")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	job := waitForStatus(t, store, "a", domain.ProcessComplete)
	assert.Equal(t, "/out/L", job.OutputDir)
}

func TestMapProgress(t *testing.T) {
	tests := []struct {
		stage   string
		current int
		total   int
		want    float64
	}{
		{"transcription", 0, 100, 0},
		{"transcription", 30, 100, 12},
		{"transcription", 100, 100, 40},
		{"frames", 50, 100, 55},
		{"frames", 70, 100, 61},
		{"notes", 0, 100, 70},
		{"notes", 2, 4, 85},
		{"notes", 4, 4, 100},
		{"complete", 0, 0, 100},
		{"init", 0, 100, 0},
	}

	for _, tt := range tests {
		got := mapProgress(tt.stage, tt.current, tt.total)
		assert.InDelta(t, tt.want, got, 0.01, "%s %d/%d", tt.stage, tt.current, tt.total)
	}
}
