package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	"github.com/veranemoloko/lecture-companion/internal/metrics"
	"github.com/veranemoloko/lecture-companion/internal/pipeline"
	"github.com/veranemoloko/lecture-companion/internal/queue"
	"github.com/veranemoloko/lecture-companion/internal/status"
)

// Pipeline is the execution capability the worker needs from the
// orchestrator.
type Pipeline interface {
	Run(ctx context.Context, req domain.ProcessRequest, progress pipeline.ProgressFunc) (pipeline.Result, error)
}

// Worker is the single long-lived loop draining the job queue. It marks a job
// processing before running the pipeline, records the terminal state after,
// and idles when the queue is empty. A loop-level failure logs and backs off;
// the loop itself only exits on context cancellation.
type Worker struct {
	queue    *queue.JobQueue
	store    *status.Store
	pipeline Pipeline
	logger   *slog.Logger

	idleInterval time.Duration
	errorBackoff time.Duration
}

// New creates a worker over the given queue and status store.
func New(q *queue.JobQueue, store *status.Store, p Pipeline, logger *slog.Logger) *Worker {
	return &Worker{
		queue:        q,
		store:        store,
		pipeline:     p,
		logger:       logger,
		idleInterval: time.Second,
		errorBackoff: 5 * time.Second,
	}
}

// Run drains the queue until ctx is canceled. Exactly one Run loop exists per
// process; jobs execute strictly in FIFO order and at most one job is in the
// processing state at any time.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		default:
		}

		entry, ok := w.queue.Dequeue()
		if !ok {
			select {
			case <-ctx.Done():
			case <-time.After(w.idleInterval):
			}
			continue
		}

		if err := w.runJob(ctx, entry); err != nil {
			w.logger.Error("worker loop failure", "job_id", entry.ID, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(w.errorBackoff):
			}
		}
	}
}

// runJob executes one job to a terminal state. A job failure is recorded on
// the job, not returned; the returned error covers only unexpected loop-level
// faults (panics inside a stage).
func (w *Worker) runJob(ctx context.Context, entry domain.QueueEntry) (loopErr error) {
	defer func() {
		if r := recover(); r != nil {
			loopErr = fmt.Errorf("pipeline panic: %v", r)
			w.failJob(entry.ID, loopErr)
		}
	}()

	w.logger.Info("worker picked up job", "job_id", entry.ID, "title", entry.Request.Title)

	w.store.UpdateProcess(entry.ID, func(job *domain.ProcessJob) {
		job.Status = domain.ProcessProcessing
		job.Message = "Starting pipeline..."
	})

	result, err := w.pipeline.Run(ctx, entry.Request, func(ev pipeline.StageEvent) {
		w.store.UpdateProcess(entry.ID, func(job *domain.ProcessJob) {
			job.Stage = ev.Stage
			job.Progress = mapProgress(ev.Stage, ev.Current, ev.Total)
			job.Message = ev.Message
		})
	})

	if err != nil {
		w.failJob(entry.ID, err)
		return nil
	}

	w.store.UpdateProcess(entry.ID, func(job *domain.ProcessJob) {
		job.Status = domain.ProcessComplete
		job.Progress = 100
		job.Message = "Processing complete"
		job.OutputDir = result.OutputDir
	})
	metrics.JobsCompleted.Inc()
	w.logger.Info("job completed", "job_id", entry.ID, "output_dir", result.OutputDir)
	return nil
}

func (w *Worker) failJob(id string, err error) {
	w.store.UpdateProcess(id, func(job *domain.ProcessJob) {
		job.Status = domain.ProcessError
		job.Error = err.Error()
		job.Message = fmt.Sprintf("Processing failed: %v", err)
	})
	metrics.JobsFailed.Inc()
	w.logger.Error("job failed", "job_id", id, "error", err)
}

// mapProgress translates a stage event into the unified 0-100 scalar. Each
// stage owns a disjoint band: transcription 0-40, frames 40-70, notes 70-100.
func mapProgress(stage string, current, total int) float64 {
	var base, weight float64
	switch stage {
	case "transcription":
		base, weight = 0, 40
	case "frames":
		base, weight = 40, 30
	case "notes":
		base, weight = 70, 30
	case "complete":
		return 100
	default:
		return 0
	}
	if total <= 0 {
		return base
	}
	progress := base + float64(current)/float64(total)*weight
	if progress > 100 {
		progress = 100
	}
	return progress
}
