package service

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/metrics"
	"github.com/veranemoloko/lecture-companion/internal/queue"
	"github.com/veranemoloko/lecture-companion/internal/status"
)

// ProcessService validates and enqueues processing requests. Execution is the
// worker's job; this side only creates the status record and the queue entry.
type ProcessService struct {
	store  *status.Store
	queue  *queue.JobQueue
	logger *slog.Logger
}

// NewProcessService creates a process service.
func NewProcessService(store *status.Store, q *queue.JobQueue, logger *slog.Logger) *ProcessService {
	return &ProcessService{store: store, queue: q, logger: logger}
}

// Enqueue validates the request and appends it to the job queue, returning
// the generated identifier and the 1-based queue position at insertion time.
// A request whose video path does not exist is rejected before any state is
// created.
func (s *ProcessService) Enqueue(req domain.ProcessRequest) (string, int, error) {
	if _, err := os.Stat(req.VideoPath); err != nil {
		return "", 0, fmt.Errorf("%w: %s", apperrors.ErrVideoNotFound, req.VideoPath)
	}

	id := uuid.New().String()

	s.store.PutProcess(domain.ProcessJob{
		ID:      id,
		Title:   req.Title,
		Status:  domain.ProcessQueued,
		Message: "Waiting in queue...",
	})

	position := s.queue.Enqueue(domain.QueueEntry{ID: id, Request: req})
	metrics.JobsEnqueued.Inc()

	s.logger.Info("job enqueued", "job_id", id, "title", req.Title, "position", position)
	return id, position, nil
}

// QueueState returns the pending entries and the full process history for the
// queue endpoint.
func (s *ProcessService) QueueState() domain.QueueResponse {
	entries := s.queue.Snapshot()
	items := make([]domain.QueueItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, domain.QueueItem{
			ID:     entry.ID,
			Title:  entry.Request.Title,
			Status: domain.ProcessQueued,
		})
	}
	return domain.QueueResponse{
		Queue:   items,
		History: s.store.Processes(),
	}
}
