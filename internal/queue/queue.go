package queue

import (
	"sync"

	"github.com/veranemoloko/lecture-companion/internal/domain"
)

// JobQueue is the strict-FIFO list of pending processing requests. Enqueue is
// called from request-handling goroutines and Dequeue from the single worker
// loop; a mutex serializes both.
type JobQueue struct {
	mu      sync.Mutex
	entries []domain.QueueEntry
}

// New creates an empty job queue.
func New() *JobQueue {
	return &JobQueue{}
}

// Enqueue appends an entry and returns its 1-based position at insertion
// time. The position is informational only and is not re-validated later.
func (q *JobQueue) Enqueue(entry domain.QueueEntry) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry)
	return len(q.entries)
}

// Dequeue removes and returns the head entry. The second return value is
// false when the queue is empty.
func (q *JobQueue) Dequeue() (domain.QueueEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return domain.QueueEntry{}, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// Len returns the number of pending entries.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns a copy of the pending entries in FIFO order.
func (q *JobQueue) Snapshot() []domain.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out
}
