package execpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many heavy external-tool invocations (transcoding,
// transcription, OCR, model calls) run at once across the whole process. A
// single job only ever holds one slot at a time.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a pool with the given number of slots.
func New(slots int) *Pool {
	if slots <= 0 {
		slots = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(slots))}
}

// Run acquires a slot, executes fn, and releases the slot. It returns the
// context error if acquisition is interrupted.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
