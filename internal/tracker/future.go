package tracker

import (
	"context"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
)

// FinishResult is what a FinishFuture resolves with: the terminal
// failCause recorded on the job's metadata at COMPLETE, or nil for a
// clean run.
type FinishResult struct {
	JobID     ids.JobId
	FailCause error
}

// FinishFuture is the client-visible handle JobTracker.Submit and
// JobTracker.FinishFuture return. It resolves exactly once, the first
// time Resolve is called; later calls are no-ops. Grounded on the
// teacher's streamingReady-style "chan struct{} closed once" signal
// (internal/joblet/core/upload/stream_context.go), the same shape
// internal/registry already adapts for construction instead of
// completion.
type FinishFuture struct {
	done chan struct{}

	mu     sync.Mutex
	once   sync.Once
	result FinishResult
}

func newFinishFuture(jobID ids.JobId) *FinishFuture {
	return &FinishFuture{
		done:   make(chan struct{}),
		result: FinishResult{JobID: jobID},
	}
}

// Resolve completes the future with result. Only the first call has
// any effect.
func (f *FinishFuture) Resolve(result FinishResult) {
	f.once.Do(func() {
		f.mu.Lock()
		f.result = result
		f.mu.Unlock()
		close(f.done)
	})
}

// Done returns a channel closed once the future resolves.
func (f *FinishFuture) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx is cancelled.
func (f *FinishFuture) Get(ctx context.Context) (FinishResult, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, nil
	case <-ctx.Done():
		return FinishResult{}, ctx.Err()
	}
}

// Peek reports the current result and whether the future has
// resolved yet, without blocking.
func (f *FinishFuture) Peek() (FinishResult, bool) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, true
	default:
		return FinishResult{}, false
	}
}
