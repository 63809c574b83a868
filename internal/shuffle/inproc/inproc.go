// Package inproc is the in-process reference Shuffle: since mappers
// and reducers share the same process's filesystem there is nothing to
// move, so Flush resolves immediately. It exists to give the tracker a
// real Shuffle to drive in tests and single-box runs.
package inproc

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/shuffle"
)

// Shuffle is the in-process Shuffle implementation.
type Shuffle struct {
	mu      sync.Mutex
	flushed map[ids.JobId]int
}

var _ shuffle.Shuffle = (*Shuffle)(nil)

func New() *Shuffle {
	return &Shuffle{flushed: make(map[ids.JobId]int)}
}

func (s *Shuffle) Flush(jobID ids.JobId) <-chan error {
	result := make(chan error, 1)

	s.mu.Lock()
	s.flushed[jobID]++
	s.mu.Unlock()

	result <- nil
	return result
}

func (s *Shuffle) JobFinished(jobID ids.JobId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flushed, jobID)
}

// FlushCount reports how many times Flush has been called for jobID,
// for test assertions.
func (s *Shuffle) FlushCount(jobID ids.JobId) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushed[jobID]
}
