// Package registry implements JobRegistry: the local, per-node map
// from JobId to a lazily materialized Job. At most one construction
// runs per JobId, even when many goroutines request the same job
// concurrently; all of them observe the same result. Grounded on
// internal/joblet/core/upload/stream_context.go's
// "chan struct{} closed once, guarded by sync.Once" readiness-signal
// shape.
package registry

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
)

// Factory constructs the Job for a JobId on first need.
type Factory func(jobID ids.JobId) (*job.Job, error)

type entry struct {
	ready chan struct{}
	once  sync.Once
	job   *job.Job
	err   error
}

// Registry is the at-most-once-construction JobId -> Job map.
type Registry struct {
	mu      sync.Mutex
	entries map[ids.JobId]*entry
}

func New() *Registry {
	return &Registry{entries: make(map[ids.JobId]*entry)}
}

// GetOrCreate returns the Job for jobID, constructing it via factory
// exactly once. Concurrent callers racing on the same jobID all block
// on the same construction and observe its result. On construction
// failure the entry is removed so a later call may retry with a fresh
// Job.
func (r *Registry) GetOrCreate(jobID ids.JobId, factory Factory) (*job.Job, error) {
	r.mu.Lock()
	e, exists := r.entries[jobID]
	if !exists {
		e = &entry{ready: make(chan struct{})}
		r.entries[jobID] = e
	}
	r.mu.Unlock()

	if !exists {
		e.job, e.err = factory(jobID)
		if e.err != nil {
			r.mu.Lock()
			if r.entries[jobID] == e {
				delete(r.entries, jobID)
			}
			r.mu.Unlock()
		}
		e.once.Do(func() { close(e.ready) })
		return e.job, e.err
	}

	<-e.ready
	return e.job, e.err
}

// Lookup returns the Job already registered for jobID, if any, without
// triggering construction.
func (r *Registry) Lookup(jobID ids.JobId) (*job.Job, bool) {
	r.mu.Lock()
	e, ok := r.entries[jobID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	<-e.ready
	return e.job, e.err == nil
}

// Remove disposes the Job registered for jobID (if any) and drops it
// from the registry. Called once a job reaches COMPLETE, and by Submit
// when a job it just materialized cannot be planned or stored.
// JobTracker.Stop does not call it: jobs still registered at shutdown
// are not disposed.
func (r *Registry) Remove(jobID ids.JobId, interrupt bool) error {
	r.mu.Lock()
	e, ok := r.entries[jobID]
	delete(r.entries, jobID)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	<-e.ready
	if e.job == nil {
		return nil
	}
	return e.job.Dispose(interrupt)
}

// Len reports how many jobs are currently registered, for tests and
// diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
