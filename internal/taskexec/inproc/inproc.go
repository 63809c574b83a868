// Package inproc is the in-process reference TaskExecutor: every task
// runs as a goroutine calling a pluggable TaskFunc, bounded by a fixed
// worker count. No subprocess isolation, no remote dispatch — it
// exists to exercise the tracker's task-completion handling end to
// end without a real map/reduce runtime. Grounded on the teacher's
// InMemoryEventBus (internal/joblet/events/bus.go): goroutine-per-unit
// dispatch with a mutex-protected registry of in-flight work.
package inproc

import (
	"context"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/taskexec"
)

// TaskFunc executes one dispatched task and returns its terminal
// status plus whatever counters it produced. A non-nil error turns a
// non-failure status into FAILED; FAILED and CRASHED are reported
// unchanged. ctx is cancelled when
// CancelTasks is called for the task's job.
type TaskFunc func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error)

// Executor is the in-process TaskExecutor. Concurrency is bounded by a
// fixed-size semaphore shared across all jobs.
type Executor struct {
	run        TaskFunc
	onFinished taskexec.OnTaskFinished
	sem        chan struct{}

	mu      sync.Mutex
	jobCtx  map[ids.JobId]context.Context
	cancels map[ids.JobId]context.CancelFunc
}

var _ taskexec.TaskExecutor = (*Executor)(nil)

// New builds an Executor that runs tasks via fn, reporting completions
// through onFinished, with at most maxConcurrency tasks running at
// once across the whole executor.
func New(fn TaskFunc, onFinished taskexec.OnTaskFinished, maxConcurrency int) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Executor{
		run:        fn,
		onFinished: onFinished,
		sem:        make(chan struct{}, maxConcurrency),
		jobCtx:     make(map[ids.JobId]context.Context),
		cancels:    make(map[ids.JobId]context.CancelFunc),
	}
}

func (e *Executor) Run(j *job.Job, tasks []taskexec.TaskInfo) error {
	ctx := e.jobContext(j.Id())

	for _, info := range tasks {
		info := info
		go func() {
			e.sem <- struct{}{}
			defer func() { <-e.sem }()
			e.runOne(ctx, j, info)
		}()
	}
	return nil
}

func (e *Executor) runOne(ctx context.Context, j *job.Job, info taskexec.TaskInfo) {
	status, counters, err := e.run(ctx, j, info)
	if err != nil && !status.IsFailure() {
		status = taskexec.FAILED
	}
	e.onFinished(info, status, err, counters)
}

// jobContext returns the shared cancellation context for jobID,
// creating it on first use so later Run calls for the same job (a new
// batch of tasks after a phase transition) share one CancelTasks scope.
func (e *Executor) jobContext(jobID ids.JobId) context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx, ok := e.jobCtx[jobID]; ok {
		return ctx
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.jobCtx[jobID] = ctx
	e.cancels[jobID] = cancel
	return ctx
}

func (e *Executor) CancelTasks(jobID ids.JobId) error {
	e.mu.Lock()
	cancel, ok := e.cancels[jobID]
	delete(e.cancels, jobID)
	delete(e.jobCtx, jobID)
	e.mu.Unlock()

	if ok {
		cancel()
	}
	return nil
}

func (e *Executor) OnJobStateChanged(*metadata.JobMetadata) {
	// the in-process executor has no external state to reconcile
}
