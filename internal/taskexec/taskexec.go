// Package taskexec defines the contract between the tracker and the
// component that actually runs setup/map/reduce/combine/commit/abort
// work: TaskExecutor. The tracker only ever dispatches TaskInfo values
// and receives TaskStatus callbacks through JobTracker.OnTaskFinished;
// it never inspects how a task runs.
package taskexec

import (
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
)

// TaskType names the kind of work a TaskInfo carries.
type TaskType int

const (
	SETUP TaskType = iota
	MAP
	REDUCE
	COMBINE
	COMMIT
	ABORT
)

func (t TaskType) String() string {
	switch t {
	case SETUP:
		return "SETUP"
	case MAP:
		return "MAP"
	case REDUCE:
		return "REDUCE"
	case COMBINE:
		return "COMBINE"
	case COMMIT:
		return "COMMIT"
	case ABORT:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}

// TaskStatus is the terminal state a task reports back through
// OnTaskFinished.
type TaskStatus int

const (
	OK TaskStatus = iota
	COMPLETED
	FAILED
	CRASHED
)

func (s TaskStatus) String() string {
	switch s {
	case OK:
		return "OK"
	case COMPLETED:
		return "COMPLETED"
	case FAILED:
		return "FAILED"
	case CRASHED:
		return "CRASHED"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether s represents a failed or crashed task.
func (s TaskStatus) IsFailure() bool {
	return s == FAILED || s == CRASHED
}

// TaskInfo describes one unit of dispatched work. Split is populated
// for MAP tasks; Reducer is populated for REDUCE tasks. TaskNumber
// comes from plan.TaskNumber(Split) for mappers, or the reducer index
// for reducers, and is stable across every replica holding the plan.
type TaskInfo struct {
	Type       TaskType
	JobID      ids.JobId
	TaskNumber int
	Split      plan.InputSplit
	Reducer    int
}

// TaskExecutor is the external collaborator that actually executes
// tasks. Implemented outside this package (see internal/taskexec/inproc
// for the in-process reference implementation).
//
//counterfeiter:generate . TaskExecutor
type TaskExecutor interface {
	// Run dispatches tasks for j. Must not block the caller beyond
	// enqueueing; completion is reported asynchronously through the
	// OnTaskFinished callback supplied at construction.
	Run(j *job.Job, tasks []TaskInfo) error

	// CancelTasks requests cancellation of every task currently
	// running for jobID. Best-effort; completion still arrives through
	// OnTaskFinished.
	CancelTasks(jobID ids.JobId) error

	// OnJobStateChanged is invoked with every metadata snapshot the
	// tracker observes for a job it participates in, so the executor
	// can surface status without polling the store directly. Must be
	// idempotent under redelivery of the same snapshot.
	OnJobStateChanged(meta *metadata.JobMetadata)
}

// OnTaskFinished is the callback signature TaskExecutor implementations
// invoke once a dispatched task reaches a terminal status. counters
// carries whatever task statistics the task produced; nil if none.
// May be called from any goroutine.
type OnTaskFinished func(info TaskInfo, status TaskStatus, err error, counters metadata.Counters)
