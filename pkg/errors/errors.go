// Package errors provides the error taxonomy used by the job tracker:
// sentinel errors for the failure modes named in the design (tracker
// shutting down, duplicate submission, unknown job, ...) plus small
// typed wrappers that carry the job/operation context that produced them.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tracker's fixed failure taxonomy.
var (
	// ErrTrackerStopping is returned by every public JobTracker method
	// once the lifecycle gate has been closed by Stop.
	ErrTrackerStopping = errors.New("job tracker is stopping")

	// ErrDuplicateJob is returned by Submit when the JobId is already
	// known locally or already present in the metadata store.
	ErrDuplicateJob = errors.New("job already exists")

	// ErrUnknownJob is returned by read paths (Status/Plan/Counters) when
	// no metadata record exists for the JobId.
	ErrUnknownJob = errors.New("job not found")

	// ErrPlanningFailure marks a synchronous failure from Planner.Plan
	// during Submit; the job is never persisted.
	ErrPlanningFailure = errors.New("job planning failed")

	// ErrCancelled is the failCause recorded when Kill initiates
	// cancellation.
	ErrCancelled = errors.New("job cancelled")

	// ErrParticipantLost is the failCause recorded by node-left recovery
	// when a node hosting live work departs the cluster.
	ErrParticipantLost = errors.New("one or more nodes participating in the job have failed")

	// ErrTaskFailure wraps a task completion reported as FAILED/CRASHED.
	ErrTaskFailure = errors.New("task execution failed")

	// ErrAlreadyExists is returned by a MetadataStore.PutIfAbsent call
	// against a key that is already populated.
	ErrAlreadyExists = errors.New("key already exists")

	// ErrNotFound is a generic not-found signal for store backends.
	ErrNotFound = errors.New("not found")
)

// JobError associates an error with the job and operation that produced it.
type JobError struct {
	JobID     string
	Operation string
	Err       error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %s: %v", e.JobID, e.Operation, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// WrapJobError wraps err with job/operation context. Returns nil if err is nil.
func WrapJobError(jobID, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &JobError{JobID: jobID, Operation: operation, Err: err}
}

// StoreError associates an error with the metadata store operation that
// produced it (Get/PutIfAbsent/Transform/Subscribe).
type StoreError struct {
	Key       string
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Operation, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func WrapStoreError(key, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Key: key, Operation: operation, Err: err}
}

func IsJobError(err error) bool {
	var je *JobError
	return errors.As(err, &je)
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// JoinErrors combines multiple non-nil errors into one. Returns nil if
// every argument is nil, and the single error unwrapped if only one is
// non-nil.
func JoinErrors(errs ...error) error {
	var valid []error
	for _, err := range errs {
		if err != nil {
			valid = append(valid, err)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	default:
		return &multiError{errors: valid}
	}
}

type multiError struct {
	errors []error
}

func (e *multiError) Error() string {
	msg := e.errors[0].Error()
	for _, err := range e.errors[1:] {
		msg += "; " + err.Error()
	}
	return msg
}

func (e *multiError) Unwrap() []error { return e.errors }

func (e *multiError) Is(target error) bool {
	for _, err := range e.errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *multiError) As(target interface{}) bool {
	for _, err := range e.errors {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
