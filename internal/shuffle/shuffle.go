// Package shuffle defines the contract between the tracker and the
// component that moves mapper output to reducers. The tracker never
// transfers data itself: it only asks Shuffle to flush a job's pending
// output once the last local mapper/combiner finishes, and tells it
// when a job is fully done so it can release buffers.
package shuffle

import "github.com/gridforge/jobtracker/internal/ids"

// Shuffle is the external collaborator responsible for the shuffle
// phase between mappers and reducers. Implemented outside this
// package (see internal/shuffle/inproc for the in-process reference
// implementation).
//
//counterfeiter:generate . Shuffle
type Shuffle interface {
	// Flush requests that all locally buffered mapper output for jobID
	// be made available to reducers. The returned channel receives
	// exactly one error (nil on success) once the flush completes.
	Flush(jobID ids.JobId) <-chan error

	// JobFinished releases any resources shuffle holds for jobID. Safe
	// to call whether or not Flush was ever requested.
	JobFinished(jobID ids.JobId)
}
