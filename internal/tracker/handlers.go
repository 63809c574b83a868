package tracker

import (
	"time"

	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	"github.com/gridforge/jobtracker/internal/taskexec"
)

// onSetupFinished is §4.5's SETUP handler.
func (t *JobTracker) onSetupFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, err error) {
	if status == taskexec.OK {
		t.submitTransform(info.JobID, metadata.UpdatePhase(metadata.MAP))
		return
	}
	t.submitTransform(info.JobID, metadata.CancelJob(taskFailureCause(status, err), nil, nil))
}

// onMapFinished is §4.5's MAP handler: increments completedMappers
// (safe off the EventLoop, per §5), then emits RemoveMappers directly
// on failure, or after a Shuffle.Flush once this was the last locally
// scheduled mapper to finish.
func (t *JobTracker) onMapFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, err error) {
	lj, ok := t.getLocalJob(info.JobID)
	if !ok {
		return
	}

	completed := lj.state.IncrementCompletedMappers()
	lastMapperFinished := int(completed) == lj.state.ScheduledMapperCount()
	splits := []plan.InputSplit{info.Split}

	if status.IsFailure() {
		t.submitTransform(info.JobID, metadata.RemoveMappers(splits, taskFailureCause(status, err)))
		return
	}

	if !lastMapperFinished {
		t.submitTransform(info.JobID, metadata.RemoveMappers(splits, nil))
		return
	}

	jobID := info.JobID
	go func() {
		flushErr := <-t.shuffle.Flush(jobID)
		t.submitTransform(jobID, metadata.RemoveMappers(splits, flushErr))
	}()
}

// onReduceFinished is §4.5's REDUCE handler.
func (t *JobTracker) onReduceFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, err error) {
	var cause error
	if status.IsFailure() {
		cause = taskFailureCause(status, err)
	}
	t.submitTransform(info.JobID, metadata.RemoveReducer(info.Reducer, cause))
}

// onCombineFinished is §4.5's COMBINE handler: it acts on every split
// this node has scheduled as a mapper, since a combiner finalizes all
// of a node's local map output at once.
func (t *JobTracker) onCombineFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, err error) {
	lj, ok := t.getLocalJob(info.JobID)
	if !ok {
		return
	}
	splits := scheduledMapperSplits(lj)

	if status.IsFailure() {
		t.submitTransform(info.JobID, metadata.RemoveMappers(splits, taskFailureCause(status, err)))
		return
	}

	jobID := info.JobID
	go func() {
		flushErr := <-t.shuffle.Flush(jobID)
		t.submitTransform(jobID, metadata.RemoveMappers(splits, flushErr))
	}()
}

// onCommitOrAbortFinished is §4.5's COMMIT/ABORT handler: it moves the
// job to COMPLETE, layering in counters if the task actually reported
// COMPLETED, and stamps the TTL the record evicts after.
func (t *JobTracker) onCommitOrAbortFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, counters metadata.Counters) {
	fn := metadata.UpdatePhase(metadata.COMPLETE)
	if status == taskexec.COMPLETED && len(counters) > 0 {
		fn = metadata.Stack(metadata.IncrementCounters(counters), fn)
	}
	if t.finishedTTL > 0 {
		fn = metadata.Stack(fn, stampTTL(t.finishedTTL))
	}
	t.submitTransform(info.JobID, fn)
}

func stampTTL(ttl time.Duration) metadata.Transform {
	return func(m *metadata.JobMetadata) *metadata.JobMetadata {
		if m == nil {
			return nil
		}
		out := *m
		out.TTL = ttl
		return &out
	}
}

// scheduledMapperSplits returns every InputSplit lj's plan assigns to
// this node that has been scheduled locally.
func scheduledMapperSplits(lj *localJob) []plan.InputSplit {
	var out []plan.InputSplit
	for _, split := range lj.plan.Mappers(lj.node) {
		if lj.state.IsMapperScheduled(split.ID()) {
			out = append(out, split)
		}
	}
	return out
}
