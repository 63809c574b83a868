package tracker

import (
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/localstate"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	"github.com/gridforge/jobtracker/internal/taskexec"
)

// handleMetadataSnapshot is the EventLoop body for one MetadataStore
// notification: it records the latest snapshot, reports it to the
// TaskExecutor, and computes this node's local dispatch decision for
// the phase it names. Runs single-threaded, per §4.2/§5.
func (t *JobTracker) handleMetadataSnapshot(meta *metadata.JobMetadata) {
	t.mu.Lock()
	t.latestMeta[meta.JobID] = meta
	t.mu.Unlock()

	if !t.isParticipating(meta) {
		return
	}

	// Must tolerate redelivery of the same snapshot, per §6/§9.
	t.taskExecutor.OnJobStateChanged(meta)

	switch meta.Phase {
	case metadata.SETUP:
		t.dispatchSetup(meta)
	case metadata.MAP:
		t.dispatchMap(meta)
	case metadata.REDUCE:
		t.dispatchReduce(meta)
	case metadata.CANCELLING:
		t.dispatchCancelling(meta)
	case metadata.COMPLETE:
		t.handleComplete(meta)
	}
}

// isParticipating reports whether localNode has any local work for
// meta's job: it submitted it, or the plan assigns it mapper/reducer
// work. RuntimeContext.IsParticipating in §6 is an external
// collaborator; this module folds the predicate directly into the
// tracker since nothing outside it needs the distinction.
func (t *JobTracker) isParticipating(meta *metadata.JobMetadata) bool {
	if meta.SubmitterNodeID == t.localNode {
		return true
	}
	if meta.Plan == nil {
		return false
	}
	if len(meta.Plan.Mappers(t.localNode)) > 0 {
		return true
	}
	if len(meta.Plan.Reducers(t.localNode)) > 0 {
		return true
	}
	return false
}

func (t *JobTracker) ensureLocalJob(meta *metadata.JobMetadata) *localJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	lj, ok := t.localJobs[meta.JobID]
	if !ok {
		lj = &localJob{state: localstate.New(), plan: meta.Plan, node: t.localNode}
		t.localJobs[meta.JobID] = lj
	}
	return lj
}

func (t *JobTracker) getLocalJob(jobID ids.JobId) (*localJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	lj, ok := t.localJobs[jobID]
	return lj, ok
}

// dispatchSetup is §4.4's SETUP-phase rule: only the update leader
// acts, and only on first local scheduling decision for the job.
func (t *JobTracker) dispatchSetup(meta *metadata.JobMetadata) {
	if !t.updateLeader(meta, t.localNode) {
		return
	}
	lj := t.ensureLocalJob(meta)
	if !lj.state.TryScheduleSetup() {
		return
	}

	j, ok := t.registry.Lookup(meta.JobID)
	if !ok {
		t.log.Error("setup dispatch: job not in registry", "job", string(meta.JobID))
		return
	}
	t.dispatchTasks(j, []taskexec.TaskInfo{{Type: taskexec.SETUP, JobID: meta.JobID}})
}

// dispatchMap is §4.4's MAP-phase rule: dispatch every locally
// assigned, not-yet-scheduled split.
func (t *JobTracker) dispatchMap(meta *metadata.JobMetadata) {
	lj := t.ensureLocalJob(meta)
	j, ok := t.registry.Lookup(meta.JobID)
	if !ok {
		return
	}

	var tasks []taskexec.TaskInfo
	for _, split := range meta.Plan.Mappers(t.localNode) {
		if !meta.PendingSplits.Has(split) {
			continue
		}
		if !lj.state.TryScheduleMapper(split.ID()) {
			continue
		}
		tasks = append(tasks, taskexec.TaskInfo{
			Type:       taskexec.MAP,
			JobID:      meta.JobID,
			TaskNumber: meta.Plan.TaskNumber(split),
			Split:      split,
		})
	}
	if len(tasks) > 0 {
		t.dispatchTasks(j, tasks)
	}
}

// dispatchReduce is §4.4's REDUCE-phase rule: the update leader
// submits the single COMMIT task once pendingReducers empties;
// otherwise every locally assigned, not-yet-scheduled reducer is
// dispatched.
func (t *JobTracker) dispatchReduce(meta *metadata.JobMetadata) {
	lj := t.ensureLocalJob(meta)
	j, ok := t.registry.Lookup(meta.JobID)
	if !ok {
		return
	}

	if len(meta.PendingReducers) == 0 {
		if t.updateLeader(meta, t.localNode) && lj.state.TryScheduleCommit() {
			t.dispatchTasks(j, []taskexec.TaskInfo{{Type: taskexec.COMMIT, JobID: meta.JobID}})
		}
		return
	}

	var tasks []taskexec.TaskInfo
	for _, rdc := range meta.Plan.Reducers(t.localNode) {
		if !meta.PendingReducers.Has(rdc) {
			continue
		}
		if !lj.state.TryScheduleReducer(rdc) {
			continue
		}
		tasks = append(tasks, taskexec.TaskInfo{Type: taskexec.REDUCE, JobID: meta.JobID, TaskNumber: rdc, Reducer: rdc})
	}
	if len(tasks) > 0 {
		t.dispatchTasks(j, tasks)
	}
}

// dispatchCancelling is §4.4's CANCELLING rule: cancel local tasks
// exactly once, dispatch ABORT once pendings drain, and otherwise emit
// a CancelJob transform pruning whatever this node never got around
// to scheduling so the replicated pending sets converge.
func (t *JobTracker) dispatchCancelling(meta *metadata.JobMetadata) {
	lj := t.ensureLocalJob(meta)

	if lj.state.OnCancel() {
		if err := t.taskExecutor.CancelTasks(meta.JobID); err != nil {
			t.log.Error("cancel tasks failed", "job", string(meta.JobID), "error", err)
		}
	}

	if len(meta.PendingSplits) == 0 && len(meta.PendingReducers) == 0 {
		if t.updateLeader(meta, t.localNode) && lj.state.OnAborted() {
			if j, ok := t.registry.Lookup(meta.JobID); ok {
				t.dispatchTasks(j, []taskexec.TaskInfo{{Type: taskexec.ABORT, JobID: meta.JobID}})
			}
		}
		return
	}

	unscheduledSplits := unscheduledMapperSplits(meta.Plan.Mappers(t.localNode), lj.state)
	unscheduledReducers := lj.state.UnscheduledReducers(meta.Plan.Reducers(t.localNode))
	if len(unscheduledSplits) == 0 && len(unscheduledReducers) == 0 {
		return
	}
	t.submitTransform(meta.JobID, metadata.CancelJob(nil, unscheduledSplits, unscheduledReducers))
}

// handleComplete is §4.4's COMPLETE rule.
func (t *JobTracker) handleComplete(meta *metadata.JobMetadata) {
	t.mu.Lock()
	delete(t.localJobs, meta.JobID)
	delete(t.latestMeta, meta.JobID)
	t.mu.Unlock()

	t.shuffle.JobFinished(meta.JobID)
	t.resolveFinishFuture(meta.JobID, meta.FailCause)

	if t.updateLeader(meta, t.localNode) {
		if j, ok := t.registry.Lookup(meta.JobID); ok {
			if err := j.CleanupStagingDirectory(); err != nil {
				t.log.Error("cleanup staging directory failed", "job", string(meta.JobID), "error", err)
			}
		}
	}

	if err := t.registry.Remove(meta.JobID, false); err != nil {
		t.log.Error("dispose job failed", "job", string(meta.JobID), "error", err)
	}
}

func (t *JobTracker) resolveFinishFuture(jobID ids.JobId, failCause error) {
	t.mu.Lock()
	future, ok := t.finishFutures[jobID]
	delete(t.finishFutures, jobID)
	t.mu.Unlock()

	if ok {
		future.Resolve(FinishResult{JobID: jobID, FailCause: failCause})
	}
}

func (t *JobTracker) dispatchTasks(j *job.Job, tasks []taskexec.TaskInfo) {
	if err := t.taskExecutor.Run(j, tasks); err != nil {
		t.log.Error("task dispatch failed", "job", string(j.Id()), "error", err)
	}
}

// unscheduledMapperSplits returns the InputSplit values among assigned
// that state has not yet scheduled.
func unscheduledMapperSplits(assigned []plan.InputSplit, state *localstate.State) []plan.InputSplit {
	var out []plan.InputSplit
	for _, split := range assigned {
		if !state.IsMapperScheduled(split.ID()) {
			out = append(out, split)
		}
	}
	return out
}
