package tracker

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
)

// handleDiscoveryEvent is the EventLoop body for one membership
// change. Only the update leader acts, per §4.6; every job this node
// knows about (from the snapshots its MetadataStore subscription has
// already delivered) is checked against the new membership. Per-job
// recovery errors are collected rather than discarded: one dead job's
// transform error must not stop the scan of the rest, but it must
// still surface once the scan completes.
func (t *JobTracker) handleDiscoveryEvent(ev discovery.Event) {
	t.mu.Lock()
	jobs := make([]*metadata.JobMetadata, 0, len(t.latestMeta))
	for _, meta := range t.latestMeta {
		jobs = append(jobs, meta)
	}
	t.mu.Unlock()

	if len(jobs) == 0 {
		return
	}

	live := make(map[ids.NodeId]struct{})
	for _, n := range t.discovery.LiveNodes() {
		live[n] = struct{}{}
	}

	var g errgroup.Group
	var errsMu sync.Mutex
	var jobErrs []error
	g.SetLimit(8)
	for _, meta := range jobs {
		meta := meta
		if !t.updateLeader(meta, t.localNode) {
			continue
		}
		g.Go(func() error {
			if err := t.recoverJob(meta, live); err != nil {
				errsMu.Lock()
				jobErrs = append(jobErrs, trackererrors.WrapJobError(string(meta.JobID), "recover", err))
				errsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := trackererrors.JoinErrors(jobErrs...); err != nil {
		t.log.Error("node-left recovery encountered errors", "error", err)
	}
}

// recoverJob applies §4.6's per-job recovery rule for one membership
// snapshot.
func (t *JobTracker) recoverJob(meta *metadata.JobMetadata, live map[ids.NodeId]struct{}) error {
	switch meta.Phase {
	case metadata.SETUP:
		t.recoverSetup(meta)
		return nil
	case metadata.MAP, metadata.REDUCE:
		return t.recoverMapReduce(meta, live)
	}
	return nil
}

// recoverSetup re-dispatches SETUP locally if the node that was
// supposed to run it left before completing and this node has not
// already created local state for the job.
func (t *JobTracker) recoverSetup(meta *metadata.JobMetadata) {
	if _, exists := t.getLocalJob(meta.JobID); exists {
		return
	}
	t.dispatchSetup(meta)
}

// recoverMapReduce prunes pendingSplits/pendingReducers assigned to
// nodes no longer in the live set, forcing CANCELLING so the job
// drains to ABORT instead of hanging on work that will never report
// completion. The store transform is awaited synchronously (rather
// than fired through submitTransform's log-and-forget path) so its
// error, if any, can be aggregated with the rest of this scan's
// failures instead of only ever reaching a per-call log line.
func (t *JobTracker) recoverMapReduce(meta *metadata.JobMetadata, live map[ids.NodeId]struct{}) error {
	var orphanedSplits []plan.InputSplit
	for _, node := range meta.Plan.MapperNodeIds() {
		if _, ok := live[node]; ok {
			continue
		}
		for _, split := range meta.Plan.Mappers(node) {
			if meta.PendingSplits.Has(split) {
				orphanedSplits = append(orphanedSplits, split)
			}
		}
	}

	var orphanedReducers []int
	for _, node := range meta.Plan.ReducerNodeIds() {
		if _, ok := live[node]; ok {
			continue
		}
		for _, rdc := range meta.Plan.Reducers(node) {
			if meta.PendingReducers.Has(rdc) {
				orphanedReducers = append(orphanedReducers, rdc)
			}
		}
	}

	if len(orphanedSplits) == 0 && len(orphanedReducers) == 0 {
		return nil
	}

	resultCh := t.store.Transform(context.Background(), meta.JobID, metadata.CancelJob(trackererrors.ErrParticipantLost, orphanedSplits, orphanedReducers))
	return <-resultCh
}
