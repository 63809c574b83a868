// Package tracker implements JobTracker: the facade that submits jobs,
// tracks their replicated metadata, and drives local task dispatch
// from it. It is the one component that wires together MetadataStore,
// Discovery, TaskExecutor, Shuffle, Planner and JobRegistry into the
// lifecycle described by the job-tracker's phase diagram. Grounded on
// internal/joblet/scheduler/scheduler.go (single-worker channel loop
// for serialized processing) and internal/joblet/workflow/orchestrator.go
// (map-based per-job state tracking guarded by one mutex).
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/localstate"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	"github.com/gridforge/jobtracker/internal/registry"
	"github.com/gridforge/jobtracker/internal/shuffle"
	"github.com/gridforge/jobtracker/internal/store"
	"github.com/gridforge/jobtracker/internal/taskexec"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
	"github.com/gridforge/jobtracker/pkg/logger"
)

// UpdateLeaderFunc names the one node per job authorized to issue
// singleton SETUP/COMMIT/ABORT tasks and drive node-left recovery, per
// §4.4's "update leader" predicate. Election itself is delegated to
// the surrounding runtime; this module only needs the predicate.
type UpdateLeaderFunc func(meta *metadata.JobMetadata, localNode ids.NodeId) bool

// OldestParticipantIsLeader is the one UpdateLeaderFunc this module
// ships: the submitter node is always a participant and is stable for
// the job's lifetime, so naming it leader needs no cluster-wide
// coordination beyond what JobMetadata already carries.
func OldestParticipantIsLeader(meta *metadata.JobMetadata, localNode ids.NodeId) bool {
	return meta.SubmitterNodeID == localNode
}

// Config are the collaborators and parameters a JobTracker is built
// from. All fields except Logger, UpdateLeader and FinishedJobTTL are
// required; a nil UpdateLeader defaults to OldestParticipantIsLeader.
type Config struct {
	Store        store.MetadataStore
	Discovery    discovery.Discovery
	TaskExecutor taskexec.TaskExecutor
	Shuffle      shuffle.Shuffle
	Planner      plan.Planner
	Registry     *registry.Registry
	LocalNode    ids.NodeId
	UpdateLeader UpdateLeaderFunc

	// FinishedJobTTL is stamped on a record once it reaches COMPLETE so
	// the store can evict it; zero disables TTL stamping.
	FinishedJobTTL time.Duration

	Logger *logger.Logger
}

// localJob is the tracker's bookkeeping for one job's local scheduling
// decisions: localstate.State's sets/latches plus the Plan needed to
// translate scheduled/unscheduled split IDs back into InputSplit
// values and to the mapper/reducer assignments for this node.
type localJob struct {
	state *localstate.State
	plan  plan.Plan
	node  ids.NodeId
}

// JobTracker is the public API surface described in §4.1. Every method
// except Start acquires the lifecycle gate's read lock; Stop takes the
// write lock so no new work can start while it shuts down.
type JobTracker struct {
	store        store.MetadataStore
	discovery    discovery.Discovery
	taskExecutor taskexec.TaskExecutor
	shuffle      shuffle.Shuffle
	planner      plan.Planner
	registry     *registry.Registry
	localNode    ids.NodeId
	updateLeader UpdateLeaderFunc
	finishedTTL  time.Duration
	log          *logger.Logger

	loop *eventLoop

	gate    sync.RWMutex
	stopped bool

	mu            sync.Mutex
	finishFutures map[ids.JobId]*FinishFuture
	localJobs     map[ids.JobId]*localJob
	latestMeta    map[ids.JobId]*metadata.JobMetadata

	storeUnsub     func()
	discoveryUnsub func()
}

// New constructs a JobTracker. Start must be called before Submit or
// any other public method is used.
func New(cfg Config) *JobTracker {
	log := cfg.Logger
	if log == nil {
		log = logger.New()
	}
	updateLeader := cfg.UpdateLeader
	if updateLeader == nil {
		updateLeader = OldestParticipantIsLeader
	}

	return &JobTracker{
		store:         cfg.Store,
		discovery:     cfg.Discovery,
		taskExecutor:  cfg.TaskExecutor,
		shuffle:       cfg.Shuffle,
		planner:       cfg.Planner,
		registry:      cfg.Registry,
		localNode:     cfg.LocalNode,
		updateLeader:  updateLeader,
		finishedTTL:   cfg.FinishedJobTTL,
		log:           log.WithField("component", "tracker"),
		loop:          newEventLoop(256, log),
		finishFutures: make(map[ids.JobId]*FinishFuture),
		localJobs:     make(map[ids.JobId]*localJob),
		latestMeta:    make(map[ids.JobId]*metadata.JobMetadata),
	}
}

// Start subscribes to MetadataStore and Discovery notifications and
// begins the EventLoop. Per §4.2, both sources enqueue onto the same
// loop so a node observes (plan, pendings, phase) and topology changes
// in one serial order.
func (t *JobTracker) Start(ctx context.Context) error {
	t.loop.start()

	storeCh, storeUnsub, err := t.store.Subscribe(ctx)
	if err != nil {
		t.loop.stop()
		return fmt.Errorf("tracker: subscribe to metadata store: %w", err)
	}
	t.storeUnsub = storeUnsub

	discoveryCh, discoveryUnsub, err := t.discovery.Subscribe()
	if err != nil {
		storeUnsub()
		t.loop.stop()
		return fmt.Errorf("tracker: subscribe to discovery: %w", err)
	}
	t.discoveryUnsub = discoveryUnsub

	go t.forwardMetadata(storeCh)
	go t.forwardDiscovery(discoveryCh)

	return nil
}

func (t *JobTracker) forwardMetadata(ch <-chan *metadata.JobMetadata) {
	for meta := range ch {
		meta := meta
		t.loop.enqueue(func() { t.handleMetadataSnapshot(meta) })
	}
}

func (t *JobTracker) forwardDiscovery(ch <-chan discovery.Event) {
	for ev := range ch {
		ev := ev
		t.loop.enqueue(func() { t.handleDiscoveryEvent(ev) })
	}
}

// Stop closes the lifecycle gate, drains the EventLoop and fails every
// in-flight finish future with ErrTrackerStopping. After Stop returns
// no public method performs further work.
func (t *JobTracker) Stop() error {
	t.gate.Lock()
	if t.stopped {
		t.gate.Unlock()
		return nil
	}
	t.stopped = true
	t.gate.Unlock()

	if t.storeUnsub != nil {
		t.storeUnsub()
	}
	if t.discoveryUnsub != nil {
		t.discoveryUnsub()
	}
	t.loop.stop()

	t.mu.Lock()
	futures := make([]*FinishFuture, 0, len(t.finishFutures))
	for _, f := range t.finishFutures {
		futures = append(futures, f)
	}
	t.finishFutures = make(map[ids.JobId]*FinishFuture)
	t.mu.Unlock()

	for _, f := range futures {
		f.Resolve(FinishResult{FailCause: trackererrors.ErrTrackerStopping})
	}
	return nil
}

// Submit materializes a Job, plans it, seeds its initial metadata and
// returns a FinishFuture that resolves at COMPLETE. Per §4.1.
func (t *JobTracker) Submit(ctx context.Context, jobID ids.JobId, info job.Info) (*FinishFuture, error) {
	if !t.enter() {
		return nil, trackererrors.ErrTrackerStopping
	}
	defer t.leave()

	if _, ok := t.registry.Lookup(jobID); ok {
		return nil, trackererrors.ErrDuplicateJob
	}
	if _, err := t.store.Get(ctx, jobID); err == nil {
		return nil, trackererrors.ErrDuplicateJob
	}

	j, err := t.registry.GetOrCreate(jobID, func(jobID ids.JobId) (*job.Job, error) {
		nj := job.New(jobID, info)
		if err := nj.Initialize(t.localNode); err != nil {
			return nil, err
		}
		return nj, nil
	})
	if err != nil {
		return nil, fmt.Errorf("tracker: materialize job: %w", err)
	}

	p, err := t.planner.Plan(j, t.discovery.LiveNodes())
	if err != nil {
		_ = t.registry.Remove(jobID, true)
		return nil, fmt.Errorf("%w: %v", trackererrors.ErrPlanningFailure, err)
	}

	meta := metadata.New(jobID, t.localNode, info, p)

	future := newFinishFuture(jobID)
	t.mu.Lock()
	if _, exists := t.finishFutures[jobID]; exists {
		t.mu.Unlock()
		_ = t.registry.Remove(jobID, true)
		return nil, trackererrors.ErrDuplicateJob
	}
	t.finishFutures[jobID] = future
	t.mu.Unlock()

	if err := t.store.PutIfAbsent(ctx, meta); err != nil {
		t.mu.Lock()
		delete(t.finishFutures, jobID)
		t.mu.Unlock()
		_ = t.registry.Remove(jobID, true)
		return nil, fmt.Errorf("tracker: submit job: %w", err)
	}

	return future, nil
}

// Status reads through to the MetadataStore's current phase for
// jobID. Returns ErrUnknownJob if nothing is known, or
// ErrTrackerStopping once the tracker is stopping.
func (t *JobTracker) Status(ctx context.Context, jobID ids.JobId) (metadata.Phase, error) {
	meta, err := t.readThrough(ctx, jobID)
	if err != nil {
		return 0, err
	}
	return meta.Phase, nil
}

// Plan reads through to the MetadataStore's plan for jobID.
func (t *JobTracker) Plan(ctx context.Context, jobID ids.JobId) (plan.Plan, error) {
	meta, err := t.readThrough(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return meta.Plan, nil
}

// Counters reads through to the MetadataStore's accumulated counters
// for jobID.
func (t *JobTracker) Counters(ctx context.Context, jobID ids.JobId) (metadata.Counters, error) {
	meta, err := t.readThrough(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return meta.Counters, nil
}

func (t *JobTracker) readThrough(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, error) {
	if !t.enter() {
		return nil, trackererrors.ErrTrackerStopping
	}
	defer t.leave()

	meta, err := t.store.Get(ctx, jobID)
	if err != nil {
		return nil, trackererrors.ErrUnknownJob
	}
	return meta, nil
}

// FinishFuture returns the finish future for jobID, idempotently: if
// metadata is already COMPLETE it returns a pre-resolved future;
// otherwise it installs (or reuses) a pending one and re-checks
// metadata in case a COMPLETE snapshot slipped past before this call
// arrived, per §4.1.
func (t *JobTracker) FinishFuture(ctx context.Context, jobID ids.JobId) (*FinishFuture, error) {
	if !t.enter() {
		return nil, trackererrors.ErrTrackerStopping
	}
	defer t.leave()

	t.mu.Lock()
	future, exists := t.finishFutures[jobID]
	if !exists {
		future = newFinishFuture(jobID)
		t.finishFutures[jobID] = future
	}
	t.mu.Unlock()

	meta, err := t.store.Get(ctx, jobID)
	if err == nil && meta.Done() {
		future.Resolve(FinishResult{JobID: jobID, FailCause: meta.FailCause})
	}
	return future, nil
}

// Kill requests cancellation of jobID and waits for it to finish.
// Returns true iff the job resolved with a non-nil failCause, per
// §4.1 (a job that finished cleanly moments before Kill arrived still
// returns false).
func (t *JobTracker) Kill(ctx context.Context, jobID ids.JobId) (bool, error) {
	if !t.enter() {
		return false, trackererrors.ErrTrackerStopping
	}

	meta, err := t.store.Get(ctx, jobID)
	if err != nil {
		t.leave()
		return false, trackererrors.ErrUnknownJob
	}
	if meta.Phase != metadata.COMPLETE && meta.Phase != metadata.CANCELLING {
		t.submitTransform(jobID, metadata.CancelJob(trackererrors.ErrCancelled, nil, nil))
	}
	t.leave()

	future, err := t.FinishFuture(ctx, jobID)
	if err != nil {
		return false, err
	}
	result, err := future.Get(ctx)
	if err != nil {
		return false, err
	}
	return result.FailCause != nil, nil
}

// OnTaskFinished is the TaskExecutor completion callback. It may be
// invoked from any goroutine, never through the EventLoop, per §4.5.
// Completions that arrive after Stop are ignored.
func (t *JobTracker) OnTaskFinished(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
	if !t.enter() {
		return
	}
	defer t.leave()

	switch info.Type {
	case taskexec.SETUP:
		t.onSetupFinished(info, status, err)
	case taskexec.MAP:
		t.onMapFinished(info, status, err)
	case taskexec.REDUCE:
		t.onReduceFinished(info, status, err)
	case taskexec.COMBINE:
		t.onCombineFinished(info, status, err)
	case taskexec.COMMIT, taskexec.ABORT:
		t.onCommitOrAbortFinished(info, status, counters)
	}
}

// OnExternalMappersInitialized merges {reducer: desc} into
// reducerAddresses, per §4.1.
func (t *JobTracker) OnExternalMappersInitialized(jobID ids.JobId, reducers []int, desc plan.ProcessDescriptor) {
	if !t.enter() {
		return
	}
	defer t.leave()

	t.submitTransform(jobID, metadata.InitializeReducers(reducers, desc))
}

// enter acquires the lifecycle gate for a public method, returning
// false if the tracker is stopping.
func (t *JobTracker) enter() bool {
	t.gate.RLock()
	if t.stopped {
		t.gate.RUnlock()
		return false
	}
	return true
}

func (t *JobTracker) leave() {
	t.gate.RUnlock()
}

// submitTransform fires fn at the store and logs its eventual result;
// per §5 the future is observed by a logging listener, not awaited.
func (t *JobTracker) submitTransform(jobID ids.JobId, fn metadata.Transform) {
	resultCh := t.store.Transform(context.Background(), jobID, fn)
	go func() {
		if err := <-resultCh; err != nil {
			t.log.Error("transform failed", "job", string(jobID), "error", err)
		}
	}()
}

func taskFailureCause(status taskexec.TaskStatus, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: task reported %s", trackererrors.ErrTaskFailure, status)
}
