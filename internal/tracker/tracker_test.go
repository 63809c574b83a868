package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/discovery/static"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
	"github.com/gridforge/jobtracker/internal/registry"
	shuffleinproc "github.com/gridforge/jobtracker/internal/shuffle/inproc"
	"github.com/gridforge/jobtracker/internal/store/memstore"
	"github.com/gridforge/jobtracker/internal/taskexec"
	"github.com/gridforge/jobtracker/internal/taskexec/inproc"
	"github.com/gridforge/jobtracker/internal/tracker"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
)

// taskOutcome lets a test script exactly one status/error per task type.
type taskOutcome struct {
	status   taskexec.TaskStatus
	err      error
	counters metadata.Counters
}

func newHarness(t *testing.T, outcomes map[taskexec.TaskType]taskOutcome) (*tracker.JobTracker, func()) {
	t.Helper()
	trk, _, stop := newHarnessWithPeers(t, outcomes, nil)
	return trk, stop
}

// newHarnessWithPeers is newHarness plus a static.Discovery seeded with
// extra peer nodes, for tests that need the planner to assign work to
// a node this harness never actually runs tasks on (so it can drop
// that node and exercise node-left recovery).
func newHarnessWithPeers(t *testing.T, outcomes map[taskexec.TaskType]taskOutcome, peers []ids.NodeId) (*tracker.JobTracker, *static.Discovery, func()) {
	t.Helper()

	localNode := ids.NodeId("node-a")
	disc := static.New(localNode, peers)
	st := memstore.New()
	sh := shuffleinproc.New()
	reg := registry.New()
	planner := &staticplan.Planner{ReducerCount: 1}

	var trk *tracker.JobTracker
	taskFn := func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error) {
		o, ok := outcomes[info.Type]
		if !ok {
			// Unscripted tasks succeed: SETUP reports OK, COMMIT reports a
			// "tasks" counter of 1, every other task reports COMPLETED.
			switch info.Type {
			case taskexec.SETUP:
				return taskexec.OK, nil, nil
			case taskexec.COMMIT:
				return taskexec.COMPLETED, metadata.Counters{"tasks": 1}, nil
			}
			return taskexec.COMPLETED, nil, nil
		}
		return o.status, o.counters, o.err
	}
	exec := inproc.New(taskFn, func(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
		trk.OnTaskFinished(info, status, err, counters)
	}, 8)

	trk = tracker.New(tracker.Config{
		Store:        st,
		Discovery:    disc,
		TaskExecutor: exec,
		Shuffle:      sh,
		Planner:      planner,
		Registry:     reg,
		LocalNode:    localNode,
	})

	require.NoError(t, trk.Start(context.Background()))
	return trk, disc, func() { _ = trk.Stop() }
}

func waitDone(t *testing.T, f *tracker.FinishFuture) tracker.FinishResult {
	t.Helper()
	select {
	case <-f.Done():
		r, _ := f.Peek()
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job to finish")
		return tracker.FinishResult{}
	}
}

func TestTracker_HappyPathTwoMappersOneReducer(t *testing.T) {
	trk, stop := newHarness(t, nil)
	defer stop()

	ctx := context.Background()
	future, err := trk.Submit(ctx, "job-1", job.Info{InputURIs: []string{"a", "b"}})
	require.NoError(t, err)

	result := waitDone(t, future)
	assert.NoError(t, result.FailCause)

	phase, err := trk.Status(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, metadata.COMPLETE, phase)

	counters, err := trk.Counters(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters["tasks"])
}

func TestTracker_MapperCrashDrainsToAbortWithCause(t *testing.T) {
	crashErr := errors.New("mapper exploded")
	trk, stop := newHarness(t, map[taskexec.TaskType]taskOutcome{
		taskexec.MAP: {status: taskexec.CRASHED, err: crashErr},
	})
	defer stop()

	ctx := context.Background()
	future, err := trk.Submit(ctx, "job-2", job.Info{InputURIs: []string{"a", "b", "c"}})
	require.NoError(t, err)

	result := waitDone(t, future)
	assert.ErrorIs(t, result.FailCause, crashErr)

	phase, err := trk.Status(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, metadata.COMPLETE, phase)
}

func TestTracker_DuplicateSubmitRejected(t *testing.T) {
	trk, stop := newHarness(t, nil)
	defer stop()

	ctx := context.Background()
	_, err := trk.Submit(ctx, "job-3", job.Info{InputURIs: []string{"a"}})
	require.NoError(t, err)

	_, err = trk.Submit(ctx, "job-3", job.Info{InputURIs: []string{"a"}})
	assert.Error(t, err)
}

func TestTracker_KillResolvesWithCancelledCause(t *testing.T) {
	trk, stop := newHarness(t, nil)
	defer stop()

	ctx := context.Background()
	future, err := trk.Submit(ctx, "job-4", job.Info{InputURIs: []string{"a"}})
	require.NoError(t, err)

	// Wait until SETUP has handed off to MAP so Kill's CancelJob
	// transform cannot race the onSetupFinished(OK) transform that
	// would otherwise flip the phase back past CANCELLING.
	waitForPhase(t, trk, "job-4", metadata.MAP)

	killed, err := trk.Kill(ctx, "job-4")
	require.NoError(t, err)
	assert.True(t, killed)

	result := waitDone(t, future)
	assert.Error(t, result.FailCause)
}

func waitForPhase(t *testing.T, trk *tracker.JobTracker, jobID ids.JobId, phase metadata.Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p, err := trk.Status(context.Background(), jobID)
		if err == nil && p == phase {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for job %s to reach phase %s", jobID, phase)
}

func TestTracker_NodeLeftDuringMapDrainsToCompleteWithParticipantLost(t *testing.T) {
	trk, disc, stop := newHarnessWithPeers(t, nil, []ids.NodeId{"node-b"})
	defer stop()

	ctx := context.Background()
	// Two input URIs round-robin across the two live nodes (node-a,
	// node-b sorted): one split lands on node-a, which this harness
	// actually runs tasks for, the other lands on node-b, which never
	// reports completion because nothing in this process executes on
	// its behalf.
	future, err := trk.Submit(ctx, "job-7", job.Info{InputURIs: []string{"a", "b"}})
	require.NoError(t, err)

	waitForPhase(t, trk, "job-7", metadata.MAP)

	// Give node-a's own split time to be dispatched and reported
	// before dropping node-b, so the job is genuinely stuck waiting on
	// node-b's split rather than incidentally still in SETUP.
	time.Sleep(20 * time.Millisecond)

	disc.RemoveNode("node-b")

	result := waitDone(t, future)
	assert.Error(t, result.FailCause)
	assert.ErrorIs(t, result.FailCause, trackererrors.ErrParticipantLost)

	phase, err := trk.Status(ctx, "job-7")
	require.NoError(t, err)
	assert.Equal(t, metadata.COMPLETE, phase)
}

func TestTracker_StopFailsInFlightFinishFutures(t *testing.T) {
	trk, _ := newHarness(t, map[taskexec.TaskType]taskOutcome{
		taskexec.SETUP: {status: taskexec.OK},
		taskexec.MAP:   {status: taskexec.CRASHED, err: errors.New("stuck")},
	})

	ctx := context.Background()
	future, err := trk.Submit(ctx, "job-5", job.Info{InputURIs: []string{"a"}})
	require.NoError(t, err)

	require.NoError(t, trk.Stop())

	select {
	case <-future.Done():
		result, _ := future.Peek()
		assert.Error(t, result.FailCause)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Stop to fail the finish future")
	}

	_, err = trk.Submit(ctx, "job-6", job.Info{InputURIs: []string{"a"}})
	assert.Error(t, err)
}
