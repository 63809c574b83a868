package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan"
)

func TestTransform_NilInputIsNoop(t *testing.T) {
	assert.Nil(t, UpdatePhase(MAP)(nil))
	assert.Nil(t, RemoveMappers(nil, nil)(nil))
	assert.Nil(t, RemoveReducer(0, nil)(nil))
	assert.Nil(t, InitializeReducers(nil, plan.ProcessDescriptor{})(nil))
	assert.Nil(t, CancelJob(nil, nil, nil)(nil))
	assert.Nil(t, IncrementCounters(nil)(nil))
}

func TestUpdatePhase_StampsTimestamps(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())

	afterMap := UpdatePhase(MAP)(m)
	assert.Equal(t, MAP, afterMap.Phase)
	assert.False(t, afterMap.SetupCompleteTs.IsZero())

	afterComplete := UpdatePhase(COMPLETE)(afterMap)
	assert.Equal(t, COMPLETE, afterComplete.Phase)
	assert.False(t, afterComplete.CompleteTs.IsZero())
}

func TestRemoveMappers_TransitionsToReduceWhenEmpty(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	m.Phase = MAP

	afterFirst := RemoveMappers([]plan.InputSplit{fakeSplit("split-0")}, nil)(m)
	assert.Equal(t, MAP, afterFirst.Phase)
	assert.Len(t, afterFirst.PendingSplits, 1)

	afterSecond := RemoveMappers([]plan.InputSplit{fakeSplit("split-1")}, nil)(afterFirst)
	assert.Equal(t, REDUCE, afterSecond.Phase)
	assert.Empty(t, afterSecond.PendingSplits)
	assert.False(t, afterSecond.MapCompleteTs.IsZero())
}

func TestRemoveMappers_FailureCancelsJob(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	m.Phase = MAP
	cause := errors.New("mapper crashed")

	after := RemoveMappers([]plan.InputSplit{fakeSplit("split-0")}, cause)(m)

	assert.Equal(t, CANCELLING, after.Phase)
	assert.Equal(t, cause, after.FailCause)
	assert.Len(t, after.PendingSplits, 1, "split-1 still pending, only split-0 was removed")
}

func TestRemoveMappers_DoesNotOverrideExistingCancelling(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	first := errors.New("first failure")
	second := errors.New("second failure")

	cancelling := CancelJob(first, nil, nil)(m)
	after := RemoveMappers([]plan.InputSplit{fakeSplit("split-0")}, second)(cancelling)

	assert.Equal(t, first, after.FailCause, "first error wins once CANCELLING")
}

func TestRemoveReducer_Failure(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	m.Phase = REDUCE
	cause := errors.New("reducer crashed")

	after := RemoveReducer(0, cause)(m)

	assert.Equal(t, CANCELLING, after.Phase)
	assert.Equal(t, cause, after.FailCause)
	assert.Empty(t, after.PendingReducers)
}

func TestInitializeReducers_MergesAddresses(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	desc := plan.ProcessDescriptor{NodeID: "node-b", Address: "10.0.0.2:9000"}

	after := InitializeReducers([]int{0}, desc)(m)

	assert.Equal(t, desc, after.ReducerAddresses[0])
	assert.Empty(t, m.ReducerAddresses, "original must be untouched")
}

func TestCancelJob_PrunesOrphanedPendingsAndSetsCause(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	m.Phase = MAP
	cause := errors.New("one or more nodes participating in the job have failed")

	after := CancelJob(cause, []plan.InputSplit{fakeSplit("split-1")}, []int{0})(m)

	assert.Equal(t, CANCELLING, after.Phase)
	assert.Equal(t, cause, after.FailCause)
	assert.False(t, after.PendingSplits.Has(fakeSplit("split-1")))
	assert.Empty(t, after.PendingReducers)
}

func TestIncrementCounters_Accumulates(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())

	afterFirst := IncrementCounters(Counters{"records": 10})(m)
	afterSecond := IncrementCounters(Counters{"records": 5})(afterFirst)

	assert.Equal(t, int64(15), afterSecond.Counters["records"])
}

func TestStack_ComposesPredecessorThenNext(t *testing.T) {
	m := New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())
	m.Phase = MAP

	incrementThenRemove := Stack(
		IncrementCounters(Counters{"records": 1}),
		RemoveMappers([]plan.InputSplit{fakeSplit("split-0")}, nil),
	)

	after := incrementThenRemove(m)

	assert.Equal(t, int64(1), after.Counters["records"])
	assert.Len(t, after.PendingSplits, 1)
}

func TestStack_NilPredecessorIsIdentity(t *testing.T) {
	next := UpdatePhase(MAP)
	assert.Equal(t, MAP, Stack(nil, next)(New("job-1", "node-a", job.Info{}, twoMapperOneReducerPlan())).Phase)
}
