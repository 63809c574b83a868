package localstate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridforge/jobtracker/internal/localstate"
)

func TestState_TryScheduleMapperOnlyOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.TryScheduleMapper("split-0"))
	assert.False(t, s.TryScheduleMapper("split-0"))
	assert.True(t, s.TryScheduleMapper("split-1"))
	assert.Equal(t, 2, s.ScheduledMapperCount())
}

func TestState_TryScheduleMapperConcurrentCallersSeeExactlyOneWinner(t *testing.T) {
	s := localstate.New()
	const workers = 50

	var wg sync.WaitGroup
	var wins int
	var mu sync.Mutex
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if s.TryScheduleMapper("split-0") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestState_TryScheduleReducerOnlyOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.TryScheduleReducer(3))
	assert.False(t, s.TryScheduleReducer(3))
}

func TestState_TryScheduleSetupOnlyOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.TryScheduleSetup())
	assert.False(t, s.TryScheduleSetup())
}

func TestState_TryScheduleCommitOnlyOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.TryScheduleCommit())
	assert.False(t, s.TryScheduleCommit())
}

func TestState_IsMapperScheduled(t *testing.T) {
	s := localstate.New()

	assert.False(t, s.IsMapperScheduled("split-0"))
	s.TryScheduleMapper("split-0")
	assert.True(t, s.IsMapperScheduled("split-0"))
}

func TestState_UnscheduledMappersExcludesScheduled(t *testing.T) {
	s := localstate.New()
	s.TryScheduleMapper("split-0")

	unscheduled := s.UnscheduledMappers([]string{"split-0", "split-1", "split-2"})
	assert.ElementsMatch(t, []string{"split-1", "split-2"}, unscheduled)
}

func TestState_UnscheduledReducersExcludesScheduled(t *testing.T) {
	s := localstate.New()
	s.TryScheduleReducer(1)

	unscheduled := s.UnscheduledReducers([]int{0, 1, 2})
	assert.ElementsMatch(t, []int{0, 2}, unscheduled)
}

func TestState_IncrementCompletedMappers(t *testing.T) {
	s := localstate.New()

	assert.Equal(t, int64(1), s.IncrementCompletedMappers())
	assert.Equal(t, int64(2), s.IncrementCompletedMappers())
	assert.Equal(t, int64(2), s.CompletedMappers())
}

func TestState_OnCancelLatchesOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.OnCancel())
	assert.False(t, s.OnCancel())
}

func TestState_OnAbortedLatchesOnce(t *testing.T) {
	s := localstate.New()

	assert.True(t, s.OnAborted())
	assert.False(t, s.OnAborted())
}
