package metadata

import (
	"time"

	"github.com/gridforge/jobtracker/internal/plan"
)

// Transform is a pure, idempotent mutation of a JobMetadata snapshot.
// It must return a new value rather than mutating its argument: the
// store may re-apply the same Transform on retry against whatever the
// current record happens to be, so Transform must tolerate being
// called more than once with different (or the same) input.
//
// Transform(nil) must return nil — the job was already evicted by the
// store and there is nothing to update.
type Transform func(*JobMetadata) *JobMetadata

// Stack composes next on top of predecessor: apply(m) =
// next(predecessor(m)). A nil predecessor is the identity. Used when
// a caller already holds a pending Transform for a job (e.g. a
// counter increment) and needs to layer a further intent on top of it
// rather than racing two independent Transform calls against the
// same key.
func Stack(predecessor, next Transform) Transform {
	if predecessor == nil {
		return next
	}
	return func(m *JobMetadata) *JobMetadata {
		return next(predecessor(m))
	}
}

// UpdatePhase sets phase unconditionally. Stamps setupCompleteTs when
// transitioning to MAP and completeTs when transitioning to COMPLETE.
func UpdatePhase(phase Phase) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		out.Phase = phase
		switch phase {
		case MAP:
			out.SetupCompleteTs = time.Now()
		case COMPLETE:
			out.CompleteTs = time.Now()
		}
		return out
	}
}

// RemoveMappers removes splits from pendingSplits. If err is non-nil
// and the record is not already CANCELLING, it records failCause and
// transitions to CANCELLING. Otherwise, once pendingSplits empties,
// it transitions MAP→REDUCE and stamps mapCompleteTs.
func RemoveMappers(splits []plan.InputSplit, err error) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		out.PendingSplits = out.PendingSplits.without(splits)

		if err != nil && out.Phase != CANCELLING {
			out.FailCause = err
			out.Phase = CANCELLING
			return out
		}
		if len(out.PendingSplits) == 0 && out.Phase != CANCELLING {
			out.Phase = REDUCE
			out.MapCompleteTs = time.Now()
		}
		return out
	}
}

// RemoveReducer removes rdc from pendingReducers. On err it records
// failCause and transitions to CANCELLING, mirroring RemoveMappers.
func RemoveReducer(rdc int, err error) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		delete(out.PendingReducers, rdc)

		if err != nil && out.Phase != CANCELLING {
			out.FailCause = err
			out.Phase = CANCELLING
		}
		return out
	}
}

// InitializeReducers merges {reducer: desc} into reducerAddresses for
// every reducer in rdcs.
func InitializeReducers(rdcs []int, desc plan.ProcessDescriptor) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		for _, r := range rdcs {
			out.ReducerAddresses[r] = desc
		}
		return out
	}
}

// CancelJob forces the record into CANCELLING, optionally pruning
// splits/rdcs from the pending sets (used by node-left recovery to
// drop orphaned work) and optionally recording failCause. Callers
// must only invoke this when the record is already CANCELLING or err
// is non-nil — forcing CANCELLING without a cause on an otherwise
// healthy job would mask the real failure reason.
func CancelJob(err error, splits []plan.InputSplit, rdcs []int) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		if len(splits) > 0 {
			out.PendingSplits = out.PendingSplits.without(splits)
		}
		if len(rdcs) > 0 {
			out.PendingReducers = out.PendingReducers.without(rdcs)
		}
		out.Phase = CANCELLING
		if err != nil {
			out.FailCause = err
		}
		return out
	}
}

// IncrementCounters merges c into the record's accumulated counters.
func IncrementCounters(c Counters) Transform {
	return func(m *JobMetadata) *JobMetadata {
		if m == nil {
			return nil
		}
		out := m.clone()
		out.Counters = out.Counters.Merge(c)
		return out
	}
}
