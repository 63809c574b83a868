// Package metadata defines JobMetadata, the single replicated record
// the tracker mutates for every job, and Counters, the monotonically
// accumulated task statistics carried on it. Mutation happens only
// through the closures in transform.go; every exported helper here
// returns a fresh value rather than touching its receiver in place,
// since the backing store may retry a closure against a stale copy.
package metadata

import (
	"time"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan"
)

// Phase is a point in a job's lifecycle. Transitions are driven
// exclusively by the transforms in transform.go; see their doc
// comments for the allowed edges.
type Phase int

const (
	SETUP Phase = iota
	MAP
	REDUCE
	CANCELLING
	COMPLETE
)

func (p Phase) String() string {
	switch p {
	case SETUP:
		return "SETUP"
	case MAP:
		return "MAP"
	case REDUCE:
		return "REDUCE"
	case CANCELLING:
		return "CANCELLING"
	case COMPLETE:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Counters holds named, monotonically accumulated task statistics
// (e.g. "records_read", "bytes_written"). A nil Counters behaves as
// empty.
type Counters map[string]int64

// Merge returns a new Counters with c's values summed against other's.
func (c Counters) Merge(other Counters) Counters {
	out := make(Counters, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] += v
	}
	return out
}

// SplitSet is a value-equal set of InputSplit keyed by split ID.
type SplitSet map[string]plan.InputSplit

func NewSplitSet(splits ...plan.InputSplit) SplitSet {
	s := make(SplitSet, len(splits))
	for _, split := range splits {
		s[split.ID()] = split
	}
	return s
}

func (s SplitSet) Has(split plan.InputSplit) bool {
	_, ok := s[split.ID()]
	return ok
}

func (s SplitSet) clone() SplitSet {
	out := make(SplitSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s SplitSet) without(splits []plan.InputSplit) SplitSet {
	out := s.clone()
	for _, split := range splits {
		delete(out, split.ID())
	}
	return out
}

// IntSet is a set of reducer indices.
type IntSet map[int]struct{}

func NewIntSet(values ...int) IntSet {
	s := make(IntSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s IntSet) Has(v int) bool {
	_, ok := s[v]
	return ok
}

func (s IntSet) clone() IntSet {
	out := make(IntSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s IntSet) without(values []int) IntSet {
	out := s.clone()
	for _, v := range values {
		delete(out, v)
	}
	return out
}

// JobMetadata is the single record replicated by MetadataStore for a
// job, keyed by JobID. It is only ever read or written through
// MetadataStore.Get/PutIfAbsent/Transform; callers must never mutate
// a JobMetadata value obtained from the store in place.
type JobMetadata struct {
	JobID           ids.JobId
	SubmitterNodeID ids.NodeId
	JobInfo         job.Info

	Plan plan.Plan

	Phase Phase

	PendingSplits    SplitSet
	PendingReducers  IntSet
	ReducerAddresses map[int]plan.ProcessDescriptor

	Counters Counters

	FailCause error

	SetupCompleteTs time.Time
	MapCompleteTs   time.Time
	CompleteTs      time.Time

	// TTL is set once the record reaches COMPLETE. The memstore and
	// dynamostore backends store it with the record but never evict
	// records.
	TTL time.Duration
}

// New constructs the initial SETUP-phase record for a freshly
// submitted job, per §4.1: pendingSplits seeded from every mapper
// split in the plan, pendingReducers seeded from 0..ReducerCount-1.
func New(jobID ids.JobId, submitter ids.NodeId, info job.Info, p plan.Plan) *JobMetadata {
	reducers := make([]int, p.ReducerCount())
	for i := range reducers {
		reducers[i] = i
	}

	return &JobMetadata{
		JobID:            jobID,
		SubmitterNodeID:  submitter,
		JobInfo:          info,
		Plan:             p,
		Phase:            SETUP,
		PendingSplits:    NewSplitSet(plan.AllMapperSplits(p)...),
		PendingReducers:  NewIntSet(reducers...),
		ReducerAddresses: make(map[int]plan.ProcessDescriptor),
		Counters:         make(Counters),
	}
}

// clone returns a shallow copy of m with its mutable collection
// fields deep-copied, so a transform can mutate the copy freely
// without affecting the value the store handed it.
func (m *JobMetadata) clone() *JobMetadata {
	out := *m
	out.PendingSplits = m.PendingSplits.clone()
	out.PendingReducers = m.PendingReducers.clone()
	out.ReducerAddresses = make(map[int]plan.ProcessDescriptor, len(m.ReducerAddresses))
	for k, v := range m.ReducerAddresses {
		out.ReducerAddresses[k] = v
	}
	out.Counters = m.Counters.Merge(nil)
	return &out
}

// Done reports whether the record has reached a terminal phase.
func (m *JobMetadata) Done() bool {
	return m.Phase == COMPLETE
}
