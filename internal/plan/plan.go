// Package plan defines the contracts produced by the job planner: the
// immutable split-to-node and reducer-to-node assignment a job runs
// against. The planner itself is an external collaborator; this
// package only names the shape its output must have.
package plan

import (
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
)

// InputSplit is an opaque, value-equal, hashable unit of mapper input.
// Concrete split types are supplied by the planner; ID must be stable
// across replicas of the same split.
type InputSplit interface {
	ID() string
}

// ProcessDescriptor names where an external reducer process can be
// reached once initialized, e.g. for shuffle fetches.
type ProcessDescriptor struct {
	NodeID  ids.NodeId
	Address string
}

// Plan is the immutable assignment of splits and reducer indices to
// nodes, produced once per job by Planner.Plan and never mutated
// afterward.
type Plan interface {
	MapperNodeIds() []ids.NodeId
	Mappers(node ids.NodeId) []InputSplit

	ReducerNodeIds() []ids.NodeId
	Reducers(node ids.NodeId) []int

	ReducerCount() int

	// TaskNumber returns the stable task number for a split, identical
	// across every replica holding the same plan.
	TaskNumber(split InputSplit) int
}

// Planner produces a Plan for a job given the nodes currently alive.
// Implemented outside this module; defined here only as the contract
// internal/tracker depends on.
//
//counterfeiter:generate . Planner
type Planner interface {
	Plan(j *job.Job, liveNodes []ids.NodeId) (Plan, error)
}

// AllMapperSplits collects every split assigned to any node under p,
// deduplicated by ID. Used by JobTracker.Submit to seed pendingSplits.
func AllMapperSplits(p Plan) []InputSplit {
	seen := make(map[string]struct{})
	var out []InputSplit
	for _, node := range p.MapperNodeIds() {
		for _, split := range p.Mappers(node) {
			if _, ok := seen[split.ID()]; ok {
				continue
			}
			seen[split.ID()] = struct{}{}
			out = append(out, split)
		}
	}
	return out
}
