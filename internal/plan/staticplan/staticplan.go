// Package staticplan implements a deterministic round-robin Planner:
// input splits and reducer indices are distributed across the live
// node set in index order, with no cost model or locality awareness.
// It is the one concrete Plan implementation this module ships, which
// is also why internal/ipc and internal/store/dynamostore serialize
// against its concrete Split/Plan shape rather than against the
// plan.InputSplit/plan.Plan interfaces directly.
package staticplan

import (
	"fmt"
	"sort"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan"
)

// Split is the one concrete plan.InputSplit implementation this
// module ships: a named chunk of one of the job's input URIs.
type Split struct {
	SplitID string `json:"splitId"`
	URI     string `json:"uri"`
	Offset  int64  `json:"offset"`
	Length  int64  `json:"length"`
}

func (s Split) ID() string { return s.SplitID }

// Plan is the concrete plan.Plan this package produces: splits and
// reducer indices distributed round-robin over the node list captured
// at planning time.
type Plan struct {
	MapperAssignments  map[ids.NodeId][]Split `json:"mapperAssignments"`
	ReducerAssignments map[ids.NodeId][]int   `json:"reducerAssignments"`
	TaskNumbers        map[string]int         `json:"taskNumbers"`
	ReducerTotal       int                    `json:"reducers"`
}

var _ plan.Plan = (*Plan)(nil)

func (p *Plan) MapperNodeIds() []ids.NodeId {
	return sortedKeys(p.MapperAssignments)
}

func (p *Plan) Mappers(node ids.NodeId) []plan.InputSplit {
	splits := p.MapperAssignments[node]
	out := make([]plan.InputSplit, len(splits))
	for i, s := range splits {
		out[i] = s
	}
	return out
}

func (p *Plan) ReducerNodeIds() []ids.NodeId {
	out := make([]ids.NodeId, 0, len(p.ReducerAssignments))
	for n := range p.ReducerAssignments {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Plan) Reducers(node ids.NodeId) []int { return p.ReducerAssignments[node] }

func (p *Plan) ReducerCount() int { return p.ReducerTotal }

func (p *Plan) TaskNumber(split plan.InputSplit) int {
	return p.TaskNumbers[split.ID()]
}

func sortedKeys(m map[ids.NodeId][]Split) []ids.NodeId {
	out := make([]ids.NodeId, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Planner turns every input URI in a job's Info into one split and
// assigns both the resulting splits and the reducer indices to
// liveNodes round-robin. URIs are not divided into several chunks.
type Planner struct {
	// SplitSize, when positive, is recorded as each split's Length.
	// This Planner never touches the filesystem, so it does not know
	// an input's size and always produces exactly one split per URI,
	// whatever SplitSize is.
	SplitSize int64
	// ReducerCount is the number of reducers to plan for every job.
	ReducerCount int
}

var _ plan.Planner = (*Planner)(nil)

func (pl *Planner) Plan(j *job.Job, liveNodes []ids.NodeId) (plan.Plan, error) {
	if len(liveNodes) == 0 {
		return nil, fmt.Errorf("staticplan: no live nodes to plan against")
	}

	nodes := append([]ids.NodeId(nil), liveNodes...)
	sort.Slice(nodes, func(i, k int) bool { return nodes[i] < nodes[k] })

	info := j.Info()
	mapperAssignments := make(map[ids.NodeId][]Split)
	taskNumbers := make(map[string]int)

	taskN := 0
	for _, uri := range info.InputURIs {
		for _, split := range pl.splitURI(uri) {
			node := nodes[taskN%len(nodes)]
			mapperAssignments[node] = append(mapperAssignments[node], split)
			taskNumbers[split.ID()] = taskN
			taskN++
		}
	}

	reducerCount := pl.ReducerCount
	if reducerCount <= 0 {
		reducerCount = 1
	}
	reducerAssignments := make(map[ids.NodeId][]int)
	for r := 0; r < reducerCount; r++ {
		node := nodes[r%len(nodes)]
		reducerAssignments[node] = append(reducerAssignments[node], r)
	}

	return &Plan{
		MapperAssignments:  mapperAssignments,
		ReducerAssignments: reducerAssignments,
		TaskNumbers:        taskNumbers,
		ReducerTotal:       reducerCount,
	}, nil
}

func (pl *Planner) splitURI(uri string) []Split {
	if pl.SplitSize <= 0 {
		return []Split{{SplitID: uri, URI: uri}}
	}

	// Without a real filesystem/object-store stat call this Planner
	// cannot know the object's length, so it always produces a single
	// split per URI; SplitSize is honored by finer-grained planners
	// built against real storage backends.
	return []Split{{SplitID: uri, URI: uri, Length: pl.SplitSize}}
}
