package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan"
)

type fakeSplit string

func (s fakeSplit) ID() string { return string(s) }

type fakePlan struct {
	mapperNodes map[ids.NodeId][]plan.InputSplit
	reducers    map[ids.NodeId][]int
	reducerN    int
}

func (p *fakePlan) MapperNodeIds() []ids.NodeId {
	var out []ids.NodeId
	for n := range p.mapperNodes {
		out = append(out, n)
	}
	return out
}

func (p *fakePlan) Mappers(n ids.NodeId) []plan.InputSplit { return p.mapperNodes[n] }

func (p *fakePlan) ReducerNodeIds() []ids.NodeId {
	var out []ids.NodeId
	for n := range p.reducers {
		out = append(out, n)
	}
	return out
}

func (p *fakePlan) Reducers(n ids.NodeId) []int { return p.reducers[n] }

func (p *fakePlan) ReducerCount() int { return p.reducerN }

func (p *fakePlan) TaskNumber(split plan.InputSplit) int {
	for _, splits := range p.mapperNodes {
		for i, s := range splits {
			if s.ID() == split.ID() {
				return i
			}
		}
	}
	return -1
}

func twoMapperOneReducerPlan() *fakePlan {
	return &fakePlan{
		mapperNodes: map[ids.NodeId][]plan.InputSplit{
			"node-a": {fakeSplit("split-0")},
			"node-b": {fakeSplit("split-1")},
		},
		reducers: map[ids.NodeId][]int{
			"node-a": {0},
		},
		reducerN: 1,
	}
}

func TestNew_SeedsPendingSetsFromPlan(t *testing.T) {
	p := twoMapperOneReducerPlan()
	m := New("job-1", "node-a", job.Info{Name: "wordcount"}, p)

	assert.Equal(t, SETUP, m.Phase)
	assert.Len(t, m.PendingSplits, 2)
	assert.True(t, m.PendingSplits.Has(fakeSplit("split-0")))
	assert.True(t, m.PendingSplits.Has(fakeSplit("split-1")))
	assert.Len(t, m.PendingReducers, 1)
	assert.True(t, m.PendingReducers.Has(0))
}

func TestClone_IsIndependentOfOriginal(t *testing.T) {
	p := twoMapperOneReducerPlan()
	m := New("job-1", "node-a", job.Info{}, p)

	clone := m.clone()
	clone.PendingSplits["extra"] = fakeSplit("extra")
	clone.Counters["x"] = 1

	assert.Len(t, m.PendingSplits, 2)
	assert.Empty(t, m.Counters)
}

func TestCounters_Merge(t *testing.T) {
	a := Counters{"records": 5}
	b := Counters{"records": 3, "bytes": 10}

	merged := a.Merge(b)

	assert.Equal(t, int64(8), merged["records"])
	assert.Equal(t, int64(10), merged["bytes"])
	assert.Equal(t, int64(5), a["records"], "Merge must not mutate the receiver")
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "SETUP", SETUP.String())
	assert.Equal(t, "COMPLETE", COMPLETE.String())
	assert.Equal(t, "UNKNOWN", Phase(99).String())
}
