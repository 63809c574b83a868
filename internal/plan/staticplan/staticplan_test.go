package staticplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
)

func TestPlanner_DistributesSplitsAndReducersRoundRobin(t *testing.T) {
	pl := &Planner{ReducerCount: 2}
	j := job.New("job-1", job.Info{InputURIs: []string{"s3://bucket/a", "s3://bucket/b", "s3://bucket/c"}})

	p, err := pl.Plan(j, []ids.NodeId{"node-a", "node-b"})
	require.NoError(t, err)

	total := 0
	for _, n := range p.MapperNodeIds() {
		total += len(p.Mappers(n))
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, p.ReducerCount())

	reducerTotal := 0
	for _, n := range p.ReducerNodeIds() {
		reducerTotal += len(p.Reducers(n))
	}
	assert.Equal(t, 2, reducerTotal)
}

func TestPlanner_RejectsEmptyNodeList(t *testing.T) {
	pl := &Planner{ReducerCount: 1}
	j := job.New("job-1", job.Info{InputURIs: []string{"s3://bucket/a"}})

	_, err := pl.Plan(j, nil)
	assert.Error(t, err)
}

func TestPlanner_TaskNumbersAreStable(t *testing.T) {
	pl := &Planner{ReducerCount: 1}
	j := job.New("job-1", job.Info{InputURIs: []string{"s3://bucket/a", "s3://bucket/b"}})

	p, err := pl.Plan(j, []ids.NodeId{"node-a"})
	require.NoError(t, err)

	splits := p.Mappers("node-a")
	require.Len(t, splits, 2)
	assert.NotEqual(t, p.TaskNumber(splits[0]), p.TaskNumber(splits[1]))
}
