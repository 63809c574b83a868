package registry_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/registry"
)

func TestRegistry_GetOrCreateConstructsOnce(t *testing.T) {
	r := registry.New()
	var calls atomic.Int32

	const workers = 20
	var wg sync.WaitGroup
	jobs := make([]*job.Job, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			j, err := r.GetOrCreate("job-1", func(jobID ids.JobId) (*job.Job, error) {
				calls.Add(1)
				return job.New(jobID, job.Info{}), nil
			})
			require.NoError(t, err)
			jobs[i] = j
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, j := range jobs {
		assert.Same(t, jobs[0], j)
	}
}

func TestRegistry_FailedConstructionAllowsRetry(t *testing.T) {
	r := registry.New()
	var attempt int

	_, err := r.GetOrCreate("job-1", func(jobID ids.JobId) (*job.Job, error) {
		attempt++
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())

	j, err := r.GetOrCreate("job-1", func(jobID ids.JobId) (*job.Job, error) {
		attempt++
		return job.New(jobID, job.Info{}), nil
	})
	require.NoError(t, err)
	assert.NotNil(t, j)
	assert.Equal(t, 2, attempt)
}

func TestRegistry_RemoveDisposesAndDrops(t *testing.T) {
	r := registry.New()
	_, err := r.GetOrCreate("job-1", func(jobID ids.JobId) (*job.Job, error) {
		return job.New(jobID, job.Info{}), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	require.NoError(t, r.Remove("job-1", false))
	assert.Equal(t, 0, r.Len())

	_, ok := r.Lookup("job-1")
	assert.False(t, ok)
}

func TestRegistry_RemoveUnknownJobIsNoop(t *testing.T) {
	r := registry.New()
	assert.NoError(t, r.Remove("job-x", false))
}
