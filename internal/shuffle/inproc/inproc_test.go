package inproc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/shuffle/inproc"
)

func TestShuffle_FlushResolvesImmediately(t *testing.T) {
	s := inproc.New()

	err := <-s.Flush("job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.FlushCount("job-1"))

	err = <-s.Flush("job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.FlushCount("job-1"))
}

func TestShuffle_JobFinishedReleasesState(t *testing.T) {
	s := inproc.New()
	<-s.Flush("job-1")

	s.JobFinished("job-1")
	assert.Equal(t, 0, s.FlushCount("job-1"))
}
