package inproc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/taskexec"
	"github.com/gridforge/jobtracker/internal/taskexec/inproc"
)

func newJob(t *testing.T, id string) *job.Job {
	t.Helper()
	j := job.New(ids.JobId(id), job.Info{Name: "test", StagingRoot: t.TempDir()})
	require.NoError(t, j.Initialize("node-a"))
	return j
}

func TestExecutor_RunReportsCompletion(t *testing.T) {
	var mu sync.Mutex
	var finished []taskexec.TaskStatus
	done := make(chan struct{})

	exec := inproc.New(func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error) {
		return taskexec.COMPLETED, metadata.Counters{"records": 1}, nil
	}, func(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
		mu.Lock()
		finished = append(finished, status)
		mu.Unlock()
		close(done)
	}, 2)

	j := newJob(t, "job-1")
	require.NoError(t, exec.Run(j, []taskexec.TaskInfo{{Type: taskexec.MAP, JobID: j.Id()}}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task completion")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []taskexec.TaskStatus{taskexec.COMPLETED}, finished)
}

func TestExecutor_ErrorForcesFailedStatus(t *testing.T) {
	done := make(chan taskexec.TaskStatus, 1)

	exec := inproc.New(func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error) {
		return taskexec.OK, nil, errors.New("boom")
	}, func(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
		done <- status
	}, 1)

	j := newJob(t, "job-1")
	require.NoError(t, exec.Run(j, []taskexec.TaskInfo{{Type: taskexec.MAP, JobID: j.Id()}}))

	select {
	case status := <-done:
		assert.Equal(t, taskexec.FAILED, status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task completion")
	}
}

func TestExecutor_CancelTasksCancelsContext(t *testing.T) {
	started := make(chan struct{})
	done := make(chan taskexec.TaskStatus, 1)

	exec := inproc.New(func(ctx context.Context, j *job.Job, info taskexec.TaskInfo) (taskexec.TaskStatus, metadata.Counters, error) {
		close(started)
		<-ctx.Done()
		return taskexec.FAILED, nil, ctx.Err()
	}, func(info taskexec.TaskInfo, status taskexec.TaskStatus, err error, counters metadata.Counters) {
		done <- status
	}, 1)

	j := newJob(t, "job-1")
	require.NoError(t, exec.Run(j, []taskexec.TaskInfo{{Type: taskexec.MAP, JobID: j.Id()}}))

	<-started
	require.NoError(t, exec.CancelTasks(j.Id()))

	select {
	case status := <-done:
		assert.Equal(t, taskexec.FAILED, status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancellation to propagate")
	}
}
