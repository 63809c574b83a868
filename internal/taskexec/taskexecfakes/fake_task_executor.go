// Package taskexecfakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back
// taskexec.TaskExecutor (see its //counterfeiter:generate directive).
package taskexecfakes

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/taskexec"
)

// FakeTaskExecutor records calls and returns scripted responses, in
// the same call-count/args-for-call/returns shape counterfeiter fakes
// use.
type FakeTaskExecutor struct {
	mu sync.Mutex

	RunStub       func(*job.Job, []taskexec.TaskInfo) error
	runCallCount  int
	runArgsForCall []struct {
		j     *job.Job
		tasks []taskexec.TaskInfo
	}
	runReturns struct {
		result1 error
	}

	CancelTasksStub       func(ids.JobId) error
	cancelTasksCallCount  int
	cancelTasksArgsForCall []struct {
		jobID ids.JobId
	}
	cancelTasksReturns struct {
		result1 error
	}

	OnJobStateChangedStub       func(*metadata.JobMetadata)
	onJobStateChangedCallCount  int
	onJobStateChangedArgsForCall []struct {
		meta *metadata.JobMetadata
	}
}

func (f *FakeTaskExecutor) Run(j *job.Job, tasks []taskexec.TaskInfo) error {
	f.mu.Lock()
	f.runCallCount++
	f.runArgsForCall = append(f.runArgsForCall, struct {
		j     *job.Job
		tasks []taskexec.TaskInfo
	}{j, tasks})
	stub := f.RunStub
	ret := f.runReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(j, tasks)
	}
	return ret.result1
}

func (f *FakeTaskExecutor) RunCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runCallCount
}

func (f *FakeTaskExecutor) RunArgsForCall(i int) (*job.Job, []taskexec.TaskInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.runArgsForCall[i]
	return args.j, args.tasks
}

func (f *FakeTaskExecutor) RunReturns(result1 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RunStub = nil
	f.runReturns = struct{ result1 error }{result1}
}

func (f *FakeTaskExecutor) CancelTasks(jobID ids.JobId) error {
	f.mu.Lock()
	f.cancelTasksCallCount++
	f.cancelTasksArgsForCall = append(f.cancelTasksArgsForCall, struct {
		jobID ids.JobId
	}{jobID})
	stub := f.CancelTasksStub
	ret := f.cancelTasksReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(jobID)
	}
	return ret.result1
}

func (f *FakeTaskExecutor) CancelTasksCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelTasksCallCount
}

func (f *FakeTaskExecutor) CancelTasksArgsForCall(i int) ids.JobId {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelTasksArgsForCall[i].jobID
}

func (f *FakeTaskExecutor) CancelTasksReturns(result1 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CancelTasksStub = nil
	f.cancelTasksReturns = struct{ result1 error }{result1}
}

func (f *FakeTaskExecutor) OnJobStateChanged(meta *metadata.JobMetadata) {
	f.mu.Lock()
	f.onJobStateChangedCallCount++
	f.onJobStateChangedArgsForCall = append(f.onJobStateChangedArgsForCall, struct {
		meta *metadata.JobMetadata
	}{meta})
	stub := f.OnJobStateChangedStub
	f.mu.Unlock()

	if stub != nil {
		stub(meta)
	}
}

func (f *FakeTaskExecutor) OnJobStateChangedCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onJobStateChangedCallCount
}

func (f *FakeTaskExecutor) OnJobStateChangedArgsForCall(i int) *metadata.JobMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onJobStateChangedArgsForCall[i].meta
}

var _ taskexec.TaskExecutor = (*FakeTaskExecutor)(nil)
