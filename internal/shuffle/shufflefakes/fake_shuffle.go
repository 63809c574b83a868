// Package shufflefakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back
// shuffle.Shuffle (see its //counterfeiter:generate directive).
package shufflefakes

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/shuffle"
)

// FakeShuffle records calls and returns scripted responses, in the
// same call-count/args-for-call/returns shape counterfeiter fakes use.
type FakeShuffle struct {
	mu sync.Mutex

	FlushStub       func(ids.JobId) <-chan error
	flushCallCount  int
	flushArgsForCall []struct {
		jobID ids.JobId
	}
	flushReturns struct {
		result1 <-chan error
	}

	JobFinishedStub       func(ids.JobId)
	jobFinishedCallCount  int
	jobFinishedArgsForCall []struct {
		jobID ids.JobId
	}
}

func (f *FakeShuffle) Flush(jobID ids.JobId) <-chan error {
	f.mu.Lock()
	f.flushCallCount++
	f.flushArgsForCall = append(f.flushArgsForCall, struct {
		jobID ids.JobId
	}{jobID})
	stub := f.FlushStub
	ret := f.flushReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(jobID)
	}
	return ret.result1
}

func (f *FakeShuffle) FlushCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushCallCount
}

func (f *FakeShuffle) FlushArgsForCall(i int) ids.JobId {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushArgsForCall[i].jobID
}

// FlushReturns scripts Flush's return value. Tests typically want a
// closed, already-readable channel; this fake leaves construction of
// that channel to the caller so tests control timing explicitly.
func (f *FakeShuffle) FlushReturns(result1 <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FlushStub = nil
	f.flushReturns = struct{ result1 <-chan error }{result1}
}

func (f *FakeShuffle) JobFinished(jobID ids.JobId) {
	f.mu.Lock()
	f.jobFinishedCallCount++
	f.jobFinishedArgsForCall = append(f.jobFinishedArgsForCall, struct {
		jobID ids.JobId
	}{jobID})
	stub := f.JobFinishedStub
	f.mu.Unlock()

	if stub != nil {
		stub(jobID)
	}
}

func (f *FakeShuffle) JobFinishedCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobFinishedCallCount
}

func (f *FakeShuffle) JobFinishedArgsForCall(i int) ids.JobId {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobFinishedArgsForCall[i].jobID
}

var _ shuffle.Shuffle = (*FakeShuffle)(nil)
