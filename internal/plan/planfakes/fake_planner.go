// Package planfakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back plan.Planner
// (see its //counterfeiter:generate directive).
package planfakes

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan"
)

// FakePlanner records calls and returns scripted responses, in the
// same call-count/args-for-call/returns shape counterfeiter fakes use.
type FakePlanner struct {
	mu sync.Mutex

	PlanStub       func(*job.Job, []ids.NodeId) (plan.Plan, error)
	planCallCount  int
	planArgsForCall []struct {
		j         *job.Job
		liveNodes []ids.NodeId
	}
	planReturns struct {
		result1 plan.Plan
		result2 error
	}
}

func (f *FakePlanner) Plan(j *job.Job, liveNodes []ids.NodeId) (plan.Plan, error) {
	f.mu.Lock()
	f.planCallCount++
	f.planArgsForCall = append(f.planArgsForCall, struct {
		j         *job.Job
		liveNodes []ids.NodeId
	}{j, liveNodes})
	stub := f.PlanStub
	ret := f.planReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(j, liveNodes)
	}
	return ret.result1, ret.result2
}

func (f *FakePlanner) PlanCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planCallCount
}

func (f *FakePlanner) PlanArgsForCall(i int) (*job.Job, []ids.NodeId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.planArgsForCall[i]
	return args.j, args.liveNodes
}

func (f *FakePlanner) PlanReturns(result1 plan.Plan, result2 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlanStub = nil
	f.planReturns = struct {
		result1 plan.Plan
		result2 error
	}{result1, result2}
}

var _ plan.Planner = (*FakePlanner)(nil)
