// Package discoveryfakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back
// discovery.Discovery (see its //counterfeiter:generate directive).
package discoveryfakes

import (
	"sync"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/ids"
)

// FakeDiscovery records calls and returns scripted responses, in the
// same call-count/args-for-call/returns shape counterfeiter fakes use.
type FakeDiscovery struct {
	mu sync.Mutex

	LiveNodesStub       func() []ids.NodeId
	liveNodesCallCount  int
	liveNodesReturns struct {
		result1 []ids.NodeId
	}

	SubscribeStub       func() (<-chan discovery.Event, func(), error)
	subscribeCallCount  int
	subscribeReturns struct {
		result1 <-chan discovery.Event
		result2 func()
		result3 error
	}

	LocalNodeIdStub       func() ids.NodeId
	localNodeIdCallCount  int
	localNodeIdReturns struct {
		result1 ids.NodeId
	}
}

func (f *FakeDiscovery) LiveNodes() []ids.NodeId {
	f.mu.Lock()
	f.liveNodesCallCount++
	stub := f.LiveNodesStub
	ret := f.liveNodesReturns
	f.mu.Unlock()

	if stub != nil {
		return stub()
	}
	return ret.result1
}

func (f *FakeDiscovery) LiveNodesCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liveNodesCallCount
}

func (f *FakeDiscovery) LiveNodesReturns(result1 []ids.NodeId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LiveNodesStub = nil
	f.liveNodesReturns = struct{ result1 []ids.NodeId }{result1}
}

func (f *FakeDiscovery) Subscribe() (<-chan discovery.Event, func(), error) {
	f.mu.Lock()
	f.subscribeCallCount++
	stub := f.SubscribeStub
	ret := f.subscribeReturns
	f.mu.Unlock()

	if stub != nil {
		return stub()
	}
	return ret.result1, ret.result2, ret.result3
}

func (f *FakeDiscovery) SubscribeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribeCallCount
}

func (f *FakeDiscovery) SubscribeReturns(result1 <-chan discovery.Event, result2 func(), result3 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscribeStub = nil
	f.subscribeReturns = struct {
		result1 <-chan discovery.Event
		result2 func()
		result3 error
	}{result1, result2, result3}
}

func (f *FakeDiscovery) LocalNodeId() ids.NodeId {
	f.mu.Lock()
	f.localNodeIdCallCount++
	stub := f.LocalNodeIdStub
	ret := f.localNodeIdReturns
	f.mu.Unlock()

	if stub != nil {
		return stub()
	}
	return ret.result1
}

func (f *FakeDiscovery) LocalNodeIdCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.localNodeIdCallCount
}

func (f *FakeDiscovery) LocalNodeIdReturns(result1 ids.NodeId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LocalNodeIdStub = nil
	f.localNodeIdReturns = struct{ result1 ids.NodeId }{result1}
}

var _ discovery.Discovery = (*FakeDiscovery)(nil)
