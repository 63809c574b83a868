// Package storefakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back
// store.MetadataStore (see its //counterfeiter:generate directive).
package storefakes

import (
	"context"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/store"
)

// FakeMetadataStore records calls and returns scripted responses, in
// the same call-count/args-for-call/returns shape counterfeiter fakes
// use.
type FakeMetadataStore struct {
	mu sync.Mutex

	GetStub       func(context.Context, ids.JobId) (*metadata.JobMetadata, error)
	getCallCount  int
	getArgsForCall []struct {
		ctx   context.Context
		jobID ids.JobId
	}
	getReturns struct {
		result1 *metadata.JobMetadata
		result2 error
	}

	PutIfAbsentStub       func(context.Context, *metadata.JobMetadata) error
	putIfAbsentCallCount  int
	putIfAbsentArgsForCall []struct {
		ctx  context.Context
		meta *metadata.JobMetadata
	}
	putIfAbsentReturns struct {
		result1 error
	}

	TransformStub       func(context.Context, ids.JobId, metadata.Transform) <-chan error
	transformCallCount  int
	transformArgsForCall []struct {
		ctx   context.Context
		jobID ids.JobId
		fn    metadata.Transform
	}
	transformReturns struct {
		result1 <-chan error
	}

	SubscribeStub       func(context.Context) (<-chan *metadata.JobMetadata, func(), error)
	subscribeCallCount  int
	subscribeArgsForCall []struct {
		ctx context.Context
	}
	subscribeReturns struct {
		result1 <-chan *metadata.JobMetadata
		result2 func()
		result3 error
	}

	CloseStub       func() error
	closeCallCount  int
	closeReturns struct {
		result1 error
	}
}

func (f *FakeMetadataStore) Get(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, error) {
	f.mu.Lock()
	f.getCallCount++
	f.getArgsForCall = append(f.getArgsForCall, struct {
		ctx   context.Context
		jobID ids.JobId
	}{ctx, jobID})
	stub := f.GetStub
	ret := f.getReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx, jobID)
	}
	return ret.result1, ret.result2
}

func (f *FakeMetadataStore) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCallCount
}

func (f *FakeMetadataStore) GetArgsForCall(i int) (context.Context, ids.JobId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.getArgsForCall[i]
	return args.ctx, args.jobID
}

func (f *FakeMetadataStore) GetReturns(result1 *metadata.JobMetadata, result2 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetStub = nil
	f.getReturns = struct {
		result1 *metadata.JobMetadata
		result2 error
	}{result1, result2}
}

func (f *FakeMetadataStore) PutIfAbsent(ctx context.Context, meta *metadata.JobMetadata) error {
	f.mu.Lock()
	f.putIfAbsentCallCount++
	f.putIfAbsentArgsForCall = append(f.putIfAbsentArgsForCall, struct {
		ctx  context.Context
		meta *metadata.JobMetadata
	}{ctx, meta})
	stub := f.PutIfAbsentStub
	ret := f.putIfAbsentReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx, meta)
	}
	return ret.result1
}

func (f *FakeMetadataStore) PutIfAbsentCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putIfAbsentCallCount
}

func (f *FakeMetadataStore) PutIfAbsentArgsForCall(i int) (context.Context, *metadata.JobMetadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.putIfAbsentArgsForCall[i]
	return args.ctx, args.meta
}

func (f *FakeMetadataStore) PutIfAbsentReturns(result1 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutIfAbsentStub = nil
	f.putIfAbsentReturns = struct{ result1 error }{result1}
}

func (f *FakeMetadataStore) Transform(ctx context.Context, jobID ids.JobId, fn metadata.Transform) <-chan error {
	f.mu.Lock()
	f.transformCallCount++
	f.transformArgsForCall = append(f.transformArgsForCall, struct {
		ctx   context.Context
		jobID ids.JobId
		fn    metadata.Transform
	}{ctx, jobID, fn})
	stub := f.TransformStub
	ret := f.transformReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx, jobID, fn)
	}
	return ret.result1
}

func (f *FakeMetadataStore) TransformCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transformCallCount
}

func (f *FakeMetadataStore) TransformArgsForCall(i int) (context.Context, ids.JobId, metadata.Transform) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.transformArgsForCall[i]
	return args.ctx, args.jobID, args.fn
}

func (f *FakeMetadataStore) TransformReturns(result1 <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TransformStub = nil
	f.transformReturns = struct{ result1 <-chan error }{result1}
}

func (f *FakeMetadataStore) Subscribe(ctx context.Context) (<-chan *metadata.JobMetadata, func(), error) {
	f.mu.Lock()
	f.subscribeCallCount++
	f.subscribeArgsForCall = append(f.subscribeArgsForCall, struct {
		ctx context.Context
	}{ctx})
	stub := f.SubscribeStub
	ret := f.subscribeReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx)
	}
	return ret.result1, ret.result2, ret.result3
}

func (f *FakeMetadataStore) SubscribeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribeCallCount
}

func (f *FakeMetadataStore) SubscribeReturns(result1 <-chan *metadata.JobMetadata, result2 func(), result3 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscribeStub = nil
	f.subscribeReturns = struct {
		result1 <-chan *metadata.JobMetadata
		result2 func()
		result3 error
	}{result1, result2, result3}
}

func (f *FakeMetadataStore) Close() error {
	f.mu.Lock()
	f.closeCallCount++
	stub := f.CloseStub
	ret := f.closeReturns
	f.mu.Unlock()

	if stub != nil {
		return stub()
	}
	return ret.result1
}

func (f *FakeMetadataStore) CloseCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCallCount
}

func (f *FakeMetadataStore) CloseReturns(result1 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseStub = nil
	f.closeReturns = struct{ result1 error }{result1}
}

var _ store.MetadataStore = (*FakeMetadataStore)(nil)
