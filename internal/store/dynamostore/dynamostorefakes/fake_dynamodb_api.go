// Package dynamostorefakes holds a hand-maintained stand-in for the
// counterfeiter-generated fake that would normally back
// dynamostore.DynamoDBAPI (see its //counterfeiter:generate directive).
package dynamostorefakes

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// FakeDynamoDBAPI records calls and returns scripted responses, in the
// same call-count/args-for-call/returns shape counterfeiter fakes use.
type FakeDynamoDBAPI struct {
	mu sync.Mutex

	GetItemStub        func(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	getItemCallCount    int
	getItemArgsForCall  []struct {
		ctx   context.Context
		input *dynamodb.GetItemInput
	}
	getItemReturns struct {
		result1 *dynamodb.GetItemOutput
		result2 error
	}

	PutItemStub        func(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	putItemCallCount    int
	putItemArgsForCall  []struct {
		ctx   context.Context
		input *dynamodb.PutItemInput
	}
	putItemReturns struct {
		result1 *dynamodb.PutItemOutput
		result2 error
	}
	putItemReturnsOnCall map[int]struct {
		result1 *dynamodb.PutItemOutput
		result2 error
	}
}

func (f *FakeDynamoDBAPI) GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	f.getItemCallCount++
	f.getItemArgsForCall = append(f.getItemArgsForCall, struct {
		ctx   context.Context
		input *dynamodb.GetItemInput
	}{ctx, input})
	stub := f.GetItemStub
	ret := f.getItemReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx, input, opts...)
	}
	return ret.result1, ret.result2
}

func (f *FakeDynamoDBAPI) GetItemCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getItemCallCount
}

func (f *FakeDynamoDBAPI) GetItemArgsForCall(i int) (context.Context, *dynamodb.GetItemInput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.getItemArgsForCall[i]
	return args.ctx, args.input
}

func (f *FakeDynamoDBAPI) GetItemReturns(result1 *dynamodb.GetItemOutput, result2 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetItemStub = nil
	f.getItemReturns = struct {
		result1 *dynamodb.GetItemOutput
		result2 error
	}{result1, result2}
}

func (f *FakeDynamoDBAPI) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	callIdx := f.putItemCallCount
	f.putItemCallCount++
	f.putItemArgsForCall = append(f.putItemArgsForCall, struct {
		ctx   context.Context
		input *dynamodb.PutItemInput
	}{ctx, input})
	stub := f.PutItemStub
	perCall, hasPerCall := f.putItemReturnsOnCall[callIdx]
	ret := f.putItemReturns
	f.mu.Unlock()

	if stub != nil {
		return stub(ctx, input, opts...)
	}
	if hasPerCall {
		return perCall.result1, perCall.result2
	}
	return ret.result1, ret.result2
}

func (f *FakeDynamoDBAPI) PutItemCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putItemCallCount
}

func (f *FakeDynamoDBAPI) PutItemArgsForCall(i int) (context.Context, *dynamodb.PutItemInput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.putItemArgsForCall[i]
	return args.ctx, args.input
}

func (f *FakeDynamoDBAPI) PutItemReturns(result1 *dynamodb.PutItemOutput, result2 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutItemStub = nil
	f.putItemReturns = struct {
		result1 *dynamodb.PutItemOutput
		result2 error
	}{result1, result2}
}

func (f *FakeDynamoDBAPI) PutItemReturnsOnCall(i int, result1 *dynamodb.PutItemOutput, result2 error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutItemStub = nil
	if f.putItemReturnsOnCall == nil {
		f.putItemReturnsOnCall = make(map[int]struct {
			result1 *dynamodb.PutItemOutput
			result2 error
		})
	}
	f.putItemReturnsOnCall[i] = struct {
		result1 *dynamodb.PutItemOutput
		result2 error
	}{result1, result2}
}
