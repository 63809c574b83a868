package dynamostore_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
	"github.com/gridforge/jobtracker/internal/store/dynamostore"
	"github.com/gridforge/jobtracker/internal/store/dynamostore/dynamostorefakes"
)

func sampleMeta(jobID ids.JobId) *metadata.JobMetadata {
	return &metadata.JobMetadata{
		JobID:           jobID,
		SubmitterNodeID: "node-a",
		Phase:           metadata.SETUP,
		Plan: &staticplan.Plan{
			MapperAssignments: map[ids.NodeId][]staticplan.Split{"node-a": {{SplitID: "split-0"}}},
			ReducerTotal:      1,
		},
		PendingSplits:   metadata.NewSplitSet(staticplan.Split{SplitID: "split-0"}),
		PendingReducers: metadata.NewIntSet(0),
		Counters:        metadata.Counters{},
	}
}

func TestStore_PutIfAbsentRejectsConditionalCheckFailure(t *testing.T) {
	client := &dynamostorefakes.FakeDynamoDBAPI{}
	client.PutItemReturns(nil, &types.ConditionalCheckFailedException{})

	s := dynamostore.NewWithClient(client, "jobs")
	err := s.PutIfAbsent(context.Background(), sampleMeta("job-1"))

	assert.Error(t, err)
	require.Equal(t, 1, client.PutItemCallCount())
	_, input := client.PutItemArgsForCall(0)
	assert.Equal(t, "attribute_not_exists(jobId)", *input.ConditionExpression)
}

func TestStore_PutIfAbsentSucceeds(t *testing.T) {
	client := &dynamostorefakes.FakeDynamoDBAPI{}
	client.PutItemReturns(&dynamodb.PutItemOutput{}, nil)

	s := dynamostore.NewWithClient(client, "jobs")
	err := s.PutIfAbsent(context.Background(), sampleMeta("job-1"))

	require.NoError(t, err)
	_, input := client.PutItemArgsForCall(0)
	rev, ok := input.Item["revision"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1", rev.Value)
}

func TestStore_GetDecodesStoredRecord(t *testing.T) {
	client := &dynamostorefakes.FakeDynamoDBAPI{}
	client.PutItemReturns(&dynamodb.PutItemOutput{}, nil)

	s := dynamostore.NewWithClient(client, "jobs")
	require.NoError(t, s.PutIfAbsent(context.Background(), sampleMeta("job-1")))

	_, putInput := client.PutItemArgsForCall(0)
	client.GetItemReturns(&dynamodb.GetItemOutput{Item: putInput.Item}, nil)

	got, err := s.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, metadata.SETUP, got.Phase)
	assert.Len(t, got.PendingSplits, 1)
}

func TestStore_TransformRetriesOnConditionalCheckFailure(t *testing.T) {
	client := &dynamostorefakes.FakeDynamoDBAPI{}
	client.PutItemReturns(&dynamodb.PutItemOutput{}, nil)

	s := dynamostore.NewWithClient(client, "jobs")
	require.NoError(t, s.PutIfAbsent(context.Background(), sampleMeta("job-1")))

	_, createInput := client.PutItemArgsForCall(0)
	client.GetItemReturns(&dynamodb.GetItemOutput{Item: createInput.Item}, nil)

	// first transform attempt loses the race, second succeeds
	client.PutItemReturnsOnCall(1, nil, &types.ConditionalCheckFailedException{})
	client.PutItemReturnsOnCall(2, &dynamodb.PutItemOutput{}, nil)

	errCh := s.Transform(context.Background(), "job-1", metadata.UpdatePhase(metadata.MAP))
	require.NoError(t, <-errCh)
	assert.Equal(t, 3, client.PutItemCallCount())
}

func TestStore_TransformNoopWhenFnReturnsNil(t *testing.T) {
	client := &dynamostorefakes.FakeDynamoDBAPI{}
	client.PutItemReturns(&dynamodb.PutItemOutput{}, nil)

	s := dynamostore.NewWithClient(client, "jobs")
	require.NoError(t, s.PutIfAbsent(context.Background(), sampleMeta("job-1")))

	_, createInput := client.PutItemArgsForCall(0)
	client.GetItemReturns(&dynamodb.GetItemOutput{Item: createInput.Item}, nil)

	errCh := s.Transform(context.Background(), "job-1", func(*metadata.JobMetadata) *metadata.JobMetadata {
		return nil
	})
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, client.PutItemCallCount(), "no write should happen when the transform evicts the job")
}
