// Package dynamostore is a MetadataStore backend for a real cluster:
// one DynamoDB item per job, with PutIfAbsent and Transform expressed
// as conditional writes so concurrent nodes racing on the same job
// never silently clobber each other. Grounded on the AWS SDK v2 usage
// in the teacher's persist/ and state/ submodules; subscription
// notifications are synthesized locally via internal/pubsub since
// DynamoDB has no native push mechanism this module wires into (no
// DynamoDB Streams consumer is in scope here).
package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/ipc"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/pubsub"
	"github.com/gridforge/jobtracker/internal/store"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
)

const (
	attrJobID    = "jobId"
	attrRevision = "revision"
	attrRecord   = "record"
)

//counterfeiter:generate . DynamoDBAPI

// DynamoDBAPI is the subset of *dynamodb.Client this package calls,
// narrowed so a fake can stand in during tests without a real table.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store is a DynamoDB-backed MetadataStore. One table, one item per
// JobId, with a numeric "revision" attribute used for CAS.
type Store struct {
	client DynamoDBAPI
	table  string

	notifications pubsub.PubSub[*metadata.JobMetadata]
}

var _ store.MetadataStore = (*Store)(nil)

// New builds a Store against table using the default AWS credential
// chain (environment, shared config, EC2/ECS role).
func New(ctx context.Context, table string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("dynamostore: load AWS config: %w", err)
	}
	return NewWithClient(dynamodb.NewFromConfig(cfg), table), nil
}

// NewWithClient builds a Store against an injected client, for tests
// and for callers that need custom AWS SDK options.
func NewWithClient(client DynamoDBAPI, table string) *Store {
	return &Store{
		client:        client,
		table:         table,
		notifications: pubsub.New[*metadata.JobMetadata](pubsub.Config{BufferSize: 64}),
	}
}

func (s *Store) Get(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, error) {
	m, _, err := s.getWithRevision(ctx, jobID)
	return m, err
}

func (s *Store) getWithRevision(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, int64, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrJobID: &types.AttributeValueMemberS{Value: string(jobID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", err)
	}
	if out.Item == nil {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", trackererrors.ErrNotFound)
	}

	recordAttr, ok := out.Item[attrRecord].(*types.AttributeValueMemberS)
	if !ok {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", fmt.Errorf("malformed record attribute"))
	}
	revisionAttr, ok := out.Item[attrRevision].(*types.AttributeValueMemberN)
	if !ok {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", fmt.Errorf("malformed revision attribute"))
	}

	var wire ipc.WireMetadata
	if err := json.Unmarshal([]byte(recordAttr.Value), &wire); err != nil {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", err)
	}

	var revision int64
	if _, err := fmt.Sscan(revisionAttr.Value, &revision); err != nil {
		return nil, 0, trackererrors.WrapStoreError(string(jobID), "Get", err)
	}

	return ipc.FromWire(&wire), revision, nil
}

func (s *Store) PutIfAbsent(ctx context.Context, meta *metadata.JobMetadata) error {
	wire, err := ipc.ToWire(meta)
	if err != nil {
		return trackererrors.WrapStoreError(string(meta.JobID), "PutIfAbsent", err)
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return trackererrors.WrapStoreError(string(meta.JobID), "PutIfAbsent", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrJobID:    &types.AttributeValueMemberS{Value: string(meta.JobID)},
			attrRevision: &types.AttributeValueMemberN{Value: "1"},
			attrRecord:   &types.AttributeValueMemberS{Value: string(payload)},
		},
		ConditionExpression: aws.String(fmt.Sprintf("attribute_not_exists(%s)", attrJobID)),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return trackererrors.WrapStoreError(string(meta.JobID), "PutIfAbsent", trackererrors.ErrAlreadyExists)
		}
		return trackererrors.WrapStoreError(string(meta.JobID), "PutIfAbsent", err)
	}

	s.notify(ctx, meta)
	return nil
}

// Transform retries a local read-apply-conditional-write loop against
// DynamoDB's revision attribute, the same optimistic pattern
// internal/ipc's client uses against metastored — see that package's
// doc comment for why fn must be pure and idempotent.
func (s *Store) Transform(ctx context.Context, jobID ids.JobId, fn metadata.Transform) <-chan error {
	result := make(chan error, 1)

	go func() {
		const maxAttempts = 8
		for attempt := 0; attempt < maxAttempts; attempt++ {
			current, revision, err := s.getWithRevision(ctx, jobID)
			if err != nil && !errors.Is(err, trackererrors.ErrNotFound) {
				result <- err
				return
			}
			// current is nil here on ErrNotFound; fn(nil) must return nil.

			updated := fn(current)
			if updated == nil {
				result <- nil
				return
			}

			wire, err := ipc.ToWire(updated)
			if err != nil {
				result <- err
				return
			}
			payload, err := json.Marshal(wire)
			if err != nil {
				result <- err
				return
			}

			_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
				TableName: aws.String(s.table),
				Item: map[string]types.AttributeValue{
					attrJobID:    &types.AttributeValueMemberS{Value: string(jobID)},
					attrRevision: &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", revision+1)},
					attrRecord:   &types.AttributeValueMemberS{Value: string(payload)},
				},
				ConditionExpression: aws.String(fmt.Sprintf("%s = :expected", attrRevision)),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", revision)},
				},
			})
			if err == nil {
				s.notify(ctx, updated)
				result <- nil
				return
			}

			if isConditionalCheckFailed(err) {
				continue // lost the race, re-read and retry
			}
			result <- trackererrors.WrapStoreError(string(jobID), "Transform", err)
			return
		}
		result <- trackererrors.WrapStoreError(string(jobID), "Transform", fmt.Errorf("exceeded retries"))
	}()

	return result
}

func (s *Store) Subscribe(ctx context.Context) (<-chan *metadata.JobMetadata, func(), error) {
	ch, unsubscribe, err := s.notifications.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan *metadata.JobMetadata, cap(ch))
	go func() {
		defer close(out)
		for msg := range ch {
			out <- msg.Payload
		}
	}()
	return out, unsubscribe, nil
}

func (s *Store) Close() error {
	return s.notifications.Close()
}

func (s *Store) notify(ctx context.Context, meta *metadata.JobMetadata) {
	_ = s.notifications.Publish(ctx, meta)
}

func isConditionalCheckFailed(err error) bool {
	var ccfe *types.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}
