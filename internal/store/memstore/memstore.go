// Package memstore is a single-process MetadataStore backend: an
// in-memory map guarded by a mutex, with change notifications fanned
// out through internal/pubsub. It backs cmd/metastored in "memory"
// mode and is the default in tests, where a real DynamoDB table would
// be overkill.
package memstore

import (
	"context"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/pubsub"
	"github.com/gridforge/jobtracker/internal/store"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
)

type Store struct {
	mu      sync.Mutex
	records map[ids.JobId]*metadata.JobMetadata

	notifications pubsub.PubSub[*metadata.JobMetadata]
}

var _ store.MetadataStore = (*Store)(nil)

// New returns an empty memstore.Store.
func New() *Store {
	return &Store{
		records:       make(map[ids.JobId]*metadata.JobMetadata),
		notifications: pubsub.New[*metadata.JobMetadata](pubsub.Config{BufferSize: 64}),
	}
}

func (s *Store) Get(_ context.Context, jobID ids.JobId) (*metadata.JobMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.records[jobID]
	if !ok {
		return nil, trackererrors.WrapStoreError(string(jobID), "Get", trackererrors.ErrNotFound)
	}
	return m, nil
}

func (s *Store) PutIfAbsent(ctx context.Context, meta *metadata.JobMetadata) error {
	s.mu.Lock()
	if _, exists := s.records[meta.JobID]; exists {
		s.mu.Unlock()
		return trackererrors.WrapStoreError(string(meta.JobID), "PutIfAbsent", trackererrors.ErrAlreadyExists)
	}
	s.records[meta.JobID] = meta
	s.mu.Unlock()

	s.notify(ctx, meta)
	return nil
}

func (s *Store) Transform(ctx context.Context, jobID ids.JobId, fn metadata.Transform) <-chan error {
	result := make(chan error, 1)

	go func() {
		s.mu.Lock()
		current := s.records[jobID]
		updated := fn(current)
		if updated != nil {
			s.records[jobID] = updated
		} else {
			delete(s.records, jobID)
		}
		s.mu.Unlock()

		if updated != nil {
			s.notify(ctx, updated)
		}
		result <- nil
		close(result)
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
