package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	trackererrors "github.com/gridforge/jobtracker/pkg/errors"
)

func newMeta(jobID ids.JobId) *metadata.JobMetadata {
	return &metadata.JobMetadata{
		JobID:            jobID,
		Phase:            metadata.SETUP,
		PendingSplits:    metadata.NewSplitSet(),
		PendingReducers:  metadata.NewIntSet(),
		ReducerAddresses: map[int]plan.ProcessDescriptor{},
		Counters:         metadata.Counters{},
	}
}

func TestStore_GetUnknownReturnsNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "job-1")
	assert.ErrorIs(t, err, trackererrors.ErrNotFound)
}

func TestStore_PutIfAbsentThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	meta := newMeta("job-1")

	require.NoError(t, s.PutIfAbsent(ctx, meta))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, metadata.SETUP, got.Phase)
}

func TestStore_PutIfAbsentRejectsDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	meta := newMeta("job-1")

	require.NoError(t, s.PutIfAbsent(ctx, meta))
	err := s.PutIfAbsent(ctx, meta)
	assert.ErrorIs(t, err, trackererrors.ErrAlreadyExists)
}

func TestStore_TransformAppliesAndNotifies(t *testing.T) {
	s := New()
	ctx := context.Background()
	meta := newMeta("job-1")

	ch, unsubscribe, err := s.Subscribe(ctx)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, s.PutIfAbsent(ctx, meta))
	<-ch // drain the PutIfAbsent notification

	errCh := s.Transform(ctx, "job-1", metadata.UpdatePhase(metadata.MAP))
	require.NoError(t, <-errCh)

	select {
	case updated := <-ch:
		assert.Equal(t, metadata.MAP, updated.Phase)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transform notification")
	}

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, metadata.MAP, got.Phase)
}

func TestStore_TransformOnUnknownJobIsNoop(t *testing.T) {
	s := New()
	ctx := context.Background()

	errCh := s.Transform(ctx, "missing", metadata.UpdatePhase(metadata.MAP))
	require.NoError(t, <-errCh)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, trackererrors.ErrNotFound)
}
