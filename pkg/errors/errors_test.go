package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobError(t *testing.T) {
	cause := errors.New("split not found")
	err := &JobError{JobID: "job-123", Operation: "RemoveMappers", Err: cause}

	assert.Equal(t, "job job-123: RemoveMappers: split not found", err.Error())
	assert.Equal(t, cause, err.Unwrap())
}

func TestWrapJobError(t *testing.T) {
	assert.Nil(t, WrapJobError("job-1", "Submit", nil))

	cause := errors.New("boom")
	wrapped := WrapJobError("job-1", "Submit", cause)
	assert.True(t, IsJobError(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("conditional check failed")
	err := WrapStoreError("job-1", "PutIfAbsent", cause)
	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, cause))
}

func TestJoinErrors(t *testing.T) {
	assert.Nil(t, JoinErrors())
	assert.Nil(t, JoinErrors(nil, nil))

	single := errors.New("only one")
	assert.Equal(t, single, JoinErrors(nil, single))

	a := errors.New("a failed")
	b := errors.New("b failed")
	joined := JoinErrors(a, b)
	assert.True(t, errors.Is(joined, a))
	assert.True(t, errors.Is(joined, b))
	assert.Contains(t, joined.Error(), "a failed")
	assert.Contains(t, joined.Error(), "b failed")
}

func TestSentinelErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrDuplicateJob, ErrDuplicateJob))
	assert.NotEqual(t, ErrDuplicateJob.Error(), ErrUnknownJob.Error())
}
