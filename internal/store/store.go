// Package store defines MetadataStore, the replicated key/value cache
// holding one JobMetadata record per JobId. It is the only source of
// truth for a job's state: every mutation goes through Transform, and
// every node learns of changes through Subscribe. Two backends
// implement it: internal/store/memstore (single-process, for tests
// and development) and internal/store/dynamostore (DynamoDB-backed,
// for a real cluster).
package store

import (
	"context"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
)

// MetadataStore is the replicated cache keyed by JobId.
//
//counterfeiter:generate . MetadataStore
type MetadataStore interface {
	// Get returns the current record for jobID, or ErrNotFound.
	Get(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, error)

	// PutIfAbsent inserts meta iff no record exists for its JobID yet.
	// Returns ErrAlreadyExists otherwise.
	PutIfAbsent(ctx context.Context, meta *metadata.JobMetadata) error

	// Transform applies fn atomically to the current record for jobID
	// and stores the result. fn may be invoked more than once if the
	// backend retries on a conflicting concurrent write; fn must be
	// pure and idempotent under re-application, per
	// internal/metadata.Transform's contract. The returned channel
	// receives exactly one value (nil on success).
	Transform(ctx context.Context, jobID ids.JobId, fn metadata.Transform) <-chan error

	// Subscribe delivers every record this node observes change,
	// including records it did not itself write. Closing the returned
	// cancel func stops delivery and releases the channel.
	Subscribe(ctx context.Context) (<-chan *metadata.JobMetadata, func(), error)

	// Close releases backend resources (connections, goroutines).
	Close() error
}
