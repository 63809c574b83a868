// Package ids holds the small identifier types shared by every tracker
// package, kept separate so that internal/plan, internal/job and
// internal/metadata can all depend on them without depending on each
// other.
package ids

// JobId is an opaque, globally unique, comparable identifier for a
// submitted map/reduce job.
type JobId string

// NodeId is an opaque, comparable identifier for a cluster participant.
type NodeId string
