// Package discovery defines cluster membership tracking: the set of
// currently-live nodes, and a subscription to NODE_LEFT/NODE_FAILED
// events. The tracker routes every discovery event through its
// EventLoop alongside metadata-store notifications so the two sources
// of asynchrony are serialized against each other.
package discovery

import "github.com/gridforge/jobtracker/internal/ids"

// EventType distinguishes a graceful departure from a detected
// failure; the tracker's node-left recovery treats both identically.
type EventType int

const (
	NodeLeft EventType = iota
	NodeFailed
)

func (e EventType) String() string {
	switch e {
	case NodeLeft:
		return "NODE_LEFT"
	case NodeFailed:
		return "NODE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to every discovery subscriber when membership
// changes.
type Event struct {
	Type EventType
	Node ids.NodeId
}

// Discovery is the external collaborator tracking cluster membership.
// Implemented outside this package (see internal/discovery/static and
// internal/discovery/gossip for reference implementations).
//
//counterfeiter:generate . Discovery
type Discovery interface {
	LiveNodes() []ids.NodeId
	Subscribe() (<-chan Event, func(), error)
	LocalNodeId() ids.NodeId
}
