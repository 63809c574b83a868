// Package static implements discovery.Discovery against a fixed node
// list supplied at construction time — no gossip, no failure
// detection, just what a single-box or manually-configured run needs.
// Nodes never leave on their own; RemoveNode lets a caller (typically
// a health-check loop elsewhere) report a departure explicitly.
package static

import (
	"context"
	"sort"
	"sync"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/pubsub"
)

type Discovery struct {
	mu        sync.Mutex
	nodes     map[ids.NodeId]struct{}
	localNode ids.NodeId

	events pubsub.PubSub[discovery.Event]
}

var _ discovery.Discovery = (*Discovery)(nil)

func New(localNode ids.NodeId, peers []ids.NodeId) *Discovery {
	nodes := make(map[ids.NodeId]struct{}, len(peers)+1)
	nodes[localNode] = struct{}{}
	for _, n := range peers {
		nodes[n] = struct{}{}
	}
	return &Discovery{
		nodes:     nodes,
		localNode: localNode,
		events:    pubsub.New[discovery.Event](pubsub.Config{BufferSize: 16}),
	}
}

func (d *Discovery) LiveNodes() []ids.NodeId {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]ids.NodeId, 0, len(d.nodes))
	for n := range d.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Discovery) LocalNodeId() ids.NodeId {
	return d.localNode
}

func (d *Discovery) Subscribe() (<-chan discovery.Event, func(), error) {
	ch, unsubscribe, err := d.events.Subscribe(context.Background())
	if err != nil {
		return nil, nil, err
	}

	out := make(chan discovery.Event, cap(ch))
	go func() {
		defer close(out)
		for msg := range ch {
			out <- msg.Payload
		}
	}()
	return out, unsubscribe, nil
}

// RemoveNode drops node from the live set and publishes a NodeLeft
// event, for callers that detect departures out of band (an external
// health checker, an operator command, a test).
func (d *Discovery) RemoveNode(node ids.NodeId) {
	d.mu.Lock()
	_, present := d.nodes[node]
	delete(d.nodes, node)
	d.mu.Unlock()

	if present {
		_ = d.events.Publish(context.Background(), discovery.Event{Type: discovery.NodeLeft, Node: node})
	}
}

func (d *Discovery) Close() error {
	return d.events.Close()
}
