// Package gossip implements discovery.Discovery on top of
// hashicorp/memberlist's SWIM-style gossip protocol, giving the
// tracker real failure detection across a cluster of nodes instead of
// the fixed list internal/discovery/static assumes.
package gossip

import (
	"context"
	"fmt"

	"github.com/hashicorp/memberlist"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/pubsub"
	"github.com/gridforge/jobtracker/pkg/logger"
)

// Config configures how this node joins the gossip cluster.
type Config struct {
	NodeName  string
	BindAddr  string
	BindPort  int
	JoinSeeds []string
}

// Discovery wraps a *memberlist.Memberlist, translating its
// node-left/node-failed notifications into discovery.Event.
type Discovery struct {
	ml     *memberlist.Memberlist
	local  ids.NodeId
	events pubsub.PubSub[discovery.Event]
	log    *logger.Logger
}

var _ discovery.Discovery = (*Discovery)(nil)

// Join starts gossiping using cfg and attempts to join cfg.JoinSeeds.
// An empty JoinSeeds list starts a fresh single-node cluster that other
// nodes can join later.
func Join(cfg Config) (*Discovery, error) {
	log := logger.WithField("component", "discovery-gossip")

	d := &Discovery{
		events: pubsub.New[discovery.Event](pubsub.Config{BufferSize: 64}),
		log:    log,
	}

	mlConfig := memberlist.DefaultLANConfig()
	mlConfig.Name = cfg.NodeName
	if cfg.BindAddr != "" {
		mlConfig.BindAddr = cfg.BindAddr
	}
	if cfg.BindPort != 0 {
		mlConfig.BindPort = cfg.BindPort
		mlConfig.AdvertisePort = cfg.BindPort
	}
	mlConfig.Events = &eventDelegate{d: d}
	mlConfig.LogOutput = newLogWriter(log)

	ml, err := memberlist.Create(mlConfig)
	if err != nil {
		return nil, fmt.Errorf("gossip: create memberlist: %w", err)
	}
	d.ml = ml
	d.local = ids.NodeId(ml.LocalNode().Name)

	if len(cfg.JoinSeeds) > 0 {
		if _, err := ml.Join(cfg.JoinSeeds); err != nil {
			_ = ml.Shutdown()
			return nil, fmt.Errorf("gossip: join seeds: %w", err)
		}
	}

	return d, nil
}

func (d *Discovery) LiveNodes() []ids.NodeId {
	members := d.ml.Members()
	out := make([]ids.NodeId, len(members))
	for i, m := range members {
		out[i] = ids.NodeId(m.Name)
	}
	return out
}

func (d *Discovery) LocalNodeId() ids.NodeId {
	return d.local
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

// Leave gracefully departs the gossip cluster and shuts the
// memberlist instance down. timeoutMs bounds how long the leave
// broadcast is given to propagate.
func (d *Discovery) Leave(timeoutMs int) error {
	if err := d.ml.Leave(durationMs(timeoutMs)); err != nil {
		d.log.Warn("gossip leave failed", "error", err)
	}
	if err := d.ml.Shutdown(); err != nil {
		return fmt.Errorf("gossip: shutdown: %w", err)
	}
	return d.events.Close()
}

// eventDelegate adapts memberlist.EventDelegate to publish
// discovery.Event on membership changes. Joins are not surfaced: the
// tracker's node-left recovery only cares about departures.
type eventDelegate struct {
	d *Discovery
}

func (e *eventDelegate) NotifyJoin(*memberlist.Node) {}

func (e *eventDelegate) NotifyLeave(n *memberlist.Node) {
	// memberlist reaches StateLeft on a graceful departure and
	// StateDead once failure detection gives up on the node.
	if n.State == memberlist.StateDead {
		e.d.publish(discovery.NodeFailed, n)
		return
	}
	e.d.publish(discovery.NodeLeft, n)
}

func (e *eventDelegate) NotifyUpdate(*memberlist.Node) {}

func (d *Discovery) publish(t discovery.EventType, n *memberlist.Node) {
	_ = d.events.Publish(context.Background(), discovery.Event{Type: t, Node: ids.NodeId(n.Name)})
}
