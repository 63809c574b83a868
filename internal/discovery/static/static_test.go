package static_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridforge/jobtracker/internal/discovery"
	"github.com/gridforge/jobtracker/internal/discovery/static"
	"github.com/gridforge/jobtracker/internal/ids"
)

func TestStatic_LiveNodesIncludesLocalAndPeers(t *testing.T) {
	d := static.New("node-a", []ids.NodeId{"node-b", "node-c"})

	assert.Equal(t, []ids.NodeId{"node-a", "node-b", "node-c"}, d.LiveNodes())
	assert.Equal(t, ids.NodeId("node-a"), d.LocalNodeId())
}

func TestStatic_RemoveNodePublishesNodeLeft(t *testing.T) {
	d := static.New("node-a", []ids.NodeId{"node-b"})
	defer d.Close()

	ch, unsubscribe, err := d.Subscribe()
	require.NoError(t, err)
	defer unsubscribe()

	d.RemoveNode("node-b")

	select {
	case ev := <-ch:
		assert.Equal(t, discovery.NodeLeft, ev.Type)
		assert.Equal(t, ids.NodeId("node-b"), ev.Node)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for NodeLeft event")
	}

	assert.Equal(t, []ids.NodeId{"node-a"}, d.LiveNodes())
}

func TestStatic_RemoveUnknownNodeIsNoop(t *testing.T) {
	d := static.New("node-a", nil)
	defer d.Close()

	ch, unsubscribe, err := d.Subscribe()
	require.NoError(t, err)
	defer unsubscribe()

	d.RemoveNode("node-z")

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for unknown node: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
