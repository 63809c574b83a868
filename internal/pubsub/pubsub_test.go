package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub_DeliversToAllSubscribers(t *testing.T) {
	ps := New[string](Config{BufferSize: 4})
	ctx := context.Background()

	ch1, unsub1, err := ps.Subscribe(ctx)
	require.NoError(t, err)
	defer unsub1()

	ch2, unsub2, err := ps.Subscribe(ctx)
	require.NoError(t, err)
	defer unsub2()

	require.NoError(t, ps.Publish(ctx, "job-1 COMPLETE"))

	for _, ch := range []<-chan Message[string]{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Equal(t, "job-1 COMPLETE", msg.Payload)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestPubSub_UnsubscribeStopsDelivery(t *testing.T) {
	ps := New[int](Config{BufferSize: 1})
	ctx := context.Background()

	ch, unsubscribe, err := ps.Subscribe(ctx)
	require.NoError(t, err)
	unsubscribe()

	require.NoError(t, ps.Publish(ctx, 42))

	_, open := <-ch
	assert.False(t, open, "channel must be closed after unsubscribe")
}

func TestPubSub_PublishAfterCloseFails(t *testing.T) {
	ps := New[int](Config{})
	require.NoError(t, ps.Close())

	err := ps.Publish(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, _, err = ps.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPubSub_FullBufferDropsWithoutBlocking(t *testing.T) {
	ps := New[int](Config{BufferSize: 1})
	ctx := context.Background()

	ch, unsubscribe, err := ps.Subscribe(ctx)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, ps.Publish(ctx, 1))
	require.NoError(t, ps.Publish(ctx, 2), "must not block when subscriber buffer is full")

	msg := <-ch
	assert.Equal(t, 1, msg.Payload)
}
