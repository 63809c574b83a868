// Package pubsub provides in-memory publish/subscribe delivery used to
// fan metadata-store update notifications and discovery events out to
// subscribers without coupling the publisher to how many listeners
// exist. Adapted from the teacher's generic topic-based PubSub[T],
// trimmed to a single implicit topic per instance: the tracker needs
// one notification stream per collaborator (the metadata keyspace,
// cluster membership), not a general multi-topic bus.
package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PubSub delivers values of type T to every active subscriber.
// Delivery is non-blocking and best-effort per subscriber: a slow
// subscriber with a full buffer drops the message rather than
// stalling the publisher, matching the requirement that callbacks
// into the tracker's EventLoop must never block the caller.
//
//counterfeiter:generate . PubSub
type PubSub[T any] interface {
	Publish(ctx context.Context, payload T) error
	Subscribe(ctx context.Context) (<-chan Message[T], func(), error)
	Close() error
}

// Message wraps a published payload with delivery metadata.
type Message[T any] struct {
	ID        string
	Payload   T
	Timestamp time.Time
}

// Config configures a memory-backed PubSub.
type Config struct {
	// BufferSize bounds each subscriber's channel.
	BufferSize int
}

type memoryPubSub[T any] struct {
	bufferSize int

	mu          sync.RWMutex
	subscribers map[string]chan Message[T]
	closed      bool

	idMu      sync.Mutex
	messageID int64
}

// New returns a memory-backed PubSub[T] with the given buffer size per
// subscriber (defaults to 16 if non-positive).
func New[T any](cfg Config) PubSub[T] {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &memoryPubSub[T]{
		bufferSize:  bufferSize,
		subscribers: make(map[string]chan Message[T]),
	}
}

func (p *memoryPubSub[T]) Publish(ctx context.Context, payload T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	msg := Message[T]{
		ID:        fmt.Sprintf("%d", p.nextMessageID()),
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for _, ch := range p.subscribers {
		select {
		case ch <- msg:
		default:
			// subscriber buffer full; drop rather than block the publisher.
		}
	}
	return nil
}

func (p *memoryPubSub[T]) Subscribe(ctx context.Context) (<-chan Message[T], func(), error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil, ErrClosed
	}

	id := fmt.Sprintf("sub-%d", p.nextMessageID())
	ch := make(chan Message[T], p.bufferSize)
	p.subscribers[id] = ch
	p.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subscribers[id]; ok {
				delete(p.subscribers, id)
				close(ch)
			}
		})
	}

	go func() {
		<-subCtx.Done()
		unsubscribe()
	}()

	return ch, unsubscribe, nil
}

func (p *memoryPubSub[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for id, ch := range p.subscribers {
		close(ch)
		delete(p.subscribers, id)
	}
	return nil
}

func (p *memoryPubSub[T]) nextMessageID() int64 {
	p.idMu.Lock()
	defer p.idMu.Unlock()
	p.messageID++
	return p.messageID
}
