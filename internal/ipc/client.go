package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/store"
	"github.com/gridforge/jobtracker/pkg/logger"
)

const (
	defaultPoolSize     = 20
	defaultReadTimeout  = 10 * time.Second
	defaultDialTimeout  = 5 * time.Second
	maxTransformRetries = 8
)

// pooledConn is a single connection held by ConnectionPool. Adapted
// from internal/joblet/state/pool.go's pooledConn/ConnectionPool pair.
type pooledConn struct {
	conn  net.Conn
	mu    sync.Mutex
	inUse bool
}

func (c *pooledConn) close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// ConnectionPool manages reusable connections to a metastored socket.
type ConnectionPool struct {
	socketPath  string
	pool        chan *pooledConn
	poolSize    int
	readTimeout time.Duration
	dialTimeout time.Duration
	log         *logger.Logger

	closed      atomic.Bool
	totalConns  atomic.Int32
	activeConns atomic.Int32
}

func NewConnectionPool(socketPath string, poolSize int, log *logger.Logger) *ConnectionPool {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if log == nil {
		log = logger.WithField("component", "metastore-pool")
	}
	return &ConnectionPool{
		socketPath:  socketPath,
		pool:        make(chan *pooledConn, poolSize),
		poolSize:    poolSize,
		readTimeout: defaultReadTimeout,
		dialTimeout: defaultDialTimeout,
		log:         log,
	}
}

func (p *ConnectionPool) Get(ctx context.Context) (*pooledConn, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("connection pool is closed")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	select {
	case conn := <-p.pool:
		conn.mu.Lock()
		conn.inUse = true
		conn.mu.Unlock()
		p.activeConns.Add(1)
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		if p.totalConns.Load() < int32(p.poolSize) {
			return p.createConnection(ctx)
		}
		select {
		case conn := <-p.pool:
			conn.mu.Lock()
			conn.inUse = true
			conn.mu.Unlock()
			p.activeConns.Add(1)
			return conn, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *ConnectionPool) Put(conn *pooledConn) {
	if conn == nil {
		return
	}
	p.activeConns.Add(-1)
	conn.mu.Lock()
	conn.inUse = false
	conn.mu.Unlock()

	if p.closed.Load() {
		conn.close()
		p.totalConns.Add(-1)
		return
	}

	select {
	case p.pool <- conn:
	default:
		conn.close()
		p.totalConns.Add(-1)
	}
}

func (p *ConnectionPool) Remove(conn *pooledConn) {
	if conn == nil {
		return
	}
	p.activeConns.Add(-1)
	conn.close()
	p.totalConns.Add(-1)
}

func (p *ConnectionPool) createConnection(ctx context.Context) (*pooledConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	var d net.Dialer
	netConn, err := d.DialContext(dialCtx, "unix", p.socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial metastore socket: %w", err)
	}

	conn := &pooledConn{conn: netConn, inUse: true}
	p.totalConns.Add(1)
	p.activeConns.Add(1)
	p.log.Debug("created metastore connection", "total", p.totalConns.Load())
	return conn, nil
}

func (p *ConnectionPool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.pool)
	for conn := range p.pool {
		conn.close()
		p.totalConns.Add(-1)
	}
	return nil
}

func (p *ConnectionPool) sendMessageWithResponse(ctx context.Context, conn *pooledConn, msg Message) (*Response, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	data = append(data, '\n')

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.conn.Write(data); err != nil {
		return nil, fmt.Errorf("write to metastore socket: %w", err)
	}
	_ = conn.conn.SetWriteDeadline(time.Time{})

	readDeadline := time.Now().Add(p.readTimeout)
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(readDeadline) {
		readDeadline = deadline
	}
	_ = conn.conn.SetReadDeadline(readDeadline)

	scanner := bufio.NewScanner(conn.conn)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)
	if !scanner.Scan() {
		_ = conn.conn.SetReadDeadline(time.Time{})
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return nil, fmt.Errorf("connection closed")
	}
	_ = conn.conn.SetReadDeadline(time.Time{})

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// Client is a store.MetadataStore backed by a remote metastored
// daemon reached over the ConnectionPool above.
type Client struct {
	pool *ConnectionPool

	requestID atomic.Uint64
}

var _ store.MetadataStore = (*Client)(nil)

func NewClient(socketPath string, poolSize int, log *logger.Logger) *Client {
	return &Client{pool: NewConnectionPool(socketPath, poolSize, log)}
}

func (c *Client) nextRequestID() string {
	return fmt.Sprintf("req-%d", c.requestID.Add(1))
}

func (c *Client) roundTrip(ctx context.Context, msg Message) (*Response, error) {
	conn, err := c.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.pool.sendMessageWithResponse(ctx, conn, msg)
	if err != nil {
		c.pool.Remove(conn)
		return nil, err
	}
	c.pool.Put(conn)
	return resp, nil
}

func (c *Client) Get(ctx context.Context, jobID ids.JobId) (*metadata.JobMetadata, error) {
	resp, err := c.roundTrip(ctx, Message{
		Operation: OpGet,
		JobID:     string(jobID),
		RequestID: c.nextRequestID(),
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("metastore get %s: %s", jobID, resp.Error)
	}
	return FromWire(resp.Record), nil
}

func (c *Client) PutIfAbsent(ctx context.Context, meta *metadata.JobMetadata) error {
	wire, err := ToWire(meta)
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(ctx, Message{
		Operation: OpCreate,
		JobID:     string(meta.JobID),
		Record:    wire,
		RequestID: c.nextRequestID(),
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("metastore create %s: %s", meta.JobID, resp.Error)
	}
	return nil
}

// Transform implements the client side of the optimistic-update
// protocol described in protocol.go's package comment: read the
// current record and revision, apply fn locally, submit tagged with
// the revision read, and retry from the top on a reported conflict.
func (c *Client) Transform(ctx context.Context, jobID ids.JobId, fn metadata.Transform) <-chan error {
	result := make(chan error, 1)

	go func() {
		for attempt := 0; attempt < maxTransformRetries; attempt++ {
			getResp, err := c.roundTrip(ctx, Message{
				Operation: OpGet,
				JobID:     string(jobID),
				RequestID: c.nextRequestID(),
				Timestamp: time.Now().UnixNano(),
			})
			if err != nil {
				result <- err
				return
			}

			var current *metadata.JobMetadata
			var revision int64
			if getResp.Success {
				current = FromWire(getResp.Record)
				revision = getResp.Revision
			}

			updated := fn(current)
			if updated == nil {
				result <- nil
				return
			}

			wire, err := ToWire(updated)
			if err != nil {
				result <- err
				return
			}

			updateResp, err := c.roundTrip(ctx, Message{
				Operation:        OpUpdate,
				JobID:            string(jobID),
				Record:           wire,
				ExpectedRevision: revision,
				RequestID:        c.nextRequestID(),
				Timestamp:        time.Now().UnixNano(),
			})
			if err != nil {
				result <- err
				return
			}
			if updateResp.Success {
				result <- nil
				return
			}
			// conflict: another writer won the race, retry from a fresh read.
		}
		result <- fmt.Errorf("metastore transform %s: exceeded %d retries", jobID, maxTransformRetries)
	}()

	return result
}

// Subscribe dials a dedicated connection outside the pool: it is held
// open for the lifetime of the subscription rather than round-tripped
// per request, so it must not be subject to the pool's reuse/eviction
// bookkeeping.
func (c *Client) Subscribe(ctx context.Context) (<-chan *metadata.JobMetadata, func(), error) {
	dialCtx, dialCancel := context.WithTimeout(ctx, c.pool.dialTimeout)
	defer dialCancel()

	var d net.Dialer
	netConn, err := d.DialContext(dialCtx, "unix", c.pool.socketPath)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe: dial metastore socket: %w", err)
	}

	msg := Message{Operation: OpSubscribe, RequestID: c.nextRequestID(), Timestamp: time.Now().UnixNano()}
	data, err := json.Marshal(msg)
	if err != nil {
		netConn.Close()
		return nil, nil, err
	}
	if _, err := netConn.Write(append(data, '\n')); err != nil {
		netConn.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	// Wait for the server's acknowledgement, which it sends only after
	// subscribing to its backend, so no change made after this call
	// returns is missed.
	scanner := bufio.NewScanner(netConn)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)
	if !scanner.Scan() {
		netConn.Close()
		return nil, nil, fmt.Errorf("subscribe: no acknowledgement from metastore")
	}
	var ack Response
	if err := json.Unmarshal(scanner.Bytes(), &ack); err != nil || !ack.Success {
		netConn.Close()
		return nil, nil, fmt.Errorf("subscribe: rejected by metastore: %s", ack.Error)
	}

	out := make(chan *metadata.JobMetadata, 64)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer netConn.Close()

		for scanner.Scan() {
			select {
			case <-subCtx.Done():
				return
			default:
			}

			var resp Response
			if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
				continue
			}
			if resp.Record == nil {
				continue
			}
			out <- FromWire(resp.Record)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			netConn.Close()
		})
	}

	return out, unsubscribe, nil
}

func (c *Client) Close() error {
	return c.pool.Close()
}
