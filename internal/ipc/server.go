package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/store"
	"github.com/gridforge/jobtracker/pkg/logger"
)

// Server fronts a store.MetadataStore backend over a Unix-domain
// socket, tracking a per-job revision counter so updates can be
// applied optimistically. Adapted from
// state/internal/ipc/server.go's accept-loop/connection-table shape.
type Server struct {
	socketPath string
	backend    store.MetadataStore
	log        *logger.Logger

	listener    net.Listener
	mu          sync.Mutex
	connections map[string]*connection
	revisions   map[ids.JobId]int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type connection struct {
	id      string
	conn    net.Conn
	writeMu sync.Mutex
	enc     *json.Encoder
}

func (c *connection) send(resp *Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.enc.Encode(resp)
}

func NewServer(socketPath string, backend store.MetadataStore, log *logger.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.WithField("component", "metastored")
	}
	return &Server{
		socketPath:  socketPath,
		backend:     backend,
		log:         log,
		connections: make(map[string]*connection),
		revisions:   make(map[ids.JobId]int64),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (s *Server) Start() error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("create unix listener: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0o666); err != nil {
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for _, c := range s.connections {
		c.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return os.RemoveAll(s.socketPath)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(netConn net.Conn) {
	defer s.wg.Done()
	defer netConn.Close()

	connID := fmt.Sprintf("conn-%d", time.Now().UnixNano())
	conn := &connection{id: connID, conn: netConn, enc: json.NewEncoder(netConn)}

	s.mu.Lock()
	s.connections[connID] = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.connections, connID)
		s.mu.Unlock()
	}()

	scanner := bufio.NewScanner(netConn)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			_ = conn.send(&Response{Success: false, Error: "invalid json: " + err.Error()})
			continue
		}

		if msg.Operation == OpSubscribe {
			s.handleSubscribe(conn, msg)
			return
		}

		resp := s.processMessage(msg)
		if err := conn.send(resp); err != nil {
			break
		}
	}
}

func (s *Server) processMessage(msg Message) *Response {
	ctx := context.Background()
	switch msg.Operation {
	case OpCreate:
		return s.handleCreate(ctx, msg)
	case OpUpdate:
		return s.handleUpdate(ctx, msg)
	case OpGet:
		return s.handleGet(ctx, msg)
	case OpPing:
		return &Response{RequestID: msg.RequestID, Success: true}
	default:
		return &Response{RequestID: msg.RequestID, Success: false, Error: "unknown operation: " + string(msg.Operation)}
	}
}

func (s *Server) handleCreate(ctx context.Context, msg Message) *Response {
	if msg.Record == nil {
		return s.errorResponse(msg.RequestID, "record is required")
	}
	m := FromWire(msg.Record)

	if err := s.backend.PutIfAbsent(ctx, m); err != nil {
		return s.errorResponse(msg.RequestID, err.Error())
	}

	s.mu.Lock()
	s.revisions[m.JobID] = 1
	s.mu.Unlock()

	return &Response{RequestID: msg.RequestID, Success: true, Record: msg.Record, Revision: 1}
}

func (s *Server) handleGet(ctx context.Context, msg Message) *Response {
	jobID := ids.JobId(msg.JobID)
	m, err := s.backend.Get(ctx, jobID)
	if err != nil {
		return s.errorResponse(msg.RequestID, err.Error())
	}

	wire, err := ToWire(m)
	if err != nil {
		return s.errorResponse(msg.RequestID, err.Error())
	}

	s.mu.Lock()
	rev := s.revisions[jobID]
	s.mu.Unlock()

	return &Response{RequestID: msg.RequestID, Success: true, Record: wire, Revision: rev}
}

func (s *Server) handleUpdate(ctx context.Context, msg Message) *Response {
	if msg.Record == nil {
		return s.errorResponse(msg.RequestID, "record is required")
	}
	jobID := ids.JobId(msg.JobID)

	// The revision check, the backend write and the revision bump run
	// under one lock so two updates tagged with the same revision
	// cannot both be accepted.
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.revisions[jobID]
	if current != msg.ExpectedRevision {
		return s.errorResponse(msg.RequestID, "revision conflict")
	}

	replacement := FromWire(msg.Record)
	errCh := s.backend.Transform(ctx, jobID, func(*metadata.JobMetadata) *metadata.JobMetadata {
		return replacement
	})
	if err := <-errCh; err != nil {
		return s.errorResponse(msg.RequestID, err.Error())
	}

	s.revisions[jobID] = current + 1
	newRev := s.revisions[jobID]

	return &Response{RequestID: msg.RequestID, Success: true, Record: msg.Record, Revision: newRev}
}

func (s *Server) handleSubscribe(conn *connection, msg Message) {
	ch, unsubscribe, err := s.backend.Subscribe(s.ctx)
	if err != nil {
		_ = conn.send(&Response{RequestID: msg.RequestID, Success: false, Error: err.Error()})
		return
	}
	defer unsubscribe()

	if err := conn.send(&Response{RequestID: msg.RequestID, Success: true}); err != nil {
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			wire, err := ToWire(m)
			if err != nil {
				s.log.Warn("dropping non-serializable metadata update", "job", string(m.JobID), "error", err)
				continue
			}
			if err := conn.send(&Response{Success: true, Record: wire}); err != nil {
				return
			}
		}
	}
}

func (s *Server) errorResponse(requestID, message string) *Response {
	return &Response{RequestID: requestID, Success: false, Error: message}
}
