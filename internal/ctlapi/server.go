package ctlapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
	"github.com/gridforge/jobtracker/internal/tracker"
	"github.com/gridforge/jobtracker/pkg/logger"
)

// Server fronts a *tracker.JobTracker over a Unix-domain socket.
type Server struct {
	socketPath string
	trk        *tracker.JobTracker
	log        *logger.Logger

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewServer(socketPath string, trk *tracker.JobTracker, log *logger.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.WithField("component", "trackerd-ctlapi")
	}
	return &Server{socketPath: socketPath, trk: trk, log: log, ctx: ctx, cancel: cancel}
}

func (s *Server) Start() error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("ctlapi: remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("ctlapi: listen: %w", err)
	}
	s.listener = listener
	if err := os.Chmod(s.socketPath, 0o666); err != nil {
		return fmt.Errorf("ctlapi: chmod socket: %w", err)
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

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	enc := json.NewEncoder(conn)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			_ = enc.Encode(&Response{Success: false, Error: "invalid json: " + err.Error()})
			continue
		}
		resp := s.handle(req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) handle(req Request) *Response {
	ctx := s.ctx
	jobID := ids.JobId(req.JobID)

	switch req.Command {
	case CmdSubmit:
		if req.Info == nil {
			return s.errorResponse(req.RequestID, "submit requires a job info payload")
		}
		if _, err := s.trk.Submit(ctx, jobID, *req.Info); err != nil {
			return s.errorResponse(req.RequestID, err.Error())
		}
		return &Response{RequestID: req.RequestID, Success: true}

	case CmdStatus:
		phase, err := s.trk.Status(ctx, jobID)
		if err != nil {
			return s.errorResponse(req.RequestID, err.Error())
		}
		return &Response{RequestID: req.RequestID, Success: true, Phase: phase.String()}

	case CmdKill:
		killed, err := s.trk.Kill(ctx, jobID)
		if err != nil {
			return s.errorResponse(req.RequestID, err.Error())
		}
		return &Response{RequestID: req.RequestID, Success: true, Killed: killed}

	case CmdPlan:
		p, err := s.trk.Plan(ctx, jobID)
		if err != nil {
			return s.errorResponse(req.RequestID, err.Error())
		}
		sp, ok := p.(*staticplan.Plan)
		if !ok {
			return s.errorResponse(req.RequestID, fmt.Sprintf("plan type %T is not wire-serializable", p))
		}
		return &Response{RequestID: req.RequestID, Success: true, Plan: sp}

	case CmdCounters:
		counters, err := s.trk.Counters(ctx, jobID)
		if err != nil {
			return s.errorResponse(req.RequestID, err.Error())
		}
		return &Response{RequestID: req.RequestID, Success: true, Counters: counters}

	default:
		return s.errorResponse(req.RequestID, "unknown command: "+string(req.Command))
	}
}

func (s *Server) errorResponse(requestID, msg string) *Response {
	return &Response{RequestID: requestID, Success: false, Error: msg}
}
