package ctlapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
)

// Client is a one-shot ctlapi client: it dials a fresh connection per
// call rather than pooling, matching trackctl's short-lived CLI
// process lifetime.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
	requestID   atomic.Uint64
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, dialTimeout: 5 * time.Second}
}

func (c *Client) nextRequestID() string {
	return fmt.Sprintf("ctl-%d", c.requestID.Add(1))
}

func (c *Client) roundTrip(ctx context.Context, req Request) (*Response, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("ctlapi: dial trackerd socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ctlapi: encode request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("ctlapi: write request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("ctlapi: read response: %w", err)
		}
		return nil, fmt.Errorf("ctlapi: connection closed without a response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("ctlapi: decode response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("ctlapi: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) Submit(ctx context.Context, jobID string, info job.Info) error {
	_, err := c.roundTrip(ctx, Request{Command: CmdSubmit, JobID: jobID, Info: &info, RequestID: c.nextRequestID()})
	return err
}

func (c *Client) Status(ctx context.Context, jobID string) (string, error) {
	resp, err := c.roundTrip(ctx, Request{Command: CmdStatus, JobID: jobID, RequestID: c.nextRequestID()})
	if err != nil {
		return "", err
	}
	return resp.Phase, nil
}

func (c *Client) Kill(ctx context.Context, jobID string) (bool, error) {
	resp, err := c.roundTrip(ctx, Request{Command: CmdKill, JobID: jobID, RequestID: c.nextRequestID()})
	if err != nil {
		return false, err
	}
	return resp.Killed, nil
}

func (c *Client) Plan(ctx context.Context, jobID string) (*staticplan.Plan, error) {
	resp, err := c.roundTrip(ctx, Request{Command: CmdPlan, JobID: jobID, RequestID: c.nextRequestID()})
	if err != nil {
		return nil, err
	}
	return resp.Plan, nil
}

func (c *Client) Counters(ctx context.Context, jobID string) (map[string]int64, error) {
	resp, err := c.roundTrip(ctx, Request{Command: CmdCounters, JobID: jobID, RequestID: c.nextRequestID()})
	if err != nil {
		return nil, err
	}
	return resp.Counters, nil
}
