// Package ctlapi exposes JobTracker's public surface (submit, status,
// kill, plan, counters) over the same newline-delimited-JSON-over-
// Unix-socket convention internal/ipc uses for MetadataStore access,
// so cmd/trackctl never needs to link against the tracker package or
// any of its collaborators directly. Adapted from
// state/internal/ipc/server.go's one-request-one-response shape,
// dropped down to a single connection per call since trackctl is a
// one-shot CLI rather than a long-lived pool client.
package ctlapi

import (
	"github.com/gridforge/jobtracker/internal/job"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
)

type Command string

const (
	CmdSubmit   Command = "submit"
	CmdStatus   Command = "status"
	CmdKill     Command = "kill"
	CmdPlan     Command = "plan"
	CmdCounters Command = "counters"
)

// Request is one trackctl invocation.
type Request struct {
	Command   Command   `json:"command"`
	JobID     string    `json:"jobId"`
	Info      *job.Info `json:"info,omitempty"`
	RequestID string    `json:"requestId"`
}

// Response is trackerd's reply. Which of Phase/Killed/Counters/Plan is
// populated depends on the Request's Command.
type Response struct {
	RequestID string            `json:"requestId"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Phase     string            `json:"phase,omitempty"`
	Killed    bool              `json:"killed,omitempty"`
	Counters  metadata.Counters `json:"counters,omitempty"`
	Plan      *staticplan.Plan  `json:"plan,omitempty"`
}
