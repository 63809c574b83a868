// Package ipc implements the wire protocol the metadata store daemon
// (cmd/metastored) and its clients speak: newline-delimited JSON
// messages over a Unix-domain socket, adapted directly from the
// teacher's state-service IPC (state/internal/ipc/server.go,
// internal/joblet/state/pool.go) rather than reaching for gRPC/protobuf
// (which this codebase drops — see DESIGN.md).
//
// Updates are optimistic: a client reads a record together with its
// revision, applies its Transform locally, then submits the result
// tagged with the revision it read. The server accepts the write only
// if the revision it holds still matches, otherwise it reports a
// conflict and the client re-reads and reapplies — which is exactly
// why internal/metadata.Transform must be pure and safe to invoke more
// than once against different inputs.
package ipc

import (
	"fmt"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/internal/metadata"
	"github.com/gridforge/jobtracker/internal/plan"
	"github.com/gridforge/jobtracker/internal/plan/staticplan"
)

type Operation string

const (
	OpGet       Operation = "get"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpSubscribe Operation = "subscribe"
	OpPing      Operation = "ping"
)

// Message is one client request.
type Message struct {
	Operation        Operation     `json:"op"`
	JobID            string        `json:"jobId,omitempty"`
	Record           *WireMetadata `json:"record,omitempty"`
	ExpectedRevision int64         `json:"expectedRevision,omitempty"`
	RequestID        string        `json:"requestId"`
	Timestamp        int64         `json:"timestamp"`
}

// Response is one server reply. A Subscribe connection receives a
// stream of unsolicited Responses (RequestID empty, Record populated)
// after its initial acknowledgement.
type Response struct {
	RequestID string        `json:"requestId"`
	Success   bool          `json:"success"`
	Record    *WireMetadata `json:"record,omitempty"`
	Revision  int64         `json:"revision,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// WireMetadata is the JSON-serializable mirror of metadata.JobMetadata.
// It is tied to staticplan's concrete Plan/Split types because Plan
// and InputSplit are declared as interfaces in internal/plan — this
// module ships exactly one Planner implementation, so the wire codec
// serializes against that shape directly rather than building a
// general plugin registry for hypothetical other planners.
type WireMetadata struct {
	JobID            string                         `json:"jobId"`
	SubmitterNodeID  string                         `json:"submitterNodeId"`
	Phase            int                            `json:"phase"`
	Plan             *staticplan.Plan               `json:"plan,omitempty"`
	PendingSplits    []staticplan.Split             `json:"pendingSplits"`
	PendingReducers  []int                          `json:"pendingReducers"`
	ReducerAddresses map[int]plan.ProcessDescriptor `json:"reducerAddresses"`
	Counters         metadata.Counters              `json:"counters"`
	FailCause        string                         `json:"failCause,omitempty"`
	SetupCompleteTs  int64                          `json:"setupCompleteTs,omitempty"`
	MapCompleteTs    int64                          `json:"mapCompleteTs,omitempty"`
	CompleteTs       int64                          `json:"completeTs,omitempty"`
	TTLSeconds       int64                          `json:"ttlSeconds,omitempty"`
}

// ToWire converts m into its wire representation. Returns an error if
// m.Plan is populated but isn't a *staticplan.Plan.
func ToWire(m *metadata.JobMetadata) (*WireMetadata, error) {
	w := &WireMetadata{
		JobID:            string(m.JobID),
		SubmitterNodeID:  string(m.SubmitterNodeID),
		Phase:            int(m.Phase),
		PendingReducers:  intSetToSlice(m.PendingReducers),
		ReducerAddresses: m.ReducerAddresses,
		Counters:         m.Counters,
		SetupCompleteTs:  unixNano(m.SetupCompleteTs),
		MapCompleteTs:    unixNano(m.MapCompleteTs),
		CompleteTs:       unixNano(m.CompleteTs),
		TTLSeconds:       int64(m.TTL.Seconds()),
	}
	if m.FailCause != nil {
		w.FailCause = m.FailCause.Error()
	}
	if m.Plan != nil {
		sp, ok := m.Plan.(*staticplan.Plan)
		if !ok {
			return nil, fmt.Errorf("ipc: plan type %T is not wire-serializable, only *staticplan.Plan is", m.Plan)
		}
		w.Plan = sp
	}
	for _, split := range m.PendingSplits {
		s, ok := split.(staticplan.Split)
		if !ok {
			return nil, fmt.Errorf("ipc: split type %T is not wire-serializable, only staticplan.Split is", split)
		}
		w.PendingSplits = append(w.PendingSplits, s)
	}
	return w, nil
}

// FromWire reconstructs a JobMetadata from its wire representation.
func FromWire(w *WireMetadata) *metadata.JobMetadata {
	m := &metadata.JobMetadata{
		JobID:            ids.JobId(w.JobID),
		SubmitterNodeID:  ids.NodeId(w.SubmitterNodeID),
		Phase:            metadata.Phase(w.Phase),
		PendingReducers:  metadata.NewIntSet(w.PendingReducers...),
		ReducerAddresses: w.ReducerAddresses,
		Counters:         w.Counters,
		TTL:              secondsToDuration(w.TTLSeconds),
	}
	if w.Plan != nil {
		m.Plan = w.Plan
	}
	if w.FailCause != "" {
		m.FailCause = fmt.Errorf("%s", w.FailCause)
	}
	splits := make([]plan.InputSplit, len(w.PendingSplits))
	for i, s := range w.PendingSplits {
		splits[i] = s
	}
	m.PendingSplits = metadata.NewSplitSet(splits...)
	m.SetupCompleteTs = fromUnixNano(w.SetupCompleteTs)
	m.MapCompleteTs = fromUnixNano(w.MapCompleteTs)
	m.CompleteTs = fromUnixNano(w.CompleteTs)
	if m.ReducerAddresses == nil {
		m.ReducerAddresses = make(map[int]plan.ProcessDescriptor)
	}
	if m.Counters == nil {
		m.Counters = make(metadata.Counters)
	}
	return m
}

func intSetToSlice(s metadata.IntSet) []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
