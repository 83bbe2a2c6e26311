// Package session implements the Session Channel Manager: a map of
// sessionId → Session context, each owning a subscriber set, an Intelligent
// Buffer, a Progress Tracker, and analysis state. Idle sessions are expired
// by the Manager's periodic TTL sweep.
package session

import (
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/buffer"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// AnalysisStatus is the lifecycle state of a session's analysis.
type AnalysisStatus string

const (
	StatusPending   AnalysisStatus = "pending"
	StatusRunning   AnalysisStatus = "running"
	StatusCompleted AnalysisStatus = "completed"
	StatusFailed    AnalysisStatus = "failed"
)

// AnalysisState tracks which agents are running, which have finished, and
// which findings have been observed, as driven by emitted events
//.
type AnalysisState struct {
	Status          AnalysisStatus
	ActiveAgents    map[string]bool
	CompletedAgents map[string]bool
	FailedAgents    map[string]bool
	ErrorsCount     int
	Findings        []semparse.StreamingEvent
	OverallProgress float64
	PhaseProgress   float64
}

func newAnalysisState() AnalysisState {
	return AnalysisState{
		Status:          StatusPending,
		ActiveAgents:    make(map[string]bool),
		CompletedAgents: make(map[string]bool),
		FailedAgents:    make(map[string]bool),
	}
}

// Subscriber receives delivered event batches for a session. Deliver must
// not block the caller for long; SSE implementations should buffer
// internally and drop or disconnect slow consumers rather than stall the
// broadcasting goroutine.
type Subscriber interface {
	ID() string
	Deliver(batch []buffer.Event)
	// Complete notifies the subscriber that the session's analysis has
	// finished (successfully or not) so it can emit its own terminal
	// signal (e.g. an SSE session_complete frame) and wind itself down.
	Complete()
	// Shutdown notifies the subscriber that the server process itself is
	// shutting down, independent of whether its session's analysis ever
	// reached a terminal state, so it can emit its own shutdown signal
	// (e.g. an SSE server_shutdown frame) and wind itself down.
	Shutdown()
	Close()
}

// EventBatch is what subscribers receive on each Intelligent Buffer flush.
type EventBatch struct {
	SessionID string
	Events    []buffer.Event
}

// Metadata is arbitrary caller-supplied session context (e.g. which tool,
// which analysisType) retained for the life of the session.
type Metadata map[string]interface{}

// snapshot is the read-only view returned to callers inspecting a session
// without touching its internals directly.
type snapshot struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	Metadata     Metadata
	Analysis     AnalysisState
}
