// Package semparse implements the per-agent stateful streaming tokenizer
// that turns raw CLI stdout chunks into classified StreamingEvents: phase
// transitions, content-type/severity classification, and boundary detection
// (fenced code blocks, paragraphs, sentences) with a bounded trailing buffer.
package semparse

import "time"

// Phase is a step in the forward-only per-agent progress state machine.
type Phase string

const (
	PhaseStarting  Phase = "starting"
	PhaseThinking  Phase = "thinking"
	PhaseAnalyzing Phase = "analyzing"
	PhaseOutputting Phase = "outputting"
	PhaseComplete  Phase = "complete"
)

// phaseOrder gives each phase's rank so transitions can be checked as
// monotonically non-decreasing.
var phaseOrder = map[Phase]int{
	PhaseStarting:   0,
	PhaseThinking:   1,
	PhaseAnalyzing:  2,
	PhaseOutputting: 3,
	PhaseComplete:   4,
}

// ContentType classifies one complete segment of agent output.
type ContentType string

const (
	ContentFinding   ContentType = "finding"
	ContentProgress  ContentType = "progress"
	ContentDebug     ContentType = "debug"
	ContentError     ContentType = "error"
	ContentMilestone ContentType = "milestone"
)

// Severity applies only to ContentFinding events.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeverityNone     Severity = ""
)

// EventType distinguishes genuine subprocess-lifecycle signals from the
// Parser's heuristic classification of an output segment's content. Only
// the invoker/orchestrator layer, which actually observes process start and
// exit, ever sets EventAgentStart/EventAgentComplete/EventAgentError; the
// Parser always tags its own output EventAgentProgress, since it has no way
// to know an agent is truly done short of seeing its process exit.
type EventType string

const (
	EventAgentStart    EventType = "agent_start"
	EventAgentProgress EventType = "agent_progress"
	EventAgentComplete EventType = "agent_complete"
	EventAgentError    EventType = "agent_error"
)

// StreamingEvent is one classified, complete segment emitted by the parser,
// or a lifecycle marker emitted directly by the invoker/orchestrator layer.
type StreamingEvent struct {
	Agent       string
	Type        EventType
	Phase       Phase
	ContentType ContentType
	Severity    Severity
	Content     string
	Confidence  float64
	Timestamp   time.Time
}
