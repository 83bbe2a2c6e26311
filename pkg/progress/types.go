// Package progress implements the per-session Progress Tracker: a forward-only
// analysis phase state machine driven by keyword-matched milestones, with
// overall/phase completion fractions and an ETA projection.
package progress

import "time"

// Phase is a step in the per-session analysis state machine.
type Phase string

const (
	PhaseInitializing     Phase = "INITIALIZING"
	PhaseCollectingData   Phase = "COLLECTING_DATA"
	PhaseAnalyzing        Phase = "ANALYZING"
	PhaseProcessingResults Phase = "PROCESSING_RESULTS"
	PhaseComplete         Phase = "COMPLETE"
	PhaseError            Phase = "ERROR"
)

// phaseOrder ranks every phase but ERROR, which is absorbing and reachable
// from any rank.
var phaseOrder = map[Phase]int{
	PhaseInitializing:      0,
	PhaseCollectingData:    1,
	PhaseAnalyzing:         2,
	PhaseProcessingResults: 3,
	PhaseComplete:          4,
}

// Milestone is one unit of expected progress for an analysisType.
type Milestone struct {
	ID           string
	Phase        Phase
	Keywords     []string
	Weight       float64
	Dependencies []string
}

// EventKind names the lifecycle events the tracker emits.
type EventKind string

const (
	EventPhaseChanged      EventKind = "phase_changed"
	EventMilestoneComplete EventKind = "milestone_completed"
	EventProgressUpdated   EventKind = "progress_updated"
	EventAnalysisComplete  EventKind = "analysis_complete"
	EventAnalysisError     EventKind = "analysis_error"
)

// Event is one tracker lifecycle notification.
type Event struct {
	Kind            EventKind
	Phase           Phase
	MilestoneID     string
	OverallProgress float64
	PhaseProgress   float64
	ETA             time.Duration
	HasETA          bool
	Error           string
}
