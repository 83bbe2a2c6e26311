// Package buffer implements the per-session Intelligent Buffer: a priority
// queue with content-class-driven delay/batch/coalesce rules, a circular
// backlog for late subscribers, and memory-based backpressure.
package buffer

import (
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// Priority is the buffer's flush urgency, derived from a BufferingRule.
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityHigh      Priority = "high"
	PriorityNormal    Priority = "normal"
	PriorityLow       Priority = "low"
)

// Class names the content-class buckets table.
type Class string

const (
	ClassCriticalFinding Class = "critical_finding"
	ClassSecurityFinding Class = "security_finding"
	ClassFinding         Class = "finding"
	ClassAgentProgress   Class = "agent_progress"
	ClassAgentError      Class = "agent_error"
	ClassAgentComplete   Class = "agent_complete"
	ClassDebugInfo       Class = "debug_info"
	ClassMilestone       Class = "milestone"
)

// BufferingRule governs how one content class is flushed.
type BufferingRule struct {
	Delay    time.Duration
	MaxBatch int
	Coalesce bool
	Priority Priority
}

// rules is the fixed table from .
var rules = map[Class]BufferingRule{
	ClassCriticalFinding: {Delay: 0, MaxBatch: 1, Coalesce: false, Priority: PriorityImmediate},
	ClassSecurityFinding: {Delay: 50 * time.Millisecond, MaxBatch: 2, Coalesce: false, Priority: PriorityHigh},
	ClassFinding:         {Delay: 200 * time.Millisecond, MaxBatch: 5, Coalesce: true, Priority: PriorityNormal},
	ClassAgentProgress:   {Delay: 200 * time.Millisecond, MaxBatch: 10, Coalesce: true, Priority: PriorityNormal},
	ClassAgentError:      {Delay: 0, MaxBatch: 1, Coalesce: false, Priority: PriorityImmediate},
	ClassAgentComplete:   {Delay: 100 * time.Millisecond, MaxBatch: 1, Coalesce: false, Priority: PriorityHigh},
	ClassDebugInfo:       {Delay: 1000 * time.Millisecond, MaxBatch: 20, Coalesce: true, Priority: PriorityLow},
	ClassMilestone:       {Delay: 150 * time.Millisecond, MaxBatch: 3, Coalesce: false, Priority: PriorityHigh},
}

// RuleFor returns the BufferingRule for a classified StreamingEvent.
func RuleFor(evt semparse.StreamingEvent) (Class, BufferingRule) {
	class := classify(evt)
	return class, rules[class]
}

// classify maps a StreamingEvent onto one of the eight content classes.
func classify(evt semparse.StreamingEvent) Class {
	switch evt.ContentType {
	case semparse.ContentError:
		return ClassAgentError
	case semparse.ContentMilestone:
		return ClassMilestone
	case semparse.ContentDebug:
		return ClassDebugInfo
	case semparse.ContentFinding:
		switch evt.Severity {
		case semparse.SeverityCritical:
			return ClassCriticalFinding
		case semparse.SeverityHigh:
			return ClassSecurityFinding
		default:
			return ClassFinding
		}
	case semparse.ContentProgress:
		if evt.Phase == semparse.PhaseComplete {
			return ClassAgentComplete
		}
		return ClassAgentProgress
	default:
		return ClassAgentProgress
	}
}
