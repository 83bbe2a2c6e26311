package progress

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Tracker is the per-session Progress Tracker state machine.
type Tracker struct {
	mu sync.Mutex

	phase     Phase
	startedAt time.Time
	completed map[string]bool
	milestones []Milestone
	patterns   map[string]*regexp.Regexp

	onEvent func(Event)
}

// New creates a Tracker for the given analysisType, wired to emit lifecycle
// events via onEvent (may be nil).
func New(analysisType string, onEvent func(Event)) *Tracker {
	set := MilestonesFor(analysisType)
	patterns := make(map[string]*regexp.Regexp, len(set))
	for _, m := range set {
		patterns[m.ID] = keywordPattern(m.Keywords)
	}

	return &Tracker{
		phase:      PhaseInitializing,
		startedAt:  time.Now(),
		completed:  make(map[string]bool),
		milestones: set,
		patterns:   patterns,
		onEvent:    onEvent,
	}
}

// keywordPattern builds a case-insensitive alternation over a milestone's
// keyword phrases.
func keywordPattern(keywords []string) *regexp.Regexp {
	escaped := make([]string, len(keywords))
	for i, k := range keywords {
		escaped[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(escaped, "|"))
}

// Observe feeds one piece of agent output content through the milestone
// matcher, advancing phase and completing milestones as their keywords and
// dependencies are satisfied. It emits phase_changed, milestone_completed,
// and progress_updated events as applicable.
func (t *Tracker) Observe(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == PhaseComplete || t.phase == PhaseError {
		return
	}

	progressed := false
	for _, m := range t.milestones {
		if t.completed[m.ID] {
			continue
		}
		if !t.patterns[m.ID].MatchString(content) {
			continue
		}
		if !t.dependenciesMet(m) {
			continue
		}
		t.completed[m.ID] = true
		progressed = true
		t.advancePhase(m.Phase)
		t.emit(Event{Kind: EventMilestoneComplete, Phase: t.phase, MilestoneID: m.ID})
	}

	if progressed {
		t.emitProgress()
	}
}

func (t *Tracker) dependenciesMet(m Milestone) bool {
	for _, dep := range m.Dependencies {
		if !t.completed[dep] {
			return false
		}
	}
	return true
}

// advancePhase moves phase forward if next outranks the current phase.
// Phase never regresses; ERROR, once entered, is absorbing and handled by
// MarkError rather than here.
func (t *Tracker) advancePhase(next Phase) {
	if t.phase == PhaseError {
		return
	}
	if phaseOrder[next] <= phaseOrder[t.phase] {
		return
	}
	t.phase = next
	t.emit(Event{Kind: EventPhaseChanged, Phase: t.phase})
}

// OverallProgress returns the completed-weight fraction across all
// milestones.
func (t *Tracker) OverallProgress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overallLocked()
}

func (t *Tracker) overallLocked() float64 {
	var total, done float64
	for _, m := range t.milestones {
		total += m.Weight
		if t.completed[m.ID] {
			done += m.Weight
		}
	}
	if total == 0 {
		return 0
	}
	return done / total
}

// PhaseProgress returns the completed-weight fraction restricted to the
// current phase's milestones.
func (t *Tracker) PhaseProgress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phaseProgressLocked()
}

func (t *Tracker) phaseProgressLocked() float64 {
	if t.phase == PhaseComplete {
		return 1
	}
	var total, done float64
	for _, m := range t.milestones {
		if m.Phase != t.phase {
			continue
		}
		total += m.Weight
		if t.completed[m.ID] {
			done += m.Weight
		}
	}
	if total == 0 {
		return 0
	}
	return done / total
}

// ETA projects remaining wall-clock time from elapsed time and overall
// progress: elapsed × (1 − overall) / overall. Undefined (ok=false) when no
// progress has been made yet.
func (t *Tracker) ETA() (eta time.Duration, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	overall := t.overallLocked()
	if overall <= 0 {
		return 0, false
	}
	elapsed := time.Since(t.startedAt)
	remaining := float64(elapsed) * (1 - overall) / overall
	return time.Duration(remaining), true
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// MarkComplete forces phase to COMPLETE, auto-completes every remaining
// milestone, and sets both progress values to 1.0.
func (t *Tracker) MarkComplete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == PhaseError {
		return
	}
	for _, m := range t.milestones {
		t.completed[m.ID] = true
	}
	t.phase = PhaseComplete
	t.emit(Event{Kind: EventAnalysisComplete, Phase: PhaseComplete, OverallProgress: 1.0, PhaseProgress: 1.0})
}

// MarkError transitions into the absorbing ERROR phase.
func (t *Tracker) MarkError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseError
	t.emit(Event{Kind: EventAnalysisError, Phase: PhaseError, Error: message})
}

func (t *Tracker) emitProgress() {
	eta, hasETA := t.etaLocked()
	t.emit(Event{
		Kind:            EventProgressUpdated,
		Phase:           t.phase,
		OverallProgress: t.overallLocked(),
		PhaseProgress:   t.phaseProgressLocked(),
		ETA:             eta,
		HasETA:          hasETA,
	})
}

func (t *Tracker) etaLocked() (time.Duration, bool) {
	overall := t.overallLocked()
	if overall <= 0 {
		return 0, false
	}
	elapsed := time.Since(t.startedAt)
	remaining := float64(elapsed) * (1 - overall) / overall
	return time.Duration(remaining), true
}

func (t *Tracker) emit(evt Event) {
	if t.onEvent != nil {
		t.onEvent(evt)
	}
}
