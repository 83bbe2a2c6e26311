package semparse

import "regexp"

// phaseMarkers maps each non-starting phase to the phrase patterns that
// signal entry into it. Patterns are checked in phase order; the first
// phase at or below the current one's rank never regresses the state
// machine.
var phaseMarkers = []struct {
	phase   Phase
	pattern *regexp.Regexp
}{
	{PhaseThinking, regexp.MustCompile(`(?i)\b(thinking|considering|let me think|reasoning through)\b`)},
	{PhaseAnalyzing, regexp.MustCompile(`(?i)\b(analyzing|examining|inspecting|reviewing the)\b`)},
	{PhaseOutputting, regexp.MustCompile(`(?i)\b(found|here's what|summary|in conclusion|my assessment)\b`)},
	{PhaseComplete, regexp.MustCompile(`(?i)\b(complete|done|finished|analysis complete)\b`)},
}

// advancePhase inspects text for phase markers and returns the new phase,
// never regressing below current.
func advancePhase(current Phase, text string) Phase {
	best := current
	for _, m := range phaseMarkers {
		if phaseOrder[m.phase] <= phaseOrder[best] {
			continue
		}
		if m.pattern.MatchString(text) {
			best = m.phase
		}
	}
	return best
}
