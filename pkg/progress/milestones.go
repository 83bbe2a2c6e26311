package progress

// milestoneSets holds the preconfigured milestone list per analysisType.
// Weights sum to 1.0 within each set. Every set shares the
// same skeleton (gather input, run the critic, synthesize) since all eleven
// analysis types in the tool catalog share the same underlying fan-out
// shape; the keyword vocabulary differs per domain.
var milestoneSets = map[string][]Milestone{
	"codebase":       genericMilestones("code", "files", "implementation"),
	"file_structure": genericMilestones("directory", "layout", "structure"),
	"dependencies":   genericMilestones("dependency", "package", "version"),
	"git_history":    genericMilestones("commit", "history", "log"),
	"test_coverage":  genericMilestones("test", "coverage", "suite"),
	"idea":           genericMilestones("idea", "concept", "proposal"),
	"architecture":   genericMilestones("architecture", "component", "design"),
	"research":       genericMilestones("research", "methodology", "findings"),
	"security":       genericMilestones("security", "threat", "vulnerability"),
	"product":        genericMilestones("product", "market", "plan"),
	"infrastructure": genericMilestones("infrastructure", "deployment", "reliability"),
}

// genericMilestones builds the five-milestone skeleton every analysisType
// shares: gathering input, invoking critics, observing the first critic
// finish, synthesizing, and reporting done. domainWords name the subject of
// analysis so keyword matches are domain-specific without needing a bespoke
// set per type.
func genericMilestones(domainWords ...string) []Milestone {
	subject := domainWords[0]
	return []Milestone{
		{
			ID:       "input_gathered",
			Phase:    PhaseCollectingData,
			Keywords: []string{"reading " + subject, "loading " + subject, "gathering"},
			Weight:   0.15,
		},
		{
			ID:           "critics_invoked",
			Phase:        PhaseAnalyzing,
			Keywords:     []string{"invoking", "starting analysis", "launching"},
			Weight:       0.15,
			Dependencies: []string{"input_gathered"},
		},
		{
			ID:           "first_critic_done",
			Phase:        PhaseAnalyzing,
			Keywords:     []string{"completed", "finished analysis", "done analyzing"},
			Weight:       0.35,
			Dependencies: []string{"critics_invoked"},
		},
		{
			ID:           "synthesis_started",
			Phase:        PhaseProcessingResults,
			Keywords:     []string{"synthesizing", "aggregating", "combining findings"},
			Weight:       0.15,
			Dependencies: []string{"first_critic_done"},
		},
		{
			ID:           "report_ready",
			Phase:        PhaseProcessingResults,
			Keywords:     []string{"report ready", "analysis complete", "final report"},
			Weight:       0.2,
			Dependencies: []string{"synthesis_started"},
		},
	}
}

// MilestonesFor returns the milestone set for an analysisType, falling back
// to the codebase skeleton for unrecognized types.
func MilestonesFor(analysisType string) []Milestone {
	if set, ok := milestoneSets[analysisType]; ok {
		return set
	}
	return milestoneSets["codebase"]
}
