// Package orchestrator fans one analysis request out to an elected subset
// of CLI critics, runs them concurrently, and synthesizes their outputs
// into a single document with per-critic section headers.
package orchestrator

import (
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cliinvoker"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// Request describes one analysis to fan out to the elected critics.
type Request struct {
	AnalysisType  string
	PrimaryArg    string
	SystemPrompt  string
	Context       string
	WorkingDir    string
	SelectedCLIs  []string // caller preference; empty means "all available"
	Models        map[string]string
	SessionID     string
	RequestID     string
	ProgressToken string
	OnLine        func(agent string, line cliinvoker.Line)
	// OnLifecycle, if set, is called once when an agent's invocation
	// starts and once when it finishes, carrying the genuine subprocess
	// start/exit signal rather than output classified from stdout text.
	OnLifecycle func(agent string, evtType semparse.EventType, err error)
}

// AgentResponse is one critic's outcome, successful or not.
type AgentResponse struct {
	Agent          string
	Success        bool
	Stdout         string
	Stderr         string
	ExecutionTime  time.Duration
	ExitCode       int
	CommandSummary string
	Classification cliinvoker.Classification
	Err            error
}

// Result is the Orchestrator's output: every per-agent response plus the
// synthesized document joining the successful ones.
type Result struct {
	Agents    []AgentResponse
	Synthesis string
}

// ErrNoCandidates is returned when election leaves no CLI to invoke.
type ErrNoCandidates struct{}

func (ErrNoCandidates) Error() string { return "No CLI agents available for analysis" }
