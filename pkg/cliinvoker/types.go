// Package cliinvoker shells out to the claude, codex and gemini CLI
// binaries, streaming their raw stdout line by line while enforcing wall-clock
// and CPU-time limits, and killing the whole process group on timeout or
// cancellation.
package cliinvoker

import (
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// InvokeRequest describes a single CLI invocation.
type InvokeRequest struct {
	Agent          string // config.AgentClaude / AgentCodex / AgentGemini
	Prompt         string // passed in argv for claude and codex, on stdin for gemini
	SystemPrompt   string
	WorkingDir     string
	Model          string // optional model override
	WallClockLimit time.Duration
	CPUTimeLimit   time.Duration
}

// Line is one line of raw stdout emitted by the CLI subprocess, handed to
// the Semantic Output Parser unmodified.
type Line struct {
	Agent string
	Text  string
}

// Result is the outcome of a completed invocation.
type Result struct {
	Agent      string
	ExitCode   int
	TimedOut   bool
	StderrTail string // last portion of stderr, kept for diagnostics only
	Err        error
}

// subprocessRecord is bookkeeping kept for the duration of one invocation
// so progress tracking and cancellation can refer to a live child process
// by agent name.
type subprocessRecord struct {
	agent     string
	pid       int
	startedAt time.Time
}

func defaultLimits() config.Limits {
	return config.DefaultLimits()
}
