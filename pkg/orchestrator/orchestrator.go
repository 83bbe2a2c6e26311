package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cliinvoker"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// Orchestrator elects a subset of CLI critics,
// fans a request out to all of them concurrently, awaits every response
// (no early return on first success), and synthesizes a single document.
type Orchestrator struct {
	invoker *cliinvoker.Invoker
	prober  *cliinvoker.Prober
	limits  config.Limits

	detectCurrentCLI func() string
}

// New returns an Orchestrator wired to invoker and prober. detectCurrentCLI
// defaults to cliinvoker.DetectCurrentCLI; tests may substitute it.
func New(invoker *cliinvoker.Invoker, prober *cliinvoker.Prober, limits config.Limits) *Orchestrator {
	return &Orchestrator{
		invoker:          invoker,
		prober:           prober,
		limits:           limits,
		detectCurrentCLI: cliinvoker.DetectCurrentCLI,
	}
}

// Run elects candidates, fans the request out to all of them concurrently,
// and returns every response plus a synthesized document. Returns
// ErrNoCandidates if election leaves nothing to invoke.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	agents := o.elect(ctx, req.SelectedCLIs)
	if len(agents) == 0 {
		return Result{}, ErrNoCandidates{}
	}

	userPrompt := buildUserPrompt(req.AnalysisType, req.PrimaryArg, req.Context)

	responses := make([]AgentResponse, len(agents))
	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent string) {
			defer wg.Done()
			responses[i] = o.invokeOne(ctx, agent, req, userPrompt)
		}(i, agent)
	}
	wg.Wait()

	return Result{
		Agents:    responses,
		Synthesis: synthesize(responses),
	}, nil
}

func (o *Orchestrator) invokeOne(ctx context.Context, agent string, req Request, userPrompt string) AgentResponse {
	if req.OnLifecycle != nil {
		req.OnLifecycle(agent, semparse.EventAgentStart, nil)
	}

	var stdout strings.Builder
	onLine := func(line cliinvoker.Line) {
		stdout.WriteString(line.Text)
		stdout.WriteByte('\n')
		if req.OnLine != nil {
			req.OnLine(agent, line)
		}
	}

	invokeReq := cliinvoker.InvokeRequest{
		Agent:        agent,
		Prompt:       userPrompt,
		SystemPrompt: req.SystemPrompt,
		WorkingDir:   req.WorkingDir,
		Model:        req.Models[agent],
	}

	result := o.invoker.Invoke(ctx, invokeReq, onLine)

	if req.OnLifecycle != nil {
		if result.Err != nil {
			req.OnLifecycle(agent, semparse.EventAgentError, result.Err)
		} else {
			req.OnLifecycle(agent, semparse.EventAgentComplete, nil)
		}
	}

	return AgentResponse{
		Agent:          agent,
		Success:        result.Err == nil,
		Stdout:         stdout.String(),
		Stderr:         result.StderrTail,
		ExecutionTime:  result.ExecutionTime,
		ExitCode:       result.ExitCode,
		CommandSummary: result.CommandSummary,
		Classification: result.Classification,
		Err:            result.Err,
	}
}

// synthesize joins successful outputs into a single document with
// per-critic section headers, then appends a brief failure roll-up.
func synthesize(responses []AgentResponse) string {
	var doc strings.Builder
	n := 0
	var failures []AgentResponse

	for _, r := range responses {
		if !r.Success {
			failures = append(failures, r)
			continue
		}
		n++
		fmt.Fprintf(&doc, "## Critic %d: %s\n", n, strings.ToUpper(r.Agent))
		fmt.Fprintf(&doc, "_Execution time: %s_\n\n", r.ExecutionTime.Round(time.Millisecond))
		doc.WriteString(strings.TrimSpace(r.Stdout))
		doc.WriteString("\n\n---\n\n")
	}

	if len(failures) > 0 {
		doc.WriteString("## Failures\n\n")
		for _, f := range failures {
			fmt.Fprintf(&doc, "- %s: %s (%s)\n", f.Agent, classificationMessage(f), f.Classification)
		}
	}

	return strings.TrimSpace(doc.String())
}

func classificationMessage(r AgentResponse) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return "failed"
}
