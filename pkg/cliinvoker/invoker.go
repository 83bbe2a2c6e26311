package cliinvoker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/google/uuid"
)

// Classification buckets a failed invocation by failure mode.
type Classification string

const (
	ClassificationNone           Classification = ""
	ClassificationNotAvailable   Classification = "not-available"
	ClassificationRateLimit      Classification = "rate-limit"
	ClassificationTimeout        Classification = "timeout"
	ClassificationBufferOverflow Classification = "buffer-overflow"
	ClassificationGeneric        Classification = "generic"
)

// InvokeResult is the outcome of a completed invocation, carrying the
// failure classification the Orchestrator needs.
type InvokeResult struct {
	Agent          string
	ExitCode       int
	Classification Classification
	StderrTail     string
	ExecutionTime  time.Duration
	CommandSummary string
	Err            error
}

// Invoker shells out to claude/codex/gemini and streams their output.
type Invoker struct {
	limits   config.Limits
	builders map[string]CommandBuilder

	mu       sync.Mutex
	registry map[string]subprocessRecord
}

// New returns an Invoker using the fixed builder registry.
func New(limits config.Limits) *Invoker {
	return &Invoker{limits: limits, builders: builders, registry: make(map[string]subprocessRecord)}
}

// NewWithBuilders returns an Invoker using a caller-supplied builder
// registry, so tests can substitute a fake binary for claude/codex/gemini.
func NewWithBuilders(limits config.Limits, b map[string]CommandBuilder) *Invoker {
	return &Invoker{limits: limits, builders: b, registry: make(map[string]subprocessRecord)}
}

// ActiveCount returns the number of subprocesses currently running. Used by
// tests to assert no child process is ever leaked past Invoke's return.
func (inv *Invoker) ActiveCount() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.registry)
}

// KillAll force-terminates every subprocess still tracked in the registry.
// Invoke's own deferred cleanup removes exited entries as it returns, so by
// the time KillAll runs the registry holds exactly the invocations still
// in flight — used on server shutdown so no child CLI process outlives
// this one.
func (inv *Invoker) KillAll(grace time.Duration) {
	inv.mu.Lock()
	pids := make([]int, 0, len(inv.registry))
	for _, rec := range inv.registry {
		pids = append(pids, rec.pid)
	}
	inv.mu.Unlock()

	for _, pid := range pids {
		killProcessGroupByPID(pid, grace, nil)
	}
}

// Invoke runs one CLI to completion, calling onLine for every stdout line
// as it arrives. onLine may be nil if the caller only wants the final
// joined result (tests, or a non-streaming code path).
func (inv *Invoker) Invoke(ctx context.Context, req InvokeRequest, onLine func(Line)) InvokeResult {
	build, ok := inv.builders[req.Agent]
	if !ok {
		return InvokeResult{Agent: req.Agent, Classification: ClassificationGeneric,
			Err: fmt.Errorf("cliinvoker: unknown agent %q", req.Agent)}
	}

	wallClock := req.WallClockLimit
	if wallClock <= 0 {
		wallClock = inv.limits.WallClockTimeout
	}
	if req.Agent != config.AgentClaude && wallClock < inv.limits.MinNonClaudeTimeout {
		wallClock = inv.limits.MinNonClaudeTimeout
	}
	cpuLimit := req.CPUTimeLimit
	if cpuLimit <= 0 {
		cpuLimit = inv.limits.CPUTimeLimit
	}

	binary, argv, stdinText := build(req)

	runCtx, cancel := context.WithTimeout(ctx, wallClock)
	defer cancel()

	cmd := buildCPULimitedCommand(runCtx, binary, argv, cpuLimit)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	cmd.Env = childEnv()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Termination on context cancellation is driven entirely by our own
	// watcher goroutine below (SIGTERM, grace, SIGKILL on the whole process
	// group) rather than os/exec's default bare Process.Kill().
	cmd.Cancel = func() error { return nil }

	start := time.Now()

	var stdin interface {
		Write([]byte) (int, error)
		Close() error
	}
	if stdinText != "" {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return InvokeResult{Agent: req.Agent, Classification: ClassificationGeneric, Err: err}
		}
		stdin = pipe
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return InvokeResult{Agent: req.Agent, Classification: ClassificationGeneric, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return InvokeResult{Agent: req.Agent, Classification: ClassificationGeneric, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return InvokeResult{
			Agent:          req.Agent,
			Classification: classifyStartError(err),
			Err:            err,
		}
	}

	recID := uuid.NewString()
	inv.mu.Lock()
	inv.registry[recID] = subprocessRecord{agent: req.Agent, pid: cmd.Process.Pid, startedAt: start}
	inv.mu.Unlock()
	defer func() {
		inv.mu.Lock()
		delete(inv.registry, recID)
		inv.mu.Unlock()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-runCtx.Done():
			killProcessGroup(cmd, inv.limits.ProcessGroupKillGrace, done)
		case <-done:
		}
	}()

	if stdin != nil {
		go func() {
			defer stdin.Close()
			_, _ = stdin.Write([]byte(stdinText))
		}()
	}

	var stderrTail strings.Builder
	stderrOverflow := false
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		var total int64
		for scanner.Scan() {
			line := scanner.Text()
			total += int64(len(line)) + 1
			if total > inv.limits.MaxOutputBytes {
				stderrOverflow = true
				killProcessGroup(cmd, inv.limits.ProcessGroupKillGrace, done)
				break
			}
			if stderrTail.Len() < 8192 {
				stderrTail.WriteString(line)
				stderrTail.WriteByte('\n')
			}
		}
	}()

	overflow := false
	stdoutDone := make(chan error, 1)
	go func() {
		defer close(stdoutDone)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)
		var total int64
		for scanner.Scan() {
			text := scanner.Text()
			total += int64(len(text)) + 1
			if total > inv.limits.MaxOutputBytes {
				overflow = true
				killProcessGroup(cmd, inv.limits.ProcessGroupKillGrace, done)
				break
			}
			if onLine != nil {
				onLine(Line{Agent: req.Agent, Text: text})
			}
		}
		stdoutDone <- scanner.Err()
	}()

	scanErr := <-stdoutDone
	<-stderrDone

	cmdErr := cmd.Wait()
	elapsed := time.Since(start)

	result := InvokeResult{
		Agent:          req.Agent,
		ExecutionTime:  elapsed,
		StderrTail:     stderrTail.String(),
		CommandSummary: binary + " " + strings.Join(argv, " "),
	}

	if overflow || stderrOverflow {
		result.Classification = ClassificationBufferOverflow
		result.Err = errors.New("cliinvoker: output buffer exceeded limit, process killed")
		return result
	}

	if runCtx.Err() != nil {
		result.Classification = ClassificationTimeout
		result.Err = fmt.Errorf("cliinvoker: %s timed out after %s", req.Agent, wallClock)
		return result
	}

	if scanErr != nil {
		result.Classification = ClassificationGeneric
		result.Err = fmt.Errorf("cliinvoker: reading %s stdout: %w", req.Agent, scanErr)
		return result
	}

	if cmdErr != nil {
		result.Classification = classifyExitError(cmdErr, result.StderrTail)
		result.Err = fmt.Errorf("cliinvoker: %s exited abnormally: %w", req.Agent, cmdErr)
		if exitErr, ok := cmdErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		return result
	}

	return result
}

func classifyStartError(err error) Classification {
	if errors.Is(err, exec.ErrNotFound) {
		return ClassificationNotAvailable
	}
	return ClassificationGeneric
}

func classifyExitError(err error, stderrTail string) Classification {
	// The CPU-limit sh wrapper reports a binary missing from PATH as exit
	// status 127 rather than a Start error.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 127 {
		return ClassificationNotAvailable
	}
	lower := strings.ToLower(stderrTail)
	if strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") {
		return ClassificationRateLimit
	}
	return ClassificationGeneric
}

// buildCPULimitedCommand shapes the child process to enforce a CPU-time
// ceiling. os/exec has no direct RLIMIT_CPU knob, so when cpuLimit is set
// the real binary is wrapped in a shell that calls `ulimit -t` before
// exec'ing it; the wrapped binary and its arguments are still passed as
// discrete argv elements (never interpolated into the shell string), so
// user-supplied prompt text never touches shell parsing.
func buildCPULimitedCommand(ctx context.Context, binary string, argv []string, cpuLimit time.Duration) *exec.Cmd {
	if cpuLimit <= 0 {
		return exec.CommandContext(ctx, binary, argv...)
	}
	seconds := int(cpuLimit.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	shellArgv := append([]string{"-c", "ulimit -t " + strconv.Itoa(seconds) + `; exec "$0" "$@"`, binary}, argv...)
	return exec.CommandContext(ctx, "sh", shellArgv...)
}
