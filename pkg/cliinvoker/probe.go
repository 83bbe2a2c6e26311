package cliinvoker

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// Prober caches CLI availability probes for the lifetime of the process.
// Probing shells out to `<cli> --version`; a non-nil error (including
// ENOENT when the binary isn't on PATH) marks the agent unavailable.
type Prober struct {
	timeout time.Duration

	mu     sync.Mutex
	cached map[string]bool
}

// NewProber returns a Prober that bounds each probe to timeout.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{timeout: timeout, cached: make(map[string]bool)}
}

// Available reports whether agent's CLI binary can be invoked, probing at
// most once per process and reusing the cached result thereafter.
func (p *Prober) Available(ctx context.Context, agent string) bool {
	p.mu.Lock()
	if v, ok := p.cached[agent]; ok {
		p.mu.Unlock()
		return v
	}
	p.mu.Unlock()

	available := p.probe(ctx, agent)

	p.mu.Lock()
	p.cached[agent] = available
	p.mu.Unlock()

	return available
}

func (p *Prober) probe(ctx context.Context, agent string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, agent, "--version")
	return cmd.Run() == nil
}

// AvailableAgents returns the members of agents whose CLI probes
// successfully, in the order given.
func (p *Prober) AvailableAgents(ctx context.Context, agents []string) []string {
	out := make([]string, 0, len(agents))
	for _, agent := range agents {
		if p.Available(ctx, agent) {
			out = append(out, agent)
		}
	}
	return out
}

// Reset clears the probe cache; intended for tests only.
func (p *Prober) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = make(map[string]bool)
}
