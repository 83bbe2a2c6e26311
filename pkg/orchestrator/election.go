package orchestrator

import (
	"context"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// elect applies the critic-election policy: exclude currentCLI, honor
// an explicit caller preference if available, otherwise take every
// available non-currentCLI candidate.
func (o *Orchestrator) elect(ctx context.Context, requested []string) []string {
	currentCLI := o.detectCurrentCLI()

	candidates := make([]string, 0, len(config.AllAgents))
	for _, agent := range config.AllAgents {
		if agent == currentCLI {
			continue
		}
		candidates = append(candidates, agent)
	}

	if len(requested) > 0 {
		preferred := make([]string, 0, len(requested))
		for _, agent := range requested {
			if agent == currentCLI {
				continue
			}
			if o.prober.Available(ctx, agent) {
				preferred = append(preferred, agent)
			}
		}
		if len(preferred) > 0 {
			return preferred
		}
	}

	return o.prober.AvailableAgents(ctx, candidates)
}
