package cliinvoker

import (
	"os"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// currentCLIEnvHints names, per agent, the environment variables that CLI
// sets in its own session so a spawned subprocess can detect it is already
// running inside that CLI. These are treated as the authoritative variable
// names for each agent.
var currentCLIEnvHints = map[string][]string{
	config.AgentClaude: {"CLAUDECODE", "CLAUDE_CODE_ENTRYPOINT"},
	config.AgentCodex:  {"CODEX_SANDBOX", "CODEX_HOME"},
	config.AgentGemini: {"GEMINI_CLI", "GEMINI_SANDBOX"},
}

// DetectCurrentCLI inspects the process environment for markers left by
// claude/codex/gemini and returns the agent name it is currently running
// inside, or "" if none are present. The Orchestrator excludes this agent
// from its candidate set to prevent recursive self-invocation.
func DetectCurrentCLI() string {
	for _, agent := range config.AllAgents {
		for _, envVar := range currentCLIEnvHints[agent] {
			if os.Getenv(envVar) != "" {
				return agent
			}
		}
	}
	return ""
}
