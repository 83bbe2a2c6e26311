package cliinvoker

import (
	"fmt"
	"os"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// CommandBuilder shapes one agent's binary, argv and stdin from an
// InvokeRequest. Binary is the executable name (resolved via PATH), argv is
// the full argument list excluding the binary itself, and stdin is the text
// to pipe to the child's stdin (empty if the prompt travels as an argv).
type CommandBuilder func(req InvokeRequest) (binary string, argv []string, stdin string)

// builders is the fixed registry of CommandBuilders, keyed by agent name.
// Adding a fourth CLI is a one-entry change to this map.
var builders = map[string]CommandBuilder{
	config.AgentClaude: buildClaudeCommand,
	config.AgentCodex:  buildCodexCommand,
	config.AgentGemini: buildGeminiCommand,
}

// buildClaudeCommand shapes: claude --print [--model M] --append-system-prompt <SYSTEM> <USER>
func buildClaudeCommand(req InvokeRequest) (string, []string, string) {
	argv := []string{"--print"}
	if req.Model != "" {
		argv = append(argv, "--model", req.Model)
	}
	if req.SystemPrompt != "" {
		argv = append(argv, "--append-system-prompt", req.SystemPrompt)
	}
	argv = append(argv, req.Prompt)
	return "claude", argv, ""
}

// buildCodexCommand shapes: codex exec [--model M] --sandbox read-only --cd <WD> <SYSTEM\n\nUSER>
func buildCodexCommand(req InvokeRequest) (string, []string, string) {
	argv := []string{"exec"}
	if req.Model != "" {
		argv = append(argv, "--model", req.Model)
	}
	argv = append(argv, "--sandbox", "read-only")
	if req.WorkingDir != "" {
		argv = append(argv, "--cd", req.WorkingDir)
	}
	argv = append(argv, combinedPrompt(req))
	return "codex", argv, ""
}

// buildGeminiCommand shapes: gemini [--model M] --sandbox --yolo, prompt on stdin.
func buildGeminiCommand(req InvokeRequest) (string, []string, string) {
	argv := []string{}
	if req.Model != "" {
		argv = append(argv, "--model", req.Model)
	}
	argv = append(argv, "--sandbox", "--yolo")
	return "gemini", argv, combinedPrompt(req)
}

func combinedPrompt(req InvokeRequest) string {
	if req.SystemPrompt == "" {
		return req.Prompt
	}
	return fmt.Sprintf("%s\n\n%s", req.SystemPrompt, req.Prompt)
}

// childEnv builds the environment for a CLI subprocess: the parent's
// environment plus BRUTALIST_SUBPROCESS=1, so a brutalist-mcp invoked from
// within one of its own CLI subprocesses can detect and refuse recursion
//.
func childEnv() []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	for _, e := range env {
		out = append(out, e)
	}
	return append(out, "BRUTALIST_SUBPROCESS=1")
}
