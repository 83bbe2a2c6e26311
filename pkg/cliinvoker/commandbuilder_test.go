package cliinvoker

import (
	"testing"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildClaudeCommand(t *testing.T) {
	binary, argv, stdin := buildClaudeCommand(InvokeRequest{
		Prompt:       "why is this broken",
		SystemPrompt: "be harsh",
		Model:        "opus",
	})

	assert.Equal(t, "claude", binary)
	assert.Equal(t, []string{"--print", "--model", "opus", "--append-system-prompt", "be harsh", "why is this broken"}, argv)
	assert.Empty(t, stdin)
}

func TestBuildCodexCommand(t *testing.T) {
	binary, argv, stdin := buildCodexCommand(InvokeRequest{
		Prompt:       "critique this",
		SystemPrompt: "be harsh",
		WorkingDir:   "/tmp/project",
	})

	assert.Equal(t, "codex", binary)
	assert.Equal(t, []string{"exec", "--sandbox", "read-only", "--cd", "/tmp/project", "be harsh\n\ncritique this"}, argv)
	assert.Empty(t, stdin)
}

func TestBuildGeminiCommand(t *testing.T) {
	binary, argv, stdin := buildGeminiCommand(InvokeRequest{
		Prompt:       "critique this",
		SystemPrompt: "be harsh",
		Model:        "pro",
	})

	assert.Equal(t, "gemini", binary)
	assert.Equal(t, []string{"--model", "pro", "--sandbox", "--yolo"}, argv)
	assert.Equal(t, "be harsh\n\ncritique this", stdin)
}

func TestBuildersRegistryCoversAllAgents(t *testing.T) {
	for _, agent := range config.AllAgents {
		_, ok := builders[agent]
		assert.True(t, ok, "missing builder for agent %q", agent)
	}
}

func TestChildEnvSetsSubprocessMarker(t *testing.T) {
	env := childEnv()
	found := false
	for _, e := range env {
		if e == "BRUTALIST_SUBPROCESS=1" {
			found = true
		}
	}
	assert.True(t, found, "childEnv must set BRUTALIST_SUBPROCESS=1")
}
