package semparse

import "encoding/json"

// codexProcessor parses each line as JSON, keeping only the content of
// {"type":"assistant", "content": "..."} events and falling back to the raw
// line on parse failure (codex emits a mix of event types on stdout).
type codexProcessor struct{}

type codexEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (codexProcessor) Process(line string) string {
	var evt codexEvent
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		return line
	}
	if evt.Type != "assistant" {
		return ""
	}
	return evt.Content
}
