package semparse

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// lineProcessor applies an agent's preprocessing (thinking-block stripping,
// JSON-lines unwrapping) to one raw stdout line before segmentation.
type lineProcessor interface {
	Process(line string) string
}

// Parser is a per-agent, per-invocation stateful streaming tokenizer. It is
// not safe for concurrent use; one Parser belongs to exactly one CLI
// invocation's stdout stream.
type Parser struct {
	agent string
	phase Phase
	proc  lineProcessor
	seg   *segmenter
}

// New returns a Parser specialized for agent (claude/codex/gemini).
// Unrecognized agents get the identity preprocessor (no stripping/unwrapping).
func New(agent string) *Parser {
	p := &Parser{agent: agent, phase: PhaseStarting}
	switch agent {
	case config.AgentClaude:
		p.proc = &claudeProcessor{}
	case config.AgentCodex:
		p.proc = codexProcessor{}
	case config.AgentGemini:
		p.proc = geminiProcessor{}
	default:
		p.proc = identityProcessor{}
	}
	p.seg = newSegmenter(func() {
		slog.Warn("semparse: trailing buffer overflow, forcing flush", "agent", agent)
	})
	return p
}

type identityProcessor struct{}

func (identityProcessor) Process(line string) string { return line }

// Feed processes one raw stdout line, returning every StreamingEvent that
// became complete as a result. Low-confidence debug events are dropped
// per .
func (p *Parser) Feed(line string) []StreamingEvent {
	text := p.proc.Process(line)
	if text == "" {
		return nil
	}

	p.phase = advancePhase(p.phase, text)

	segments := p.seg.feed(text + "\n")
	return p.toEvents(segments)
}

// Flush forces out any remaining trailing fragment as a final event.
func (p *Parser) Flush() []StreamingEvent {
	rest := strings.TrimRight(p.seg.flush(), "\n")
	if rest == "" {
		return nil
	}
	return p.toEvents([]string{rest})
}

func (p *Parser) toEvents(segments []string) []StreamingEvent {
	now := time.Now()
	events := make([]StreamingEvent, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		contentType, severity, confidence := classify(seg)
		if contentType == ContentDebug && confidence < 0.5 {
			continue
		}
		events = append(events, StreamingEvent{
			Agent:       p.agent,
			Type:        EventAgentProgress,
			Phase:       p.phase,
			ContentType: contentType,
			Severity:    severity,
			Content:     seg,
			Confidence:  confidence,
			Timestamp:   now,
		})
	}
	return events
}

// Phase returns the parser's current phase, for tests and progress wiring.
func (p *Parser) Phase() Phase {
	return p.phase
}
