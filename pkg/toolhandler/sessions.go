package toolhandler

import (
	"sync"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cliinvoker"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
	"github.com/ejmockler/brutalist-mcp-go/pkg/session"
)

// startSession ensures a Session Channel Manager session exists for
// sessionID and marks its analysis running. A no-op if h.sessions is nil
// (e.g. stdio transport with no SSE streaming).
func (h *Handler) startSession(sessionID, analysisType string) {
	if h.sessions == nil {
		return
	}
	if h.sessions.GetSession(sessionID, false) == nil {
		_, _ = h.sessions.CreateSession(sessionID, session.Metadata{"analysisType": analysisType}, analysisType)
	}
	h.sessions.StartAnalysis(sessionID)
}

func (h *Handler) completeSession(sessionID string) {
	if h.sessions == nil {
		return
	}
	h.sessions.CompleteAnalysis(sessionID)
}

func (h *Handler) failSession(sessionID, reason string) {
	if h.sessions == nil {
		return
	}
	h.sessions.FailAnalysis(sessionID, reason)
}

// onLine returns an orchestrator.Request.OnLine callback that feeds each
// agent's raw stdout line through a per-agent Semantic Output Parser and
// pushes the resulting StreamingEvents into the session's Intelligent
// Buffer. Returns nil if no session manager is wired up.
//
// The Orchestrator invokes one goroutine per agent, each calling this same
// closure concurrently, so the per-agent parser map is mutex-guarded.
func (h *Handler) onLine(sessionID string) func(agent string, line cliinvoker.Line) {
	if h.sessions == nil {
		return nil
	}

	var mu sync.Mutex
	parsers := make(map[string]*semparse.Parser)
	return func(agent string, line cliinvoker.Line) {
		mu.Lock()
		p, ok := parsers[agent]
		if !ok {
			p = semparse.New(agent)
			parsers[agent] = p
		}
		mu.Unlock()

		for _, evt := range p.Feed(line.Text) {
			h.sessions.EmitToSession(sessionID, evt)
		}
	}
}

// onLifecycle returns an orchestrator.Request.OnLifecycle callback that
// feeds the invoker's genuine subprocess start/exit signal into the
// session's analysis state directly, bypassing the Parser's heuristic
// phase inference so an agent is never stuck in ActiveAgents past its
// process actually exiting. Returns nil if no session manager is wired up.
func (h *Handler) onLifecycle(sessionID string) func(agent string, evtType semparse.EventType, err error) {
	if h.sessions == nil {
		return nil
	}
	return func(agent string, evtType semparse.EventType, err error) {
		evt := semparse.StreamingEvent{
			Agent:     agent,
			Type:      evtType,
			Timestamp: time.Now(),
		}
		if evtType == semparse.EventAgentError {
			evt.ContentType = semparse.ContentError
			if err != nil {
				evt.Content = err.Error()
			}
		}
		h.sessions.EmitToSession(sessionID, evt)
	}
}
