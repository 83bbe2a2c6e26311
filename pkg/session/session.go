package session

import (
	"sync"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/buffer"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/progress"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// Session is the per-sessionId context: subscribers, its Intelligent
// Buffer, its Progress Tracker, analysis state, and activity bookkeeping.
type Session struct {
	id        string
	createdAt time.Time

	mu           sync.RWMutex
	lastActivity time.Time
	metadata     Metadata
	analysis     AnalysisState
	failed       bool

	subMu       sync.RWMutex
	subscribers map[string]Subscriber
	maxSubs     int

	buf      *buffer.IntelligentBuffer
	tracker  *progress.Tracker
}

func newSession(id string, metadata Metadata, limits config.SessionLimits, analysisType string) *Session {
	s := &Session{
		id:           id,
		createdAt:    time.Now(),
		lastActivity: time.Now(),
		metadata:     metadata,
		analysis:     newAnalysisState(),
		subscribers:  make(map[string]Subscriber),
		maxSubs:      limits.MaxConnectionsPerSession,
	}
	s.tracker = progress.New(analysisType, s.onProgressEvent)
	s.buf = buffer.New(id, limits, s.broadcast)
	return s
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Tracker exposes the session's Progress Tracker.
func (s *Session) Tracker() *progress.Tracker { return s.tracker }

// Buffer exposes the session's Intelligent Buffer.
func (s *Session) Buffer() *buffer.IntelligentBuffer { return s.buf }

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

func (s *Session) isFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed
}

func (s *Session) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		ID:           s.id,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
		Metadata:     s.metadata,
		Analysis:     s.analysis,
	}
}

// subscribe registers sub for live event delivery, replaying the backlog
// first. Returns false if the per-session subscriber cap is exceeded.
func (s *Session) subscribe(sub Subscriber) bool {
	s.subMu.Lock()
	if len(s.subscribers) >= s.maxSubs {
		s.subMu.Unlock()
		return false
	}
	s.subscribers[sub.ID()] = sub
	s.subMu.Unlock()

	if backlog := s.buf.Backlog().Snapshot(); len(backlog) > 0 {
		sub.Deliver(backlog)
	}
	return true
}

// unsubscribe removes and closes sub. Idempotent.
func (s *Session) unsubscribe(subscriberID string) {
	s.subMu.Lock()
	sub, ok := s.subscribers[subscriberID]
	if ok {
		delete(s.subscribers, subscriberID)
	}
	s.subMu.Unlock()

	if ok {
		sub.Close()
	}
}

func (s *Session) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subscribers)
}

// broadcast delivers one flushed batch to every connected subscriber. It
// snapshots the subscriber set before sending so a slow Deliver call never
// holds subMu.
func (s *Session) broadcast(events []buffer.Event) {
	s.subMu.RLock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.Deliver(events)
	}
}

// completeAll notifies every connected subscriber that the analysis has
// reached a terminal state, so each can emit its own terminal signal (e.g.
// an SSE session_complete frame) and close without waiting for the
// stale-connection timeout.
func (s *Session) completeAll() {
	s.subMu.RLock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.Complete()
	}
}

// shutdownAll notifies every connected subscriber that the server process
// is shutting down, so each can emit its own shutdown signal (e.g. an SSE
// server_shutdown frame) independent of whether this session's analysis
// ever reached a terminal state.
func (s *Session) shutdownAll() {
	s.subMu.RLock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.Shutdown()
	}
}

// closeAll closes every subscriber and clears the set.
func (s *Session) closeAll() {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subscribers = make(map[string]Subscriber)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// applyEvent updates analysis state from one streaming event. Agent
// start/completion/failure move agents between the active/completed/failed
// sets based on evt.Type — the genuine subprocess-lifecycle signal the
// invoker/orchestrator layer emits on process start and exit — rather than
// on the Parser's heuristic phase inference, so an agent whose stdout never
// happens to match a "complete"-looking pattern still leaves ActiveAgents
// once its process actually exits. Findings and error counts still
// accumulate from the Parser's content classification.
func (s *Session) applyEvent(evt semparse.StreamingEvent) {
	s.mu.Lock()
	switch evt.Type {
	case semparse.EventAgentStart:
		s.analysis.ActiveAgents[evt.Agent] = true
	case semparse.EventAgentComplete:
		delete(s.analysis.ActiveAgents, evt.Agent)
		s.analysis.CompletedAgents[evt.Agent] = true
	case semparse.EventAgentError:
		delete(s.analysis.ActiveAgents, evt.Agent)
		s.analysis.FailedAgents[evt.Agent] = true
	}

	switch evt.ContentType {
	case semparse.ContentError:
		s.analysis.ErrorsCount++
	case semparse.ContentFinding:
		s.analysis.Findings = append(s.analysis.Findings, evt)
	}

	s.analysis.OverallProgress = s.tracker.OverallProgress()
	s.analysis.PhaseProgress = s.tracker.PhaseProgress()
	s.mu.Unlock()
}

func (s *Session) onProgressEvent(evt progress.Event) {
	s.mu.Lock()
	s.analysis.OverallProgress = evt.OverallProgress
	s.analysis.PhaseProgress = evt.PhaseProgress
	s.mu.Unlock()
}

func (s *Session) startAnalysis() {
	s.mu.Lock()
	s.analysis.Status = StatusRunning
	s.mu.Unlock()
}

func (s *Session) completeAnalysis() {
	s.tracker.MarkComplete()
	s.mu.Lock()
	s.analysis.Status = StatusCompleted
	s.analysis.OverallProgress = 1.0
	s.analysis.PhaseProgress = 1.0
	s.mu.Unlock()
	s.buf.Flush()
	s.completeAll()
}

func (s *Session) failAnalysis(reason string) {
	s.tracker.MarkError(reason)
	s.mu.Lock()
	s.failed = true
	s.analysis.Status = StatusFailed
	s.mu.Unlock()
	s.buf.Flush()
	s.completeAll()
}
