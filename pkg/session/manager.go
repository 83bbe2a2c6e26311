package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ErrDuplicateSession is returned by CreateSession when the requested id is
// already in use.
var ErrDuplicateSession = errors.New("session: duplicate id")

// Manager owns the map sessionId → *Session and the two maintenance sweeps
// described. One Manager per process.
type Manager struct {
	limits config.SessionLimits

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron

	metricsMu      sync.Mutex
	totalCreated   int64
	totalDestroyed int64
}

// NewManager constructs a Manager and starts its two background sweeps on
// a shared robfig/cron engine. Call Shutdown to stop them before process
// exit.
func NewManager(limits config.SessionLimits) *Manager {
	m := &Manager{
		limits:   limits,
		sessions: make(map[string]*Session),
		cron:     cron.New(),
	}
	_, _ = m.cron.AddFunc(fmt.Sprintf("@every %s", limits.SweepInterval), m.sweepExpired)
	_, _ = m.cron.AddFunc(fmt.Sprintf("@every %s", limits.MetricsSweepInterval), m.publishMetrics)
	m.cron.Start()
	return m
}

// CreateSession registers a new session under id, or a generated uuid if id
// is empty. analysisType selects the Progress Tracker's milestone set.
func (m *Manager) CreateSession(id string, metadata Metadata, analysisType string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	s := newSession(id, metadata, m.limits, analysisType)
	m.sessions[id] = s
	m.mu.Unlock()

	m.metricsMu.Lock()
	m.totalCreated++
	m.metricsMu.Unlock()

	return s, nil
}

// GetSession returns the session for id, updating its lastActivity.
// requireActive, when true, returns nil for a failed session just as it
// would for a missing one.
func (m *Manager) GetSession(id string, requireActive bool) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if requireActive && s.isFailed() {
		return nil
	}
	s.touch()
	return s
}

// Subscribe attaches sub to session id's live event feed, replaying its
// backlog first. Returns false if the session is missing or its subscriber
// cap is exceeded.
func (m *Manager) Subscribe(id string, sub Subscriber) bool {
	s := m.GetSession(id, false)
	if s == nil {
		return false
	}
	return s.subscribe(sub)
}

// HasCapacity reports whether session id can accept another subscriber
// without exceeding its per-session connection cap. Returns false if the
// session does not exist.
func (m *Manager) HasCapacity(id string) bool {
	s := m.GetSession(id, false)
	if s == nil {
		return false
	}
	return s.subscriberCount() < s.maxSubs
}

// Unsubscribe detaches and closes subscriberID from session id. Idempotent;
// a no-op if the session or subscriber no longer exists.
func (m *Manager) Unsubscribe(id, subscriberID string) {
	s := m.GetSession(id, false)
	if s == nil {
		return
	}
	s.unsubscribe(subscriberID)
}

// EmitToSession updates activity and analysis state, then feeds the
// session's Intelligent Buffer and Progress Tracker. Returns false if the
// session does not exist.
func (m *Manager) EmitToSession(id string, evt semparse.StreamingEvent) bool {
	s := m.GetSession(id, false)
	if s == nil {
		return false
	}
	s.touch()
	s.applyEvent(evt)
	s.tracker.Observe(evt.Content)
	s.buf.Enqueue(evt)
	return true
}

// StartAnalysis marks session id's analysis as running.
func (m *Manager) StartAnalysis(id string) {
	if s := m.GetSession(id, false); s != nil {
		s.startAnalysis()
	}
}

// CompleteAnalysis marks session id's analysis complete, forcing progress
// to 1.0 and flushing any pending buffered events.
func (m *Manager) CompleteAnalysis(id string) {
	if s := m.GetSession(id, false); s != nil {
		s.completeAnalysis()
	}
}

// FailAnalysis marks session id's analysis failed with reason, entering the
// tracker's absorbing ERROR phase.
func (m *Manager) FailAnalysis(id, reason string) {
	if s := m.GetSession(id, false); s != nil {
		s.failAnalysis(reason)
	}
}

// DestroySession closes all subscribers, drops the session's buffer and
// backlog, and removes it from the map.
func (m *Manager) DestroySession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	s.closeAll()

	m.metricsMu.Lock()
	m.totalDestroyed++
	m.metricsMu.Unlock()
}

// SessionCount reports the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sweepExpired destroys sessions idle past SessionTTL. Scheduled on the
// cron engine at SweepInterval.
func (m *Manager) sweepExpired() {
	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.idleFor() > m.limits.SessionTTL {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.DestroySession(id)
	}
}

// publishMetrics logs the running session-lifecycle counters. Scheduled on
// the cron engine at MetricsSweepInterval; a future metrics exporter can
// replace the slog.Info call with a real sink without touching the
// scheduling.
func (m *Manager) publishMetrics() {
	m.mu.RLock()
	live := len(m.sessions)
	m.mu.RUnlock()

	m.metricsMu.Lock()
	created, destroyed := m.totalCreated, m.totalDestroyed
	m.metricsMu.Unlock()

	slog.Info("session manager metrics", "live_sessions", live, "total_created", created, "total_destroyed", destroyed)
}

// ShutdownConnections notifies every subscriber of every live session that
// the server process is shutting down, so SSE connections can send a
// server_shutdown frame and terminate instead of being torn down silently
// when the HTTP server stops accepting writes. Call this before Shutdown,
// and before the owning process exits, so no client is left waiting on the
// stale-connection timeout for a server that is already gone.
func (m *Manager) ShutdownConnections() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.shutdownAll()
	}
}

// Shutdown stops both maintenance sweeps without destroying live sessions.
func (m *Manager) Shutdown() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}
