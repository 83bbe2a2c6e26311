package session

import (
	"sync"
	"testing"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/buffer"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	id string

	mu        sync.Mutex
	batches   [][]buffer.Event
	closed    bool
	completed bool
	shutdown  bool
}

func newFakeSubscriber(id string) *fakeSubscriber { return &fakeSubscriber{id: id} }

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Deliver(batch []buffer.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) Complete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
}

func (f *fakeSubscriber) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
}

func (f *fakeSubscriber) deliveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeSubscriber) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSubscriber) isCompleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *fakeSubscriber) isShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func testManager() *Manager {
	limits := config.DefaultSessionLimits()
	limits.SweepInterval = time.Hour
	limits.MetricsSweepInterval = time.Hour
	return NewManager(limits)
}

func TestCreateSessionRejectsDuplicateID(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("dup", nil, "codebase")
	require.NoError(t, err)

	_, err = m.CreateSession("dup", nil, "codebase")
	assert.ErrorIs(t, err, ErrDuplicateSession)
}

func TestGetSessionUpdatesLastActivity(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	s, err := m.CreateSession("s1", nil, "codebase")
	require.NoError(t, err)

	before := s.snapshot().LastActivity
	time.Sleep(2 * time.Millisecond)
	got := m.GetSession("s1", false)
	require.NotNil(t, got)
	assert.True(t, got.snapshot().LastActivity.After(before))
}

func TestGetSessionRequireActiveExcludesFailed(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s2", nil, "codebase")
	require.NoError(t, err)
	m.FailAnalysis("s2", "boom")

	assert.Nil(t, m.GetSession("s2", true))
	assert.NotNil(t, m.GetSession("s2", false))
}

func TestSubscribeEnforcesPerSessionCap(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s3", nil, "codebase")
	require.NoError(t, err)

	limits := config.DefaultSessionLimits()
	for i := 0; i < limits.MaxConnectionsPerSession; i++ {
		ok := m.Subscribe("s3", newFakeSubscriber(string(rune('a'+i))))
		assert.True(t, ok)
	}
	assert.False(t, m.Subscribe("s3", newFakeSubscriber("overflow")))
}

func TestSubscribeReplaysBacklogBeforeLive(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s4", nil, "codebase")
	require.NoError(t, err)

	m.EmitToSession("s4", semparse.StreamingEvent{
		Agent: "claude", ContentType: semparse.ContentFinding, Severity: semparse.SeverityCritical,
		Content: "bug", Timestamp: time.Now(),
	})

	sub := newFakeSubscriber("late")
	ok := m.Subscribe("s4", sub)
	require.True(t, ok)

	assert.GreaterOrEqual(t, sub.deliveredCount(), 1)
}

func TestUnsubscribeClosesSubscriber(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s5", nil, "codebase")
	require.NoError(t, err)

	sub := newFakeSubscriber("x")
	require.True(t, m.Subscribe("s5", sub))

	m.Unsubscribe("s5", "x")
	assert.True(t, sub.isClosed())

	m.Unsubscribe("s5", "x")
	m.Unsubscribe("s5", "nonexistent")
}

func TestEmitToSessionUpdatesAnalysisState(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	s, err := m.CreateSession("s6", nil, "codebase")
	require.NoError(t, err)

	m.EmitToSession("s6", semparse.StreamingEvent{Agent: "claude", Type: semparse.EventAgentStart, ContentType: semparse.ContentProgress, Phase: semparse.PhaseStarting, Content: "starting", Timestamp: time.Now()})
	m.EmitToSession("s6", semparse.StreamingEvent{Agent: "claude", ContentType: semparse.ContentFinding, Severity: semparse.SeverityHigh, Content: "xss found", Timestamp: time.Now()})
	m.EmitToSession("s6", semparse.StreamingEvent{Agent: "codex", Type: semparse.EventAgentError, ContentType: semparse.ContentError, Content: "crashed", Timestamp: time.Now()})

	snap := s.snapshot()
	assert.True(t, snap.Analysis.ActiveAgents["claude"])
	assert.True(t, snap.Analysis.FailedAgents["codex"])
	assert.Equal(t, 1, snap.Analysis.ErrorsCount)
	assert.Len(t, snap.Analysis.Findings, 1)
}

func TestCompleteAnalysisSetsFullProgress(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	s, err := m.CreateSession("s7", nil, "codebase")
	require.NoError(t, err)

	m.CompleteAnalysis("s7")
	snap := s.snapshot()
	assert.Equal(t, StatusCompleted, snap.Analysis.Status)
	assert.Equal(t, 1.0, snap.Analysis.OverallProgress)
}

func TestCompleteAnalysisNotifiesSubscribers(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s7b", nil, "codebase")
	require.NoError(t, err)

	sub := newFakeSubscriber("z")
	require.True(t, m.Subscribe("s7b", sub))

	m.CompleteAnalysis("s7b")
	assert.True(t, sub.isCompleted())
}

func TestFailAnalysisNotifiesSubscribers(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s7c", nil, "codebase")
	require.NoError(t, err)

	sub := newFakeSubscriber("w")
	require.True(t, m.Subscribe("s7c", sub))

	m.FailAnalysis("s7c", "boom")
	assert.True(t, sub.isCompleted())
}

func TestShutdownConnectionsNotifiesAllLiveSessions(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s7d", nil, "codebase")
	require.NoError(t, err)
	_, err = m.CreateSession("s7e", nil, "codebase")
	require.NoError(t, err)

	subD := newFakeSubscriber("d")
	subE := newFakeSubscriber("e")
	require.True(t, m.Subscribe("s7d", subD))
	require.True(t, m.Subscribe("s7e", subE))

	m.ShutdownConnections()
	assert.True(t, subD.isShutdown())
	assert.True(t, subE.isShutdown())
}

func TestDestroySessionRemovesItAndClosesSubscribers(t *testing.T) {
	m := testManager()
	defer m.Shutdown()

	_, err := m.CreateSession("s8", nil, "codebase")
	require.NoError(t, err)

	sub := newFakeSubscriber("y")
	require.True(t, m.Subscribe("s8", sub))

	m.DestroySession("s8")
	assert.True(t, sub.isClosed())
	assert.Nil(t, m.GetSession("s8", false))
}

func TestSweepExpiredDestroysIdleSessions(t *testing.T) {
	limits := config.DefaultSessionLimits()
	limits.SessionTTL = time.Millisecond
	limits.SweepInterval = time.Hour
	limits.MetricsSweepInterval = time.Hour
	m := NewManager(limits)
	defer m.Shutdown()

	_, err := m.CreateSession("s9", nil, "codebase")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	m.sweepExpired()
	assert.Nil(t, m.GetSession("s9", false))
}
