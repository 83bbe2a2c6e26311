package toolhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cache"
	"github.com/ejmockler/brutalist-mcp-go/pkg/catalog"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/orchestrator"
)

// fakeRunner lets tests control the Orchestrator's outcome without
// spawning real CLI subprocesses.
type fakeRunner struct {
	result orchestrator.Result
	err    error
	calls  []orchestrator.Request
}

func (f *fakeRunner) Run(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return orchestrator.Result{}, f.err
	}
	return f.result, nil
}

// fakeCache is an in-memory CacheStore stand-in.
type fakeCache struct {
	byKey     map[string][]byte
	keyToCtx  map[string]string
	byContext map[string]cache.Entry
	nextID    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		byKey:     map[string][]byte{},
		keyToCtx:  map[string]string{},
		byContext: map[string]cache.Entry{},
	}
}

func (f *fakeCache) Get(cacheKey, sessionID string) ([]byte, bool) {
	v, ok := f.byKey[cacheKey]
	return v, ok
}

func (f *fakeCache) GetEntryByContextID(contextID, sessionID string) (cache.Entry, bool) {
	e, ok := f.byContext[contextID]
	return e, ok
}

func (f *fakeCache) Set(requestParams map[string]interface{}, content []byte, existingCacheKey, sessionID, requestID string, history []cache.ConversationTurn) string {
	f.nextID++
	contextID := "ctx-" + requestID
	f.byKey[existingCacheKey] = content
	f.keyToCtx[existingCacheKey] = contextID
	f.byContext[contextID] = cache.Entry{
		ContextID:           contextID,
		SessionID:           sessionID,
		Content:             content,
		RequestParams:       requestParams,
		ConversationHistory: history,
	}
	return contextID
}

func (f *fakeCache) UpdateByContextID(contextID string, newContent []byte, newHistory []cache.ConversationTurn, sessionID string) error {
	e := f.byContext[contextID]
	e.Content = newContent
	e.ConversationHistory = newHistory
	f.byContext[contextID] = e
	return nil
}

func (f *fakeCache) FindContextIDForKey(cacheKey string) (string, bool) {
	id, ok := f.keyToCtx[cacheKey]
	return id, ok
}

func newTestHandler(orch Runner, cacheStore CacheStore) *Handler {
	return New(catalog.Build(), orch, cacheStore, nil, config.DefaultPaginationConfig(), "anonymous", false)
}

func TestHandleRejectsWhenSubprocess(t *testing.T) {
	h := New(catalog.Build(), &fakeRunner{}, newFakeCache(), nil, config.DefaultPaginationConfig(), "anonymous", true)
	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subprocess")
}

func TestHandleRejectsUnknownTool(t *testing.T) {
	h := newTestHandler(&fakeRunner{}, newFakeCache())
	_, err := h.Handle(context.Background(), "roast_nonexistent", map[string]interface{}{})
	require.Error(t, err)
}

func TestHandleRejectsResumeWithoutContextID(t *testing.T) {
	h := newTestHandler(&fakeRunner{}, newFakeCache())
	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"targetPath": ".",
		"resume":     true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context_id")
}

func TestHandleExecutesAndCachesOnFirstCall(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "full analysis text"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	out, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.NoError(t, err)
	assert.Contains(t, out, "Context ID:")
	assert.Contains(t, out, "full analysis text")
	assert.Len(t, runner.calls, 1)
	assert.Equal(t, "codebase", runner.calls[0].AnalysisType)
	assert.Equal(t, ".", runner.calls[0].PrimaryArg)
	assert.Equal(t, ".", runner.calls[0].WorkingDir)
}

func TestHandleCacheHitSkipsExecution(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "first result"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	args := map[string]interface{}{"targetPath": "."}
	_, err := h.Handle(context.Background(), "roast_codebase", args)
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)

	out, err := h.Handle(context.Background(), "roast_codebase", args)
	require.NoError(t, err)
	assert.Contains(t, out, "first result")
	assert.Len(t, runner.calls, 1, "second call should hit cache, not re-invoke the orchestrator")
}

func TestHandleForceRefreshBypassesCache(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "result one"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	args := map[string]interface{}{"targetPath": "."}
	_, err := h.Handle(context.Background(), "roast_codebase", args)
	require.NoError(t, err)

	runner.result = orchestrator.Result{Synthesis: "result two"}
	args["force_refresh"] = true
	out, err := h.Handle(context.Background(), "roast_codebase", args)
	require.NoError(t, err)
	assert.Contains(t, out, "result two")
	assert.Len(t, runner.calls, 2)
}

func TestHandleContextIDPaginationModeSkipsExecution(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "analysis output"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)

	var contextID string
	for id := range c.byContext {
		contextID = id
	}
	require.NotEmpty(t, contextID)

	out, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"context_id": contextID,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "analysis output")
	assert.Len(t, runner.calls, 1, "pagination mode must not re-run analysis")
}

func TestHandleContextIDWithUnknownIDFails(t *testing.T) {
	h := newTestHandler(&fakeRunner{}, newFakeCache())
	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"context_id": "nonexistent",
	})
	require.Error(t, err)
}

func TestHandleContinuationModeRequiresNewPrimaryArg(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "first"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.NoError(t, err)

	var contextID string
	for id := range c.byContext {
		contextID = id
	}

	_, err = h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"context_id": contextID,
		"resume":     true,
	})
	require.Error(t, err)
}

func TestHandleContinuationModeReExecutesAndUpdatesCache(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{Synthesis: "turn one"}}
	c := newFakeCache()
	h := newTestHandler(runner, c)

	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.NoError(t, err)

	var contextID string
	for id := range c.byContext {
		contextID = id
	}

	runner.result = orchestrator.Result{Synthesis: "turn two"}
	out, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"context_id": contextID,
		"resume":     true,
		"targetPath": "./other",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "turn two")
	require.Len(t, runner.calls, 2)
	assert.Equal(t, ".", runner.calls[1].PrimaryArg, "continuation reuses the original request's primary arg")
	assert.Contains(t, runner.calls[1].Context, "turn one")

	updated := c.byContext[contextID]
	assert.Len(t, updated.ConversationHistory, 2)
}

func TestHandleNoCandidatesMapsToSanitizedError(t *testing.T) {
	runner := &fakeRunner{err: orchestrator.ErrNoCandidates{}}
	h := newTestHandler(runner, newFakeCache())

	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{"targetPath": "."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No CLI agents available")
}

func TestHandleVerboseIncludesPerCriticSummary(t *testing.T) {
	runner := &fakeRunner{result: orchestrator.Result{
		Synthesis: "doc",
		Agents: []orchestrator.AgentResponse{
			{Agent: "claude", Success: true},
			{Agent: "codex", Success: false, Classification: "timeout"},
		},
	}}
	h := newTestHandler(runner, newFakeCache())

	out, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{
		"targetPath": ".",
		"verbose":    true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "codex")
}

func TestHandleRequiresPrimaryArg(t *testing.T) {
	h := newTestHandler(&fakeRunner{result: orchestrator.Result{Synthesis: "x"}}, newFakeCache())
	_, err := h.Handle(context.Background(), "roast_codebase", map[string]interface{}{})
	require.Error(t, err)
}
