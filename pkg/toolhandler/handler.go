package toolhandler

import (
	"context"
	"errors"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/apierr"
	"github.com/ejmockler/brutalist-mcp-go/pkg/cache"
	"github.com/ejmockler/brutalist-mcp-go/pkg/catalog"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/orchestrator"
	"github.com/ejmockler/brutalist-mcp-go/pkg/paginate"
	"github.com/ejmockler/brutalist-mcp-go/pkg/session"
	"github.com/google/uuid"
)

// Handler composes the per-tool pipeline: recursion guard,
// pagination/continuation routing, cache lookups, Orchestrator dispatch,
// and paginated response formatting.
type Handler struct {
	tools      map[string]catalog.ToolConfig
	orch       Runner
	cache      CacheStore
	sessions   *session.Manager // optional; nil skips live progress streaming
	pagination config.PaginationConfig
	anonymous  string
	subprocess bool
}

// New constructs a Handler. sessions may be nil if the transport has no
// SSE streaming wired up (e.g. stdio-only mode).
func New(tools []catalog.ToolConfig, orch Runner, cacheStore CacheStore, sessions *session.Manager, pagination config.PaginationConfig, anonymousSessionID string, subprocess bool) *Handler {
	return &Handler{
		tools:      catalog.ByName(tools),
		orch:       orch,
		cache:      cacheStore,
		sessions:   sessions,
		pagination: pagination,
		anonymous:  anonymousSessionID,
		subprocess: subprocess,
	}
}

// Handle runs one tool invocation's full pipeline and returns the final
// response text, or a sanitized *apierr.Error.
func (h *Handler) Handle(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	// Step 1: recursion guard.
	if h.subprocess {
		return "", apierr.Recursion()
	}

	tool, ok := h.tools[toolName]
	if !ok {
		return "", apierr.Newf(apierr.KindGeneric, "unknown tool %q", toolName)
	}

	// Step 2: session and pagination extraction.
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		sessionID = h.anonymous
	}
	params := paginate.ExtractPaginationParams(normalizePagination(args), h.pagination)
	contextID := stringArg(args, "context_id")
	resume := boolArg(args, "resume")
	forceRefresh := boolArg(args, "force_refresh")
	verbose := boolArg(args, "verbose")
	requestID := uuid.NewString()

	// Step 3: resume validation.
	if resume && contextID == "" {
		return "", apierr.MissingContextID()
	}

	// Step 4: context_id path.
	if contextID != "" && !forceRefresh {
		entry, found := h.cache.GetEntryByContextID(contextID, sessionID)
		if !found {
			return "", apierr.ContextNotFound()
		}

		if !resume {
			// Pagination mode: no analysis, just paginate the cached content.
			return formatResponse(string(entry.Content), params, h.pagination, contextID, verbose, nil), nil
		}

		// Continuation mode: require a new prompt in the primary arg.
		newPrompt := stringArg(args, tool.PrimaryArgField)
		if newPrompt == "" {
			return "", apierr.Newf(apierr.KindMissingContext, "a new value for %q is required to continue this conversation", tool.PrimaryArgField)
		}

		primaryArg := stringArg(entry.RequestParams, tool.PrimaryArgField)
		combinedContext := renderHistory(entry.ConversationHistory, tool.PrimaryArgField) + "User: " + newPrompt

		result, err := h.execute(ctx, tool, primaryArg, combinedContext, args, sessionID, requestID)
		if err != nil {
			return "", err
		}

		updatedHistory := append(append([]cache.ConversationTurn{}, entry.ConversationHistory...),
			cache.ConversationTurn{Request: args, Response: result.Synthesis, At: time.Now()})
		_ = h.cache.UpdateByContextID(contextID, []byte(result.Synthesis), updatedHistory, sessionID)

		return formatResponse(result.Synthesis, params, h.pagination, contextID, verbose, &result), nil
	} else if contextID != "" && forceRefresh {
		// force_refresh bypasses the cached entry; fall through to the
		// cache-key path below and mint a fresh contextId.
		contextID = ""
	}

	// Step 5: cache-key path.
	cacheKey := cache.CacheKey(tool.Name, filterArgs(args, tool.CacheKeyFields))
	if !forceRefresh {
		if content, hit := h.cache.Get(cacheKey, sessionID); hit {
			existingContextID, _ := h.cache.FindContextIDForKey(cacheKey)
			return formatResponse(string(content), params, h.pagination, existingContextID, verbose, nil), nil
		}
	}

	// Step 6: execute.
	primaryArg := stringArg(args, tool.PrimaryArgField)
	if primaryArg == "" {
		return "", apierr.Newf(apierr.KindGeneric, "%q is required", tool.PrimaryArgField)
	}
	contextText := stringArg(args, "context")

	result, err := h.execute(ctx, tool, primaryArg, contextText, args, sessionID, requestID)
	if err != nil {
		return "", err
	}

	// Step 7: write cache.
	history := []cache.ConversationTurn{{Request: args, Response: result.Synthesis, At: time.Now()}}
	newContextID := h.cache.Set(args, []byte(result.Synthesis), cacheKey, sessionID, requestID, history)

	// Step 8: format response.
	return formatResponse(result.Synthesis, params, h.pagination, newContextID, verbose, &result), nil
}

func (h *Handler) execute(ctx context.Context, tool catalog.ToolConfig, primaryArg, analysisContext string, args map[string]interface{}, sessionID, requestID string) (orchestrator.Result, error) {
	workingDir := ""
	if tool.PrimaryArgKind == catalog.ArgKindPath {
		workingDir = primaryArg
	}

	h.startSession(sessionID, tool.AnalysisType)

	req := orchestrator.Request{
		AnalysisType: tool.AnalysisType,
		PrimaryArg:   primaryArg,
		SystemPrompt: systemPromptFor(tool.AnalysisType),
		Context:      analysisContext,
		WorkingDir:   workingDir,
		SelectedCLIs: stringSliceArg(args, "clis"),
		Models:       stringMapArg(args, "models"),
		SessionID:    sessionID,
		RequestID:    requestID,
		OnLine:       h.onLine(sessionID),
		OnLifecycle:  h.onLifecycle(sessionID),
	}

	result, err := h.orch.Run(ctx, req)
	if err != nil {
		var noCandidates orchestrator.ErrNoCandidates
		if errors.As(err, &noCandidates) {
			h.failSession(sessionID, apierr.NoCLIs().UserMessage())
			return orchestrator.Result{}, apierr.NoCLIs()
		}
		h.failSession(sessionID, err.Error())
		return orchestrator.Result{}, apierr.New(apierr.KindGeneric, err)
	}

	h.completeSession(sessionID)
	return result, nil
}
