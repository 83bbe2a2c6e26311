// Package toolhandler implements the per-tool request pipeline:
// recursion guard, pagination/continuation routing, cache
// lookups, Orchestrator dispatch, and response formatting via the
// Paginator. It is glue across pkg/cache, pkg/orchestrator and
// pkg/paginate — the packages it composes hold the actual logic.
package toolhandler

import (
	"context"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cache"
	"github.com/ejmockler/brutalist-mcp-go/pkg/orchestrator"
)

// Runner is the subset of *orchestrator.Orchestrator the Handler depends
// on, narrowed to an interface so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error)
}

// CacheStore is the subset of *cache.Store the Handler depends on.
type CacheStore interface {
	Get(cacheKey, sessionID string) ([]byte, bool)
	GetEntryByContextID(contextID, sessionID string) (cache.Entry, bool)
	Set(requestParams map[string]interface{}, content []byte, existingCacheKey, sessionID, requestID string, history []cache.ConversationTurn) string
	UpdateByContextID(contextID string, newContent []byte, newHistory []cache.ConversationTurn, sessionID string) error
	FindContextIDForKey(cacheKey string) (string, bool)
}
