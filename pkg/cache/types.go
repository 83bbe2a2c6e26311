// Package cache implements the Response Cache: a dual-keyed
// store (cacheKey and contextId) over analysis results, with zstd
// compression above a size threshold and TTL-based eviction.
package cache

import "time"

// Entry is one cached analysis result.
type Entry struct {
	CacheKey            string
	ContextID            string
	SessionID           string
	Content              []byte // decompressed on read
	Compressed           bool
	RequestParams        map[string]interface{}
	ConversationHistory  []ConversationTurn
	CreatedAt            time.Time
	ExpiresAt            time.Time
}

// ConversationTurn is one request/response pair retained for continuation.
type ConversationTurn struct {
	Request  map[string]interface{}
	Response string
	At       time.Time
}

// contentRelevantExclusions names the args excluded from cacheKey
// derivation because they govern pagination/continuation, not content
//.
var contentRelevantExclusions = map[string]bool{
	"context_id":    true,
	"resume":        true,
	"offset":        true,
	"limit":         true,
	"cursor":        true,
	"force_refresh": true,
}
