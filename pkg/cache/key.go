package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// CacheKey derives the deterministic content-relevant hash for tool+args,
// excluding pagination/continuation fields so identical analysis requests
// collide regardless of how the caller paginates the result.
func CacheKey(tool string, args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		if contentRelevantExclusions[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filtered := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		filtered[k] = args[k]
	}

	payload, _ := json.Marshal(struct {
		Tool string                 `json:"tool"`
		Args map[string]interface{} `json:"args"`
	}{Tool: tool, Args: filtered})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// NewContextID mints a short opaque token for a new cache write.
func NewContextID() string {
	return uuid.NewString()
}
