package cache

import (
	"testing"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	cfg := config.DefaultCacheConfig()
	cfg.CompressionThreshold = 16
	s, err := NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func TestSetAndGetRoundTrip(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "brutalist_critique_codebase", "target_path": "/repo"}

	contextID := s.Set(params, []byte("small"), "", "sess-1", "req-1", nil)
	assert.NotEmpty(t, contextID)

	key := CacheKey("brutalist_critique_codebase", params)
	content, ok := s.Get(key, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "small", string(content))
}

func TestGetReturnsFalseForWrongSession(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "t", "x": 1}
	s.Set(params, []byte("data"), "", "owner", "req", nil)

	key := CacheKey("t", params)
	_, ok := s.Get(key, "someone-else")
	assert.False(t, ok)
}

func TestSetCompressesAboveThreshold(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "t", "x": 1}
	large := make([]byte, 1024)
	for i := range large {
		large[i] = byte('a' + i%26)
	}

	contextID := s.Set(params, large, "", "sess", "req", nil)
	content, ok := s.GetByContextID(contextID, "sess")
	require.True(t, ok)
	assert.Equal(t, large, content)
}

func TestUpdateByContextIDRejectsSessionMismatch(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "t", "x": 1}
	contextID := s.Set(params, []byte("v1"), "", "owner", "req", nil)

	err := s.UpdateByContextID(contextID, []byte("v2"), nil, "intruder")
	assert.ErrorIs(t, err, ErrSessionMismatch)
}

func TestUpdateByContextIDPreservesCreatedAt(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "t", "x": 1}
	contextID := s.Set(params, []byte("v1"), "", "owner", "req", nil)

	s.mu.RLock()
	entry := s.byContextID[contextID]
	createdAt := entry.CreatedAt
	s.mu.RUnlock()

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.UpdateByContextID(contextID, []byte("v2"), nil, "owner"))

	s.mu.RLock()
	updated := s.byContextID[contextID]
	s.mu.RUnlock()
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.True(t, updated.ExpiresAt.After(createdAt))
}

func TestFindContextIdForKeyAndCreateAlias(t *testing.T) {
	s := testStore(t)
	params := map[string]interface{}{"tool": "t", "x": 1}
	contextID := s.Set(params, []byte("v1"), "", "owner", "req", nil)

	found, ok := s.FindContextIDForKey(CacheKey("t", params))
	require.True(t, ok)
	assert.Equal(t, contextID, found)

	s.CreateAlias(contextID, "manual-alias-key")
	aliased, ok := s.FindContextIDForKey("manual-alias-key")
	require.True(t, ok)
	assert.Equal(t, contextID, aliased)
}

func TestExpiredEntryEvictedOnRead(t *testing.T) {
	cfg := config.DefaultCacheConfig()
	cfg.TTL = time.Millisecond
	cfg.SweepInterval = time.Hour
	s, err := NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	params := map[string]interface{}{"tool": "t", "x": 1}
	key := CacheKey("t", params)
	s.Set(params, []byte("v1"), "", "owner", "req", nil)

	time.Sleep(5 * time.Millisecond)
	_, ok := s.Get(key, "owner")
	assert.False(t, ok)
}

func TestCacheKeyExcludesPaginationFields(t *testing.T) {
	base := map[string]interface{}{"target_path": "/repo", "offset": 0}
	withCursor := map[string]interface{}{"target_path": "/repo", "offset": 500, "cursor": "offset:500"}

	assert.Equal(t, CacheKey("tool", base), CacheKey("tool", withCursor))
}

func TestCacheKeyDiffersOnContentArgs(t *testing.T) {
	a := map[string]interface{}{"target_path": "/repo"}
	b := map[string]interface{}{"target_path": "/other"}
	assert.NotEqual(t, CacheKey("tool", a), CacheKey("tool", b))
}
