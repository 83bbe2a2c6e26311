package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/robfig/cron/v3"
)

// ErrSessionMismatch is returned when a cache lookup or update is attempted
// with a sessionId that does not own the entry.
var ErrSessionMismatch = errors.New("cache: session mismatch")

// Store is the process-wide Response Cache. One instance per process.
type Store struct {
	cfg   config.CacheConfig
	codec *codec

	mu          sync.RWMutex
	byCacheKey  map[string]*Entry
	byContextID map[string]*Entry
	aliases     map[string]string // cacheKey -> contextId

	sweeper *cron.Cron
}

// NewStore constructs a Store and starts its periodic TTL sweep on a
// robfig/cron schedule rather than a bare time.Ticker goroutine.
func NewStore(cfg config.CacheConfig) (*Store, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	s := &Store{
		cfg:         cfg,
		codec:       c,
		byCacheKey:  make(map[string]*Entry),
		byContextID: make(map[string]*Entry),
		aliases:     make(map[string]string),
		sweeper:     cron.New(),
	}
	if _, err := s.sweeper.AddFunc(everySpec(cfg.SweepInterval), s.sweepExpired); err != nil {
		return nil, fmt.Errorf("cache: schedule sweep: %w", err)
	}
	s.sweeper.Start()
	return s, nil
}

// everySpec renders a robfig/cron "@every" schedule spec for interval.
func everySpec(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

// Get returns the decompressed content for cacheKey if sessionId matches
// and the entry has not expired.
func (s *Store) Get(cacheKey, sessionID string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.byCacheKey[cacheKey]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.readEntry(entry, sessionID)
}

// GetByContextID returns the decompressed content for contextId if
// sessionId matches and the entry has not expired.
func (s *Store) GetByContextID(contextID, sessionID string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.byContextID[contextID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.readEntry(entry, sessionID)
}

func (s *Store) readEntry(entry *Entry, sessionID string) ([]byte, bool) {
	if entry.SessionID != sessionID {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		s.evict(entry)
		return nil, false
	}

	if !entry.Compressed {
		return entry.Content, true
	}
	raw, err := s.codec.decompress(entry.Content)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// GetEntryByContextID returns a copy of the full entry for contextID
// (decompressed, with requestParams and conversationHistory intact) if
// sessionId matches and the entry has not expired. Used by the Tool
// Handler's continuation mode, which needs the original requestParams and
// prior conversation turns, not just the cached content bytes.
func (s *Store) GetEntryByContextID(contextID, sessionID string) (Entry, bool) {
	s.mu.RLock()
	entry, ok := s.byContextID[contextID]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}

	content, ok := s.readEntry(entry, sessionID)
	if !ok {
		return Entry{}, false
	}

	out := *entry
	out.Content = content
	out.Compressed = false
	return out, true
}

// Set writes content under a new or existing cache entry. If
// existingCacheKey is non-empty, that key is reused (updating the existing
// entry's content) rather than minting a fresh one; otherwise a new
// contextId is minted and aliased to cacheKey.
func (s *Store) Set(requestParams map[string]interface{}, content []byte, existingCacheKey, sessionID, requestID string, history []ConversationTurn) string {
	cacheKey := existingCacheKey
	if cacheKey == "" {
		if tool, ok := requestParams["tool"].(string); ok {
			cacheKey = CacheKey(tool, requestParams)
		} else {
			cacheKey = requestID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, hasExisting := s.byCacheKey[cacheKey]
	var contextID string
	if hasExisting {
		contextID = existing.ContextID
	} else if aliased, ok := s.aliases[cacheKey]; ok {
		contextID = aliased
	} else {
		contextID = NewContextID()
	}

	stored := content
	compressed := false
	if int64(len(content)) > s.cfg.CompressionThreshold {
		stored = s.codec.compress(content)
		compressed = true
	}

	now := time.Now()
	createdAt := now
	if hasExisting {
		createdAt = existing.CreatedAt
	}

	entry := &Entry{
		CacheKey:            cacheKey,
		ContextID:           contextID,
		SessionID:           sessionID,
		Content:             stored,
		Compressed:          compressed,
		RequestParams:       requestParams,
		ConversationHistory: history,
		CreatedAt:           createdAt,
		ExpiresAt:           now.Add(s.cfg.TTL),
	}

	s.byCacheKey[cacheKey] = entry
	s.byContextID[contextID] = entry
	s.aliases[cacheKey] = contextID

	return contextID
}

// UpdateByContextID replaces an existing entry's content and history in
// place, preserving CreatedAt and refreshing ExpiresAt. Fails if the entry
// is missing or sessionId does not match.
func (s *Store) UpdateByContextID(contextID string, newContent []byte, newHistory []ConversationTurn, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byContextID[contextID]
	if !ok {
		return errors.New("cache: context not found")
	}
	if entry.SessionID != sessionID {
		return ErrSessionMismatch
	}

	stored := newContent
	compressed := false
	if int64(len(newContent)) > s.cfg.CompressionThreshold {
		stored = s.codec.compress(newContent)
		compressed = true
	}

	entry.Content = stored
	entry.Compressed = compressed
	entry.ConversationHistory = newHistory
	entry.ExpiresAt = time.Now().Add(s.cfg.TTL)

	s.byCacheKey[entry.CacheKey] = entry
	s.byContextID[contextID] = entry
	return nil
}

// FindContextIDForKey returns the contextId aliased to cacheKey, if any.
func (s *Store) FindContextIDForKey(cacheKey string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.aliases[cacheKey]
	return id, ok
}

// CreateAlias binds an additional cacheKey to an existing contextId, used
// when an identical analysis is re-requested with the same inputs.
func (s *Store) CreateAlias(contextID, cacheKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[cacheKey] = contextID
	if entry, ok := s.byContextID[contextID]; ok {
		s.byCacheKey[cacheKey] = entry
	}
}

func (s *Store) evict(entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byCacheKey, entry.CacheKey)
	delete(s.byContextID, entry.ContextID)
	delete(s.aliases, entry.CacheKey)
}

func (s *Store) sweepExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.byCacheKey {
		if now.After(entry.ExpiresAt) {
			delete(s.byCacheKey, key)
			delete(s.byContextID, entry.ContextID)
			delete(s.aliases, key)
		}
	}
}

// Shutdown stops the periodic sweep.
func (s *Store) Shutdown() {
	s.sweeper.Stop()
}
