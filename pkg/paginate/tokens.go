// Package paginate implements boundary-aware text chunking plus
// token-budget pagination metadata and cursor handling.
package paginate

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter wraps a lazily-initialized tiktoken encoder, falling back to
// a chars/4 estimate if the encoding cannot be loaded (offline environments
// without the tiktoken BPE data cached).
type tokenCounter struct {
	mu           sync.Mutex
	encoder      *tiktoken.Tiktoken
	charsPerToken float64
}

var (
	globalCounter *tokenCounter
	counterOnce   sync.Once
)

func getTokenCounter(charsPerToken float64) *tokenCounter {
	counterOnce.Do(func() {
		tc := &tokenCounter{charsPerToken: charsPerToken}
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			tc.encoder = enc
		}
		globalCounter = tc
	})
	return globalCounter
}

// CountTokens returns text's token count via tiktoken if available, else a
// chars/4 (configurable) estimate.
func CountTokens(text string, charsPerToken float64) int {
	tc := getTokenCounter(charsPerToken)
	if tc.encoder == nil {
		return int(float64(len(text)) / charsPerToken)
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.encoder.Encode(text, nil, nil))
}
