package cache

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// codec wraps a reusable, thread-safe zstd encoder/decoder pair, following
// the shared-encoder/decoder pattern used elsewhere in the example pack for
// in-memory compressed stores.
type codec struct {
	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("cache: create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("cache: create zstd decoder: %w", err)
	}
	return &codec{encoder: enc, decoder: dec}, nil
}

func (c *codec) compress(data []byte) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encoder.EncodeAll(data, nil)
}

func (c *codec) decompress(data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decoder.DecodeAll(data, nil)
}
