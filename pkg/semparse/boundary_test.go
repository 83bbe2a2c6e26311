package semparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmenterParagraphSplit(t *testing.T) {
	s := newSegmenter(nil)
	segs := s.feed("first paragraph.\n\nsecond paragraph.")
	assert.Equal(t, []string{"first paragraph."}, segs)
	assert.Equal(t, "second paragraph.", s.flush())
}

func TestSegmenterSentenceSplit(t *testing.T) {
	s := newSegmenter(nil)
	segs := s.feed("First sentence. Second sentence starts here")
	assert.Equal(t, []string{"First sentence."}, segs)
	assert.Equal(t, "Second sentence starts here", s.flush())
}

func TestSegmenterKeepsFencedBlockIntact(t *testing.T) {
	s := newSegmenter(nil)
	chunk := "intro text\n\n```go\nfunc main() {}\n```\n\nmore text."
	segs := s.feed(chunk)
	assert.Contains(t, segs, "intro text")

	var foundFence bool
	for _, seg := range segs {
		if seg == "```go\nfunc main() {}\n```" {
			foundFence = true
		}
	}
	assert.True(t, foundFence, "fenced block should be kept intact as one segment, got %v", segs)
}

func TestSegmenterIncompleteFenceWaitsForMoreInput(t *testing.T) {
	s := newSegmenter(nil)
	segs := s.feed("```go\nfunc main() {\n")
	assert.Empty(t, segs)

	segs = s.feed("}\n```\n\ndone.")
	var foundFence bool
	for _, seg := range segs {
		if seg == "```go\nfunc main() {\n}\n```" {
			foundFence = true
		}
	}
	assert.True(t, foundFence, "expected completed fence across feeds, got %v", segs)
}

func TestSegmenterOverflowForcesFlush(t *testing.T) {
	overflowed := false
	s := newSegmenter(func() { overflowed = true })

	huge := make([]byte, maxTrailingBuffer+100)
	for i := range huge {
		huge[i] = 'x'
	}
	segs := s.feed(string(huge))
	assert.True(t, overflowed)
	assert.Len(t, segs, 1)
}
