package paginate

import (
	"regexp"
	"strings"
)

// ChunkMetadata describes one chunk's position within the full text.
type ChunkMetadata struct {
	IsComplete     bool
	Truncated      bool
	OriginalLength int
}

// Chunk is one unit of a chunked response.
type Chunk struct {
	Content     string
	StartOffset int
	EndOffset   int
	Metadata    ChunkMetadata
}

var fencedBlock = regexp.MustCompile("(?s)```.*?```")

// Chunker splits text into a sequence of Chunks no larger than limit
// (character units), each overlapping the previous by overlap characters,
// preferring to break at a paragraph, then sentence, then word boundary,
// and never splitting a fenced code block: a cut that would land inside a
// fenced block moves to the block's end, so that chunk can exceed limit.
type Chunker struct {
	limit   int
	overlap int
}

// NewChunker constructs a Chunker. limit and overlap are character counts.
func NewChunker(limit, overlap int) *Chunker {
	if limit <= 0 {
		limit = 1
	}
	if overlap < 0 || overlap >= limit {
		overlap = 0
	}
	return &Chunker{limit: limit, overlap: overlap}
}

// Split chunks text. For text at or below the limit, exactly one complete
// chunk spanning the full text is returned.
func (c *Chunker) Split(text string) []Chunk {
	originalLen := len(text)
	if originalLen <= c.limit {
		return []Chunk{{
			Content:     text,
			StartOffset: 0,
			EndOffset:   originalLen,
			Metadata:    ChunkMetadata{IsComplete: true, Truncated: false, OriginalLength: originalLen},
		}}
	}

	protected := protectedSpans(text)

	var chunks []Chunk
	start := 0
	for start < originalLen {
		end := start + c.limit
		if end >= originalLen {
			end = originalLen
		} else {
			end = adjustBoundary(text, start, end, protected)
		}

		chunks = append(chunks, Chunk{
			Content:     text[start:end],
			StartOffset: start,
			EndOffset:   end,
			Metadata: ChunkMetadata{
				IsComplete:     end >= originalLen,
				Truncated:      end < originalLen,
				OriginalLength: originalLen,
			},
		})

		if end >= originalLen {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// protectedSpans returns the [start,end) byte ranges of every fenced code
// block in text, so chunk boundaries never fall inside one.
func protectedSpans(text string) [][2]int {
	locs := fencedBlock.FindAllStringIndex(text, -1)
	spans := make([][2]int, len(locs))
	for i, l := range locs {
		spans[i] = [2]int{l[0], l[1]}
	}
	return spans
}

func insideProtectedSpan(pos int, spans [][2]int) (int, int, bool) {
	for _, s := range spans {
		if pos > s[0] && pos < s[1] {
			return s[0], s[1], true
		}
	}
	return 0, 0, false
}

// adjustBoundary walks end backward from the naive cut point to the
// nearest paragraph break, then sentence boundary, then word boundary,
// inside the [start, end] window; pushes past a fenced block entirely if
// the naive cut lands inside one.
func adjustBoundary(text string, start, end int, protected [][2]int) int {
	if blockStart, blockEnd, inside := insideProtectedSpan(end, protected); inside {
		if blockEnd <= len(text) {
			return blockEnd
		}
		return blockStart
	}

	window := text[start:end]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return start + idx + 2
	}

	if idx := lastSentenceEnd(window); idx > 0 {
		return start + idx
	}

	if idx := strings.LastIndexAny(window, " \t\n"); idx > 0 {
		return start + idx + 1
	}

	return end
}

var sentenceEndPattern = regexp.MustCompile(`[.!?]\s`)

func lastSentenceEnd(window string) int {
	matches := sentenceEndPattern.FindAllStringIndex(window, -1)
	if len(matches) == 0 {
		return -1
	}
	last := matches[len(matches)-1]
	return last[1]
}
