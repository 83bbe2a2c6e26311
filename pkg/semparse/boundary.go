package semparse

import (
	"regexp"
	"strings"
)

// maxTrailingBuffer bounds the unresolved trailing fragment kept between
// Feed calls.
const maxTrailingBuffer = 8 * 1024

var sentenceBoundary = regexp.MustCompile(`[.!?][ \t\n]+[A-Z]`)

// segmenter applies the boundary-detection priority order to an incoming
// text stream: fenced code blocks kept intact,
// paragraph splits, then sentence splits, with a bounded trailing buffer
// force-flushed on overflow.
type segmenter struct {
	buf      strings.Builder
	overflow func() // called once per forced overflow flush, for warning logs
}

func newSegmenter(onOverflow func()) *segmenter {
	return &segmenter{overflow: onOverflow}
}

// feed appends chunk to the pending buffer and returns every complete
// segment that can be extracted from it, in order.
func (s *segmenter) feed(chunk string) []string {
	s.buf.WriteString(chunk)
	pending := s.buf.String()
	s.buf.Reset()

	var segments []string
	for {
		seg, rest, ok := extractSegment(pending)
		if !ok {
			break
		}
		segments = append(segments, seg)
		pending = rest
	}

	if len(pending) > maxTrailingBuffer {
		segments = append(segments, pending)
		pending = ""
		if s.overflow != nil {
			s.overflow()
		}
	}

	s.buf.WriteString(pending)
	return segments
}

// flush forcibly returns any remaining trailing fragment as a final segment.
func (s *segmenter) flush() string {
	rest := s.buf.String()
	s.buf.Reset()
	return rest
}

// extractSegment tries, in priority order, to pull one complete segment off
// the front of text: a fenced code block, a paragraph, or a sentence.
func extractSegment(text string) (segment string, rest string, ok bool) {
	if seg, rest, ok := extractFencedBlock(text); ok {
		return seg, rest, true
	}
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		end := idx
		skip := idx + 2
		for skip < len(text) && text[skip] == '\n' {
			skip++
		}
		return text[:end], text[skip:], true
	}
	if loc := sentenceBoundary.FindStringIndex(text); loc != nil {
		split := loc[1] - 1 // keep the leading capital for the next segment
		return strings.TrimRight(text[:split], " \t\n"), text[split:], true
	}
	return "", text, false
}

// extractFencedBlock returns a complete ``` or ~~~ fenced block starting at
// the front of text, if one is fully closed. Partial fences (opened but not
// yet closed) are left in the buffer for more input.
func extractFencedBlock(text string) (string, string, bool) {
	trimmed := strings.TrimLeft(text, " \t")
	leadingWS := len(text) - len(trimmed)

	var fence string
	switch {
	case strings.HasPrefix(trimmed, "```"):
		fence = "```"
	case strings.HasPrefix(trimmed, "~~~"):
		fence = "~~~"
	default:
		return "", text, false
	}

	firstLineEnd := strings.IndexByte(trimmed, '\n')
	if firstLineEnd < 0 {
		return "", text, false
	}

	closeIdx := strings.Index(trimmed[firstLineEnd+1:], "\n"+fence)
	if closeIdx < 0 {
		return "", text, false
	}
	closeIdx += firstLineEnd + 1

	// blockEnd sits right after the closing fence marker itself, excluding
	// whatever follows it (trailing newline, blank line, next paragraph).
	blockEnd := closeIdx + 1 + len(fence)

	segment := text[:leadingWS+blockEnd]
	rest := text[leadingWS+blockEnd:]
	return segment, rest, true
}
