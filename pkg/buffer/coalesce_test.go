package buffer

import (
	"testing"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
	"github.com/stretchr/testify/assert"
)

func ev(agent string, ct semparse.ContentType, content string, t time.Time) semparse.StreamingEvent {
	return semparse.StreamingEvent{Agent: agent, ContentType: ct, Content: content, Timestamp: t}
}

func TestCoalesceSingleEventPassesThrough(t *testing.T) {
	base := time.Now()
	out := coalesce(ClassFinding, []semparse.StreamingEvent{ev("claude", semparse.ContentFinding, "one finding", base)})
	assert.Len(t, out, 1)
	assert.Equal(t, 1, out[0].CoalescedCount)
	assert.Equal(t, "one finding", out[0].Content)
}

func TestCoalesceJoinsUpToThreeWithPipe(t *testing.T) {
	base := time.Now()
	events := []semparse.StreamingEvent{
		ev("claude", semparse.ContentProgress, "a", base),
		ev("claude", semparse.ContentProgress, "b", base.Add(time.Millisecond)),
		ev("claude", semparse.ContentProgress, "c", base.Add(2*time.Millisecond)),
	}
	out := coalesce(ClassAgentProgress, events)
	assert.Len(t, out, 1)
	assert.Equal(t, "a|b|c", out[0].Content)
	assert.Equal(t, 3, out[0].CoalescedCount)
	assert.Equal(t, 2*time.Millisecond, out[0].Timespan)
}

func TestCoalesceElidesBeyondThree(t *testing.T) {
	base := time.Now()
	events := []semparse.StreamingEvent{
		ev("codex", semparse.ContentProgress, "first", base),
		ev("codex", semparse.ContentProgress, "second", base.Add(time.Millisecond)),
		ev("codex", semparse.ContentProgress, "third", base.Add(2*time.Millisecond)),
		ev("codex", semparse.ContentProgress, "fourth", base.Add(3*time.Millisecond)),
		ev("codex", semparse.ContentProgress, "last", base.Add(4*time.Millisecond)),
	}
	out := coalesce(ClassAgentProgress, events)
	assert.Len(t, out, 1)
	assert.Equal(t, 5, out[0].CoalescedCount)
	assert.Contains(t, out[0].Content, "first")
	assert.Contains(t, out[0].Content, "last")
	assert.Contains(t, out[0].Content, "3 similar events")
}

func TestCoalesceGroupsByAgentAndContentType(t *testing.T) {
	base := time.Now()
	events := []semparse.StreamingEvent{
		ev("claude", semparse.ContentProgress, "c1", base),
		ev("codex", semparse.ContentProgress, "x1", base),
		ev("claude", semparse.ContentProgress, "c2", base.Add(time.Millisecond)),
	}
	out := coalesce(ClassAgentProgress, events)
	assert.Len(t, out, 2)
	assert.Equal(t, "c1|c2", out[0].Content)
	assert.Equal(t, "x1", out[1].Content)
}
