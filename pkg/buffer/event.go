package buffer

import (
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// Event is one flushed, possibly-coalesced unit handed to SSE subscribers
// and retained in the backlog.
type Event struct {
	semparse.StreamingEvent
	Class          Class
	CoalescedCount int
	Timespan       time.Duration
	SeqNum         int64
}
