package buffer

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// backpressureGate smooths low-priority throughput with a token bucket and
// adds a hard reject window once a session's memory estimate crosses its
// threshold, mirroring the token-bucket-plus-stats shape used elsewhere in
// the example pack for rate limiting.
type backpressureGate struct {
	limiter      *rate.Limiter
	rejectWindow time.Duration

	mu     sync.Mutex
	active bool
	until  time.Time
}

// newBackpressureGate allows up to ratePerSecond low-priority events per
// second, bursting up to burst, outside of an active reject window of the
// given duration.
func newBackpressureGate(ratePerSecond float64, burst int, rejectWindow time.Duration) *backpressureGate {
	return &backpressureGate{
		limiter:      rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		rejectWindow: rejectWindow,
	}
}

// AllowLow reports whether a low-priority event may be enqueued right now.
func (g *backpressureGate) AllowLow() bool {
	g.mu.Lock()
	if g.active {
		if time.Now().Before(g.until) {
			g.mu.Unlock()
			return false
		}
		g.active = false
	}
	g.mu.Unlock()

	return g.limiter.Allow()
}

// Trip marks the gate as backpressured for the reject window, immediately
// rejecting every subsequent low-priority insert until it elapses.
func (g *backpressureGate) Trip() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = true
	g.until = time.Now().Add(g.rejectWindow)
}

// Active reports whether the reject window is currently in effect.
func (g *backpressureGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active && time.Now().Before(g.until)
}
