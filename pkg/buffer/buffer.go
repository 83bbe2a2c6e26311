package buffer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

// bytesPerEvent is the memory estimate used for backpressure accounting
//.
const bytesPerEvent = 500

// FlushFunc receives one flushed, coalesced batch for a session.
type FlushFunc func(batch []Event)

// IntelligentBuffer is the per-session priority queue described in
// One instance belongs to exactly one session.
type IntelligentBuffer struct {
	sessionID string
	onFlush   FlushFunc
	backlog   *Backlog
	gate      *backpressureGate
	limits    config.SessionLimits

	mu      sync.Mutex
	pending map[Class][]semparse.StreamingEvent
	timers  map[Class]*time.Timer
	seq     int64

	queuedMem   int64
	backpressed atomic.Bool
}

// New returns an IntelligentBuffer for one session. onFlush is invoked
// synchronously from whichever goroutine triggers the flush (timer fire or
// inline Enqueue call); callers needing async delivery should make onFlush
// non-blocking themselves (e.g. handing batches to the Session Channel
// Manager's own queues).
func New(sessionID string, limits config.SessionLimits, onFlush FlushFunc) *IntelligentBuffer {
	return &IntelligentBuffer{
		sessionID: sessionID,
		onFlush:   onFlush,
		backlog:   NewBacklog(limits.BacklogCapacity),
		gate:      newBackpressureGate(50, 50, limits.BackpressureWindow),
		limits:    limits,
		pending:   make(map[Class][]semparse.StreamingEvent),
		timers:    make(map[Class]*time.Timer),
	}
}

// Backlog exposes the session's retained-event ring buffer for late
// subscribers (Session Channel Manager catch-up).
func (b *IntelligentBuffer) Backlog() *Backlog {
	return b.backlog
}

// Enqueue classifies evt and applies its BufferingRule: immediate-priority
// events flush as a singleton batch right away; everything else joins its
// class's pending batch, flushing when the batch fills or its delay timer
// fires, whichever comes first.
func (b *IntelligentBuffer) Enqueue(evt semparse.StreamingEvent) {
	class, rule := RuleFor(evt)

	if rule.Priority == PriorityImmediate {
		b.emit(class, []semparse.StreamingEvent{evt})
		return
	}

	if rule.Priority == PriorityLow && !b.gate.AllowLow() {
		return
	}

	b.mu.Lock()
	b.pending[class] = append(b.pending[class], evt)
	b.queuedMem += bytesPerEvent
	full := len(b.pending[class]) >= rule.MaxBatch
	mem := b.queuedMem
	b.mu.Unlock()

	if full {
		b.flushClassTimerFired(class)
	} else {
		b.ensureTimer(class, rule.Delay)
	}

	if mem > b.limits.MaxSessionMemoryBytes {
		b.triggerBackpressure()
	}
}

func (b *IntelligentBuffer) ensureTimer(class Class, delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.timers[class]; exists {
		return
	}
	b.timers[class] = time.AfterFunc(delay, func() {
		b.flushClassTimerFired(class)
	})
}

// flushClassTimerFired drains class's pending batch, whether invoked by a
// timer or because the batch filled.
func (b *IntelligentBuffer) flushClassTimerFired(class Class) {
	b.mu.Lock()
	batch := b.pending[class]
	delete(b.pending, class)
	if t, ok := b.timers[class]; ok {
		t.Stop()
		delete(b.timers, class)
	}
	b.queuedMem -= int64(len(batch)) * bytesPerEvent
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	b.emit(class, batch)
}

func (b *IntelligentBuffer) emit(class Class, raw []semparse.StreamingEvent) {
	_, rule := RuleFor(raw[0])
	var events []Event
	if rule.Coalesce {
		events = coalesce(class, raw)
	} else {
		events = make([]Event, len(raw))
		for i, e := range raw {
			events[i] = Event{StreamingEvent: e, Class: class, CoalescedCount: 1}
		}
	}

	for i := range events {
		events[i].SeqNum = atomic.AddInt64(&b.seq, 1)
		b.backlog.Add(events[i])
	}

	if b.onFlush != nil {
		b.onFlush(events)
	}
}

// triggerBackpressure flips the backpressure flag, drains every queued
// low-priority class immediately, and trips the reject gate.
func (b *IntelligentBuffer) triggerBackpressure() {
	if !b.backpressed.CompareAndSwap(false, true) {
		return
	}
	defer b.backpressed.Store(false)

	b.gate.Trip()

	for class, rule := range rules {
		if rule.Priority != PriorityLow {
			continue
		}
		b.flushClassTimerFired(class)
	}
}

// Backpressured reports whether the session is currently inside a
// backpressure reject window.
func (b *IntelligentBuffer) Backpressured() bool {
	return b.gate.Active()
}

// Flush forces every pending class to drain immediately, regardless of its
// delay timer or batch size. Used on session close/cancellation.
func (b *IntelligentBuffer) Flush() {
	b.mu.Lock()
	classes := make([]Class, 0, len(b.pending))
	for class := range b.pending {
		classes = append(classes, class)
	}
	b.mu.Unlock()

	for _, class := range classes {
		b.flushClassTimerFired(class)
	}
}
