package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/buffer"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/google/uuid"
)

// batchPayload is the JSON shape of one delivered event batch.
type batchPayload struct {
	SessionID string          `json:"sessionId"`
	Events    []buffer.Event  `json:"events"`
}

// Connection serves one SSE response bound to a single session and
// implements session.Subscriber so the Session Channel Manager can deliver
// Intelligent Buffer flushes to it directly.
type Connection struct {
	id        string
	sessionID string
	fw        *frameWriter
	limits    config.SessionLimits

	deliverCh    chan []buffer.Event
	closeOnce    sync.Once
	done         chan struct{}
	completeCh   chan struct{}
	completeOnce sync.Once
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	eventsSent   atomic.Int64
	lastActivity atomic.Int64 // unix nanos

	onDisconnect func(reason DisconnectReason)
}

// NewConnection upgrades w into an SSE response bound to sessionID and
// sends the initial `connection` frame. The caller must still call Serve
// to run the connection's write loop (heartbeat + delivery) until ctx is
// canceled or the connection is torn down.
func NewConnection(w http.ResponseWriter, sessionID string, limits config.SessionLimits, onDisconnect func(DisconnectReason)) (*Connection, error) {
	fw, err := newFrameWriter(w)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		id:           uuid.NewString(),
		sessionID:    sessionID,
		fw:           fw,
		limits:       limits,
		deliverCh:    make(chan []buffer.Event, 64),
		done:         make(chan struct{}),
		completeCh:   make(chan struct{}),
		shutdownCh:   make(chan struct{}),
		onDisconnect: onDisconnect,
	}
	c.touch()

	fw.writeHeaders()
	c.sendConnectionEvent()
	return c, nil
}

// ID satisfies session.Subscriber.
func (c *Connection) ID() string { return c.id }

// Deliver satisfies session.Subscriber. Non-blocking: a full delivery
// channel drops the batch rather than stalling the broadcasting goroutine,
// since a connection this far behind will shortly be reaped as stale.
func (c *Connection) Deliver(batch []buffer.Event) {
	select {
	case c.deliverCh <- batch:
	default:
		slog.Warn("sse: dropping batch for saturated connection", "connection_id", c.id, "session_id", c.sessionID)
	}
}

// Close satisfies session.Subscriber.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Serve runs the connection's write loop: forwards delivered batches,
// sends periodic heartbeats, and enforces the event-count cap and the
// stale-connection timeout. Blocks until ctx is canceled, Close is called,
// or a terminal condition (event limit, staleness, write failure) occurs.
func (c *Connection) Serve(ctx context.Context) {
	reason := ReasonClientClosed
	heartbeat := time.NewTicker(c.limits.HeartbeatInterval)
	defer heartbeat.Stop()

	staleCheck := time.NewTicker(c.limits.StaleConnectionTimeout / 4)
	defer staleCheck.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case <-c.done:
			break loop

		case <-c.completeCh:
			reason = ReasonSessionComplete
			break loop

		case <-c.shutdownCh:
			reason = ReasonServerShutdown
			break loop

		case batch := <-c.deliverCh:
			if err := c.sendBatch(batch); err != nil {
				reason = ReasonHeartbeatFailed
				break loop
			}
			if c.limits.MaxEventsPerConnection > 0 && c.eventsSent.Load() >= c.limits.MaxEventsPerConnection {
				c.sendEventLimitReached()
				reason = ReasonEventLimitReached
				break loop
			}

		case <-heartbeat.C:
			if err := c.sendHeartbeat(); err != nil {
				reason = ReasonHeartbeatFailed
				break loop
			}

		case <-staleCheck.C:
			if c.idleFor() > c.limits.StaleConnectionTimeout {
				reason = ReasonStaleConnection
				break loop
			}
		}
	}

	if c.onDisconnect != nil {
		c.onDisconnect(reason)
	}
}

// CompleteSession sends the terminal session_complete frame. The caller is
// expected to cancel the Serve context shortly after.
func (c *Connection) CompleteSession() {
	data, _ := json.Marshal(sessionCompletePayload{SessionID: c.sessionID})
	_ = c.fw.write(Frame{Event: "session_complete", Data: data})
}

// Complete satisfies session.Subscriber's lifecycle hook: it sends the
// session_complete frame and then unblocks a running Serve loop with
// ReasonSessionComplete, closing the stream without waiting for the
// stale-connection timeout.
func (c *Connection) Complete() {
	c.CompleteSession()
	c.completeOnce.Do(func() { close(c.completeCh) })
}

// Shutdown satisfies session.Subscriber's lifecycle hook for process
// shutdown: it sends a server_shutdown frame and then unblocks a running
// Serve loop with ReasonServerShutdown, distinct from Complete's
// session_complete path so clients can tell a finished analysis apart from
// a server restart.
func (c *Connection) Shutdown() {
	data, _ := json.Marshal(shutdownPayload{SessionID: c.sessionID})
	_ = c.fw.write(Frame{Event: "server_shutdown", Data: data})
	c.shutdownOnce.Do(func() { close(c.shutdownCh) })
}

func (c *Connection) sendConnectionEvent() {
	data, _ := json.Marshal(connectionEventPayload{ConnectionID: c.id, SessionID: c.sessionID})
	_ = c.fw.write(Frame{Event: "connection", Data: data})
}

func (c *Connection) sendBatch(batch []buffer.Event) error {
	data, err := json.Marshal(batchPayload{SessionID: c.sessionID, Events: batch})
	if err != nil {
		return err
	}
	c.touch()
	c.eventsSent.Add(int64(len(batch)))
	return c.fw.write(Frame{ID: uuid.NewString(), Event: "events", Data: data})
}

func (c *Connection) sendHeartbeat() error {
	data, _ := json.Marshal(heartbeatPayload{Timestamp: time.Now(), SessionID: c.sessionID})
	c.touch()
	return c.fw.write(Frame{Event: "heartbeat", Data: data})
}

func (c *Connection) sendEventLimitReached() {
	data, _ := json.Marshal(eventLimitPayload{SessionID: c.sessionID, Limit: c.limits.MaxEventsPerConnection})
	_ = c.fw.write(Frame{Event: "event_limit_reached", Data: data})
}

func (c *Connection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *Connection) idleFor() time.Duration {
	last := c.lastActivity.Load()
	return time.Since(time.Unix(0, last))
}
