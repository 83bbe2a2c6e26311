package sse

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/buffer"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() config.SessionLimits {
	l := config.DefaultSessionLimits()
	l.HeartbeatInterval = 10 * time.Millisecond
	l.StaleConnectionTimeout = time.Hour
	l.MaxEventsPerConnection = 10_000
	return l
}

func TestNewConnectionWritesHeadersAndConnectionFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	conn, err := NewConnection(rec, "sess-1", testLimits(), nil)
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: connection")
	assert.Contains(t, rec.Body.String(), "sess-1")
}

func TestConnectionDeliverForwardsBatchAsFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	conn, err := NewConnection(rec, "sess-2", testLimits(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.Serve(ctx)
		close(done)
	}()

	conn.Deliver([]buffer.Event{{Class: buffer.ClassFinding}})
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, rec.Body.String(), "event: events")
}

func TestConnectionSendsHeartbeats(t *testing.T) {
	rec := httptest.NewRecorder()
	conn, err := NewConnection(rec, "sess-3", testLimits(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.Serve(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, rec.Body.String(), "event: heartbeat")
}

func TestConnectionClosesOnDoneChannel(t *testing.T) {
	rec := httptest.NewRecorder()
	var reason DisconnectReason
	conn, err := NewConnection(rec, "sess-4", testLimits(), func(r DisconnectReason) { reason = r })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		conn.Serve(context.Background())
		close(done)
	}()

	conn.Close()
	<-done
	assert.Equal(t, ReasonClientClosed, reason)
}

func TestConnectionCompleteSessionWritesTerminalFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	conn, err := NewConnection(rec, "sess-5", testLimits(), nil)
	require.NoError(t, err)

	conn.CompleteSession()
	assert.Contains(t, rec.Body.String(), "event: session_complete")
}

func TestConnectionCompleteEndsServeWithSessionCompleteReason(t *testing.T) {
	rec := httptest.NewRecorder()
	var reason DisconnectReason
	conn, err := NewConnection(rec, "sess-6", testLimits(), func(r DisconnectReason) { reason = r })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		conn.Serve(context.Background())
		close(done)
	}()

	conn.Complete()
	<-done

	assert.Equal(t, ReasonSessionComplete, reason)
	assert.Contains(t, rec.Body.String(), "event: session_complete")
}

func TestConnectionShutdownEndsServeWithServerShutdownReason(t *testing.T) {
	rec := httptest.NewRecorder()
	var reason DisconnectReason
	conn, err := NewConnection(rec, "sess-7", testLimits(), func(r DisconnectReason) { reason = r })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		conn.Serve(context.Background())
		close(done)
	}()

	conn.Shutdown()
	<-done

	assert.Equal(t, ReasonServerShutdown, reason)
	assert.Contains(t, rec.Body.String(), "event: server_shutdown")
}
