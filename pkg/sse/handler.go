package sse

import (
	"log/slog"
	"net/http"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/session"
)

// Handler upgrades GET requests into SSE streams bound to a sessionId path
// parameter.
type Handler struct {
	manager *session.Manager
	limits  config.SessionLimits
}

// NewHandler constructs a Handler backed by manager.
func NewHandler(manager *session.Manager, limits config.SessionLimits) *Handler {
	return &Handler{manager: manager, limits: limits}
}

// ServeSession handles one SSE connection's full lifecycle: existence
// check, connection-cap check, upgrade, backlog replay, then live
// forwarding until the request context ends or the connection is torn
// down.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess := h.manager.GetSession(sessionID, false)
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if !h.manager.HasCapacity(sessionID) {
		http.Error(w, "too many connections for session", http.StatusServiceUnavailable)
		return
	}

	conn, err := NewConnection(w, sessionID, h.limits, func(reason DisconnectReason) {
		slog.Info("sse: connection closed", "session_id", sessionID, "reason", reason)
	})
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if !h.manager.Subscribe(sessionID, conn) {
		// Lost a race against HasCapacity's check; the connection is already
		// upgraded so we cannot fall back to a 503 here. Close it cleanly.
		conn.Close()
		return
	}
	defer h.manager.Unsubscribe(sessionID, conn.ID())

	conn.Serve(r.Context())
}
