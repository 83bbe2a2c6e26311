// brutalist-mcp serves the roast_<domain> critic tools over MCP, either on
// stdio (the default, for editor/agent integrations) or HTTP streaming.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cache"
	"github.com/ejmockler/brutalist-mcp-go/pkg/catalog"
	"github.com/ejmockler/brutalist-mcp-go/pkg/cliinvoker"
	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/mcpserver"
	"github.com/ejmockler/brutalist-mcp-go/pkg/orchestrator"
	"github.com/ejmockler/brutalist-mcp-go/pkg/session"
	"github.com/ejmockler/brutalist-mcp-go/pkg/toolhandler"
	"github.com/ejmockler/brutalist-mcp-go/pkg/version"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env from the working directory, exactly as tarsy loads
	// deploy/config/.env — optional, for local dev convenience.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg)
	slog.Info("starting brutalist-mcp", "version", version.Full(), "transport", cfg.Transport)

	cacheStore, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return fmt.Errorf("start response cache: %w", err)
	}
	defer cacheStore.Shutdown()

	sessions := session.NewManager(cfg.Session)
	defer sessions.Shutdown()

	invoker := cliinvoker.New(cfg.Limits)
	defer invoker.KillAll(cfg.Limits.ProcessGroupKillGrace)
	prober := cliinvoker.NewProber(cfg.Limits.CLIProbeTimeout)
	orch := orchestrator.New(invoker, prober, cfg.Limits)

	tools := catalog.Build()
	handler := toolhandler.New(tools, orch, cacheStore, sessions, cfg.Pagination, cfg.Cache.AnonymousSessionID, cfg.Subprocess)

	server := mcpserver.NewServer(tools, handler)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Transport == config.TransportHTTP {
		return serveHTTP(ctx, cfg, server, sessions, invoker)
	}
	return serveStdio(ctx, server)
}

func serveStdio(ctx context.Context, server *mcp.Server) error {
	slog.Info("serving MCP over stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, sessions *session.Manager, invoker *cliinvoker.Invoker) error {
	router := mcpserver.NewRouter(server, sessions, cfg.Session, cfg.CORS, cfg.MaxBodyBytes)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")

		// Tear down live SSE streams and in-flight CLI subprocesses before
		// httpServer.Shutdown returns, so neither outlives this process:
		// connections get a server_shutdown frame instead of dangling until
		// their stale-connection timeout, and the registry's subprocess
		// group kill runs even if httpServer.Shutdown hangs on handlers
		// that are blocked on their own subprocess.
		sessions.ShutdownConnections()
		invoker.KillAll(cfg.Limits.ProcessGroupKillGrace)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
