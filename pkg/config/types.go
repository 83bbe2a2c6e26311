// Package config loads and validates the environment-driven settings that
// govern CLI invocation limits, transport selection, and CORS policy.
//
// There are no persisted configuration files: every knob is an
// environment variable or CLI flag, so the loader reads directly from the
// process environment.
package config

import "time"

// Agent names this server knows how to invoke. Intentionally closed — the
// CommandBuilder registry in pkg/cliinvoker is keyed on exactly these three.
const (
	AgentClaude = "claude"
	AgentCodex  = "codex"
	AgentGemini = "gemini"
)

// AllAgents lists every CLI critic this server can fan out to, in a stable
// order used whenever "all available" is requested.
var AllAgents = []string{AgentClaude, AgentCodex, AgentGemini}

// Limits bounds a single CLI invocation's resource usage.
type Limits struct {
	// WallClockTimeout is the default per-invocation timeout. Codex and
	// Gemini are floored at MinNonClaudeTimeout regardless of caller input.
	WallClockTimeout time.Duration

	// MinNonClaudeTimeout is the floor applied to codex/gemini invocations
	// to avoid pathological early cancellation.
	MinNonClaudeTimeout time.Duration

	// CPUTimeLimit is the resource.RLIMIT_CPU ceiling enforced on the child
	// process. Must exceed WallClockTimeout (validated at startup).
	CPUTimeLimit time.Duration

	// MaxOutputBytes caps stdout and stderr each; exceeding it triggers a
	// tree-kill and a buffer-overflow error.
	MaxOutputBytes int64

	// ProcessGroupKillGrace is how long SIGTERM is given before escalating
	// to SIGKILL on POSIX process-tree termination.
	ProcessGroupKillGrace time.Duration

	// CLIProbeTimeout bounds the `<cli> --version` availability probe.
	CLIProbeTimeout time.Duration
}

// DefaultLimits returns the conservative defaults for CLI invocation limits.
func DefaultLimits() Limits {
	return Limits{
		WallClockTimeout:      25 * time.Minute,
		MinNonClaudeTimeout:   3 * time.Minute,
		CPUTimeLimit:          30 * time.Minute,
		MaxOutputBytes:        10 * 1024 * 1024,
		ProcessGroupKillGrace: 5 * time.Second,
		CLIProbeTimeout:       5 * time.Second,
	}
}

// SessionLimits bounds in-memory session/buffer/SSE resource usage.
type SessionLimits struct {
	MaxConnectionsPerSession int
	MaxSessionMemoryBytes    int64
	BacklogCapacity          int
	SessionTTL               time.Duration
	SweepInterval            time.Duration
	MetricsSweepInterval     time.Duration
	MaxEventsPerConnection   int64
	HeartbeatInterval        time.Duration
	StaleConnectionTimeout   time.Duration
	BackpressureWindow       time.Duration
}

// DefaultSessionLimits returns the default session/buffer/SSE resource bounds.
func DefaultSessionLimits() SessionLimits {
	return SessionLimits{
		MaxConnectionsPerSession: 5,
		MaxSessionMemoryBytes:    50 * 1024 * 1024,
		BacklogCapacity:          500,
		SessionTTL:               2 * time.Hour,
		SweepInterval:            5 * time.Minute,
		MetricsSweepInterval:     1 * time.Minute,
		MaxEventsPerConnection:   10_000,
		HeartbeatInterval:        30 * time.Second,
		StaleConnectionTimeout:   5 * time.Minute,
		BackpressureWindow:       5 * time.Second,
	}
}

// CacheConfig bounds the response cache.
type CacheConfig struct {
	TTL                   time.Duration
	CompressionThreshold  int64 // bytes; entries above this are zstd-compressed
	SweepInterval         time.Duration
	AnonymousSessionID    string
}

// DefaultCacheConfig returns the default cache sizing and TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:                  2 * time.Hour,
		CompressionThreshold: 1024 * 1024,
		SweepInterval:        5 * time.Minute,
		AnonymousSessionID:   "anonymous",
	}
}

// PaginationConfig bounds the chunker/paginator token budgets.
type PaginationConfig struct {
	DefaultLimitTokens int
	MinLimitTokens     int
	MaxLimitTokens     int
	ChunkOverlapChars  int
	ChunkOverlapTokens int
	AutoPaginateTokens int // threshold above which pagination is forced
	CharsPerToken      float64
}

// DefaultPaginationConfig returns the default chunk/token budgets.
func DefaultPaginationConfig() PaginationConfig {
	return PaginationConfig{
		DefaultLimitTokens: 22_500,
		MinLimitTokens:     1_000,
		MaxLimitTokens:     100_000,
		ChunkOverlapChars:  200,
		ChunkOverlapTokens: 50,
		AutoPaginateTokens: 25_000,
		CharsPerToken:      4.0,
	}
}

// CORSConfig governs the allow-list applied to the /mcp HTTP transport.
type CORSConfig struct {
	AllowedOrigins  []string
	AllowWildcard   bool
	Production      bool
	AllowCredentials bool // always false; kept explicit for clarity at call sites
}

// DefaultCORSConfig returns the small localhost-dev-port allow-list used by
// default.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowWildcard:    false,
		Production:       false,
		AllowCredentials: false,
	}
}

// Transport selects how the MCP endpoint is exposed.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Config is the fully-resolved, immutable process configuration.
type Config struct {
	Transport     Transport
	HTTPPort      int
	Limits        Limits
	Session       SessionLimits
	Cache         CacheConfig
	Pagination    PaginationConfig
	CORS          CORSConfig
	MaxBodyBytes  int64
	LogLevel      string
	Debug         bool
	Subprocess    bool // true when BRUTALIST_SUBPROCESS=1 — recursion guard
	CPUTimeSecEnv int   // raw MAX_CPU_TIME_SEC value as parsed by the loader
}
