package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// expandEnv expands ${VAR} / $VAR references using the standard library,
// for any config value that may legitimately embed another environment
// variable (e.g. a CLI binary path supplied via env).
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Load reads the process environment and command-line flags into a
// resolved Config. flagArgs is normally os.Args[1:]; tests pass their own
// slice so flag parsing never touches the global CommandLine set.
func Load(flagArgs []string) (*Config, error) {
	fs := flag.NewFlagSet("brutalist-mcp", flag.ContinueOnError)
	httpFlag := fs.Bool("http", false, "serve MCP over HTTP streaming instead of stdio")
	portFlag := fs.Int("port", 0, "HTTP port override")
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	cfg := &Config{
		Transport:  TransportStdio,
		HTTPPort:   3000,
		Limits:     DefaultLimits(),
		Session:    DefaultSessionLimits(),
		Cache:      DefaultCacheConfig(),
		Pagination: DefaultPaginationConfig(),
		CORS:       DefaultCORSConfig(),
		MaxBodyBytes: 10 * 1024 * 1024,
		LogLevel:   "info",
	}

	if boolEnv("HTTP_TRANSPORT") || *httpFlag {
		cfg.Transport = TransportHTTP
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = p
		}
	}
	if *portFlag != 0 {
		cfg.HTTPPort = *portFlag
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.Debug = boolEnv("DEBUG")
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	cfg.Subprocess = os.Getenv("BRUTALIST_SUBPROCESS") == "1"

	if v := os.Getenv("MAX_CPU_TIME_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CPUTimeSecEnv = n
			cfg.Limits.CPUTimeLimit = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			o = strings.TrimSpace(expandEnv(o))
			if o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORS.AllowedOrigins = origins
		}
	}
	cfg.CORS.AllowWildcard = boolEnv("ALLOW_CORS_WILDCARD")
	cfg.CORS.Production = strings.EqualFold(os.Getenv("NODE_ENV"), "production") ||
		strings.EqualFold(os.Getenv("APP_ENV"), "production")

	return cfg, nil
}

func boolEnv(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes"
}
