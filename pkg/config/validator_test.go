package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		Transport:  TransportStdio,
		HTTPPort:   3000,
		Limits:     DefaultLimits(),
		Session:    DefaultSessionLimits(),
		Cache:      DefaultCacheConfig(),
		Pagination: DefaultPaginationConfig(),
		CORS:       DefaultCORSConfig(),
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := baseConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCPUBelowWallClock(t *testing.T) {
	cfg := baseConfig()
	cfg.Limits.CPUTimeLimit = cfg.Limits.WallClockTimeout - time.Minute

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MAX_CPU_TIME_SEC", verr.Field)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestValidateWallClockBelowFloor(t *testing.T) {
	cfg := baseConfig()
	cfg.Limits.WallClockTimeout = time.Minute
	cfg.Limits.MinNonClaudeTimeout = 3 * time.Minute
	cfg.Limits.CPUTimeLimit = 10 * time.Minute

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "WallClockTimeout", verr.Field)
}

func TestValidatePaginationBounds(t *testing.T) {
	cfg := baseConfig()
	cfg.Pagination.MinLimitTokens = 100_000
	cfg.Pagination.MaxLimitTokens = 100_000

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Pagination", verr.Field)
}

func TestValidateCORSWildcardInProduction(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS.AllowWildcard = true
	cfg.CORS.Production = true

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ALLOW_CORS_WILDCARD", verr.Field)
}

func TestValidateCORSWildcardOutsideProduction(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS.AllowWildcard = true
	cfg.CORS.Production = false

	assert.NoError(t, cfg.Validate())
}

func TestValidateHTTPPortRange(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too large", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Transport = TransportHTTP
			cfg.HTTPPort = tt.port

			err := cfg.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "HTTP_PORT", verr.Field)
		})
	}
}

func TestValidateStdioIgnoresPort(t *testing.T) {
	cfg := baseConfig()
	cfg.Transport = TransportStdio
	cfg.HTTPPort = 0

	assert.NoError(t, cfg.Validate())
}
