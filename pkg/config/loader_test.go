package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, DefaultLimits(), cfg.Limits)
	assert.False(t, cfg.Subprocess)
}

func TestLoadHTTPFlag(t *testing.T) {
	cfg, err := Load([]string{"--http", "--port", "8080"})
	require.NoError(t, err)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLoadSubprocessEnv(t *testing.T) {
	t.Setenv("BRUTALIST_SUBPROCESS", "1")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Subprocess)
}

func TestLoadCPUTimeEnv(t *testing.T) {
	t.Setenv("MAX_CPU_TIME_SEC", "120")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.CPUTimeSecEnv)
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadProductionDetection(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.CORS.Production)
}

func TestBoolEnvVariants(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "Yes"} {
		t.Setenv("BRUTALIST_SUBPROCESS", v)
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.True(t, cfg.Subprocess, "value %q should be truthy", v)
	}

	for _, v := range []string{"0", "false", "", "no"} {
		t.Setenv("BRUTALIST_SUBPROCESS", v)
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.False(t, cfg.Subprocess, "value %q should be falsy", v)
	}
}
