package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"QVIZ_PORT", "QVIZ_ALLOWED_ORIGINS", "LOG_LEVEL", "QVIZ_SHOTS", "QVIZ_SEED", "QVIZ_P1", "QVIZ_P2", "QVIZ_P_MEAS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.Shots)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 0.001, cfg.P1)
	assert.Equal(t, 0.01, cfg.P2)
	assert.Equal(t, 0.02, cfg.PMeas)
	assert.Equal(t, ":8000", cfg.Addr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QVIZ_PORT", "9090")
	t.Setenv("QVIZ_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("QVIZ_SHOTS", "250")
	t.Setenv("QVIZ_SEED", "17")
	t.Setenv("QVIZ_P2", "0.05")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 250, cfg.Shots)
	assert.Equal(t, uint64(17), cfg.Seed)
	assert.Equal(t, 0.05, cfg.P2)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("QVIZ_PORT", "not-a-port")
	t.Setenv("QVIZ_SHOTS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 1000, cfg.Shots)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 8000, LogLevel: "info", Shots: 10, P1: 0.001, P2: 0.01, PMeas: 0.02}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"port", func(c *Config) { c.Port = 70000 }, "QVIZ_PORT"},
		{"shots", func(c *Config) { c.Shots = 0 }, "QVIZ_SHOTS"},
		{"probability", func(c *Config) { c.P2 = 1.5 }, "QVIZ_P2"},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
