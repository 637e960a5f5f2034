package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "infoflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeDynamic, cfg.Mode)
	assert.Equal(t, propagation.FixedParams(), cfg.BaseParams())
	assert.Equal(t, propagation.DefaultKeywords, cfg.Keywords)
	assert.Zero(t, cfg.DetectOptions().MaxPasses)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
mode: fixed
base_share_probability: 0.5
base_viral_threshold: 50
seed: 7
parallel: true
workers: 4
max_passes: 20
keywords: [fake, scam]
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeFixed, cfg.Mode)
	assert.Equal(t, 0.5, cfg.BaseShareProbability)
	assert.Equal(t, 50, cfg.BaseViralThreshold)
	assert.Equal(t, propagation.DefaultSharedThreshold, cfg.BaseSharedThreshold, "unset keys keep defaults")
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []string{"fake", "scam"}, cfg.Keywords)

	opts := cfg.DetectOptions()
	assert.True(t, opts.Parallel)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, 20, opts.MaxPasses)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, graph.ErrIO), "got %v", err)

	_, err = Load(writeConfig(t, "mode: [unclosed"))
	assert.True(t, errors.Is(err, graph.ErrConfig), "got %v", err)

	_, err = Load(writeConfig(t, "share_probability: 0.2\n"))
	assert.True(t, errors.Is(err, graph.ErrConfig), "unknown keys should be rejected: %v", err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INFOFLOW_MODE", "fixed")
	t.Setenv("INFOFLOW_BASE_MISINFO_THRESHOLD", "0.25")
	t.Setenv("INFOFLOW_SEED", "99")
	t.Setenv("INFOFLOW_PARALLEL", "true")
	t.Setenv("INFOFLOW_KEYWORDS", "hoax, scam")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, ModeFixed, cfg.Mode)
	assert.Equal(t, 0.25, cfg.BaseMisinfoThreshold)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, []string{"hoax", "scam"}, cfg.Keywords)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("INFOFLOW_WORKERS", "many")

	err := Default().ApplyEnv()
	require.True(t, errors.Is(err, graph.ErrConfig), "got %v", err)
	assert.Contains(t, err.Error(), "INFOFLOW_WORKERS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad mode", func(c *Config) { c.Mode = "adaptive" }, "Mode"},
		{"zero probability", func(c *Config) { c.BaseShareProbability = 0 }, "BaseShareProbability"},
		{"probability above one", func(c *Config) { c.BaseShareProbability = 1.5 }, "BaseShareProbability"},
		{"negative threshold", func(c *Config) { c.BaseViralThreshold = -1 }, "BaseViralThreshold"},
		{"negative passes", func(c *Config) { c.MaxPasses = -2 }, "MaxPasses"},
		{"empty keyword", func(c *Config) { c.Keywords = []string{"fake", ""} }, "Keywords[1]"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.True(t, errors.Is(err, graph.ErrConfig), "got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
