package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)

	assert.Equal(t, "tanimoto", cfg.Similarity.DefaultMetric)
	assert.Equal(t, 2, cfg.Similarity.FingerprintRadius)
	assert.Equal(t, 2048, cfg.Similarity.FingerprintBits)
	assert.Equal(t, 0, cfg.Similarity.Workers) // zero means NumCPU downstream

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)

	assert.Equal(t, "smiles", cfg.Watch.SMILESColumn)
	assert.Equal(t, 2*time.Second, cfg.Watch.SettleDelay)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		var cfg Config
		cfg.ApplyDefaults()
		return &cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative_workers", func(c *Config) { c.Similarity.Workers = -1 }},
		{"negative_radius", func(c *Config) { c.Similarity.FingerprintRadius = -1 }},
		{"zero_bits", func(c *Config) { c.Similarity.FingerprintBits = -2048 }},
		{"bad_metric", func(c *Config) { c.Similarity.DefaultMetric = "cosine" }},
		{"bad_port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad_mode", func(c *Config) { c.Server.Mode = "production" }},
		{"negative_settle", func(c *Config) { c.Watch.SettleDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
  format: console
similarity:
  workers: 4
  default_metric: mcs
server:
  port: 9090
watch:
  smiles_column: structure
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Similarity.Workers)
	assert.Equal(t, "mcs", cfg.Similarity.DefaultMetric)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "structure", cfg.Watch.SMILESColumn)

	// Unset fields still receive defaults.
	assert.Equal(t, 2048, cfg.Similarity.FingerprintBits)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("similarity:\n  default_metric: cosine\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHEMPREP_SIMILARITY_DEFAULT_METRIC", "tversky")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tversky", cfg.Similarity.DefaultMetric)
}
