// Package config defines the ChemPrep configuration model and its loader.
// Configuration is layered: built-in defaults, then an optional YAML file,
// then CHEMPREP_-prefixed environment variables, with later layers winning.
package config

import (
	"time"

	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Config is the root configuration object shared by the CLI and the HTTP
// server.
type Config struct {
	Log        logging.LogConfig `mapstructure:"log"`
	Similarity SimilarityConfig  `mapstructure:"similarity"`
	Server     ServerConfig      `mapstructure:"server"`
	Watch      WatchConfig       `mapstructure:"watch"`
}

// SimilarityConfig tunes the pairwise similarity engine.
type SimilarityConfig struct {
	// Workers is the worker-pool size for matrix computation. Zero selects
	// the number of CPUs.
	Workers int `mapstructure:"workers"`

	// DefaultMetric is the similarity function used when a command does not
	// name one explicitly.
	DefaultMetric string `mapstructure:"default_metric"`

	// FingerprintRadius is the Morgan fingerprint radius.
	FingerprintRadius int `mapstructure:"fingerprint_radius"`

	// FingerprintBits is the fingerprint length in bits.
	FingerprintBits int `mapstructure:"fingerprint_bits"`
}

// ServerConfig configures the optional HTTP API ("chemprep serve").
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string `mapstructure:"mode"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// EnableMetrics exposes Prometheus metrics under /metrics.
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// WatchConfig configures the drop-directory watcher ("chemprep watch"),
// which canonicalizes CSV files as they appear.
type WatchConfig struct {
	// InputDir is the directory observed for new CSV files.
	InputDir string `mapstructure:"input_dir"`

	// OutputDir receives the curated copies. Created if missing.
	OutputDir string `mapstructure:"output_dir"`

	// SMILESColumn is the column holding SMILES strings.
	SMILESColumn string `mapstructure:"smiles_column"`

	// RemoveSalts enables salt stripping during canonicalization.
	RemoveSalts bool `mapstructure:"remove_salts"`

	// RemoveDisconnected drops rows whose curated SMILES still contains
	// multiple fragments.
	RemoveDisconnected bool `mapstructure:"remove_disconnected"`

	// SettleDelay is how long a new file must stay unchanged before it is
	// processed, so half-written files are not picked up.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// Validate checks cross-field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if c.Similarity.Workers < 0 {
		return errors.InvalidParam("similarity.workers must not be negative")
	}
	if c.Similarity.FingerprintRadius < 0 {
		return errors.InvalidParam("similarity.fingerprint_radius must not be negative")
	}
	if c.Similarity.FingerprintBits <= 0 {
		return errors.InvalidParam("similarity.fingerprint_bits must be positive")
	}
	switch c.Similarity.DefaultMetric {
	case "tanimoto", "tversky", "mcs":
	default:
		return errors.InvalidParam("similarity.default_metric must be one of tanimoto, tversky, mcs")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.InvalidParam("server.port must be in [1, 65535]")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return errors.InvalidParam("server.mode must be one of debug, release, test")
	}
	if c.Watch.SettleDelay < 0 {
		return errors.InvalidParam("watch.settle_delay must not be negative")
	}
	return nil
}
