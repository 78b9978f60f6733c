package config

import "time"

// Default values applied by ApplyDefaults for any unset field.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetric            = "tanimoto"
	DefaultFingerprintRadius = 2
	DefaultFingerprintBits   = 2048

	DefaultServerHost   = "0.0.0.0"
	DefaultServerPort   = 8080
	DefaultServerMode   = "release"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 5 * time.Minute // similarity matrices can take a while

	DefaultSMILESColumn = "smiles"
	DefaultSettleDelay  = 2 * time.Second
)

// ApplyDefaults fills in every zero-valued field with its default.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stderr"}
	}
	if len(c.Log.ErrorOutputPaths) == 0 {
		c.Log.ErrorOutputPaths = []string{"stderr"}
	}

	if c.Similarity.DefaultMetric == "" {
		c.Similarity.DefaultMetric = DefaultMetric
	}
	if c.Similarity.FingerprintRadius == 0 {
		c.Similarity.FingerprintRadius = DefaultFingerprintRadius
	}
	if c.Similarity.FingerprintBits == 0 {
		c.Similarity.FingerprintBits = DefaultFingerprintBits
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}

	if c.Watch.SMILESColumn == "" {
		c.Watch.SMILESColumn = DefaultSMILESColumn
	}
	if c.Watch.SettleDelay == 0 {
		c.Watch.SettleDelay = DefaultSettleDelay
	}
}
