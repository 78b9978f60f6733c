package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// envPrefix namespaces ChemPrep environment variables, e.g.
// CHEMPREP_SIMILARITY_WORKERS=8 overrides similarity.workers.
const envPrefix = "CHEMPREP"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment overrides only apply to keys viper knows about, so every
	// key is registered with its default here. ApplyDefaults remains the
	// fallback for configs built without the loader.
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})
	v.SetDefault("similarity.workers", 0)
	v.SetDefault("similarity.default_metric", DefaultMetric)
	v.SetDefault("similarity.fingerprint_radius", DefaultFingerprintRadius)
	v.SetDefault("similarity.fingerprint_bits", DefaultFingerprintBits)
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.enable_metrics", true)
	v.SetDefault("watch.input_dir", "")
	v.SetDefault("watch.output_dir", "")
	v.SetDefault("watch.smiles_column", DefaultSMILESColumn)
	v.SetDefault("watch.remove_salts", false)
	v.SetDefault("watch.remove_disconnected", false)
	v.SetDefault("watch.settle_delay", DefaultSettleDelay)
	return v
}

// Load reads the configuration from path, applies environment overrides,
// fills defaults and validates the result. With an empty path the well-known
// locations ./configs and . are searched for config.yaml; a missing file is
// not an error, since defaults plus environment variables form a complete
// configuration.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
				"failed to read config file "+path)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
					"failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			"failed to decode configuration")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
