package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	cfg, err := load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithViper loads configuration into a fresh viper instance and returns it
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (OFFSYNC_*)
	v.SetEnvPrefix("OFFSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.root_url", "")
	v.SetDefault("site.manifest_list_path", DefaultManifestListPath)

	v.SetDefault("storage.directory", DataDir())
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.versions_driver", DefaultVersionsDriver)
	v.SetDefault("storage.versions_path", "")
	v.SetDefault("storage.require_consent", false)
	v.SetDefault("storage.consent_file", DefaultConsentFile())

	v.SetDefault("network.timeout", DefaultTimeout)
	v.SetDefault("network.max_retries", DefaultMaxRetries)
	v.SetDefault("network.user_agent", "")
	v.SetDefault("network.proxy_url", "")

	v.SetDefault("connectivity.probe_url", "")
	v.SetDefault("connectivity.probe_interval", DefaultProbeInterval)
	v.SetDefault("connectivity.flag_file", "")

	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.definitions", "")

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.file", "")
}

// EnsureDataDir creates the storage directory if it doesn't exist
func EnsureDataDir(cfg *Config) error {
	return os.MkdirAll(cfg.Storage.Directory, 0755)
}
