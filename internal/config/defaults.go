package config

import (
	"os"
	"path/filepath"
	"time"
)

// Versions drivers
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Default values
const (
	// Site defaults
	DefaultManifestListPath = "/offline/manifests/"

	// Storage defaults
	DefaultVersionsDriver = DriverSQLite

	// Network defaults
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	// Connectivity defaults
	DefaultProbeInterval = 15 * time.Second

	// Server defaults
	DefaultServerAddress = "127.0.0.1:8088"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".offsync"
	}
	return filepath.Join(home, ".offsync")
}

// DataDir returns the default local storage directory
func DataDir() string {
	return filepath.Join(ConfigDir(), "data")
}

// DefaultConsentFile returns the path that records a storage permission grant
func DefaultConsentFile() string {
	return filepath.Join(ConfigDir(), "consent")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			ManifestListPath: DefaultManifestListPath,
		},
		Storage: StorageConfig{
			Directory:      DataDir(),
			VersionsDriver: DefaultVersionsDriver,
			ConsentFile:    DefaultConsentFile(),
		},
		Network: NetworkConfig{
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval: DefaultProbeInterval,
		},
		Server: ServerConfig{
			Address: DefaultServerAddress,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
