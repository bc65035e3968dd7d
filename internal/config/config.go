package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the application configuration
type Config struct {
	Site         SiteConfig         `mapstructure:"site" yaml:"site"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Network      NetworkConfig      `mapstructure:"network" yaml:"network"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity" yaml:"connectivity"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// SiteConfig identifies the site whose manifests are synchronized
type SiteConfig struct {
	RootURL          string `mapstructure:"root_url" yaml:"root_url"`
	ManifestListPath string `mapstructure:"manifest_list_path" yaml:"manifest_list_path"`
}

// ManifestListURL returns the absolute URL of the manifest list
func (s SiteConfig) ManifestListURL() (string, error) {
	root, err := url.Parse(s.RootURL)
	if err != nil || !root.IsAbs() {
		return "", fmt.Errorf("site.root_url %q is not an absolute URL", s.RootURL)
	}
	ref, err := url.Parse(s.ManifestListPath)
	if err != nil {
		return "", fmt.Errorf("invalid site.manifest_list_path: %w", err)
	}
	return root.ResolveReference(ref).String(), nil
}

// StorageConfig contains local storage settings
type StorageConfig struct {
	Directory      string `mapstructure:"directory" yaml:"directory"`
	InMemory       bool   `mapstructure:"in_memory" yaml:"in_memory"`
	VersionsDriver string `mapstructure:"versions_driver" yaml:"versions_driver"`
	VersionsPath   string `mapstructure:"versions_path" yaml:"versions_path"`
	RequireConsent bool   `mapstructure:"require_consent" yaml:"require_consent"`
	ConsentFile    string `mapstructure:"consent_file" yaml:"consent_file"`
}

// NetworkConfig contains outbound HTTP settings
type NetworkConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyURL   string        `mapstructure:"proxy_url" yaml:"proxy_url"`
}

// ConnectivityConfig contains the platform connectivity signals
type ConnectivityConfig struct {
	ProbeURL      string        `mapstructure:"probe_url" yaml:"probe_url"`
	ProbeInterval time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	FlagFile      string        `mapstructure:"flag_file" yaml:"flag_file"`
}

// ServerConfig contains manifest publishing settings
type ServerConfig struct {
	Address     string `mapstructure:"address" yaml:"address"`
	Definitions string `mapstructure:"definitions" yaml:"definitions"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Validate validates the configuration, repairing out-of-range values
func (c *Config) Validate() error {
	if c.Site.ManifestListPath == "" {
		c.Site.ManifestListPath = DefaultManifestListPath
	}
	if c.Network.Timeout < time.Second {
		c.Network.Timeout = DefaultTimeout
	}
	if c.Network.MaxRetries < 0 {
		c.Network.MaxRetries = DefaultMaxRetries
	}
	if c.Connectivity.ProbeInterval < time.Second {
		c.Connectivity.ProbeInterval = DefaultProbeInterval
	}
	if c.Storage.Directory == "" {
		c.Storage.Directory = DataDir()
	}
	if c.Storage.ConsentFile == "" {
		c.Storage.ConsentFile = DefaultConsentFile()
	}

	switch c.Storage.VersionsDriver {
	case "":
		c.Storage.VersionsDriver = DefaultVersionsDriver
	case DriverSQLite, DriverJSON:
	default:
		return fmt.Errorf("invalid storage.versions_driver %q: want %q or %q",
			c.Storage.VersionsDriver, DriverSQLite, DriverJSON)
	}

	if c.Network.ProxyURL != "" {
		if _, err := url.Parse(c.Network.ProxyURL); err != nil {
			return fmt.Errorf("invalid network.proxy_url: %w", err)
		}
	}
	return nil
}
