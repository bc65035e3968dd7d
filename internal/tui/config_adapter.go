package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/offsync/internal/config"
)

// ConfigValues holds form values that map to the Config struct.
// Numeric and duration fields are stored as strings for form editing.
type ConfigValues struct {
	RootURL          string
	ManifestListPath string

	StorageDirectory string
	InMemory         bool
	VersionsDriver   string
	VersionsPath     string
	RequireConsent   bool
	ConsentFile      string

	Timeout    string
	MaxRetries string
	UserAgent  string
	ProxyURL   string

	ProbeURL      string
	ProbeInterval string
	FlagFile      string

	ServerAddress string
	Definitions   string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// FromConfig converts a Config to ConfigValues for form editing
func FromConfig(cfg *config.Config) *ConfigValues {
	return &ConfigValues{
		RootURL:          cfg.Site.RootURL,
		ManifestListPath: cfg.Site.ManifestListPath,

		StorageDirectory: cfg.Storage.Directory,
		InMemory:         cfg.Storage.InMemory,
		VersionsDriver:   cfg.Storage.VersionsDriver,
		VersionsPath:     cfg.Storage.VersionsPath,
		RequireConsent:   cfg.Storage.RequireConsent,
		ConsentFile:      cfg.Storage.ConsentFile,

		Timeout:    formatDuration(cfg.Network.Timeout),
		MaxRetries: strconv.Itoa(cfg.Network.MaxRetries),
		UserAgent:  cfg.Network.UserAgent,
		ProxyURL:   cfg.Network.ProxyURL,

		ProbeURL:      cfg.Connectivity.ProbeURL,
		ProbeInterval: formatDuration(cfg.Connectivity.ProbeInterval),
		FlagFile:      cfg.Connectivity.FlagFile,

		ServerAddress: cfg.Server.Address,
		Definitions:   cfg.Server.Definitions,

		LogLevel:  cfg.Logging.Level,
		LogFormat: cfg.Logging.Format,
		LogFile:   cfg.Logging.File,
	}
}

// ToConfig converts ConfigValues back to a validated Config
func (v *ConfigValues) ToConfig() (*config.Config, error) {
	timeout, err := parseDurationOrDefault(v.Timeout, config.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	maxRetries, err := parseIntOrDefault(v.MaxRetries, config.DefaultMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("invalid max_retries: %w", err)
	}

	probeInterval, err := parseDurationOrDefault(v.ProbeInterval, config.DefaultProbeInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid probe_interval: %w", err)
	}

	cfg := &config.Config{
		Site: config.SiteConfig{
			RootURL:          strings.TrimSpace(v.RootURL),
			ManifestListPath: strings.TrimSpace(v.ManifestListPath),
		},
		Storage: config.StorageConfig{
			Directory:      strings.TrimSpace(v.StorageDirectory),
			InMemory:       v.InMemory,
			VersionsDriver: v.VersionsDriver,
			VersionsPath:   strings.TrimSpace(v.VersionsPath),
			RequireConsent: v.RequireConsent,
			ConsentFile:    strings.TrimSpace(v.ConsentFile),
		},
		Network: config.NetworkConfig{
			Timeout:    timeout,
			MaxRetries: maxRetries,
			UserAgent:  v.UserAgent,
			ProxyURL:   strings.TrimSpace(v.ProxyURL),
		},
		Connectivity: config.ConnectivityConfig{
			ProbeURL:      strings.TrimSpace(v.ProbeURL),
			ProbeInterval: probeInterval,
			FlagFile:      strings.TrimSpace(v.FlagFile),
		},
		Server: config.ServerConfig{
			Address:     strings.TrimSpace(v.ServerAddress),
			Definitions: strings.TrimSpace(v.Definitions),
		},
		Logging: config.LoggingConfig{
			Level:  v.LogLevel,
			Format: v.LogFormat,
			File:   strings.TrimSpace(v.LogFile),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func parseDurationOrDefault(s string, defaultVal time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(s)
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
