package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes cfg to path as YAML, durations in their string form so the
// file stays editable by hand
func Save(cfg *Config, path string) error {
	doc := map[string]any{
		"site": map[string]any{
			"root_url":           cfg.Site.RootURL,
			"manifest_list_path": cfg.Site.ManifestListPath,
		},
		"storage": map[string]any{
			"directory":       cfg.Storage.Directory,
			"in_memory":       cfg.Storage.InMemory,
			"versions_driver": cfg.Storage.VersionsDriver,
			"versions_path":   cfg.Storage.VersionsPath,
			"require_consent": cfg.Storage.RequireConsent,
			"consent_file":    cfg.Storage.ConsentFile,
		},
		"network": map[string]any{
			"timeout":     cfg.Network.Timeout.String(),
			"max_retries": cfg.Network.MaxRetries,
			"user_agent":  cfg.Network.UserAgent,
			"proxy_url":   cfg.Network.ProxyURL,
		},
		"connectivity": map[string]any{
			"probe_url":      cfg.Connectivity.ProbeURL,
			"probe_interval": cfg.Connectivity.ProbeInterval.String(),
			"flag_file":      cfg.Connectivity.FlagFile,
		},
		"server": map[string]any{
			"address":     cfg.Server.Address,
			"definitions": cfg.Server.Definitions,
		},
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
			"file":   cfg.Logging.File,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
