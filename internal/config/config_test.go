package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name: "valid config",
			modify: func(c *Config) {
				c.Site.RootURL = "https://mail.example.com"
				c.Network.Timeout = 10 * time.Second
				c.Storage.VersionsDriver = DriverJSON
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DriverJSON, c.Storage.VersionsDriver)
				assert.Equal(t, 10*time.Second, c.Network.Timeout)
			},
		},
		{
			name: "empty manifest list path defaults",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultManifestListPath, c.Site.ManifestListPath)
			},
		},
		{
			name: "timeout below minimum defaults to 30s",
			modify: func(c *Config) {
				c.Network.Timeout = 100 * time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultTimeout, c.Network.Timeout)
			},
		},
		{
			name: "negative retries default",
			modify: func(c *Config) {
				c.Network.MaxRetries = -1
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultMaxRetries, c.Network.MaxRetries)
			},
		},
		{
			name: "probe interval below minimum defaults",
			modify: func(c *Config) {
				c.Connectivity.ProbeInterval = time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultProbeInterval, c.Connectivity.ProbeInterval)
			},
		},
		{
			name: "empty storage fields default",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DataDir(), c.Storage.Directory)
				assert.Equal(t, DefaultConsentFile(), c.Storage.ConsentFile)
				assert.Equal(t, DriverSQLite, c.Storage.VersionsDriver)
			},
		},
		{
			name: "unknown versions driver rejected",
			modify: func(c *Config) {
				c.Storage.VersionsDriver = "postgres"
			},
			wantErr: true,
		},
		{
			name: "bad proxy rejected",
			modify: func(c *Config) {
				c.Network.ProxyURL = "http://[::1"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if tt.modify != nil {
				tt.modify(cfg)
			}

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSiteConfig_ManifestListURL(t *testing.T) {
	tests := []struct {
		name    string
		site    SiteConfig
		want    string
		wantErr bool
	}{
		{
			name: "root without slash",
			site: SiteConfig{RootURL: "https://mail.example.com", ManifestListPath: "/offline/manifests/"},
			want: "https://mail.example.com/offline/manifests/",
		},
		{
			name: "root with path prefix",
			site: SiteConfig{RootURL: "https://example.com/a/b/", ManifestListPath: "offline/manifests/"},
			want: "https://example.com/a/b/offline/manifests/",
		},
		{
			name:    "relative root rejected",
			site:    SiteConfig{RootURL: "/relative", ManifestListPath: "/offline/manifests/"},
			wantErr: true,
		},
		{
			name:    "empty root rejected",
			site:    SiteConfig{ManifestListPath: "/offline/manifests/"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.site.ManifestListURL()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultManifestListPath, cfg.Site.ManifestListPath)
	assert.Equal(t, DataDir(), cfg.Storage.Directory)
	assert.Equal(t, DriverSQLite, cfg.Storage.VersionsDriver)
	assert.False(t, cfg.Storage.InMemory)
	assert.Equal(t, DefaultTimeout, cfg.Network.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.Network.MaxRetries)
	assert.Equal(t, DefaultProbeInterval, cfg.Connectivity.ProbeInterval)
	assert.Equal(t, DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)

	require.NoError(t, cfg.Validate())
}

func TestConfigPaths(t *testing.T) {
	dir := ConfigDir()
	assert.Contains(t, dir, ".offsync")
	assert.Equal(t, filepath.Join(dir, "data"), DataDir())
	assert.Equal(t, filepath.Join(dir, "consent"), DefaultConsentFile())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFilePath())
}

func TestEnsureDataDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Directory = filepath.Join(t.TempDir(), "nested", "data")

	require.NoError(t, EnsureDataDir(cfg))

	info, err := os.Stat(cfg.Storage.Directory)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestLoad_LoadWithMissingConfig tests loading with no config file
func TestLoad_LoadWithMissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, DefaultManifestListPath, cfg.Site.ManifestListPath)
	assert.Equal(t, DriverSQLite, cfg.Storage.VersionsDriver)
}

// TestLoad_WithInvalidConfigFile tests loading with invalid config file
func TestLoad_WithInvalidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("invalid: yaml: content: ["), 0644)
	require.NoError(t, err)
	t.Chdir(tmpDir)

	cfg, _, err := LoadWithViper()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoad_WithValidConfigFile tests loading with valid config file
func TestLoad_WithValidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
site:
  root_url: "https://mail.example.com"
storage:
  in_memory: true
  versions_driver: json
connectivity:
  probe_url: "https://mail.example.com/ping"
  probe_interval: 30s
logging:
  level: "debug"
`
	err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)
	t.Chdir(tmpDir)

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, "https://mail.example.com", cfg.Site.RootURL)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, DriverJSON, cfg.Storage.VersionsDriver)
	assert.Equal(t, "https://mail.example.com/ping", cfg.Connectivity.ProbeURL)
	assert.Equal(t, 30*time.Second, cfg.Connectivity.ProbeInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("storage:\n  versions_driver: mongo\n"), 0644)
	require.NoError(t, err)
	t.Chdir(tmpDir)

	_, _, err = LoadWithViper()
	assert.ErrorContains(t, err, "versions_driver")
}

// TestLoadWithEnvironmentVariable tests loading with environment variable
func TestLoadWithEnvironmentVariable(t *testing.T) {
	t.Setenv("OFFSYNC_SITE_ROOT_URL", "https://env.example.com")
	t.Chdir(t.TempDir())

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Site.RootURL)
}

func TestSave_LoadsBack(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(tmpDir)

	cfg := Default()
	cfg.Site.RootURL = "https://rb.example.com"
	cfg.Storage.VersionsDriver = DriverJSON
	cfg.Network.Timeout = 45 * time.Second
	cfg.Connectivity.FlagFile = "/tmp/offline.flag"

	require.NoError(t, Save(cfg, filepath.Join(tmpDir, "config.yaml")))

	data, err := os.ReadFile(filepath.Join(tmpDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 45s")

	loaded, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "https://rb.example.com", loaded.Site.RootURL)
	assert.Equal(t, DriverJSON, loaded.Storage.VersionsDriver)
	assert.Equal(t, 45*time.Second, loaded.Network.Timeout)
	assert.Equal(t, "/tmp/offline.flag", loaded.Connectivity.FlagFile)
}
