// Package app wires configuration into the storage backend, the offline
// controller and the connectivity signals that drive it.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/quantmind-br/offsync/internal/apiclient"
	"github.com/quantmind-br/offsync/internal/backend"
	"github.com/quantmind-br/offsync/internal/cache"
	"github.com/quantmind-br/offsync/internal/config"
	"github.com/quantmind-br/offsync/internal/connectivity"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/fetcher"
	"github.com/quantmind-br/offsync/internal/manifest"
	"github.com/quantmind-br/offsync/internal/offline"
	"github.com/quantmind-br/offsync/internal/state"
	"github.com/quantmind-br/offsync/internal/store"
	"github.com/quantmind-br/offsync/internal/utils"
	"github.com/quantmind-br/offsync/pkg/version"
)

// File names inside the storage directory
const (
	capturesDir    = "captures"
	sqliteVersions = "versions.db"
)

// Options contains options for creating an App
type Options struct {
	Config  *config.Config
	Logger  *utils.Logger
	Verbose bool

	OnStateChanged offline.StateFunc
	OnProgress     offline.ProgressFunc
}

// App holds every long-lived component of one site
type App struct {
	config     *config.Config
	logger     *utils.Logger
	client     *fetcher.Client
	captures   *cache.BadgerCache
	consent    *backend.ConsentFile
	backend    *backend.Local
	manifests  *manifest.HTTPFetcher
	monitor    *connectivity.Monitor
	flag       *connectivity.FlagWatcher
	controller *offline.Controller
	api        *apiclient.Client
}

// New builds an App. Connectivity is probed once before the controller is
// created. The controller starts Offline when the previous session left
// local lookups enabled.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Site.RootURL == "" {
		return nil, domain.NewValidationError("site.root_url", "is required")
	}
	listURL, err := cfg.Site.ManifestListURL()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(cfg, opts.Verbose)
	}

	a := &App{config: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	a.client, err = fetcher.NewClient(fetcher.ClientOptions{
		Timeout:         cfg.Network.Timeout,
		MaxRetries:      cfg.Network.MaxRetries,
		UserAgent:       cfg.Network.UserAgent,
		ProxyURL:        cfg.Network.ProxyURL,
		FollowRedirects: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if !cfg.Storage.InMemory {
		if err := config.EnsureDataDir(cfg); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	a.captures, err = cache.NewBadgerCache(cache.Options{
		Directory:  filepath.Join(cfg.Storage.Directory, capturesDir),
		InMemory:   cfg.Storage.InMemory,
		GCInterval: cache.DefaultOptions().GCInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}

	versions, err := openVersions(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a.consent = backend.NewConsentFile(cfg.Storage.ConsentFile)
	var permission backend.PermissionPolicy = backend.AllowAll{}
	if cfg.Storage.RequireConsent {
		permission = a.consent
	}

	a.backend, err = backend.NewLocal(backend.LocalOptions{
		RootURL:    cfg.Site.RootURL,
		Fetcher:    a.client,
		Captures:   a.captures,
		Versions:   versions,
		Permission: permission,
		Logger:     logger,
	})
	if err != nil {
		_ = versions.Close()
		return nil, err
	}

	a.manifests, err = manifest.NewHTTPFetcher(manifest.FetcherOptions{
		ListURL:   listURL,
		Transport: a.client.Transport(),
		Timeout:   cfg.Network.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	var signals []domain.Connectivity
	probeURL := cfg.Connectivity.ProbeURL
	if probeURL == "" {
		probeURL = cfg.Site.RootURL
	}
	a.monitor = connectivity.NewMonitor(connectivity.MonitorOptions{
		Prober:   a.client,
		URL:      probeURL,
		Interval: cfg.Connectivity.ProbeInterval,
		Logger:   logger,
	})
	a.monitor.Probe(ctx)
	signals = append(signals, a.monitor)
	if cfg.Connectivity.FlagFile != "" {
		a.flag = connectivity.NewFlagWatcher(cfg.Connectivity.FlagFile, logger)
		signals = append(signals, a.flag)
	}

	initial := domain.StateOnline
	if a.backend.LookupsEnabled() {
		initial = domain.StateOffline
	}

	a.controller, err = offline.New(offline.Options{
		Backend:        a.backend,
		Fetcher:        a.manifests,
		Platform:       connectivity.All(signals...),
		Logger:         logger,
		OnStateChanged: opts.OnStateChanged,
		OnProgress:     opts.OnProgress,
		InitialState:   initial,
	})
	if err != nil {
		return nil, err
	}

	a.api = apiclient.New(apiclient.Options{
		BaseURL:   cfg.Site.RootURL,
		Timeout:   cfg.Network.Timeout,
		Transport: a.client.Transport(),
		UserAgent: version.UserAgent(),
		Checker:   a.controller,
		Logger:    logger,
	})

	logger.Debug().
		Str("site", cfg.Site.RootURL).
		Str("manifests", listURL).
		Str("versions", cfg.Storage.VersionsDriver).
		Str("state", initial.String()).
		Bool("online", a.monitor.Online()).
		Msg("Application ready")

	ok = true
	return a, nil
}

// NewLogger creates the logger described by cfg.Logging
func NewLogger(cfg *config.Config, verbose bool) *utils.Logger {
	level := cfg.Logging.Level
	if level == "" {
		level = config.DefaultLogLevel
	}
	format := cfg.Logging.Format
	if format == "" {
		format = config.DefaultLogFormat
	}
	return utils.NewLogger(utils.LoggerOptions{
		Level:   level,
		Format:  format,
		File:    cfg.Logging.File,
		Verbose: verbose,
	})
}

func openVersions(ctx context.Context, cfg *config.Config, logger *utils.Logger) (domain.VersionStore, error) {
	switch cfg.Storage.VersionsDriver {
	case config.DriverJSON:
		m, err := state.Open(ctx, state.ManagerOptions{
			BaseDir: cfg.Storage.Directory,
			Path:    utils.ExpandPath(cfg.Storage.VersionsPath),
			SiteURL: cfg.Site.RootURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open version state: %w", err)
		}
		return m, nil
	case config.DriverSQLite, "":
		path := utils.ExpandPath(cfg.Storage.VersionsPath)
		if path == "" {
			path = filepath.Join(cfg.Storage.Directory, sqliteVersions)
		}
		if cfg.Storage.InMemory {
			path = ":memory:"
		}
		s, err := store.OpenSQLite(ctx, path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open version database: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown versions driver %q", cfg.Storage.VersionsDriver)
	}
}

// Config returns the configuration
func (a *App) Config() *config.Config { return a.config }

// Logger returns the application logger
func (a *App) Logger() *utils.Logger { return a.logger }

// Controller returns the offline controller
func (a *App) Controller() *offline.Controller { return a.controller }

// Backend returns the storage backend
func (a *App) Backend() *backend.Local { return a.backend }

// Captures returns the capture store
func (a *App) Captures() *cache.BadgerCache { return a.captures }

// Consent returns the consent file used when storage.require_consent is set
func (a *App) Consent() *backend.ConsentFile { return a.consent }

// API returns the write-guarded REST client for the site
func (a *App) API() *apiclient.Client { return a.api }

// GoOffline synchronizes if needed and switches to offline mode
func (a *App) GoOffline(ctx context.Context) error {
	return a.controller.GoOffline(ctx)
}

// GoOnline switches back to online mode
func (a *App) GoOnline(ctx context.Context) bool {
	return a.controller.GoOnline(ctx)
}

// Forget drops the recorded version of a manifest so the next pass
// downloads its resources again. Relative URLs are resolved against the
// manifest list.
func (a *App) Forget(ctx context.Context, manifestURL string) (string, error) {
	if !utils.IsHTTPURL(manifestURL) {
		resolved, err := utils.ResolveURL(a.manifests.ListURL(), manifestURL)
		if err != nil {
			return "", err
		}
		manifestURL = resolved
	}
	return manifestURL, a.backend.ForgetManifest(ctx, manifestURL)
}

// Close releases every component
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	} else if a.captures != nil {
		errs = append(errs, a.captures.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	return errors.Join(errs...)
}
