package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quantmind-br/offsync/internal/config"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/output"
	"github.com/quantmind-br/offsync/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Site.RootURL = root
	cfg.Storage.Directory = t.TempDir()
	cfg.Storage.InMemory = true
	cfg.Storage.ConsentFile = filepath.Join(t.TempDir(), "consent")
	cfg.Connectivity.ProbeURL = root + "/dashboard/"
	cfg.Network.Timeout = 5 * time.Second
	cfg.Network.MaxRetries = 0
	cfg.Logging.Level = "error"
	require.NoError(t, cfg.Validate())
	return cfg
}

func newApp(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()

	opts.Config = cfg
	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Site.RootURL = ""
	_, err = New(context.Background(), Options{Config: cfg})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "site.root_url", validation.Field)
}

func TestApp_SynchronizeAndLookup(t *testing.T) {
	site := testutil.NewSite(t, nil)

	var mu sync.Mutex
	var states []domain.SyncState
	var progress [][2]int

	a := newApp(t, testConfig(t, site.URL), Options{
		OnStateChanged: func(s domain.SyncState) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
		OnProgress: func(completed, total int) {
			mu.Lock()
			progress = append(progress, [2]int{completed, total})
			mu.Unlock()
		},
	})
	ctx := context.Background()

	assert.Equal(t, domain.StateOnline, a.Controller().State())
	require.NoError(t, a.GoOffline(ctx))
	assert.Equal(t, domain.StateOffline, a.Controller().State())

	mu.Lock()
	assert.Equal(t, []domain.SyncState{domain.StateCalculatingSync, domain.StateSyncing, domain.StateOffline}, states)
	assert.Equal(t, [][2]int{{0, 3}, {1, 3}, {2, 3}, {3, 3}}, progress)
	mu.Unlock()

	status, err := a.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, status.Records, 2)
	assert.True(t, status.LookupsEnabled)
	assert.True(t, status.Permission)
	assert.EqualValues(t, 3, status.Captures)
	testutil.VerifyCaptured(t, a.Captures(), site.URL+"/dashboard/", testutil.DashboardHTML)

	res, err := a.Backend().Lookup(ctx, site.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, testutil.DashboardHTML, string(res.Body))

	res, err = a.Backend().Lookup(ctx, "/media/base.js?999")
	require.NoError(t, err)
	assert.Equal(t, testutil.BaseJS, string(res.Body))

	_, err = a.API().Post(ctx, "/api/review-requests/", map[string]string{"summary": "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrOffline)

	assert.True(t, a.GoOnline(ctx))
	assert.Equal(t, domain.StateOnline, a.Controller().State())
	assert.False(t, a.Backend().LookupsEnabled())
}

func TestApp_SecondPassSkipsUnchanged(t *testing.T) {
	site := testutil.NewSite(t, nil)
	a := newApp(t, testConfig(t, site.URL), Options{})
	ctx := context.Background()

	require.NoError(t, a.GoOffline(ctx))
	hits := site.Hits("/dashboard/")

	require.True(t, a.GoOnline(ctx))
	require.NoError(t, a.GoOffline(ctx))

	assert.Equal(t, domain.StateOffline, a.Controller().State())
	// only the connectivity probe may touch the page again
	assert.Equal(t, hits, site.Hits("/dashboard/"))
}

func TestApp_PersistsOfflineMode(t *testing.T) {
	site := testutil.NewSite(t, nil)
	cfg := testConfig(t, site.URL)
	cfg.Storage.InMemory = false
	cfg.Storage.VersionsDriver = config.DriverSQLite
	ctx := context.Background()

	first, err := New(ctx, Options{Config: cfg, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	require.NoError(t, first.GoOffline(ctx))
	require.NoError(t, first.Close())

	assert.FileExists(t, filepath.Join(cfg.Storage.Directory, sqliteVersions))

	second := newApp(t, cfg, Options{})
	assert.Equal(t, domain.StateOffline, second.Controller().State())

	records, err := second.Backend().Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	res, err := second.Backend().Lookup(ctx, "/media/base.js")
	require.NoError(t, err)
	assert.Equal(t, testutil.BaseJS, string(res.Body))
}

func TestApp_ForgetRecapturesManifest(t *testing.T) {
	site := testutil.NewSite(t, nil)
	a := newApp(t, testConfig(t, site.URL), Options{})
	ctx := context.Background()

	require.NoError(t, a.GoOffline(ctx))
	hits := site.Hits("/media/base.js")

	forgotten, err := a.Forget(ctx, "media/")
	require.NoError(t, err)
	assert.Equal(t, site.URL+"/offline/manifests/media/", forgotten)

	records, err := a.Backend().Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, a.Controller().Synchronize(ctx))
	assert.Greater(t, site.Hits("/media/base.js"), hits)

	records, err = a.Backend().Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestApp_JSONVersions(t *testing.T) {
	site := testutil.NewSite(t, nil)
	cfg := testConfig(t, site.URL)
	cfg.Storage.InMemory = false
	cfg.Storage.VersionsDriver = config.DriverJSON

	a := newApp(t, cfg, Options{})
	require.NoError(t, a.GoOffline(context.Background()))

	data := testutil.ReadFile(t, filepath.Join(cfg.Storage.Directory, "versions.json"))
	assert.Contains(t, data, `"1234"`)
	assert.Contains(t, data, "/offline/manifests/dashboard/")
}

func TestApp_RequireConsent(t *testing.T) {
	site := testutil.NewSite(t, nil)
	cfg := testConfig(t, site.URL)
	cfg.Storage.RequireConsent = true

	a := newApp(t, cfg, Options{})
	ctx := context.Background()

	err := a.GoOffline(ctx)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, domain.StateOnline, a.Controller().State())

	require.NoError(t, a.Consent().Grant())
	require.NoError(t, a.GoOffline(ctx))
	assert.Equal(t, domain.StateOffline, a.Controller().State())
}

func TestApp_ManifestFailure(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Handle500(t, "/offline/manifests/")
	ts.HandleHTML(t, "/dashboard/", testutil.DashboardHTML)

	a := newApp(t, testConfig(t, ts.URL), Options{})

	err := a.GoOffline(context.Background())
	var manifestErr *domain.ManifestError
	require.ErrorAs(t, err, &manifestErr)
	assert.Equal(t, domain.StateSyncFailed, a.Controller().State())
}

func TestApp_UnreachableSite(t *testing.T) {
	a := newApp(t, testConfig(t, "http://127.0.0.1:1"), Options{})
	ctx := context.Background()

	assert.True(t, a.Controller().IsOffline(), "connectivity is probed on startup")

	require.NoError(t, a.GoOffline(ctx))
	assert.Equal(t, domain.StateOffline, a.Controller().State())
	assert.True(t, a.Backend().LookupsEnabled())

	_, err := a.API().Post(ctx, "/api/review-requests/", map[string]string{"summary": "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrOffline)

	assert.False(t, a.GoOnline(ctx))
	assert.Equal(t, domain.StateOffline, a.Controller().State())
}

func TestApp_Export(t *testing.T) {
	site := testutil.NewSite(t, nil)
	a := newApp(t, testConfig(t, site.URL), Options{})
	ctx := context.Background()
	require.NoError(t, a.GoOffline(ctx))

	dir := t.TempDir()
	result, err := a.Export(ctx, output.ExporterOptions{
		BaseDir:    dir,
		Format:     output.FormatMirror,
		WriteIndex: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Written)
	assert.FileExists(t, filepath.Join(dir, "index.json"))
}

func TestApp_Doctor(t *testing.T) {
	site := testutil.NewSite(t, nil)
	a := newApp(t, testConfig(t, site.URL), Options{})

	for _, check := range a.Doctor(context.Background()) {
		assert.True(t, check.Passed, "%s: %s", check.Name, check.Detail)
	}
}

func TestApp_DoctorReportsFailures(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Handle404(t, "/")
	cfg := testConfig(t, ts.URL)
	cfg.Storage.RequireConsent = true

	a := newApp(t, cfg, Options{})

	failed := map[string]bool{}
	for _, check := range a.Doctor(context.Background()) {
		if !check.Passed {
			failed[check.Name] = true
		}
	}
	assert.True(t, failed["Manifest list"])
	assert.True(t, failed["Storage permission"])
	assert.True(t, failed["Connectivity"])
}

func TestApp_WatchFlagFile(t *testing.T) {
	site := testutil.NewSite(t, nil)
	cfg := testConfig(t, site.URL)
	flag := filepath.Join(t.TempDir(), "offline.flag")
	cfg.Connectivity.FlagFile = flag

	a := newApp(t, cfg, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	require.NoError(t, os.WriteFile(flag, nil, 0644))
	require.Eventually(t, func() bool {
		return a.Controller().State() == domain.StateOffline
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, a.Controller().IsOffline())

	require.NoError(t, os.Remove(flag))
	require.Eventually(t, func() bool {
		return a.Controller().State() == domain.StateOnline
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestApp_ServeRequiresDefinitions(t *testing.T) {
	site := testutil.NewSite(t, nil)
	a := newApp(t, testConfig(t, site.URL), Options{})

	err := a.Serve(context.Background(), ServeOptions{
		Address:     "127.0.0.1:0",
		Definitions: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	assert.Error(t, err)
}
