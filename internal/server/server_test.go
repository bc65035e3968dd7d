package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantmind-br/offsync/internal/backend"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/manifest"
	"github.com/quantmind-br/offsync/internal/offline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definitionsYAML = `
manifests:
  - name: dashboard
    version: "7"
    urls:
      - url: /dashboard/
        aliases: [/]
      - url: /dashboard/?view=incoming
        match_query:
          has_all: view=incoming
  - name: media
    version: "1234"
    urls:
      - url: /media/base.js?1234
        ignore_query: true
`

func loadDefinitions(t *testing.T) *manifest.Definitions {
	t.Helper()
	defs, err := manifest.NewLoader().LoadFromBytes([]byte(definitionsYAML), ".yaml")
	require.NoError(t, err)
	return defs
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Definitions == nil {
		opts.Definitions = loadDefinitions(t)
	}
	s, err := New(opts)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{Definitions: &manifest.Definitions{}})
	assert.ErrorIs(t, err, manifest.ErrNoManifests)
}

func TestManifestList(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+ManifestsPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, manifest.ContentTypeJSON, resp.Header.Get("Content-Type"))

	var list domain.ManifestList
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Equal(t, []domain.ManifestRef{
		{URL: ts.URL + "/offline/manifests/dashboard/"},
		{URL: ts.URL + "/offline/manifests/media/"},
	}, list.URLs)
}

func TestManifestList_PublicBaseURL(t *testing.T) {
	ts := newTestServer(t, Options{BaseURL: "https://rb.example.com/"})

	_, body := get(t, ts.URL+ManifestsPath)

	var list domain.ManifestList
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Equal(t, "https://rb.example.com/offline/manifests/dashboard/", list.URLs[0].URL)
}

func TestManifestDocument(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/offline/manifests/dashboard/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	assert.Equal(t, "7", m.Version)
	require.Len(t, m.URLs, 2)
	assert.Equal(t, []string{"/"}, m.URLs[0].Aliases)
	assert.Equal(t, "view=incoming", m.URLs[1].MatchQuery.HasAll)
}

func TestManifestDocument_Gears(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/offline/manifests/dashboard/?format=gears")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var g manifest.GearsManifest
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, manifest.GearsVersion, g.BetaManifestVersion)
	assert.Equal(t, "7", g.Version)
	require.Len(t, g.Entries, 3)
	assert.Equal(t, manifest.GearsEntry{URL: "/", Redirect: "/dashboard/"}, g.Entries[1])
	assert.Equal(t, "/dashboard/", g.Entries[2].URL, "matchQuery entries drop the query")
}

func TestManifestDocument_UnknownFormat(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/offline/manifests/dashboard/?format=xml")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown format")
}

func TestCacheManifest(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, path := range []string{"/offline/manifests/media/cache.manifest", "/offline/manifests/media/?format=html5"} {
		resp, body := get(t, ts.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, manifest.ContentTypeCacheManifest, resp.Header.Get("Content-Type"))
		assert.Equal(t, "CACHE MANIFEST\n# v1234\n/media/base.js?1234\n", body)
	}
}

func TestUnknownManifest(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/offline/manifests/nope/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "nope")

	resp, _ = get(t, ts.URL+"/offline/manifests/nope/cache.manifest")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+ManifestsPath, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCachedResource(t *testing.T) {
	mem := backend.NewMemory()
	mem.SetContent("/dashboard/", []byte("<html>dashboard</html>"))
	ctx := context.Background()
	require.NoError(t, mem.Capture(ctx, "/dashboard/"))
	require.NoError(t, mem.AliasURL(ctx, "/dashboard/", "/"))

	ts := newTestServer(t, Options{Reader: mem})

	resp, body := get(t, ts.URL+"/offline/cache/?url=/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>dashboard</html>", body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.NotEmpty(t, resp.Header.Get(CapturedAtHeader))

	resp, _ = get(t, ts.URL+"/offline/cache/?url=/missing/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/offline/cache/")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCachedResource_NotMountedWithoutReader(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, _ := get(t, ts.URL+"/offline/cache/?url=/")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFromError(domain.ErrCacheMiss))
	assert.Equal(t, http.StatusNotFound, statusFromError(manifest.ErrUnknownManifest))
	assert.Equal(t, http.StatusBadRequest, statusFromError(domain.ErrInvalidURL))
	assert.Equal(t, http.StatusForbidden, statusFromError(domain.ErrPermissionDenied))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(io.ErrUnexpectedEOF))
}

// TestPublishAndSynchronize drives a full pass from the published
// manifests into an in-memory backend.
func TestPublishAndSynchronize(t *testing.T) {
	ts := newTestServer(t, Options{})

	fetcher, err := manifest.NewHTTPFetcher(manifest.FetcherOptions{ListURL: ts.URL + ManifestsPath})
	require.NoError(t, err)

	mem := backend.NewMemory()
	var progress []domain.Progress
	ctrl, err := offline.New(offline.Options{
		Backend:      mem,
		Fetcher:      fetcher,
		InitialState: domain.StateOnline,
		OnProgress: func(completed, total int) {
			progress = append(progress, domain.Progress{Completed: completed, Total: total})
		},
	})
	require.NoError(t, err)

	require.NoError(t, ctrl.GoOffline(context.Background()))

	assert.Equal(t, domain.StateOffline, ctrl.State())
	assert.True(t, mem.IsOffline())
	assert.Equal(t, []string{"/dashboard/", "/dashboard/?view=incoming", "/media/base.js?1234"}, mem.Captured())
	assert.Len(t, progress, 4)
	assert.Equal(t, 2, mem.VersionCount())

	v, ok := mem.Version(ts.URL + "/offline/manifests/media/")
	require.True(t, ok)
	assert.Equal(t, "1234", v)

	res, err := mem.Lookup(context.Background(), "/media/base.js?5678")
	require.NoError(t, err)
	assert.Equal(t, "/media/base.js?1234", res.URL)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s, err := New(Options{Definitions: loadDefinitions(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
