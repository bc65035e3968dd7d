package testutil

import (
	"testing"

	"github.com/quantmind-br/offsync/internal/manifest"
	"github.com/quantmind-br/offsync/internal/server"
	"github.com/stretchr/testify/require"
)

// SiteDefinitions describes a small review site with two manifests
const SiteDefinitions = `
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

const (
	DashboardHTML = `<html><head><title>Dashboard</title></head><body><h1>Incoming</h1><a href="/media/base.js?1234">js</a></body></html>`
	BaseJS        = `console.log("offline");`
)

// LoadDefinitions parses yamlDefs, or SiteDefinitions when empty
func LoadDefinitions(t *testing.T, yamlDefs string) *manifest.Definitions {
	t.Helper()

	if yamlDefs == "" {
		yamlDefs = SiteDefinitions
	}
	defs, err := manifest.NewLoader().LoadFromBytes([]byte(yamlDefs), ".yaml")
	require.NoError(t, err)

	return defs
}

// NewSite starts a test server that publishes defs under the offline
// manifest routes and serves the pages they reference. The site root
// answers too, so connectivity probes against it succeed.
func NewSite(t *testing.T, defs *manifest.Definitions) *TestServer {
	t.Helper()

	if defs == nil {
		defs = LoadDefinitions(t, "")
	}
	srv, err := server.New(server.Options{Definitions: defs})
	require.NoError(t, err)

	ts := NewTestServer(t)
	ts.Handle(t, "/offline/", srv.Routes())
	ts.HandleHTML(t, "/{$}", DashboardHTML)
	ts.HandleHTML(t, "/dashboard/", DashboardHTML)
	ts.HandleString(t, "/media/", "application/javascript", BaseJS)

	return ts
}
