package manifest

import (
	"encoding/json"
	"testing"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGears(t *testing.T) {
	m := &domain.Manifest{
		Version: "doe-12-34",
		URLs: []domain.URLItem{
			{URL: "/dashboard/"},
			{URL: "/", Redirect: "/dashboard/"},
			{URL: "/dashboard/?view=incoming", MatchQuery: &domain.MatchQuery{HasAll: "view=incoming"}},
			{URL: "/media/base.js?1234", IgnoreQuery: true},
			{URL: "/r/1/", Aliases: []string{"/r/1"}},
		},
	}

	g := RenderGears(m)

	assert.Equal(t, GearsVersion, g.BetaManifestVersion)
	assert.Equal(t, "doe-12-34", g.Version)
	require.Len(t, g.Entries, 6)
	assert.Equal(t, GearsEntry{URL: "/dashboard/"}, g.Entries[0])
	assert.Equal(t, GearsEntry{URL: "/", Redirect: "/dashboard/"}, g.Entries[1])
	assert.Equal(t, "/dashboard/", g.Entries[2].URL)
	assert.Equal(t, "view=incoming", g.Entries[2].MatchQuery.HasAll)
	assert.Equal(t, "/media/base.js?1234", g.Entries[3].URL, "ignoreQuery keeps the query")
	assert.True(t, g.Entries[3].IgnoreQuery)
	assert.Equal(t, GearsEntry{URL: "/r/1", Redirect: "/r/1/"}, g.Entries[5])
}

func TestRenderGears_JSONShape(t *testing.T) {
	g := RenderGears(&domain.Manifest{Version: "1", URLs: []domain.URLItem{{URL: "/a"}}})

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"betaManifestVersion":2,"version":"1","entries":[{"url":"/a"}]}`, string(data))
}

func TestRenderHTML5(t *testing.T) {
	m := &domain.Manifest{
		Version: "9",
		URLs: []domain.URLItem{
			{URL: "/a"},
			{URL: "/b", Aliases: []string{"/b-alt"}},
		},
	}

	assert.Equal(t, "CACHE MANIFEST\n# v9\n/a\n/b\n/b-alt\n", RenderHTML5(m))
}

func TestRenderHTML5_Empty(t *testing.T) {
	assert.Equal(t, "CACHE MANIFEST\n# v1\n", RenderHTML5(&domain.Manifest{Version: "1"}))
}
