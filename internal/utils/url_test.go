package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"HTTP://RB.Example.COM/dashboard/":          "http://rb.example.com/dashboard/",
		"http://rb.example.com:80/r/1/":             "http://rb.example.com/r/1/",
		"https://rb.example.com:443":                "https://rb.example.com/",
		"https://rb.example.com:8443/":              "https://rb.example.com:8443/",
		"http://rb.example.com/a/../dashboard/":     "http://rb.example.com/dashboard/",
		"http://rb.example.com/r/1#comments":        "http://rb.example.com/r/1",
		"http://rb.example.com/media/base.js?1234":  "http://rb.example.com/media/base.js?1234",
		"http://rb.example.com/dashboard/?view=all": "http://rb.example.com/dashboard/?view=all",
	}
	for in, want := range cases {
		got, err := NormalizeURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"/dashboard/", "rb.example.com", "://nope"} {
		_, err := NormalizeURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, ref, want string
	}{
		{"http://rb.example.com/offline/manifests/", "dashboard/", "http://rb.example.com/offline/manifests/dashboard/"},
		{"http://rb.example.com/offline/manifests", "dashboard/", "http://rb.example.com/offline/manifests/dashboard/"},
		{"http://rb.example.com/offline/manifests/", "/offline/manifests/media/", "http://rb.example.com/offline/manifests/media/"},
		{"http://rb.example.com/offline/list.json", "media/", "http://rb.example.com/offline/media/"},
		{"http://rb.example.com/offline/manifests/?site=1", "media/", "http://rb.example.com/offline/manifests/media/"},
		{"http://rb.example.com/offline/", "https://cdn.example.com/m/", "https://cdn.example.com/m/"},
	}

	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s + %s", tt.base, tt.ref)
	}
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "/media/base.js", StripQuery("/media/base.js?1234"))
	assert.Equal(t, "/r/1/", StripQuery("/r/1/#top"))
	assert.Equal(t, "/dashboard/", StripQuery("/dashboard/"))
}

func TestQueryOf(t *testing.T) {
	assert.Equal(t, "view=incoming", QueryOf("http://rb.example.com/dashboard/?view=incoming"))
	assert.Equal(t, "1234", QueryOf("/media/base.js?1234"))
	assert.Empty(t, QueryOf("/dashboard/"))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("http://rb.example.com/offline/manifests/"))
	assert.True(t, IsHTTPURL("https://rb.example.com"))
	assert.False(t, IsHTTPURL("ftp://rb.example.com/"))
	assert.False(t, IsHTTPURL("/offline/manifests/"))
	assert.False(t, IsHTTPURL("http://"))
	assert.False(t, IsHTTPURL("%zz"))
}
