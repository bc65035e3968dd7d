package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizeURL canonicalizes an absolute http(s) URL so equivalent
// spellings compare equal: scheme and host are lowercased, default ports
// and fragments are dropped and dot segments are removed. The trailing
// slash and the query are significant and kept.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && u.Port() == "80", u.Scheme == "https" && u.Port() == "443":
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
	} else {
		trailing := strings.HasSuffix(u.Path, "/")
		u.Path = path.Clean(u.Path)
		if trailing && u.Path != "/" {
			u.Path += "/"
		}
	}
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// ResolveURL resolves ref against base. A base whose last segment has no
// extension is treated as a directory, so "manifests" behaves like
// "manifests/".
func ResolveURL(base, ref string) (string, error) {
	if StripQuery(base) == base && !strings.HasSuffix(base, "/") && !strings.Contains(path.Base(base), ".") {
		base += "/"
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// StripQuery removes the query string and fragment from a URL
func StripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// QueryOf returns the raw query string of a URL, or "" if it has none
func QueryOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// IsHTTPURL reports whether rawURL is an absolute http or https URL
func IsHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
