package domain

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SyncState is the state of the offline synchronization controller
type SyncState int

const (
	// StateOnline means reads and writes go to the network
	StateOnline SyncState = iota
	// StateOffline means reads are served from the local store and writes are rejected
	StateOffline
	// StateCalculatingSync means manifests are being fetched and diffed
	StateCalculatingSync
	// StateSyncing means pending resources are being captured
	StateSyncing
	// StateSyncFailed means the last synchronization pass failed
	StateSyncFailed
)

// String returns the state name
func (s SyncState) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	case StateCalculatingSync:
		return "calculating_sync"
	case StateSyncing:
		return "syncing"
	case StateSyncFailed:
		return "sync_failed"
	default:
		return "unknown"
	}
}

// IsSynchronizing reports whether a synchronization pass is in progress
func (s SyncState) IsSynchronizing() bool {
	return s == StateCalculatingSync || s == StateSyncing
}

// ManifestRef is an entry in the top-level manifest list
type ManifestRef struct {
	URL string `json:"url" yaml:"url"`
}

// ManifestList is the document served at <site-root>/offline/manifests/
type ManifestList struct {
	URLs []ManifestRef `json:"urls"`
}

// MatchQuery restricts which query strings resolve to a cached entry
type MatchQuery struct {
	HasAll string `json:"hasAll,omitempty" yaml:"has_all,omitempty"`
}

// Params returns the individual key=value pairs required by HasAll
func (m *MatchQuery) Params() []string {
	if m == nil || m.HasAll == "" {
		return nil
	}
	var params []string
	for _, p := range strings.Split(m.HasAll, "&") {
		if p != "" {
			params = append(params, p)
		}
	}
	return params
}

// Matches reports whether rawQuery contains every parameter of HasAll
func (m *MatchQuery) Matches(rawQuery string) bool {
	required := m.Params()
	if len(required) == 0 {
		return true
	}

	present := make(map[string]bool)
	for _, p := range strings.Split(rawQuery, "&") {
		if decoded, err := url.QueryUnescape(p); err == nil {
			present[decoded] = true
		}
		present[p] = true
	}

	for _, r := range required {
		if !present[r] {
			return false
		}
	}
	return true
}

// URLItem is one resource to capture plus the URLs that must resolve to it
type URLItem struct {
	URL         string      `json:"url" yaml:"url"`
	Aliases     []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Redirect    string      `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	MatchQuery  *MatchQuery `json:"matchQuery,omitempty" yaml:"match_query,omitempty"`
	IgnoreQuery bool        `json:"ignoreQuery,omitempty" yaml:"ignore_query,omitempty"`
}

// HasLookupRule reports whether the item changes how lookups are matched
func (i URLItem) HasLookupRule() bool {
	return i.IgnoreQuery || len(i.MatchQuery.Params()) > 0
}

// Manifest is a versioned set of resources to cache
type Manifest struct {
	Version string    `json:"version"`
	URLs    []URLItem `json:"urls"`
}

// VersionRecord is the last synchronized version of one manifest
type VersionRecord struct {
	ManifestURL string    `json:"manifest_url" db:"manifest_url"`
	Version     string    `json:"version" db:"version"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Resource is a captured response body
type Resource struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CapturedAt  time.Time `json:"captured_at"`
}

// Response represents an HTTP response
type Response struct {
	StatusCode  int
	Body        []byte
	Headers     http.Header
	ContentType string
	URL         string
}

// Progress is a snapshot of download progress
type Progress struct {
	Completed int
	Total     int
}

// Done reports whether all pending resources were captured
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed == p.Total
}
