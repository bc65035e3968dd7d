package state

import (
	"sort"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
)

// StateVersion is the schema version for state file migration
const StateVersion = 1

// VersionsState is the on-disk document holding manifest versions
type VersionsState struct {
	Version   int                      `json:"version"`
	SiteURL   string                   `json:"site_url,omitempty"`
	LastSync  time.Time                `json:"last_sync"`
	Manifests map[string]ManifestState `json:"manifests"`
}

// ManifestState is the last synchronized version of one manifest
type ManifestState struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVersionsState creates a new empty state
func NewVersionsState(siteURL string) *VersionsState {
	return &VersionsState{
		Version:   StateVersion,
		SiteURL:   siteURL,
		Manifests: make(map[string]ManifestState),
	}
}

// ManifestCount returns the number of manifests in the state
func (s *VersionsState) ManifestCount() int {
	return len(s.Manifests)
}

// Record returns the version record for a manifest URL
func (s *VersionsState) Record(manifestURL string) (domain.VersionRecord, bool) {
	m, ok := s.Manifests[manifestURL]
	if !ok {
		return domain.VersionRecord{}, false
	}
	return domain.VersionRecord{ManifestURL: manifestURL, Version: m.Version, UpdatedAt: m.UpdatedAt}, true
}

// Records returns every record ordered by manifest URL
func (s *VersionsState) Records() []domain.VersionRecord {
	urls := make([]string, 0, len(s.Manifests))
	for u := range s.Manifests {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	records := make([]domain.VersionRecord, 0, len(urls))
	for _, u := range urls {
		rec, _ := s.Record(u)
		records = append(records, rec)
	}
	return records
}
