package manifest

import (
	"strings"

	"github.com/quantmind-br/offsync/internal/domain"
)

// Content types of the rendered manifest formats
const (
	ContentTypeJSON          = "application/json"
	ContentTypeCacheManifest = "text/cache-manifest"
)

// GearsVersion is the betaManifestVersion emitted in Gears documents
const GearsVersion = 2

// GearsEntry is one entry of a Gears resource-store manifest
type GearsEntry struct {
	URL         string             `json:"url"`
	Redirect    string             `json:"redirect,omitempty"`
	MatchQuery  *domain.MatchQuery `json:"matchQuery,omitempty"`
	IgnoreQuery bool               `json:"ignoreQuery,omitempty"`
}

// GearsManifest is the Gears-compatible rendering of a manifest
type GearsManifest struct {
	BetaManifestVersion int          `json:"betaManifestVersion"`
	Version             string       `json:"version"`
	Entries             []GearsEntry `json:"entries"`
}

// RenderGears converts m into a Gears manifest. Aliases become redirect
// entries pointing at their primary URL.
func RenderGears(m *domain.Manifest) GearsManifest {
	out := GearsManifest{
		BetaManifestVersion: GearsVersion,
		Version:             m.Version,
		Entries:             make([]GearsEntry, 0, len(m.URLs)),
	}

	for _, item := range m.URLs {
		entry := GearsEntry{
			URL:         item.URL,
			Redirect:    item.Redirect,
			IgnoreQuery: item.IgnoreQuery,
		}
		if len(item.MatchQuery.Params()) > 0 {
			// Gears matches the query itself; the stored URL must be bare.
			entry.MatchQuery = item.MatchQuery
			entry.URL = stripQuery(entry.URL)
		}
		out.Entries = append(out.Entries, entry)

		for _, alias := range item.Aliases {
			out.Entries = append(out.Entries, GearsEntry{URL: alias, Redirect: item.URL})
		}
	}
	return out
}

// RenderHTML5 renders m as an HTML5 application cache manifest
func RenderHTML5(m *domain.Manifest) string {
	lines := []string{"CACHE MANIFEST", "# v" + m.Version}
	for _, item := range m.URLs {
		lines = append(lines, item.URL)
		lines = append(lines, item.Aliases...)
	}
	return strings.Join(lines, "\n") + "\n"
}

func stripQuery(u string) string {
	if i := strings.Index(u, "?"); i >= 0 {
		return u[:i]
	}
	return u
}
