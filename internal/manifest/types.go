package manifest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quantmind-br/offsync/internal/domain"
)

// Definitions is the server-side description of every published manifest
type Definitions struct {
	Manifests []Definition `yaml:"manifests" json:"manifests"`
}

// Definition is one named, versioned manifest
type Definition struct {
	Name    string           `yaml:"name" json:"name"`
	Version string           `yaml:"version" json:"version"`
	URLs    []domain.URLItem `yaml:"urls" json:"urls"`
}

// Validate validates the definitions
func (d *Definitions) Validate() error {
	if len(d.Manifests) == 0 {
		return ErrNoManifests
	}

	seen := make(map[string]bool, len(d.Manifests))
	for i, m := range d.Manifests {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("manifest %d: %w", i, ErrEmptyName)
		}
		if seen[m.Name] {
			return fmt.Errorf("manifest %q: %w", m.Name, ErrDuplicateName)
		}
		seen[m.Name] = true

		if strings.TrimSpace(m.Version) == "" {
			return fmt.Errorf("manifest %q: %w", m.Name, ErrEmptyVersion)
		}
		for j, item := range m.URLs {
			if strings.TrimSpace(item.URL) == "" {
				return fmt.Errorf("manifest %q entry %d: %w", m.Name, j, ErrEmptyURL)
			}
		}
	}
	return nil
}

// Find returns the definition with the given name
func (d *Definitions) Find(name string) (*Definition, error) {
	for i := range d.Manifests {
		if d.Manifests[i].Name == name {
			return &d.Manifests[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownManifest, name)
}

// List builds the manifest list document, one entry per definition,
// rooted at listURL
func (d *Definitions) List(listURL string) domain.ManifestList {
	base := strings.TrimRight(listURL, "/")
	refs := make([]domain.ManifestRef, 0, len(d.Manifests))
	for _, m := range d.Manifests {
		refs = append(refs, domain.ManifestRef{
			URL: base + "/" + url.PathEscape(m.Name) + "/",
		})
	}
	return domain.ManifestList{URLs: refs}
}

// Manifest returns the wire document for the definition
func (m Definition) Manifest() *domain.Manifest {
	urls := make([]domain.URLItem, len(m.URLs))
	copy(urls, m.URLs)
	return &domain.Manifest{Version: m.Version, URLs: urls}
}
