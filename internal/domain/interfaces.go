package domain

import (
	"context"
	"net/http"
)

//go:generate mockgen -destination=../../tests/mocks/domain.go -package=mocks github.com/quantmind-br/offsync/internal/domain Connectivity,ManifestFetcher,OfflineChecker,StorageBackend

// StorageBackend is a pluggable local persistence mechanism for offline mode
type StorageBackend interface {
	// Capture fetches a resource and stores it locally
	Capture(ctx context.Context, url string) error
	// AliasURL makes alias resolve to the content already stored for url
	AliasURL(ctx context.Context, url, alias string) error
	// SetLookupsEnabled toggles whether reads are served from the local store
	SetLookupsEnabled(enabled bool)
	// HasManifest reports whether the stored version for url equals manifest.Version
	HasManifest(ctx context.Context, url string, manifest *Manifest) (bool, error)
	// StoreManifest records manifest.Version as the synchronized version for url
	StoreManifest(ctx context.Context, url string, manifest *Manifest) error
	// CheckPermission reports whether local storage may be used
	CheckPermission(ctx context.Context) (bool, error)
	// IsOffline reports whether the backend is serving lookups locally
	IsOffline() bool
}

// LookupRuleSetter is implemented by backends that honor matchQuery and
// ignoreQuery manifest entries
type LookupRuleSetter interface {
	AddLookupRule(ctx context.Context, item URLItem) error
}

// ResourceReader reads captured resources
type ResourceReader interface {
	Lookup(ctx context.Context, url string) (*Resource, error)
}

// ManifestFetcher retrieves manifests over the network
type ManifestFetcher interface {
	// FetchList returns the top-level manifest list in order
	FetchList(ctx context.Context) ([]ManifestRef, error)
	// FetchManifest returns the manifest document referenced by ref
	FetchManifest(ctx context.Context, ref ManifestRef) (*Manifest, error)
}

// VersionStore persists one VersionRecord per manifest URL
type VersionStore interface {
	// Get returns the record for manifestURL, or false if none exists
	Get(ctx context.Context, manifestURL string) (VersionRecord, bool, error)
	// Put inserts or updates the record for rec.ManifestURL
	Put(ctx context.Context, rec VersionRecord) error
	// List returns every record ordered by manifest URL
	List(ctx context.Context) ([]VersionRecord, error)
	// Delete removes the record for manifestURL; a missing record is not an error
	Delete(ctx context.Context, manifestURL string) error
	// Close releases resources
	Close() error
}

// CaptureStore maps URLs to captured resources
type CaptureStore interface {
	// Put stores a resource under its URL
	Put(ctx context.Context, res *Resource) error
	// Get returns the resource for url, following alias links
	Get(ctx context.Context, url string) (*Resource, error)
	// Link makes alias resolve to the resource stored for url
	Link(ctx context.Context, url, alias string) error
	// Has reports whether url (or an alias of it) is stored
	Has(ctx context.Context, url string) bool
	// Delete removes a resource
	Delete(ctx context.Context, url string) error
	// URLs returns the primary URL of every stored resource
	URLs(ctx context.Context) ([]string, error)
	// Close releases resources
	Close() error
}

// Fetcher defines the interface for HTTP fetching
type Fetcher interface {
	// Get fetches content from a URL
	Get(ctx context.Context, url string) (*Response, error)
	// GetWithHeaders fetches content with custom headers
	GetWithHeaders(ctx context.Context, url string, headers map[string]string) (*Response, error)
	// Transport returns an http.RoundTripper for other HTTP clients (e.g., resty)
	Transport() http.RoundTripper
	// Close releases resources
	Close() error
}

// Connectivity is the platform signal for network availability
type Connectivity interface {
	Online() bool
}

// OfflineChecker answers whether network writes must be rejected
type OfflineChecker interface {
	IsOffline() bool
}
