// Package manifest fetches, defines, and renders offline manifests.
//
// A site publishes a manifest list and one document per manifest:
//
//	GET /offline/manifests/       {"urls": [{"url": "/offline/manifests/dashboard/"}]}
//	GET /offline/manifests/dashboard/
//	    {"version": "42", "urls": [{"url": "/dashboard/", "aliases": ["/"]}]}
//
// HTTPFetcher implements domain.ManifestFetcher over those two endpoints.
//
// # Definitions
//
// The serving side describes its manifests in YAML or JSON:
//
//	manifests:
//	  - name: dashboard
//	    version: "42"
//	    urls:
//	      - url: /dashboard/
//	        aliases: [/]
//	      - url: /dashboard/?view=incoming
//	        match_query:
//	          has_all: view=incoming
//
// Load them with a Loader:
//
//	defs, err := manifest.NewLoader().Load("manifests.yaml")
//
// A definition renders as the JSON wire document, as a Gears resource-store
// manifest (RenderGears), or as an HTML5 cache manifest (RenderHTML5).
//
// # Error Handling
//
// The loader returns wrapped sentinels: ErrNoManifests, ErrEmptyName,
// ErrDuplicateName, ErrEmptyVersion, ErrEmptyURL, ErrInvalidFormat,
// ErrFileNotFound and ErrUnsupportedExt. Fetch failures are returned as
// *domain.ManifestError wrapping a *domain.FetchError or
// domain.ErrInvalidManifest.
package manifest
