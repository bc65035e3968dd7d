package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

var _ domain.ManifestFetcher = (*HTTPFetcher)(nil)

// FetcherOptions configures an HTTPFetcher
type FetcherOptions struct {
	// ListURL is the absolute URL of the manifest list
	ListURL string
	// Transport carries the requests; nil uses resty's default transport
	Transport http.RoundTripper
	Timeout   time.Duration
	Logger    *utils.Logger
}

// HTTPFetcher retrieves the manifest list and manifest documents as JSON
type HTTPFetcher struct {
	client  *resty.Client
	listURL string
	logger  *utils.Logger
}

// NewHTTPFetcher creates a fetcher for the manifest list at opts.ListURL
func NewHTTPFetcher(opts FetcherOptions) (*HTTPFetcher, error) {
	if !utils.IsHTTPURL(opts.ListURL) {
		return nil, fmt.Errorf("%w: manifest list %q", domain.ErrInvalidURL, opts.ListURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	return &HTTPFetcher{
		client:  client,
		listURL: opts.ListURL,
		logger:  logger.WithComponent("manifest"),
	}, nil
}

// ListURL returns the manifest list URL
func (f *HTTPFetcher) ListURL() string {
	return f.listURL
}

// FetchList returns the manifest references in list order, resolved
// against the list URL
func (f *HTTPFetcher) FetchList(ctx context.Context) ([]domain.ManifestRef, error) {
	var list domain.ManifestList
	if err := f.getJSON(ctx, f.listURL, &list); err != nil {
		return nil, &domain.ManifestError{URL: f.listURL, Err: err}
	}

	refs := make([]domain.ManifestRef, 0, len(list.URLs))
	for i, ref := range list.URLs {
		if strings.TrimSpace(ref.URL) == "" {
			return nil, &domain.ManifestError{
				URL: f.listURL,
				Err: fmt.Errorf("%w: entry %d has no url", domain.ErrInvalidManifest, i),
			}
		}
		resolved, err := utils.ResolveURL(f.listURL, ref.URL)
		if err != nil {
			return nil, &domain.ManifestError{
				URL: f.listURL,
				Err: fmt.Errorf("%w: %v", domain.ErrInvalidURL, err),
			}
		}
		refs = append(refs, domain.ManifestRef{URL: resolved})
	}

	f.logger.Debug().Int("manifests", len(refs)).Msg("Fetched manifest list")
	return refs, nil
}

// FetchManifest returns the manifest referenced by ref. Document-relative
// entry URLs ("media/base.js") are resolved against the manifest's own URL;
// root-relative and absolute entries are returned as published and resolved
// by the storage backend.
func (f *HTTPFetcher) FetchManifest(ctx context.Context, ref domain.ManifestRef) (*domain.Manifest, error) {
	target, err := utils.ResolveURL(f.listURL, ref.URL)
	if err != nil {
		return nil, &domain.ManifestError{URL: ref.URL, Err: fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)}
	}

	var m domain.Manifest
	if err := f.getJSON(ctx, target, &m); err != nil {
		return nil, &domain.ManifestError{URL: ref.URL, Err: err}
	}
	if err := validateDocument(&m); err != nil {
		return nil, &domain.ManifestError{URL: ref.URL, Err: err}
	}
	if err := resolveEntries(target, &m); err != nil {
		return nil, &domain.ManifestError{URL: ref.URL, Err: fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)}
	}

	f.logger.Debug().
		Str("manifest", ref.URL).
		Str("version", m.Version).
		Int("urls", len(m.URLs)).
		Msg("Fetched manifest")
	return &m, nil
}

func (f *HTTPFetcher) getJSON(ctx context.Context, target string, out any) error {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// The stealth transport reports HTTP errors itself
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			return fetchErr
		}
		return domain.NewFetchError(target, 0, err)
	}
	if resp.IsError() {
		return domain.NewFetchError(target, resp.StatusCode(), fmt.Errorf("%s", http.StatusText(resp.StatusCode())))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}
	return nil
}

func validateDocument(m *domain.Manifest) error {
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("%w: missing version", domain.ErrInvalidManifest)
	}
	for i, item := range m.URLs {
		if strings.TrimSpace(item.URL) == "" {
			return fmt.Errorf("%w: entry %d has no url", domain.ErrInvalidManifest, i)
		}
	}
	return nil
}

func resolveEntries(documentURL string, m *domain.Manifest) error {
	base, err := url.Parse(documentURL)
	if err != nil {
		return err
	}
	resolve := func(raw string) (string, error) {
		if raw == "" || strings.HasPrefix(raw, "/") {
			return raw, nil
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return "", err
		}
		if ref.IsAbs() {
			return raw, nil
		}
		return base.ResolveReference(ref).String(), nil
	}

	for i := range m.URLs {
		item := &m.URLs[i]
		if item.URL, err = resolve(item.URL); err != nil {
			return err
		}
		if item.Redirect, err = resolve(item.Redirect); err != nil {
			return err
		}
		for j, alias := range item.Aliases {
			if item.Aliases[j], err = resolve(alias); err != nil {
				return err
			}
		}
	}
	return nil
}
