package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// Metadata names persisted alongside the captures
const (
	metaLookups = "lookups"
	metaRules   = "rules"
)

var (
	_ domain.StorageBackend   = (*Local)(nil)
	_ domain.LookupRuleSetter = (*Local)(nil)
	_ domain.ResourceReader   = (*Local)(nil)
)

// CaptureStore is a domain.CaptureStore that can also persist small
// metadata values
type CaptureStore interface {
	domain.CaptureStore
	GetMeta(name string) ([]byte, error)
	SetMeta(name string, value []byte) error
}

// LocalOptions configures a Local backend
type LocalOptions struct {
	// RootURL resolves site-relative manifest entries
	RootURL    string
	Fetcher    domain.Fetcher
	Captures   CaptureStore
	Versions   domain.VersionStore
	Permission PermissionPolicy
	Logger     *utils.Logger
}

// Local captures resources over HTTP into a local capture store and
// keeps manifest versions in a VersionStore
type Local struct {
	root       *url.URL
	fetcher    domain.Fetcher
	captures   CaptureStore
	versions   domain.VersionStore
	permission PermissionPolicy
	logger     *utils.Logger

	lookups atomic.Bool
	rules   *ruleSet
}

// NewLocal creates a Local backend, restoring the lookup mode and lookup
// rules persisted by a previous session
func NewLocal(opts LocalOptions) (*Local, error) {
	if opts.Fetcher == nil || opts.Captures == nil || opts.Versions == nil {
		return nil, errors.New("backend: fetcher, captures and versions are required")
	}

	var root *url.URL
	if opts.RootURL != "" {
		u, err := url.Parse(opts.RootURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%w: root %q", domain.ErrInvalidURL, opts.RootURL)
		}
		root = u
	}

	permission := opts.Permission
	if permission == nil {
		permission = AllowAll{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	b := &Local{
		root:       root,
		fetcher:    opts.Fetcher,
		captures:   opts.Captures,
		versions:   opts.Versions,
		permission: permission,
		logger:     logger.WithComponent("backend"),
		rules:      newRuleSet(),
	}

	if err := b.restore(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Local) restore() error {
	flag, err := b.captures.GetMeta(metaLookups)
	switch {
	case err == nil:
		b.lookups.Store(string(flag) == "1")
	case !errors.Is(err, domain.ErrCacheMiss):
		return fmt.Errorf("failed to restore lookup mode: %w", err)
	}

	data, err := b.captures.GetMeta(metaRules)
	switch {
	case err == nil:
		var items []domain.URLItem
		if err := json.Unmarshal(data, &items); err != nil {
			b.logger.Warn().Err(err).Msg("Discarding unreadable lookup rules")
			return nil
		}
		b.rules.replace(items)
	case !errors.Is(err, domain.ErrCacheMiss):
		return fmt.Errorf("failed to restore lookup rules: %w", err)
	}
	return nil
}

// Resolve turns a manifest entry URL into the absolute URL it is stored under
func (b *Local) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	ref, err := url.Parse(raw)
	if err != nil || raw == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidURL, raw)
	}
	if !ref.IsAbs() {
		if b.root == nil {
			return "", fmt.Errorf("%w: relative URL %q without a site root", domain.ErrInvalidURL, raw)
		}
		ref = b.root.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidURL, raw)
	}
	ref.Fragment = ""
	return ref.String(), nil
}

// Capture fetches url and stores the response body
func (b *Local) Capture(ctx context.Context, rawURL string) error {
	target, err := b.Resolve(rawURL)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := b.fetcher.Get(ctx, target)
	if err != nil {
		return err
	}

	res := &domain.Resource{
		URL:         target,
		ContentType: resp.ContentType,
		Body:        resp.Body,
		CapturedAt:  time.Now(),
	}
	if err := b.captures.Put(ctx, res); err != nil {
		return fmt.Errorf("failed to store %s: %w", target, err)
	}

	b.logger.Debug().
		Str("url", target).
		Int("bytes", len(resp.Body)).
		Dur("took", time.Since(start)).
		Msg("Captured")
	return nil
}

// AliasURL makes alias resolve to the content stored for url
func (b *Local) AliasURL(ctx context.Context, rawURL, alias string) error {
	primary, err := b.Resolve(rawURL)
	if err != nil {
		return err
	}
	aliasURL, err := b.Resolve(alias)
	if err != nil {
		return err
	}
	return b.captures.Link(ctx, primary, aliasURL)
}

// AddLookupRule records the ignoreQuery or matchQuery rule of item
func (b *Local) AddLookupRule(ctx context.Context, item domain.URLItem) error {
	if !item.HasLookupRule() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved, err := b.Resolve(item.URL)
	if err != nil {
		return err
	}
	item.URL = resolved
	item.Aliases = nil
	b.rules.add(item)

	data, err := json.Marshal(b.rules.all())
	if err != nil {
		return err
	}
	return b.captures.SetMeta(metaRules, data)
}

// Rules returns the recorded lookup rules
func (b *Local) Rules() []domain.URLItem {
	return b.rules.all()
}

// Lookup returns the captured resource for url. A miss on the exact URL
// falls back to the lookup rules.
func (b *Local) Lookup(ctx context.Context, rawURL string) (*domain.Resource, error) {
	target, err := b.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	res, err := b.captures.Get(ctx, target)
	if !errors.Is(err, domain.ErrCacheMiss) {
		return res, err
	}

	if entry, ok := b.rules.match(target); ok {
		return b.captures.Get(ctx, entry)
	}
	return nil, err
}

// SetLookupsEnabled switches reads to the local store and persists the mode
func (b *Local) SetLookupsEnabled(enabled bool) {
	b.lookups.Store(enabled)

	value := []byte("0")
	if enabled {
		value = []byte("1")
	}
	if err := b.captures.SetMeta(metaLookups, value); err != nil {
		b.logger.Warn().Err(err).Bool("enabled", enabled).Msg("Failed to persist lookup mode")
	}
}

// LookupsEnabled reports whether reads are served locally
func (b *Local) LookupsEnabled() bool {
	return b.lookups.Load()
}

// HasManifest reports whether the recorded version for url equals m.Version
func (b *Local) HasManifest(ctx context.Context, manifestURL string, m *domain.Manifest) (bool, error) {
	rec, ok, err := b.versions.Get(ctx, manifestURL)
	if err != nil {
		return false, err
	}
	return ok && rec.Version == m.Version, nil
}

// StoreManifest records m.Version for url
func (b *Local) StoreManifest(ctx context.Context, manifestURL string, m *domain.Manifest) error {
	return b.versions.Put(ctx, domain.VersionRecord{
		ManifestURL: manifestURL,
		Version:     m.Version,
		UpdatedAt:   time.Now(),
	})
}

// Records returns every stored VersionRecord
func (b *Local) Records(ctx context.Context) ([]domain.VersionRecord, error) {
	return b.versions.List(ctx)
}

// ForgetManifest drops the recorded version of manifestURL so the next
// pass treats it as changed
func (b *Local) ForgetManifest(ctx context.Context, manifestURL string) error {
	if err := b.versions.Delete(ctx, manifestURL); err != nil {
		return err
	}
	b.logger.Info().Str("manifest", manifestURL).Msg("Forgot manifest version")
	return nil
}

// CheckPermission delegates to the permission policy
func (b *Local) CheckPermission(ctx context.Context) (bool, error) {
	return b.permission.Allowed(ctx)
}

// IsOffline reports whether lookups are served from the local store
func (b *Local) IsOffline() bool {
	return b.lookups.Load()
}

// Close releases the capture and version stores
func (b *Local) Close() error {
	return errors.Join(b.captures.Close(), b.versions.Close())
}
