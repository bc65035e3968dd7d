package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
)

// maxAliasHops bounds alias chains in the Memory backend
const maxAliasHops = 8

var (
	_ domain.StorageBackend   = (*Memory)(nil)
	_ domain.LookupRuleSetter = (*Memory)(nil)
	_ domain.ResourceReader   = (*Memory)(nil)
)

// Memory is an in-process StorageBackend. Captured content is synthesized
// from the URL unless a body is registered with SetContent, and failures
// can be injected per URL.
type Memory struct {
	mu sync.Mutex

	allowed   bool
	lookups   bool
	content   map[string][]byte
	failures  map[string]error
	resources map[string][]byte
	aliases   map[string]string
	versions  map[string]string
	rules     *ruleSet

	captured      []string
	versionWrites int
}

// NewMemory creates an empty Memory backend with permission granted
func NewMemory() *Memory {
	return &Memory{
		allowed:   true,
		content:   make(map[string][]byte),
		failures:  make(map[string]error),
		resources: make(map[string][]byte),
		aliases:   make(map[string]string),
		versions:  make(map[string]string),
		rules:     newRuleSet(),
	}
}

// SetPermission grants or denies local storage
func (m *Memory) SetPermission(allowed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed = allowed
}

// SetContent registers the body served when url is captured
func (m *Memory) SetContent(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[url] = body
}

// FailCapture makes every capture of url fail with err
func (m *Memory) FailCapture(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[url] = err
}

// SetVersion seeds a VersionRecord without counting it as a write
func (m *Memory) SetVersion(manifestURL, version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[manifestURL] = version
}

// Version returns the recorded version for manifestURL
func (m *Memory) Version(manifestURL string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[manifestURL]
	return v, ok
}

// VersionCount returns the number of VersionRecords
func (m *Memory) VersionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.versions)
}

// VersionWrites returns how many times StoreManifest was called
func (m *Memory) VersionWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versionWrites
}

// Captured returns every URL passed to Capture, in call order
func (m *Memory) Captured() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.captured...)
}

// Capture implements domain.StorageBackend
func (m *Memory) Capture(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.captured = append(m.captured, url)
	if err := m.failures[url]; err != nil {
		return err
	}

	body, ok := m.content[url]
	if !ok {
		body = []byte("content of " + url)
	}
	m.resources[url] = body
	delete(m.aliases, url)
	return nil
}

// AliasURL implements domain.StorageBackend
func (m *Memory) AliasURL(ctx context.Context, url, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	primary, ok := m.resolveLocked(url)
	if !ok {
		return fmt.Errorf("alias %s: %w: %s", alias, domain.ErrCacheMiss, url)
	}
	if alias == primary {
		return nil
	}
	delete(m.resources, alias)
	m.aliases[alias] = primary
	return nil
}

func (m *Memory) resolveLocked(url string) (string, bool) {
	for depth := 0; depth < maxAliasHops; depth++ {
		if _, ok := m.resources[url]; ok {
			return url, true
		}
		next, ok := m.aliases[url]
		if !ok {
			return "", false
		}
		url = next
	}
	return "", false
}

// AddLookupRule implements domain.LookupRuleSetter
func (m *Memory) AddLookupRule(_ context.Context, item domain.URLItem) error {
	if item.HasLookupRule() {
		item.Aliases = nil
		m.rules.add(item)
	}
	return nil
}

// Lookup implements domain.ResourceReader
func (m *Memory) Lookup(_ context.Context, url string) (*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	primary, ok := m.resolveLocked(url)
	if !ok {
		entry, matched := m.rules.match(url)
		if !matched {
			return nil, domain.ErrCacheMiss
		}
		if primary, ok = m.resolveLocked(entry); !ok {
			return nil, domain.ErrCacheMiss
		}
	}
	return &domain.Resource{URL: primary, Body: m.resources[primary], CapturedAt: time.Now()}, nil
}

// SetLookupsEnabled implements domain.StorageBackend
func (m *Memory) SetLookupsEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = enabled
}

// HasManifest implements domain.StorageBackend
func (m *Memory) HasManifest(_ context.Context, url string, manifest *domain.Manifest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[url]
	return ok && v == manifest.Version, nil
}

// StoreManifest implements domain.StorageBackend
func (m *Memory) StoreManifest(_ context.Context, url string, manifest *domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[url] = manifest.Version
	m.versionWrites++
	return nil
}

// CheckPermission implements domain.StorageBackend
func (m *Memory) CheckPermission(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowed, nil
}

// IsOffline implements domain.StorageBackend
func (m *Memory) IsOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}
