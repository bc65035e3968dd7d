package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// StateFileName is the default file name inside BaseDir
const StateFileName = "versions.json"

// Ensure Manager implements domain.VersionStore
var _ domain.VersionStore = (*Manager)(nil)

// Manager is a VersionStore kept in a single JSON file. Every Put is
// written through so a crash never loses an acknowledged version.
type Manager struct {
	path   string
	state  *VersionsState
	mu     sync.RWMutex
	logger *utils.Logger
}

// ManagerOptions contains options for creating a Manager
type ManagerOptions struct {
	BaseDir string
	// Path overrides BaseDir/StateFileName when set
	Path    string
	SiteURL string
	Logger  *utils.Logger
}

// NewManager creates a Manager with an empty in-memory state
func NewManager(opts ManagerOptions) *Manager {
	path := opts.Path
	if path == "" {
		path = filepath.Join(opts.BaseDir, StateFileName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Manager{
		path:   path,
		logger: logger.WithComponent("json-versions"),
		state:  NewVersionsState(opts.SiteURL),
	}
}

// Open creates a Manager and loads any existing state. A missing file
// starts empty; a corrupted or outdated one is discarded with a warning.
func Open(ctx context.Context, opts ManagerOptions) (*Manager, error) {
	m := NewManager(opts)
	err := m.Load(ctx)
	switch {
	case err == nil, errors.Is(err, ErrNoVersionsFile):
		return m, nil
	case errors.Is(err, ErrCorruptVersions), errors.Is(err, ErrSchemaMismatch):
		m.logger.Warn().Err(err).Str("path", m.path).Msg("Discarding version state, manifests will resync")
		return m, nil
	default:
		return nil, err
	}
}

// Load reads the state file
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return ErrNoVersionsFile
	}
	if err != nil {
		return err
	}

	var st VersionsState
	if err := json.Unmarshal(data, &st); err != nil {
		return ErrCorruptVersions
	}

	if st.Version != StateVersion {
		m.logger.Warn().
			Int("file_version", st.Version).
			Int("expected_version", StateVersion).
			Msg("State version mismatch")
		return ErrSchemaMismatch
	}
	if st.Manifests == nil {
		st.Manifests = make(map[string]ManifestState)
	}

	m.state = &st
	return nil
}

// Get returns the record for manifestURL, or false if none exists
func (m *Manager) Get(ctx context.Context, manifestURL string) (domain.VersionRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.state.Record(manifestURL)
	return rec, ok, nil
}

// Put inserts or updates the record for rec.ManifestURL and saves the file
func (m *Manager) Put(ctx context.Context, rec domain.VersionRecord) error {
	if rec.ManifestURL == "" {
		return fmt.Errorf("put version: %w", domain.ErrInvalidURL)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous, existed := m.state.Manifests[rec.ManifestURL]
	m.state.Manifests[rec.ManifestURL] = ManifestState{Version: rec.Version, UpdatedAt: updatedAt}

	if err := m.saveLocked(); err != nil {
		if existed {
			m.state.Manifests[rec.ManifestURL] = previous
		} else {
			delete(m.state.Manifests, rec.ManifestURL)
		}
		return err
	}
	return nil
}

// List returns every record ordered by manifest URL
func (m *Manager) List(ctx context.Context) ([]domain.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Records(), nil
}

// Delete removes the record for manifestURL
func (m *Manager) Delete(ctx context.Context, manifestURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state.Manifests[manifestURL]; !ok {
		return nil
	}
	delete(m.state.Manifests, manifestURL)
	return m.saveLocked()
}

// Close is a no-op; state is saved on every write
func (m *Manager) Close() error {
	return nil
}

// Path returns the state file location
func (m *Manager) Path() string {
	return m.path
}

// saveLocked writes the state atomically through a temp file
func (m *Manager) saveLocked() error {
	m.state.LastSync = time.Now().UTC()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	m.logger.Debug().
		Int("manifests", len(m.state.Manifests)).
		Str("path", m.path).
		Msg("State saved")
	return nil
}
