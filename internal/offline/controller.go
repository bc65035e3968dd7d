package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// StateFunc is notified after every state transition
type StateFunc func(state domain.SyncState)

// ProgressFunc is notified as pending resources are captured
type ProgressFunc func(completed, total int)

// Options contains options for creating a Controller
type Options struct {
	Backend domain.StorageBackend
	Fetcher domain.ManifestFetcher
	// Platform reports network connectivity; nil means always connected
	Platform domain.Connectivity
	Logger   *utils.Logger

	OnStateChanged StateFunc
	OnProgress     ProgressFunc

	// InitialState is StateOnline or StateOffline
	InitialState domain.SyncState
}

// Controller owns the online/offline state machine. It diffs manifests
// against recorded versions and captures changed resources one at a time.
type Controller struct {
	backend    domain.StorageBackend
	fetcher    domain.ManifestFetcher
	platform   domain.Connectivity
	logger     *utils.Logger
	onState    StateFunc
	onProgress ProgressFunc

	mu        sync.Mutex
	state     domain.SyncState
	pending   *DownloadQueue
	completed int
	totalURLs int
	token     *Token
	running   bool
	// done is closed when the running pass returns
	done chan struct{}
}

// New creates a Controller
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, errors.New("offline: storage backend is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("offline: manifest fetcher is required")
	}
	if opts.InitialState != domain.StateOnline && opts.InitialState != domain.StateOffline {
		return nil, fmt.Errorf("offline: invalid initial state %s", opts.InitialState)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Controller{
		backend:    opts.Backend,
		fetcher:    opts.Fetcher,
		platform:   opts.Platform,
		logger:     logger.WithComponent("offline"),
		onState:    opts.OnStateChanged,
		onProgress: opts.OnProgress,
		state:      opts.InitialState,
		pending:    NewDownloadQueue(),
	}, nil
}

// State returns the current state
func (c *Controller) State() domain.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the capture progress of the current or last pass
func (c *Controller) Progress() domain.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Progress{Completed: c.completed, Total: c.totalURLs}
}

// Pending returns the items still waiting to be captured
func (c *Controller) Pending() []domain.URLItem {
	return c.pending.Items()
}

// IsOffline reports whether network writes must be rejected: the platform
// has no connectivity or the backend serves lookups locally
func (c *Controller) IsOffline() bool {
	return !c.platformOnline() || c.backend.IsOffline()
}

// CheckPermission delegates to the backend
func (c *Controller) CheckPermission(ctx context.Context) (bool, error) {
	return c.backend.CheckPermission(ctx)
}

func (c *Controller) platformOnline() bool {
	return c.platform == nil || c.platform.Online()
}

// GoOffline switches to offline mode. When the platform is still connected
// it synchronizes first; already Offline or synchronizing is a no-op. A
// pass that GoOnline cancelled but whose last capture is still in flight
// is waited for, then a new pass starts.
func (c *Controller) GoOffline(ctx context.Context) error {
	c.mu.Lock()
	for c.running && c.state != domain.StateCalculatingSync && c.state != domain.StateSyncing {
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	if c.state == domain.StateOffline || c.running {
		c.mu.Unlock()
		return nil
	}

	if !c.platformOnline() {
		c.backend.SetLookupsEnabled(true)
		from := c.setStateLocked(domain.StateOffline)
		c.mu.Unlock()
		c.notify(from, domain.StateOffline)
		return nil
	}
	c.mu.Unlock()

	return c.Synchronize(ctx)
}

// GoOnline returns to online mode and halts a running pass at its next
// iteration boundary. It reports false, changing nothing, when the
// platform has no connectivity.
func (c *Controller) GoOnline(ctx context.Context) bool {
	if !c.platformOnline() {
		c.logger.Debug().Msg("Platform offline, staying in offline mode")
		return false
	}

	c.mu.Lock()
	if c.token != nil {
		c.token.Cancel()
	}
	c.backend.SetLookupsEnabled(false)
	from := c.setStateLocked(domain.StateOnline)
	c.mu.Unlock()

	if from != domain.StateOnline {
		c.notify(from, domain.StateOnline)
	}
	return true
}

// Synchronize fetches the manifest list, diffs every manifest against its
// recorded version and captures the resources of the changed ones. Only
// one pass runs at a time.
func (c *Controller) Synchronize(ctx context.Context) error {
	if c.isRunning() {
		return domain.ErrSyncInProgress
	}

	allowed, err := c.CheckPermission(ctx)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !allowed {
		c.logger.Warn().Msg("Local storage permission denied, not synchronizing")
		return domain.ErrPermissionDenied
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return domain.ErrSyncInProgress
	}
	token := &Token{}
	done := make(chan struct{})
	c.running = true
	c.token = token
	c.done = done
	c.completed, c.totalURLs = 0, 0
	c.pending.Clear()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		if c.token == token {
			c.token = nil
		}
		c.mu.Unlock()
		close(done)
	}()

	runID := uuid.NewString()
	logger := c.logger.WithRunID(runID)
	start := time.Now()

	if !c.advance(token, domain.StateCalculatingSync, nil) {
		return domain.ErrSyncCancelled
	}

	total, err := c.calculate(ctx, token, logger)
	if err != nil {
		return c.fail(token, logger, err)
	}
	if token.Cancelled() {
		return c.cancelled(logger)
	}

	if total == 0 {
		if !c.enterOffline(token) {
			return c.cancelled(logger)
		}
		logger.Info().Dur("took", time.Since(start)).Msg("Nothing changed since last synchronization")
		return nil
	}

	if !c.advance(token, domain.StateSyncing, func() { c.totalURLs = total }) {
		return c.cancelled(logger)
	}
	c.progress(0, total)

	if err := c.download(ctx, token, logger, total); err != nil {
		if errors.Is(err, domain.ErrSyncCancelled) {
			return c.cancelled(logger)
		}
		return c.fail(token, logger, err)
	}

	if !c.enterOffline(token) {
		return c.cancelled(logger)
	}
	logger.Info().
		Int("captured", total).
		Dur("took", time.Since(start)).
		Msg("Synchronization complete")
	return nil
}

// calculate processes the manifests strictly in list order and fills the
// download queue with the items of every changed manifest
func (c *Controller) calculate(ctx context.Context, token *Token, logger *utils.Logger) (int, error) {
	refs, err := c.fetcher.FetchList(ctx)
	if err != nil {
		return 0, asManifestError("manifest list", err)
	}
	logger.Debug().Int("manifests", len(refs)).Msg("Fetched manifest list")

	for _, ref := range refs {
		if token.Cancelled() {
			return 0, nil
		}

		m, err := c.fetcher.FetchManifest(ctx, ref)
		if err != nil {
			return 0, asManifestError(ref.URL, err)
		}

		unchanged, err := c.backend.HasManifest(ctx, ref.URL, m)
		if err != nil {
			return 0, &domain.ManifestError{URL: ref.URL, Err: err}
		}
		if unchanged {
			logger.Debug().Str("manifest", ref.URL).Str("version", m.Version).Msg("Manifest unchanged")
			continue
		}

		if err := c.backend.StoreManifest(ctx, ref.URL, m); err != nil {
			return 0, &domain.ManifestError{URL: ref.URL, Err: err}
		}
		c.pending.Push(m.URLs...)

		logger.Debug().
			Str("manifest", ref.URL).
			Str("version", m.Version).
			Int("urls", len(m.URLs)).
			Msg("Manifest changed")
	}

	return c.pending.Len(), nil
}

// download captures queued items one at a time until the queue is empty
func (c *Controller) download(ctx context.Context, token *Token, logger *utils.Logger, total int) error {
	completed := 0
	for {
		if token.Cancelled() {
			return domain.ErrSyncCancelled
		}

		item, ok := c.pending.Pop()
		if !ok {
			return nil
		}

		if err := c.capture(ctx, item); err != nil {
			return &domain.CaptureError{URL: item.URL, Err: err}
		}
		completed++
		logger.Debug().Str("url", item.URL).Int("completed", completed).Int("total", total).Msg("Captured")

		if token.Cancelled() {
			return domain.ErrSyncCancelled
		}
		c.mu.Lock()
		c.completed = completed
		c.mu.Unlock()
		c.progress(completed, total)
	}
}

func (c *Controller) capture(ctx context.Context, item domain.URLItem) error {
	if item.Redirect != "" {
		if err := c.backend.Capture(ctx, item.Redirect); err != nil {
			return err
		}
		if err := c.backend.AliasURL(ctx, item.Redirect, item.URL); err != nil {
			return err
		}
	} else if err := c.backend.Capture(ctx, item.URL); err != nil {
		return err
	}

	for _, alias := range item.Aliases {
		if err := c.backend.AliasURL(ctx, item.URL, alias); err != nil {
			return fmt.Errorf("alias %s: %w", alias, err)
		}
	}

	if item.HasLookupRule() {
		if setter, ok := c.backend.(domain.LookupRuleSetter); ok {
			if err := setter.AddLookupRule(ctx, item); err != nil {
				return fmt.Errorf("lookup rule: %w", err)
			}
		}
	}
	return nil
}

func asManifestError(url string, err error) error {
	var manifestErr *domain.ManifestError
	if errors.As(err, &manifestErr) {
		return err
	}
	return &domain.ManifestError{URL: url, Err: err}
}

func (c *Controller) fail(token *Token, logger *utils.Logger, err error) error {
	c.pending.Clear()
	if c.advance(token, domain.StateSyncFailed, nil) {
		logger.Error().Err(err).Msg("Synchronization failed")
	}
	return err
}

func (c *Controller) cancelled(logger *utils.Logger) error {
	c.pending.Clear()
	logger.Info().Msg("Synchronization cancelled")
	return domain.ErrSyncCancelled
}

// enterOffline enables local lookups and moves to Offline unless the pass
// was cancelled
func (c *Controller) enterOffline(token *Token) bool {
	return c.advance(token, domain.StateOffline, func() {
		c.backend.SetLookupsEnabled(true)
	})
}

// advance moves a running pass to state `to`. It does nothing once token
// is cancelled, so a concurrent GoOnline always wins.
func (c *Controller) advance(token *Token, to domain.SyncState, locked func()) bool {
	c.mu.Lock()
	if token.Cancelled() {
		c.mu.Unlock()
		return false
	}
	if locked != nil {
		locked()
	}
	from := c.setStateLocked(to)
	c.mu.Unlock()

	c.notify(from, to)
	return true
}

func (c *Controller) setStateLocked(to domain.SyncState) domain.SyncState {
	from := c.state
	c.state = to
	return from
}

func (c *Controller) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) notify(from, to domain.SyncState) {
	c.logger.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("State changed")
	if c.onState != nil {
		c.onState(to)
	}
}

func (c *Controller) progress(completed, total int) {
	if c.onProgress != nil {
		c.onProgress(completed, total)
	}
}
