package connectivity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/quantmind-br/offsync/internal/utils"
)

// FlagWatcher treats the presence of a flag file as "platform offline".
// Creating the file means the network went away; removing it means it
// came back.
type FlagWatcher struct {
	path   string
	logger *utils.Logger
	online atomic.Bool
}

// NewFlagWatcher creates a watcher for the flag file at path
func NewFlagWatcher(path string, logger *utils.Logger) *FlagWatcher {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	w := &FlagWatcher{
		path:   filepath.Clean(utils.ExpandPath(path)),
		logger: logger.WithComponent("flag-watcher"),
	}
	w.online.Store(!w.flagged())
	return w
}

// Path returns the watched file
func (w *FlagWatcher) Path() string {
	return w.path
}

// Online implements domain.Connectivity
func (w *FlagWatcher) Online() bool {
	return w.online.Load()
}

func (w *FlagWatcher) flagged() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// refresh re-reads the flag and reports a change
func (w *FlagWatcher) refresh() (online, changed bool) {
	online = !w.flagged()
	return online, w.online.Swap(online) != online
}

// Run watches the flag file's directory until ctx is done
func (w *FlagWatcher) Run(ctx context.Context, l Listener) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create flag directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// the flag may have changed before the watch was in place
	w.handle(ctx, l)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.handle(ctx, l)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func (w *FlagWatcher) handle(ctx context.Context, l Listener) {
	online, changed := w.refresh()
	if !changed {
		return
	}
	w.logger.Info().Bool("online", online).Str("flag", w.path).Msg("Connectivity flag changed")
	if err := notify(ctx, l, online); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error().Err(err).Msg("Going offline failed")
	}
}
