package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a burst of writes is coalesced into one reload.
const settle = 100 * time.Millisecond

// WatchFile calls fn once immediately and again after every change to path,
// until ctx is cancelled. The parent directory is watched so editors that
// replace the file on save keep triggering reloads.
func WatchFile(ctx context.Context, path string, logger *slog.Logger, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logger.Info("watching for changes", "path", abs)

	fn()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			pending = time.After(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		case <-pending:
			pending = nil
			fn()
		}
	}
}
