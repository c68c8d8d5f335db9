// Package watcher detects out-of-band deletion of the cache database file.
//
// Mobile platforms may trim app storage while the process is alive, removing
// the SQLite file under an open handle. The watcher subscribes to filesystem
// notifications for the cache directory and reports deletions of the database
// file so the coordinator can recreate it transparently.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Run watches dir until ctx is cancelled and invokes onDelete every time a
// file named fileName is removed from it. Renames count as removals: storage
// trimming on some platforms moves the file aside before unlinking. All other
// notifications are ignored.
//
// Run blocks; callers start it on its own goroutine. The returned error is
// nil on cancellation and non-nil only when the watch cannot be established
// or fails irrecoverably.
func Run(ctx context.Context, dir, fileName string, log *slog.Logger, onDelete func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: create: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher: event stream closed")
			}
			if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			log.Warn("cache database removed from disk", "path", event.Name, "op", event.Op.String())
			onDelete()

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher: error stream closed")
			}
			// Notification hiccups are not fatal; the next event still
			// arrives on the same watch.
			log.Error("filesystem watch error", "dir", dir, "error", err)
		}
	}
}
