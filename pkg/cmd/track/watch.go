package track

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/tankrace/log"
)

var errNothingToWatch = errors.New("--watch needs a track descriptor")

// changes within this window trigger a single reload
const settle = 200 * time.Millisecond

// watchFiles calls onChange whenever a file in the directory of path changes.
// Image masks live next to the descriptor, so the whole directory is watched.
func watchFiles(ctx context.Context, path string, onChange func()) error {
	l := log.GetFromContext(ctx).Named("track.watch")
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	l.Info("watching track files", log.String("dir", dir))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			l.Info("context done, stopping watcher")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				l.Info("watcher events channel closed")
				return nil
			}
			l.Debug("change detected",
				log.String("file", event.Name), log.Any("event", event))
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) {
				pending = time.After(settle)
			}
		case <-pending:
			pending = nil
			l.Info("track changed, checking again")
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				l.Info("watcher errors channel closed")
				return nil
			}
			l.Error("watcher error", log.ErrorField(err))
		}
	}
}
