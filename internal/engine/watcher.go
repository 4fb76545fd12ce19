package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-countdown/internal/config"
)

// CatalogWatcher triggers a resync when the local catalog file changes.
// Editors often replace a file through a rename, so the parent directory is
// watched and events are filtered down to the catalog path.
type CatalogWatcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)
	watcher  *fsnotify.Watcher
}

// NewCatalogWatcher starts watching the directory that contains path.
// Run must be called to deliver events and release the watcher.
func NewCatalogWatcher(path string, onChange func(ctx context.Context)) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}

	return &CatalogWatcher{
		path:     abs,
		debounce: config.WatchDebounce,
		onChange: onChange,
		watcher:  w,
	}, nil
}

// Run delivers debounced change notifications until ctx is cancelled.
func (cw *CatalogWatcher) Run(ctx context.Context) error {
	log := slog.With(
		config.LogKeyComponent, config.CompWatcher,
		config.LogKeyFile, cw.path,
	)
	defer func() { _ = cw.watcher.Close() }()

	// Stopped timer; armed by the first relevant event.
	timer := time.NewTimer(cw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug(config.MsgWorkerStop)
			return nil

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if !cw.relevant(event) {
				continue
			}
			log.Debug(config.MsgCatalogEvent, config.LogKeyOp, event.Op.String())
			timer.Reset(cw.debounce)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(config.ErrWatcher, config.LogKeyError, err)

		case <-timer.C:
			log.Info(config.MsgCatalogChange)
			cw.onChange(ctx)
		}
	}
}

func (cw *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
