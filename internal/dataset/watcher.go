// internal/dataset/watcher.go
package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"csv-chat/internal/common/logger"
)

// Event reports a CSV file that appeared or changed in the watched directory.
type Event struct {
	Path    string
	Dataset *Dataset
}

// Watcher monitors a directory and loads .csv files dropped into it.
// Files that fail to load are logged and skipped; the watcher keeps running.
type Watcher struct {
	watcher *fsnotify.Watcher
	log     logger.Logger
}

// NewWatcher creates a directory watcher.
func NewWatcher(log logger.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		log:     log.With(map[string]interface{}{"component": "dataset-watcher"}),
	}, nil
}

// Watch starts monitoring dir and emits a loaded Dataset per created or
// rewritten .csv file. The channel closes when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !isCSV(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}

				ds, err := Load(event.Name)
				if err != nil {
					w.log.Warn("skipping unloadable file", map[string]interface{}{
						"path":  event.Name,
						"error": err.Error(),
					})
					continue
				}

				select {
				case events <- Event{Path: event.Name, Dataset: ds}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Error("watch error", map[string]interface{}{"error": err.Error()})
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
