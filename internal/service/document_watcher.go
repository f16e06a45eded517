package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/document"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher queues re-indexing whenever a file under the documents
// directory is created, written, removed or renamed.
type DocumentWatcher struct {
	dir       string
	publisher IPublisherService
	logger    logger.ILogger
}

func NewDocumentWatcher(dir string, publisher IPublisherService, log logger.ILogger) *DocumentWatcher {
	return &DocumentWatcher{dir: dir, publisher: publisher, logger: log}
}

// Run blocks until ctx is done or the watcher fails to start.
func (w *DocumentWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// fsnotify is not recursive; watch every directory.
	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.Info("INDEXER", "Watching documents directory", map[string]interface{}{"dir": w.dir})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("INDEXER", "Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *DocumentWatcher) handle(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = watcher.Add(event.Name)
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !document.Supported(event.Name) {
		return
	}

	if err := w.publisher.PublishIndex(ctx, event.Name); err != nil {
		w.logger.Error("INDEXER", "Failed to queue document", map[string]interface{}{"path": event.Name, "error": err.Error()})
		return
	}
	w.logger.Debug("INDEXER", "Document change queued", map[string]interface{}{"path": event.Name, "op": event.Op.String()})
}
