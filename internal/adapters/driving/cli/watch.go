package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/codebook/internal/logger"
)

// watchExtensions are the file types a watched folder imports.
var watchExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

// folderWatcher imports files dropped into a directory. Each path is
// imported once per session, after writes to it have been quiet for delay.
type folderWatcher struct {
	dir      string
	delay    time.Duration
	importFn func(ctx context.Context, path string) error

	mu       sync.Mutex
	pending  map[string]*time.Timer
	imported map[string]bool
}

func newFolderWatcher(dir string, delay time.Duration, importFn func(ctx context.Context, path string) error) *folderWatcher {
	return &folderWatcher{
		dir:      dir,
		delay:    delay,
		importFn: importFn,
		pending:  make(map[string]*time.Timer),
		imported: make(map[string]bool),
	}
}

// markImported records paths that were imported before watching began.
func (w *folderWatcher) markImported(paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		w.imported[p] = true
	}
}

// handleFsEvent reports whether the event should schedule an import.
func (w *folderWatcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	path := event.Name
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancel(path)
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !watchable(path) {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.imported[path] {
		return "", false
	}
	return path, true
}

// schedule (re)starts the quiet timer for path.
func (w *folderWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.imported[path] {
			w.mu.Unlock()
			return
		}
		w.imported[path] = true
		w.mu.Unlock()

		if err := w.importFn(ctx, path); err != nil {
			logger.Warn("import %s: %v", path, err)
		}
	})
}

func (w *folderWatcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// run watches the directory until ctx is cancelled.
func (w *folderWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Debug("watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.stopAll()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

func (w *folderWatcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// watchable skips hidden files, editor swap files and unsupported types.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") || strings.HasSuffix(base, "~") {
		return false
	}
	return watchExtensions[strings.ToLower(filepath.Ext(base))]
}

// existingFiles lists the importable files already in dir.
func existingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && watchable(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
