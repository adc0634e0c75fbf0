package rules

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the freshly parsed rules after the watched file
// changes. Implementations typically swap the rules into a registry and
// invalidate the engine cache.
type ReloadFunc func(rules []Rule)

// Watcher reloads a YAML rule file whenever it changes on disk. Editors
// often emit several write events for one save, so reloads are
// debounced.
type Watcher struct {
	path     string
	reload   ReloadFunc
	logger   *slog.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending *time.Timer
}

// WatcherConfig configures a rule file watcher.
type WatcherConfig struct {
	// Path is the rule file to watch.
	Path string

	// OnReload is called with the parsed rules after each change.
	OnReload ReloadFunc

	// DebounceDelay is how long to wait for further writes before
	// reloading. Defaults to 200ms.
	DebounceDelay time.Duration

	Logger *slog.Logger
}

// NewWatcher creates a watcher for the configured rule file.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := config.DebounceDelay
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	return &Watcher{
		path:     config.Path,
		reload:   config.OnReload,
		logger:   logger,
		debounce: debounce,
		watcher:  fsw,
	}, nil
}

// Start watches until ctx is cancelled. The parent directory is watched
// rather than the file itself so atomic rename-on-save still delivers
// events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.run(ctx)
	w.logger.Debug("Watching rule file", slog.String("path", w.path))
	return nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Rule file watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		loaded, err := LoadFile(w.path)
		if err != nil {
			w.logger.Warn("Rule file reload failed, keeping previous rules",
				slog.String("path", w.path),
				slog.String("error", err.Error()))
			return
		}
		w.logger.Info("Reloaded rule file",
			slog.String("path", w.path),
			slog.Int("rules", len(loaded)))
		w.reload(loaded)
	})
}
