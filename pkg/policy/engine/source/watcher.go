package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/saturn/pkg/policy/engine"
)

// defaultDebounceInterval is the quiet period before a change event fires.
// Editors and atomic renames produce write bursts; one event per burst is
// enough to trigger a reload.
const defaultDebounceInterval = 100 * time.Millisecond

// FileWatcher watches rule files for changes and emits debounced events.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   *slog.Logger
	debounce *debouncer

	closeOnce sync.Once
}

// NewFileWatcher creates a watcher over a rule file or directory.
func NewFileWatcher(path string, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		path:     path,
		logger:   logger.With("component", "rule_watcher"),
		debounce: newDebouncer(defaultDebounceInterval),
	}

	if err := fw.addPath(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}

	return fw, nil
}

// Events starts the watch loop and returns the event channel. The channel is
// closed when the context is cancelled or the watcher is closed.
func (fw *FileWatcher) Events(ctx context.Context) (<-chan engine.RuleEvent, error) {
	eventCh := make(chan engine.RuleEvent)

	go func() {
		defer close(eventCh)
		defer fw.debounce.stop()

		fw.logger.Info("rule file watcher started",
			"path", fw.path,
			"debounce_ms", defaultDebounceInterval.Milliseconds(),
		)

		for {
			select {
			case <-ctx.Done():
				fw.logger.Info("rule file watcher stopped")
				return

			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if !fw.shouldProcessEvent(event) {
					continue
				}

				fw.logger.Debug("rule file event",
					"path", event.Name,
					"op", event.Op.String(),
				)

				ruleEvent := engine.RuleEvent{
					Type: eventType(event.Op),
					Path: event.Name,
				}
				fw.debounce.trigger(func() {
					select {
					case eventCh <- ruleEvent:
					case <-ctx.Done():
					}
				})

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching despite errors.
				fw.logger.Error("rule file watcher error", "error", err)
			}
		}
	}()

	return eventCh, nil
}

// Close stops the underlying fsnotify watcher. Safe to call multiple times.
func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}

// addPath registers a file, or a directory tree, with the watcher.
func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fw.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := fw.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", p, err)
			}
		}
		return nil
	})
}

// shouldProcessEvent filters events down to YAML content changes.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}

	return !strings.HasPrefix(filepath.Base(event.Name), ".")
}

// eventType maps an fsnotify operation to a rule event type.
func eventType(op fsnotify.Op) engine.RuleEventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return engine.RuleEventCreated
	case op&fsnotify.Remove == fsnotify.Remove, op&fsnotify.Rename == fsnotify.Rename:
		return engine.RuleEventDeleted
	default:
		return engine.RuleEventModified
	}
}

// debouncer collapses rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger schedules the callback after the quiet period, replacing any
// pending callback.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
