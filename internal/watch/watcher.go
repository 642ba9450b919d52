// Package watch reports changes to a fixed set of files.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumeforge/internal/errors"
)

// DefaultDebounce is used when no debounce delay is given.
const DefaultDebounce = 500 * time.Millisecond

type fileState struct {
	modTime time.Time
	size    int64
}

// FileWatcher calls onChange once per burst of writes to any watched file.
// Parent directories are watched too, so files replaced by an atomic rename
// keep being tracked.
type FileWatcher struct {
	mu sync.RWMutex

	files []string
	state map[string]fileState

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	done       chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// New creates a watcher for files. Empty paths are ignored.
func New(files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) (*FileWatcher, error) {
	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounce
	}
	if logger == nil {
		logger = errors.Discard()
	}
	if onChange == nil {
		return nil, fmt.Errorf("file watcher needs a change callback")
	}

	var abs []string
	for _, f := range files {
		if f == "" {
			continue
		}
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		if !slices.Contains(abs, p) {
			abs = append(abs, p)
		}
	}
	if len(abs) == 0 {
		return nil, fmt.Errorf("file watcher needs at least one file")
	}

	return &FileWatcher{
		files:         abs,
		state:         make(map[string]fileState),
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}, nil
}

// Start begins watching. It fails if the watcher is already running.
func (w *FileWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("file watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	if err := w.snapshot(); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to get initial file state: %w", err)
	}

	dirs := map[string]bool{}
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	w.stopChan = make(chan struct{})
	w.reloadChan = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.running = true
	go w.watchLoop(watcher, w.stopChan, w.reloadChan, w.done)

	w.logger.Info("File watcher started", "files", w.files, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. Stopping a
// stopped watcher is a no-op.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	err := w.fsWatcher.Close()
	w.running = false
	done := w.done
	w.mu.Unlock()

	<-done
	if err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	w.logger.Info("File watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *FileWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Files returns the absolute paths being watched
func (w *FileWatcher) Files() []string {
	return slices.Clone(w.files)
}

func (w *FileWatcher) snapshot() error {
	for _, f := range w.files {
		stat, err := os.Stat(f)
		if err == nil {
			w.state[f] = fileState{modTime: stat.ModTime(), size: stat.Size()}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat file %s: %w", f, err)
		}
	}
	return nil
}

// changed reports whether f differs from the last recorded state and
// records the new one.
func (w *FileWatcher) changed(f string) bool {
	stat, err := os.Stat(f)
	if err != nil {
		if os.IsNotExist(err) {
			if _, ok := w.state[f]; ok {
				delete(w.state, f)
				return true
			}
		}
		return false
	}

	next := fileState{modTime: stat.ModTime(), size: stat.Size()}
	prev, ok := w.state[f]
	if !ok || !next.modTime.Equal(prev.modTime) || next.size != prev.size {
		w.state[f] = next
		return true
	}
	return false
}

func (w *FileWatcher) watchLoop(watcher *fsnotify.Watcher, stop, reload <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "File watcher error")

		case <-reload:
			// state is only touched from this goroutine after Start
			changed := false
			for _, f := range w.files {
				if w.changed(f) {
					changed = true
				}
			}
			if changed {
				w.logger.Debug("Watched files changed", "files", w.files)
				w.onChange()
			}

		case <-stop:
			return
		}
	}
}

// relevant reports whether event touches one of the watched files
func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if !slices.Contains(w.files, filepath.Clean(event.Name)) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// scheduleReload restarts the debounce timer
func (w *FileWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	reload := w.reloadChan
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case reload <- struct{}{}:
		default:
			// already pending
		}
	})
}
