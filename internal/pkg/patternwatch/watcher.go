// Package patternwatch keeps a BufferedMatcher in sync with a patterns file.
// The file is re-read whenever it changes on disk and the new pattern set is
// swapped in without interrupting running scans.
package patternwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/filtering"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch modes reported in Stats.
const (
	ModeFSNotify = "fsnotify"
	ModePolling  = "polling"
)

// Config configures the patterns file watcher.
type Config struct {
	// PollInterval is the fallback polling interval when fsnotify is unavailable.
	// Default: 1 second
	PollInterval time.Duration

	// Anchored enables the leading and trailing wildcard syntax.
	Anchored bool

	// ForcePolling skips fsnotify. Useful on file systems without inotify
	// support, such as some network mounts.
	ForcePolling bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 1 * time.Second,
	}
}

// Watcher reloads a patterns file into a BufferedMatcher.
type Watcher struct {
	config    Config
	path      string
	matcher   *ahocorasick.BufferedMatcher
	fsWatcher *fsnotify.Watcher
	mode      string

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	reloads atomic.Uint64
	errors  atomic.Uint64
}

// New creates a watcher for the patterns file at path.
func New(path string, matcher *ahocorasick.BufferedMatcher, config Config) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	return &Watcher{
		config:   config,
		path:     path,
		matcher:  matcher,
		stopChan: make(chan struct{}),
	}
}

// Start loads the patterns file and begins watching it. The initial load must
// succeed; later reload failures are logged and the previous pattern set
// stays active.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	if err := w.Reload(); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	if w.config.ForcePolling {
		return w.startPolling(ctx)
	}
	return w.startFileWatcher(ctx)
}

// startFileWatcher watches the directory holding the file so that editors
// that replace the file by renaming are followed.
func (w *Watcher) startFileWatcher(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling", "error", err)
		return w.startPolling(ctx)
	}

	dir := filepath.Dir(w.path)
	if err := fsWatcher.Add(dir); err != nil {
		logger.Warn("failed to watch directory, falling back to polling",
			"path", w.path,
			"dir", dir,
			"error", err)
		if cerr := fsWatcher.Close(); cerr != nil {
			logger.Error("failed to close fsnotify watcher", "error", cerr)
		}
		return w.startPolling(ctx)
	}
	w.fsWatcher = fsWatcher
	w.setMode(ModeFSNotify)

	w.wg.Add(1)
	go w.fsWatchLoop(ctx)

	logger.Info("started patterns file watcher",
		"path", w.path,
		"mode", ModeFSNotify)
	return nil
}

func (w *Watcher) startPolling(ctx context.Context) error {
	w.setMode(ModePolling)

	w.wg.Add(1)
	go w.pollLoop(ctx)

	logger.Info("started patterns file watcher",
		"path", w.path,
		"mode", ModePolling,
		"interval", w.config.PollInterval)
	return nil
}

func (w *Watcher) setMode(mode string) {
	w.mu.Lock()
	w.mode = mode
	w.mu.Unlock()
}

// Reload reads the patterns file and swaps the new set into the matcher.
// An unchanged set does not rebuild the automaton.
func (w *Watcher) Reload() error {
	raw, err := filtering.LoadPatternsFromFile(w.path)
	if err != nil {
		w.errors.Add(1)
		return fmt.Errorf("failed to load patterns: %w", err)
	}

	patterns := ahocorasick.PatternsFromEntries(filtering.ParseEntries(raw, w.config.Anchored))
	if err := w.matcher.UpdatePatternsSync(patterns); err != nil {
		w.errors.Add(1)
		return fmt.Errorf("failed to rebuild matcher: %w", err)
	}
	w.reloads.Add(1)

	logger.Debug("reloaded patterns file",
		"path", w.path,
		"pattern_count", len(patterns))
	return nil
}

func (w *Watcher) reloadLogged() {
	if err := w.Reload(); err != nil {
		logger.Warn("failed to reload patterns file",
			"path", w.path,
			"error", err)
	}
}

func (w *Watcher) fsWatchLoop(ctx context.Context) {
	defer w.wg.Done()

	targetPath, _ := filepath.Abs(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != targetPath {
				continue
			}
			// Remove and Rename leave the old set active until the file
			// reappears.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reloadLogged()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("fsnotify error", "error", err)
			w.errors.Add(1)
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	var lastModTime time.Time
	var lastSize int64
	if info, err := os.Stat(w.path); err == nil {
		lastModTime = info.ModTime()
		lastSize = info.Size()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if !os.IsNotExist(err) {
					logger.Warn("failed to stat patterns file",
						"path", w.path,
						"error", err)
				}
				continue
			}
			if info.ModTime().Equal(lastModTime) && info.Size() == lastSize {
				continue
			}
			lastModTime = info.ModTime()
			lastSize = info.Size()
			w.reloadLogged()
		}
	}
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)

	var err error
	if w.fsWatcher != nil {
		err = w.fsWatcher.Close()
	}
	w.wg.Wait()

	logger.Info("stopped patterns file watcher",
		"path", w.path,
		"reloads", w.reloads.Load())
	return err
}

// Stats contains watcher statistics.
type Stats struct {
	Path    string `json:"path" yaml:"path"`
	Mode    string `json:"mode" yaml:"mode"`
	Reloads uint64 `json:"reloads" yaml:"reloads"`
	Errors  uint64 `json:"errors" yaml:"errors"`
	Running bool   `json:"running" yaml:"running"`
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Path:    w.path,
		Mode:    w.mode,
		Reloads: w.reloads.Load(),
		Errors:  w.errors.Load(),
		Running: w.running,
	}
}
