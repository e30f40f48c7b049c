package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const eventBuffer = 256

// Watcher owns one fsnotify instance covering every watched working tree.
// Raw notifications are classified and published on Events; the session
// manager is the single consumer.
type Watcher struct {
	fs         *fsnotify.Watcher
	classifier *classifier
	events     chan Event
	logger     *slog.Logger

	mu     sync.Mutex
	roots  []string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher. ignorePatterns apply to plain file modifications,
// never to git bookkeeping files.
func New(ignorePatterns []string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fs:         fsw,
		classifier: newClassifier(ignorePatterns),
		events:     make(chan Event, eventBuffer),
		logger:     logger,
	}, nil
}

// AddRoot registers a working tree for watching, walking its directory tree
// so nested paths are covered too. Safe to call while running; adding the
// same root twice is a no-op.
func (w *Watcher) AddRoot(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, existing := range w.roots {
		if existing == root {
			return nil
		}
	}

	if err := w.watchTree(root); err != nil {
		return err
	}
	w.roots = append(w.roots, root)
	w.logger.Info("watching repository", "path", root)
	return nil
}

// Roots returns the registered working tree roots.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// watchTree adds watches for root and every directory under it. Inside
// .git only the top level and logs/ are watched; object and pack churn is
// noise.
func (w *Watcher) watchTree(root string) error {
	if err := w.fs.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		if d.Name() == ".git" {
			if watchErr := w.fs.Add(path); watchErr != nil {
				w.logger.Warn("failed to watch git dir", "path", path, "error", watchErr)
			}
			logsDir := filepath.Join(path, "logs")
			if _, statErr := os.Stat(logsDir); statErr == nil {
				if watchErr := w.fs.Add(logsDir); watchErr != nil {
					w.logger.Warn("failed to watch git logs", "path", logsDir, "error", watchErr)
				}
			}
			return filepath.SkipDir
		}
		if watchErr := w.fs.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return nil
}

// Events returns the classified signal stream. The channel closes after
// Close once the run loop drains.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start launches the run loop. It returns immediately; signals flow on
// Events until ctx is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.events)

		for {
			select {
			case raw, ok := <-w.fs.Events:
				if !ok {
					return
				}
				w.handle(ctx, raw)

			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", "error", err)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) handle(ctx context.Context, raw fsnotify.Event) {
	// Newly created directories need their own watch to keep coverage
	// recursive.
	if raw.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			if !strings.Contains(raw.Name, string(filepath.Separator)+".git"+string(filepath.Separator)) {
				if err := w.fs.Add(raw.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", raw.Name, "error", err)
				}
			}
			return
		}
	}
	if raw.Op == fsnotify.Remove {
		return
	}

	for _, event := range w.classifier.classify(raw.Name) {
		select {
		case w.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the run loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
