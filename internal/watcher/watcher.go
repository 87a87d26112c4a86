// Package watcher turns inbox filesystem events into pipeline enqueue
// requests, holding each file back until its writes have settled.
package watcher

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

	"shelver/internal/config"
	"shelver/internal/logging"
)

// Watcher observes the inbox directory and emits paths once they stop
// changing. Hidden files and directories are ignored; one file's failure
// never stops the watch loop.
type Watcher struct {
	cfg     *config.Config
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	settle  time.Duration
	pending map[string]time.Time
	mu      sync.Mutex
}

// New creates a watcher over the configured inbox directory.
func New(cfg *config.Config, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		logger:  logger.With(logging.String("component", "watcher")),
		settle:  cfg.WatchSettle(),
		pending: make(map[string]time.Time),
	}, nil
}

// Watch starts observing the inbox and returns the channel of settled file
// paths. Files already sitting in the inbox at startup are emitted too.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	inbox := w.cfg.Paths.InboxDir
	if err := w.fsw.Add(inbox); err != nil {
		return nil, fmt.Errorf("watch inbox %s: %w", inbox, err)
	}

	if err := w.seedExisting(inbox); err != nil {
		return nil, err
	}

	// processPending is the only sender; files closes once both loops have
	// exited so a blocked send can never race the close.
	files := make(chan string, 100)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.processEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		w.processPending(ctx, files)
	}()
	go func() {
		wg.Wait()
		close(files)
	}()
	return files, nil
}

// seedExisting queues files that were dropped into the inbox while the
// daemon was not running.
func (w *Watcher) seedExisting(inbox string) error {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return fmt.Errorf("scan inbox %s: %w", inbox, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}
		w.pending[filepath.Join(inbox, entry.Name())] = time.Now()
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if isHidden(filepath.Base(event.Name)) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) processPending(ctx context.Context, files chan<- string) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.takeSettled() {
				select {
				case files <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// takeSettled removes and returns pending files whose last write happened at
// least a settle interval ago.
func (w *Watcher) takeSettled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var ready []string
	for path, lastWrite := range w.pending {
		if now.Sub(lastWrite) < w.settle {
			continue
		}
		delete(w.pending, path)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ready = append(ready, path)
	}
	return ready
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
