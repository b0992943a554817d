package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// How often pending files are re-checked for a stable size
	pollInterval = 500 * time.Millisecond

	// How long a file's size must stay unchanged before it is reported.
	// E-books are usually copied into the watched directory, so the file
	// grows over several writes before it is complete.
	defaultSettleDelay = 2 * time.Second
)

// BookWatcher watches directories for e-book files and reports each one
// once it has finished copying.
type BookWatcher struct {
	watcher      *fsnotify.Watcher
	watchedPaths map[string]bool
	pending      map[string]*pendingBook
	handlers     []EventHandler
	mu           sync.RWMutex
	stopCh       chan struct{}
	wg           sync.WaitGroup
	settleDelay  time.Duration
}

// pendingBook tracks a file that may still be growing
type pendingBook struct {
	Path     string
	Size     int64
	LastSeen time.Time
}

// Event represents a change in a watched directory
type Event struct {
	Type      string    `json:"type"` // "book_found" or "book_removed"
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHandler processes watcher events
type EventHandler func(event Event) error

// NewBookWatcher creates a new book watcher
func NewBookWatcher() (*BookWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	return &BookWatcher{
		watcher:      fsWatcher,
		watchedPaths: make(map[string]bool),
		pending:      make(map[string]*pendingBook),
		handlers:     []EventHandler{},
		stopCh:       make(chan struct{}),
		settleDelay:  defaultSettleDelay,
	}, nil
}

// AddHandler adds an event handler
func (w *BookWatcher) AddHandler(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchDirectory adds a directory to watch for e-book files. Books already
// present in the directory are reported as well.
func (w *BookWatcher) WatchDirectory(dir string) error {
	// Expand home directory
	if strings.HasPrefix(dir, "~/") {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, dir[2:])
	}

	// Check if directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", dir)
	}

	w.mu.Lock()
	if !w.watchedPaths[dir] {
		if err := w.watcher.Add(dir); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.watchedPaths[dir] = true
	}
	w.mu.Unlock()

	// Pick up books that were already in the directory
	matches, err := filepath.Glob(filepath.Join(dir, "*.epub"))
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}

	for _, path := range matches {
		w.markPending(path)
	}

	return nil
}

// Start begins watching for file changes
func (w *BookWatcher) Start() error {
	w.wg.Add(1)
	go w.watchLoop()

	w.wg.Add(1)
	go w.settleLoop()

	return nil
}

// Stop stops the watcher
func (w *BookWatcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	return w.watcher.Close()
}

// watchLoop monitors file system events
func (w *BookWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !isBookFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.markPending(event.Name)
			} else if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.dropPending(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

// settleLoop periodically checks whether pending files have stopped growing
func (w *BookWatcher) settleLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkPending()
		}
	}
}

// markPending records a file whose size still needs to settle
func (w *BookWatcher) markPending(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if book, exists := w.pending[path]; exists {
		if book.Size != info.Size() {
			book.Size = info.Size()
			book.LastSeen = time.Now()
		}
		return
	}

	w.pending[path] = &pendingBook{
		Path:     path,
		Size:     info.Size(),
		LastSeen: time.Now(),
	}
}

// dropPending forgets a file that was removed before it settled
func (w *BookWatcher) dropPending(path string) {
	w.mu.Lock()
	_, existed := w.pending[path]
	delete(w.pending, path)
	w.mu.Unlock()

	if existed {
		w.notifyHandlers(Event{
			Type:      "book_removed",
			Path:      path,
			Timestamp: time.Now(),
		})
	}
}

// checkPending reports every pending file whose size has been stable for
// the settle delay
func (w *BookWatcher) checkPending() {
	w.mu.Lock()
	var settled []*pendingBook
	for path, book := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}

		if info.Size() != book.Size {
			book.Size = info.Size()
			book.LastSeen = time.Now()
			continue
		}

		if time.Since(book.LastSeen) >= w.settleDelay {
			settled = append(settled, book)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, book := range settled {
		w.notifyHandlers(Event{
			Type:      "book_found",
			Path:      book.Path,
			Size:      book.Size,
			Timestamp: time.Now(),
		})
	}
}

// notifyHandlers sends event to all registered handlers
func (w *BookWatcher) notifyHandlers(event Event) {
	w.mu.RLock()
	handlers := make([]EventHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			fmt.Fprintf(os.Stderr, "Handler error: %v\n", err)
		}
	}
}

// Pending returns the paths still waiting for their size to settle
func (w *BookWatcher) Pending() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}

	return paths
}

func isBookFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".epub")
}
