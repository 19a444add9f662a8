package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CancelWatcher watches a per-stage cancel file at its main loop boundary
// (spec.md §4.8 Soft cancellation). Presence of the file signals
// "finish the current document, then exit cleanly"; the file is removed
// on next stage start, grounded on the teacher's agent-definition
// watchLoop (msto63-mDW/internal/leibniz/agentloader/loader.go), which
// follows the same fsnotify.Watcher + ctx.Done + stop-channel select
// shape.
type CancelWatcher struct {
	path    string
	log     *zap.SugaredLogger
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	cancelled bool
	cancelCh  chan struct{}
	once      sync.Once
}

// NewCancelWatcher prepares a watcher for the cancel file at path,
// clearing any stale cancel marker left by a previous run (spec.md §4.8:
// "cleared by stage completion/cancellation... removed on next stage
// start").
func NewCancelWatcher(path string, log *zap.SugaredLogger) *CancelWatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	os.Remove(path)
	return &CancelWatcher{path: path, log: log, cancelCh: make(chan struct{})}
}

// Start begins watching. If the fsnotify watcher cannot be created (e.g.
// the platform lacks inotify/kqueue support), Start falls back to a
// polling timer, the same degradation the teacher's config.Config
// watcher documents as its baseline behavior
// (msto63-mDW/foundation/core/config/watch.go).
func (w *CancelWatcher) Start(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warnw("cancel watcher falling back to polling", "path", w.path, "error", err)
		go w.pollLoop(ctx)
		return
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		w.log.Warnw("cancel watcher cannot watch directory, falling back to polling", "dir", dir, "error", err)
		watcher.Close()
		go w.pollLoop(ctx)
		return
	}

	w.watcher = watcher
	go w.eventLoop(ctx)
}

func (w *CancelWatcher) eventLoop(ctx context.Context) {
	defer w.watcher.Close()

	if _, err := os.Stat(w.path); err == nil {
		w.trigger()
	}

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
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("cancel watcher error", "error", err)
		}
	}
}

func (w *CancelWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := os.Stat(w.path); err == nil {
				w.trigger()
				return
			}
		}
	}
}

func (w *CancelWatcher) trigger() {
	w.mu.Lock()
	w.cancelled = true
	w.mu.Unlock()
	w.once.Do(func() { close(w.cancelCh) })
}

// Cancelled reports whether the cancel file is present. Stage loops poll
// this between documents, never mid-document (spec.md §5 Cancellation:
// "in-flight ERP transactions are never interrupted").
func (w *CancelWatcher) Cancelled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancelled
}

// Done returns a channel closed the moment cancellation is observed, for
// callers that prefer to select on it directly.
func (w *CancelWatcher) Done() <-chan struct{} {
	return w.cancelCh
}
