package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to locally published feed files. Directories are
// watched rather than files so that atomic rename-over writes are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]ResourceKind
	debounce time.Duration
}

// NewWatcher creates a watcher for the local resources among the given
// locations. URLs are skipped. It returns an error when none of the
// locations is local or a directory cannot be watched.
func NewWatcher(statusLocation, logsLocation string) (*Watcher, error) {
	files := make(map[string]ResourceKind)
	if IsLocal(statusLocation) {
		files[cleanPath(statusLocation)] = ResourceStatus
	}
	if IsLocal(logsLocation) {
		files[cleanPath(logsLocation)] = ResourceLogs
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no local feed files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for path := range files {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	return &Watcher{
		watcher:  fsw,
		files:    files,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Watch returns a channel of change events. Bursts of filesystem events for
// the same file are coalesced into one event per debounce window. The
// channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) <-chan ChangeEvent {
	out := make(chan ChangeEvent, 16)

	go func() {
		defer close(out)

		pending := make(map[string]ResourceKind)

		debounceTimer := time.NewTimer(0)
		if !debounceTimer.Stop() {
			<-debounceTimer.C
		}
		defer debounceTimer.Stop()

		flush := func() bool {
			for path, kind := range pending {
				ev := ChangeEvent{Resource: kind, Path: path, Time: time.Now()}
				select {
				case out <- ev:
				case <-ctx.Done():
					return false
				}
			}
			clear(pending)
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				// Skip temp files used for atomic writes.
				if strings.HasPrefix(filepath.Base(event.Name), ".tmp-") {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
					continue
				}
				path := cleanPath(event.Name)
				kind, ok := w.files[path]
				if !ok {
					continue
				}
				pending[path] = kind
				debounceTimer.Reset(w.debounce)

			case <-debounceTimer.C:
				if len(pending) > 0 && !flush() {
					return
				}

			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching; the poll timers still cover missed events.
			}
		}
	}()

	return out
}

// Close stops watching and releases the underlying inotify handle.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
