package fetcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chiblo/poimap/internal/util"
)

// reloadQuiet absorbs the bursts of write events editors and atomic-rename
// writers emit for a single dataset update.
const reloadQuiet = 300 * time.Millisecond

// Watcher triggers a fresh load whenever a file-backed dataset changes on
// disk. The parent directory is watched, not the file itself, so
// write-then-rename updates are seen too.
type Watcher struct {
	path   string
	reload func()
	fsw    *fsnotify.Watcher
}

// NewWatcher watches path and invokes reload after each settled change.
func NewWatcher(path string, reload func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fetcher: creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("fetcher: watching %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, reload: reload, fsw: fsw}, nil
}

// Run processes events until ctx is done. Blocking; callers run it on its
// own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	var quiet *time.Timer
	var quietC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			util.LogDebugf("watcher: %s changed (%s)", w.path, event.Op)
			if quiet == nil {
				quiet = time.NewTimer(reloadQuiet)
				quietC = quiet.C
			} else {
				if !quiet.Stop() {
					// Already fired: drain the stale tick so Reset
					// starts a clean quiet period.
					select {
					case <-quiet.C:
					default:
					}
				}
				quiet.Reset(reloadQuiet)
			}
		case <-quietC:
			quiet = nil
			quietC = nil
			util.LogInfof("watcher: reloading %s", w.path)
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			util.LogWarnf("watcher: %v", err)
		}
	}
}
