package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/pwmguard/internal/ports"
)

// DefaultDebounce coalesces the write+rename bursts of an atomic save.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls onChange after path is written, created or replaced, until ctx
// is done. The parent directory is watched so atomic renames are seen.
// Bursts of events within debounce collapse into one call.
func Watch(ctx context.Context, path string, debounce time.Duration, logger ports.Logger, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir, name := filepath.Dir(path), filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", ports.Tag("watch"), ports.Err(err))
		}
	}
}
