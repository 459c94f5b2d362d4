// Package watch runs extractions for documents dropped into a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// DefaultDebounce coalesces the burst of writes a single copy produces.
const DefaultDebounce = 2 * time.Second

// Config holds watcher options.
type Config struct {
	// Roots are the directories watched recursively.
	Roots []string

	// InitialScan emits the supported files already present.
	InitialScan bool

	// Debounce is how long a path must be quiet before it is emitted.
	// Zero emits on every event.
	Debounce time.Duration
}

// Watcher emits paths of supported documents as they settle.
type Watcher struct {
	cfg Config
	fsw *fsnotify.Watcher
}

// New creates a watcher over cfg.Roots.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("%w: no directories to watch", domain.ErrInvalidInput)
	}
	for _, root := range cfg.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{cfg: cfg, fsw: fsw}, nil
}

// Watch starts watching and returns the channel of settled paths.
// The channel is closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	var initial []string
	for _, root := range w.cfg.Roots {
		files, err := w.addTree(root)
		if err != nil {
			_ = w.fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		if w.cfg.InitialScan {
			initial = append(initial, files...)
		}
	}

	out := make(chan string)
	go w.loop(ctx, initial, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, initial []string, out chan<- string) {
	defer close(out)
	defer w.fsw.Close()

	send := func(path string) bool {
		select {
		case out <- path:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, path := range initial {
		if !send(path) {
			return
		}
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() bool {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		for _, p := range paths {
			if !send(p) {
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			paths := w.handleEvent(event)
			if len(paths) == 0 {
				continue
			}
			for _, p := range paths {
				pending[p] = struct{}{}
			}
			if w.cfg.Debounce <= 0 {
				if !flush() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if !flush() {
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// handleEvent returns the document paths an event makes pending.
// A new directory is watched and its existing files are returned, since
// they may have been written before the watch was added.
func (w *Watcher) handleEvent(event fsnotify.Event) []string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}
	if isHidden(event.Name) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Gone already.
		return nil
	}
	if info.IsDir() {
		if !event.Has(fsnotify.Create) {
			return nil
		}
		files, err := w.addTree(event.Name)
		if err != nil {
			logger.Warn("watch: adding %s: %v", event.Name, err)
		}
		return files
	}
	if !supported(event.Name) {
		logger.Debug("watch: ignoring %s", event.Name)
		return nil
	}
	return []string{event.Name}
}

// addTree watches root and every directory below it, returning the
// supported files it finds.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && path != root {
				return nil
			}
			return walkErr
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		if supported(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func supported(path string) bool {
	return domain.CategoryFromPath(path).IsSupported()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
