package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	SkipHidden  bool          // ignore dot files and dot directories
	Debounce    time.Duration // coalesce rapid create/write bursts
	Logger      *slog.Logger
}

// StartWatcher emits paths of documents that appear or change under the roots
// until ctx is cancelled. Both channels are closed when the watcher stops.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("watcher start failed: no roots provided")
		return nil, nil, errors.New("no roots provided")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	wanted := func(path string) bool {
		if cfg.SkipHidden && IsHidden(path) {
			return false
		}
		return AllowedExt(filepath.Ext(path))
	}

	// addTree watches every directory under root and reports the documents already in it.
	addTree := func(root string, found func(string)) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if cfg.SkipHidden && path != root && IsHidden(path) {
					return filepath.SkipDir
				}
				return w.Add(path)
			}
			if wanted(path) {
				found(path)
			}
			return nil
		})
	}

	var initial []string
	collect := func(p string) {
		if cfg.InitialScan {
			initial = append(initial, p)
		}
	}
	for _, r := range cfg.Roots {
		if err := addTree(r, collect); err != nil {
			logger.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(errCh)
		defer close(evCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		// pending is owned by this goroutine; the debounce timer only signals fire
		var (
			pending = map[string]struct{}{}
			timer   *time.Timer
			fire    = make(chan struct{}, 1)
		)
		flush := func() {
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			clear(pending)
			for _, p := range batch {
				if !emit(p) {
					return
				}
			}
		}

		schedule := func() {
			if cfg.Debounce <= 0 {
				flush()
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cfg.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case <-fire:
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					if st, err := os.Stat(e.Name); err == nil && st.IsDir() {
						// a directory moved in may already hold documents
						if cfg.SkipHidden && IsHidden(e.Name) {
							continue
						}
						var found bool
						err := addTree(e.Name, func(p string) {
							pending[p] = struct{}{}
							found = true
						})
						if err != nil {
							logger.Warn("failed to watch new directory", "dir", e.Name, "error", err)
						}
						if found {
							schedule()
						}
						continue
					}
				}
				if !wanted(e.Name) || !(e.Op.Has(fsnotify.Create) || e.Op.Has(fsnotify.Write)) {
					continue
				}
				pending[e.Name] = struct{}{}
				schedule()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
