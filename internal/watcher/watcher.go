// Package watcher monitors the snapshot inbox directory and imports
// snapshots as they arrive.
//
// A snapshot drop is a directory containing a manifest.json plus the
// data files it names. The watcher waits for the manifest to settle
// before importing, since senders typically write data files first and
// the manifest last.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/snapshot"
)

// Importer applies a snapshot directory to the local data set.
type Importer interface {
	ImportDir(ctx context.Context, dir string, strategy db.Strategy) (*snapshot.ImportResult, error)
}

// Options configures the inbox watcher.
type Options struct {
	// Dir is the inbox directory to watch.
	Dir string
	// Strategy is the merge strategy applied to arriving snapshots.
	Strategy db.Strategy
	// SettleDelay is how long a manifest must be quiet before import
	// (default: 500ms).
	SettleDelay time.Duration
}

// Watcher imports snapshot directories dropped into the inbox.
type Watcher struct {
	importer Importer
	opts     Options
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer // snapshot dir -> settle timer

	wg sync.WaitGroup
}

// New creates an inbox watcher. The inbox directory is created if missing.
func New(importer Importer, logger *slog.Logger, opts Options) (*Watcher, error) {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(opts.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch inbox dir: %w", err)
	}

	return &Watcher{
		importer: importer,
		opts:     opts,
		logger:   logger,
		fsw:      fsw,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Start watches the inbox until the context is canceled.
// Snapshot directories already present at startup are imported first.
func (w *Watcher) Start(ctx context.Context) error {
	w.importExisting(ctx)

	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop releases the underlying file system watcher.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()

	return err
}

// importExisting imports any snapshot directories left in the inbox from
// a previous run.
func (w *Watcher) importExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		w.logger.Warn("failed to scan inbox", "dir", w.opts.Dir, "error", err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(w.opts.Dir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.json")); err != nil {
			continue
		}
		w.importSnapshot(ctx, dir)
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watch error", "error", err)
		}
	}
}

// handleEvent schedules an import when a manifest is created or written.
// New subdirectories are added to the watch so manifest writes inside
// them are seen.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if filepath.Dir(event.Name) == filepath.Clean(w.opts.Dir) {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch snapshot dir", "dir", event.Name, "error", err)
			}
			// The drop may have been moved in complete, manifest included.
			if _, err := os.Stat(filepath.Join(event.Name, "manifest.json")); err == nil {
				w.schedule(ctx, event.Name)
			}
		}
		return
	}

	if filepath.Base(event.Name) == "manifest.json" {
		w.schedule(ctx, filepath.Dir(event.Name))
	}
}

// schedule (re)arms the settle timer for a snapshot directory.
func (w *Watcher) schedule(ctx context.Context, dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[dir]; ok {
		timer.Reset(w.opts.SettleDelay)
		return
	}

	w.pending[dir] = time.AfterFunc(w.opts.SettleDelay, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.importSnapshot(ctx, dir)
	})
}

// importSnapshot applies one snapshot directory and removes it on success.
// Failed drops are kept for inspection under a .failed suffix.
func (w *Watcher) importSnapshot(ctx context.Context, dir string) {
	result, err := w.importer.ImportDir(ctx, dir, w.opts.Strategy)
	if err != nil {
		w.logger.Error("inbox import failed", "dir", dir, "error", err)
		if renameErr := os.Rename(dir, dir+".failed"); renameErr != nil {
			w.logger.Warn("could not quarantine failed snapshot", "dir", dir, "error", renameErr)
		}
		return
	}

	w.logger.Info("inbox snapshot imported",
		"dir", dir,
		"files", result.Files,
		"strategy", string(w.opts.Strategy))

	if err := os.RemoveAll(dir); err != nil {
		w.logger.Warn("could not remove imported snapshot", "dir", dir, "error", err)
	}
}
