// Package watch ingests markdown files as they appear or change in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-sections/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is ingested.
// Editors often write a file several times in quick succession.
const DefaultDebounce = 500 * time.Millisecond

// ReportFunc receives the outcome of every ingest attempt.
type ReportFunc func(path string, report *domain.IngestReport, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions replaces the watched file extensions (default .md, .markdown).
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make([]string, len(exts))
		for i, ext := range exts {
			w.exts[i] = strings.ToLower(ext)
		}
	}
}

// WithDebounce sets the quiet period. Zero ingests on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithInitialScan ingests matching files already in the directory before watching.
func WithInitialScan() Option {
	return func(w *Watcher) {
		w.initialScan = true
	}
}

// WithReportFunc sets a callback invoked after each ingest.
func WithReportFunc(fn ReportFunc) Option {
	return func(w *Watcher) {
		w.report = fn
	}
}

// Watcher feeds new and modified files of one directory to an IngestService.
// Events are handled sequentially on the goroutine calling Run.
type Watcher struct {
	dir         string
	ingest      driving.IngestService
	exts        []string
	debounce    time.Duration
	initialScan bool
	report      ReportFunc
}

// New creates a watcher for dir. Subdirectories are not watched.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		ingest:   ingest,
		exts:     []string{".md", ".markdown"},
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled, which returns nil.
// Ingest failures are logged and reported; they do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w: not a directory", w.dir, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for %s", w.dir, strings.Join(w.exts, ", "))

	if w.initialScan {
		if err := w.scan(ctx); err != nil {
			return err
		}
	}

	return w.loop(ctx, fsw.Events, fsw.Errors)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	pending := make(map[string]time.Time)

	var tick <-chan time.Time
	if w.debounce > 0 {
		ticker := time.NewTicker(w.debounce / 2)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			path, changed := w.changedFile(event)
			if !changed {
				continue
			}
			if w.debounce == 0 {
				w.ingestFile(ctx, path)
				continue
			}
			pending[path] = time.Now()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-tick:
			w.flush(ctx, pending, now)
		}
	}
}

// flush ingests pending files that have been quiet for the debounce period.
func (w *Watcher) flush(ctx context.Context, pending map[string]time.Time, now time.Time) {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	for _, path := range ready {
		delete(pending, path)
		w.ingestFile(ctx, path)
	}
}

// scan ingests every matching file in the directory, in name order.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if entry.IsDir() || !w.matches(entry.Name()) {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// changedFile reports whether an event creates or modifies a watched file.
// Removals, renames and permission changes are ignored.
func (w *Watcher) changedFile(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !w.matches(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// matches reports whether a file name is visible and has a watched extension.
func (w *Watcher) matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(name)))
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	report, err := w.ingest.IngestFile(ctx, path)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		logger.Warn("Ingest %s failed: %v", path, err)
	default:
		logger.Info("Ingested %s: %d sections into %q", path, report.Sections, report.Collection)
	}
	if w.report != nil {
		w.report(path, report, err)
	}
}
