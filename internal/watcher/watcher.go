// package watcher monitors directories and hands batches of new audio and transcript files to a handler
package watcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/desertthunder/batchalign/internal/inputs"
	"github.com/desertthunder/batchalign/internal/shared"
)

// DefaultQuietPeriod is how long the directory must stay unchanged before a batch is handed off.
const DefaultQuietPeriod = 2 * time.Second

// Handler processes the paths that changed since the last batch.
// It runs on the watch loop, so batches never overlap.
type Handler func(ctx context.Context, paths []string) error

// Watcher collects create and write events for accepted input files and
// flushes them to a [Handler] once the directory has been quiet.
type Watcher struct {
	dirs    []string
	quiet   time.Duration
	handler Handler
	logger  *log.Logger
	fs      *fsnotify.Watcher
}

// New starts watching every directory in dirs; duplicates are watched once.
// Call [Watcher.Close] to release it.
func New(dirs []string, quiet time.Duration, handler Handler, logger *log.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: watch handler", shared.ErrMissingArgument)
	}
	dirs = slices.Compact(slices.Sorted(slices.Values(dirs)))
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: watch directory", shared.ErrMissingArgument)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("add watch path %s: %w", dir, err)
		}
	}

	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Watcher{dirs: dirs, quiet: quiet, handler: handler, logger: logger, fs: fs}, nil
}

// Start runs the watch loop until ctx is done, returning ctx's error.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for audio and transcripts", "dirs", w.dirs, "quiet", w.quiet)

	timer := time.NewTimer(w.quiet)
	timer.Stop()
	defer timer.Stop()

	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			if len(pending) > 0 {
				w.logger.Info("watcher stopped with unprocessed files", "count", len(pending))
			}
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !inputs.IsAudio(event.Name) && !inputs.IsTranscript(event.Name) {
				w.logger.Debug("ignoring file", "path", event.Name)
				continue
			}

			if _, seen := pending[event.Name]; !seen {
				w.logger.Debug("file changed", "path", event.Name)
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.quiet)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)

			w.logger.Info("directory settled", "files", len(paths))
			if err := w.handler(ctx, paths); err != nil {
				w.logger.Error("batch failed", "error", err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return slices.Clone(w.dirs)
}

// Close stops the underlying file system watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
