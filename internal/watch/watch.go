// Package watch re-runs a callback whenever a source file is written.
package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher observes a single file. The parent directory is watched so that
// editors which save by renaming a temporary file are still seen.
type Watcher struct {
	path   string
	logger *zap.Logger
	w      *fsnotify.Watcher
}

// New starts watching path.
func New(path string, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "new watcher")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "new watcher")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "watch %s", path)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{path: abs, logger: logger, w: w}, nil
}

// Run calls onChange after every write to the file until ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", w.path), zap.Stringer("op", ev.Op))
			onChange()
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.w.Close()
}
