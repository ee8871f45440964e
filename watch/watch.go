// Package watch re-runs a job when the photo directory changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/andrejsstepanovs/memberqr/naming"
)

// DefaultDebounce is how long the directory must stay quiet before a run starts.
const DefaultDebounce = 2 * time.Second

// Job is invoked after the directory settles.
type Job func(ctx context.Context) error

// Watch blocks until ctx is done or job fails. Events for files whose extension is in
// extensions (re)arm a debounce timer; job runs on the calling goroutine, so two runs never
// overlap. Events raised while job runs are handled after it returns.
func Watch(ctx context.Context, dir string, extensions []string, debounce time.Duration, logger *zap.Logger, job Job) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}
	logger.Info("Watching folder", zap.String("dir", dir))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !exts[naming.Ext(name)] {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Photo changed", zap.String("file", name), zap.String("op", event.Op.String()))
			pending = time.After(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := job(ctx); err != nil {
				return err
			}
		}
	}
}
