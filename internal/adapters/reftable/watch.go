package reftable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/agegrader/internal/domain/agegrade"
	"github.com/okian/agegrader/pkg/logger"
)

const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch monitors path and calls onChange with a freshly indexed table each
// time the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that rename a
// temporary file over path keep being observed.
//
// A reload that fails to read or validate is logged and skipped; onChange is
// not called and the caller keeps its previous table.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*agegrade.Table)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrLoadTable, path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: create watcher: %w", ErrLoadTable, err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrLoadTable, path, err)
	}

	log.Info(ctx, "watching reference table", logger.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&reloadOps == 0 {
				continue
			}

			table, err := Load(ctx, target)
			if err != nil {
				log.Error(ctx, "reference table reload failed; keeping previous table",
					logger.String("path", target), logger.String("op", event.Op.String()), logger.Error(err))
				continue
			}

			log.Info(ctx, "reference table reloaded",
				logger.String("path", target), logger.Int("entries", table.Len()))
			onChange(table)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "reference table watcher error", logger.Error(err))
		}
	}
}
