package filewatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrModified is the cause of contexts canceled by a modification of watched files.
var ErrModified = errors.New("watched file is modified")

// UntilModified returns a context that is canceled
// when one of target files is modified (= written, created, removed, renamed or chmod-ed).
//
// Directories containing target files are watched, so files which do not exist
// yet or replaced by renaming are also watched.
//
// # Args
//
// - ctx: context.Context
//
// - targetFilePath ...string: file paths to be watched.
//
// # Returns
//
// - context.Context: context that is canceled when one of target files is modified.
// Its context.Cause wraps ErrModified.
//
// - context.CancelFunc: cancel function.
//
// - error: error caused when it fails to start watching files.
//
// If error is not nil, both of the context and the cancel function are nil.
func UntilModified(ctx context.Context, targetFilePath ...string) (context.Context, context.CancelFunc, error) {
	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, f := range targetFilePath {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, err
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("file watching is broken: %w", err))
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				if _, ok := targets[name]; !ok {
					continue
				}
				cancel(fmt.Errorf("%w: %s (%s)", ErrModified, event.Name, event.Op.String()))
				return
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
