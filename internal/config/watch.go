package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

var watchFn = func() (watcher, error) {
	w, err := fsnotify.NewWatcher()
	return &fsWatcher{Watcher: w}, err
}

type watcher interface {
	Add(string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsWatcher struct{ *fsnotify.Watcher }

func (w *fsWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w *fsWatcher) Errors() <-chan error          { return w.Watcher.Errors }

// Watch reloads the config file at path whenever it is written or replaced
// and passes the result to onChange. Reload failures go to onError. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(Config), onError func(error)) error {
	if path == "" {
		return errors.New("watch: empty config path")
	}
	w, err := watchFn()
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	defer w.Close()

	// Watch the directory so editors that rename over the file are seen.
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onChange(cfg)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
