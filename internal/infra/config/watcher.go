package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// DefaultWatchDelay is the quiet period after the last file event before reloading.
const DefaultWatchDelay = 200 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func(*Config)

	watcher *fsnotify.Watcher
	closed  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path. onChange receives every successfully reloaded config;
// invalid files are logged and skipped.
func Watch(path string, delay time.Duration, onChange func(*Config)) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	// Editors often replace the file, so the directory is watched.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}

	w := &Watcher{
		path:     abs,
		delay:    delay,
		onChange: onChange,
		watcher:  fw,
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.watchLoop()

	zlog.Debug().Msgf("config: watching %s", abs)
	return w, nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closed)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.closed:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.delay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zlog.Warn().Err(err).Msg("config: watcher error")

		case <-timer.C:
			cfg, err := Load(w.path)
			if err != nil {
				zlog.Warn().Err(err).Msgf("config: reload of %s skipped", w.path)
				continue
			}
			zlog.Info().Msgf("config: reloaded %s", w.path)
			w.onChange(cfg)
		}
	}
}
