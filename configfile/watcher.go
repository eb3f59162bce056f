package configfile

import (
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = time.Millisecond * 500

// Watcher reports external edits to a config file. Change events are
// debounced because editors emit bursts of writes for a single save.
// The parent directory is watched rather than the file itself, so the
// watch survives rename-and-replace style saves.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts watching path and invokes onChange after each settled
// burst of modifications.
func Watch(path string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: defaultDebounce,
		onChange: onChange,
		fw:       fw,
		done:     make(chan struct{}),
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	log := log.WithField("action", "configfile.Watcher")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watch error")

		case <-timer.C:
			w.onChange()
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
