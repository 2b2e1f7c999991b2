package source

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultDebounceInterval = 500 * time.Millisecond

// SourceWatcher invokes a callback when the jobs spreadsheet changes on
// disk. It watches the file's parent directory rather than the file itself,
// since editors and atomic writers replace the file (rename + create) and
// that would silently kill a watch on the file.
type SourceWatcher struct {
	path             string
	debounceInterval time.Duration
	onChange         func()

	watcher *fsnotify.Watcher
	stop    chan struct{}
	wg      sync.WaitGroup
}

// StartSourceWatcher begins watching the given file and calls onChange after
// each burst of changes. Bursts closer together than debounceInterval
// coalesce into a single callback; a non-positive interval selects the
// default of 500ms.
func StartSourceWatcher(path string, debounceInterval time.Duration, onChange func()) (*SourceWatcher, error) {
	if debounceInterval <= 0 {
		debounceInterval = defaultDebounceInterval
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, multierror.Append(errors.WithStack(err), watcher.Close())
	}

	sourceWatcher := &SourceWatcher{
		path:             absPath,
		debounceInterval: debounceInterval,
		onChange:         onChange,
		watcher:          watcher,
		stop:             make(chan struct{}),
	}
	sourceWatcher.wg.Add(1)
	go sourceWatcher.run()
	log.Infof("watching %s for changes", absPath)
	return sourceWatcher, nil
}

// Close stops the watcher and waits for any in-flight callback to finish.
func (w *SourceWatcher) Close() error {
	close(w.stop)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *SourceWatcher) run() {
	defer w.wg.Done()

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.matches(event) {
				debounce = time.After(w.debounceInterval)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("error watching jobs source")
		case <-debounce:
			debounce = nil
			w.fire()
		case <-w.stop:
			return
		}
	}
}

func (w *SourceWatcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// fire waits briefly for the file to be readable again, as replace-style
// saves remove it for a moment, then invokes the callback. The callback runs
// even if the file never reappears so consumers observe the removal.
func (w *SourceWatcher) fire() {
	err := retry.Do(
		func() error {
			_, err := os.Stat(w.path)
			return err
		},
		retry.Attempts(5),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.WithError(err).Warnf("jobs source %s changed but cannot be read", w.path)
	}
	w.onChange()
}
