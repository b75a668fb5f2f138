package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/fantasylab/fantasy-lab/internal/store"
)

// Watcher reloads the dataset file into a Holder whenever it changes on disk.
// A file that fails validation is logged and ignored; the previous dataset
// keeps serving.
type Watcher struct {
	store    *store.JSONStore
	rel      string
	holder   *Holder
	log      *logrus.Entry
	debounce time.Duration

	// OnReload, if set, runs after every successful swap.
	OnReload func(version uint64)
}

func NewWatcher(st *store.JSONStore, rel string, h *Holder, log *logrus.Entry) *Watcher {
	return &Watcher{
		store:    st,
		rel:      rel,
		holder:   h,
		log:      log.WithField("component", "dataset-watcher"),
		debounce: 250 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched rather
// than the file so atomic rename-over writes are seen.
func (w *Watcher) Run(ctx context.Context) (err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	path := w.store.Path(w.rel)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	w.log.WithField("path", path).Info("watching dataset")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("file watcher error")
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	ds, err := Load(w.store, w.rel)
	if err != nil {
		w.log.WithError(err).Warn("dataset reload rejected, keeping previous version")
		return
	}
	v := w.holder.Swap(ds)
	w.log.WithFields(logrus.Fields{
		"version": v,
		"players": len(ds.Players),
		"season":  ds.Meta.Season,
	}).Info("dataset reloaded")
	if w.OnReload != nil {
		w.OnReload(v)
	}
}
