package profile

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/lockedin/go-focus-monitor/internal/util"
)

// Watcher reloads externally edited profile files into the registry, so
// a user can tweak criteria in an editor while monitoring runs. Changes
// only apply to classification requests issued after the reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	registry *Registry
	store    *Store
	done     chan struct{}
}

// NewWatcher starts watching the store's directory.
func NewWatcher(registry *Registry, store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(store.Dir()); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		registry: registry,
		store:    store,
		done:     make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".json" || strings.HasSuffix(event.Name, ".tmp") {
				continue
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Profile watcher error: " + err.Error())

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := strings.TrimSuffix(filepath.Base(event.Name), ".json")

	if event.Op&fsnotify.Remove != 0 {
		// Deleting the active or a built-in profile on disk does not
		// remove it from the running registry.
		name := w.profileNameFor(base)
		if err := w.registry.Delete(name); err != nil {
			util.LogDebugf("Ignoring on-disk removal of profile %s: %v", name, err)
		} else {
			util.LogInfof("Profile %s removed after file deletion", name)
		}
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	p, err := w.store.LoadFile(event.Name)
	if err != nil {
		util.LogWarnf("Failed to reload profile file %s: %v", event.Name, err)
		return
	}
	w.registry.Upsert(p)
	util.LogInfof("Reloaded profile %s from %s", p.Name, event.Name)
}

// profileNameFor maps a file base name back to the registered profile
// name. The store sanitizes names on save, so "My Profile" lives in
// My_Profile.json; the sanitized form keys nothing in the registry.
func (w *Watcher) profileNameFor(base string) string {
	for _, p := range w.registry.List() {
		if util.SanitizeName(p.Name) == base {
			return p.Name
		}
	}
	return base
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
