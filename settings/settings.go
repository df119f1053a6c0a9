package settings

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/utils"
)

// Paths locates the optional settings files. Empty paths use built-ins.
type Paths struct {
	Tunables string
	Actions  string
}

// Snapshot is one loaded generation of settings.
type Snapshot struct {
	Tunables Tunables
	Actions  *gesture.ActionMap
}

// Load reads both files.
func Load(paths Paths) (*Snapshot, error) {
	snap := &Snapshot{Tunables: Tunables{}, Actions: gesture.DefaultActionMap()}

	if paths.Tunables != "" {
		t, err := LoadTunables(paths.Tunables)
		if err != nil {
			return nil, err
		}
		snap.Tunables = t
	}

	if paths.Actions != "" {
		a, err := LoadActions(paths.Actions)
		if err != nil {
			return nil, err
		}
		snap.Actions = a
	}

	return snap, nil
}

// ConfigStore returns a fresh store with the snapshot's tunables applied.
func (s *Snapshot) ConfigStore() *gesture.ConfigStore {
	store := gesture.NewConfigStore()
	s.Tunables.Apply(store)
	return store
}

// Holder keeps the latest snapshot and notifies subscribers on reload.
type Holder struct {
	paths Paths

	mu       sync.RWMutex
	current  *Snapshot
	onReload []func(*Snapshot)
}

// NewHolder loads paths once.
func NewHolder(paths Paths) (*Holder, error) {
	snap, err := Load(paths)
	if err != nil {
		return nil, err
	}
	return &Holder{paths: paths, current: snap}, nil
}

func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnReload registers fn to run after every successful reload.
func (h *Holder) OnReload(fn func(*Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, fn)
}

// Reload re-reads the files. On error the previous snapshot stays.
func (h *Holder) Reload() error {
	snap, err := Load(h.paths)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.current = snap
	subscribers := append([]func(*Snapshot){}, h.onReload...)
	h.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
	return nil
}

// Watch reloads whenever one of the settings files changes, until ctx is
// done. Directories are watched so editors that replace files by rename
// are picked up.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range []string{h.paths.Tunables, h.paths.Actions} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !files[abs] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := h.Reload(); err != nil {
				utils.Info("Settings reload failed, keeping previous settings: %v", err)
				continue
			}
			utils.Info("Settings reloaded from %s", ev.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			utils.Verbose("settings watcher error: %v", err)
		}
	}
}
