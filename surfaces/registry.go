package surfaces

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/settings"
	"github.com/mobile-next/gesturecli/utils"
)

// DefaultSize is the number of surfaces kept before the least recently
// used one is closed.
const DefaultSize = 128

// DefaultSurfaceID is used when a request names no surface.
const DefaultSurfaceID = "default"

type settingsSnapshot struct {
	snap *settings.Snapshot
}

func (s settingsSnapshot) configStore() *gesture.ConfigStore {
	if s.snap == nil {
		return gesture.NewConfigStore()
	}
	return s.snap.ConfigStore()
}

func (s settingsSnapshot) actions() *gesture.ActionMap {
	if s.snap == nil {
		return gesture.DefaultActionMap()
	}
	return s.snap.Actions
}

// Registry owns every live surface. Surfaces are created on first use and
// closed when evicted or on CleanupAll.
type Registry struct {
	mu             sync.Mutex
	cache          *lru.Cache[string, *Surface]
	settings       settingsSnapshot
	newScheduler   func() gesture.Scheduler
	hostTimestamps bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithSchedulerFactory sets the scheduler each new surface runs on.
func WithSchedulerFactory(fn func() gesture.Scheduler) Option {
	return func(r *Registry) {
		r.newScheduler = fn
	}
}

// WithHostTimestamps trusts the timestamps hosts send instead of stamping
// events on arrival.
func WithHostTimestamps() Option {
	return func(r *Registry) {
		r.hostTimestamps = true
	}
}

// NewRegistry creates a registry holding at most size surfaces.
func NewRegistry(size int, opts ...Option) (*Registry, error) {
	if size <= 0 {
		size = DefaultSize
	}

	r := &Registry{
		newScheduler: func() gesture.Scheduler { return gesture.RealScheduler{} },
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.NewWithEvict[string, *Surface](size, func(id string, s *Surface) {
		utils.Verbose("Closing surface %s", id)
		s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create surface cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the surface with id, creating it if needed.
func (r *Registry) Get(id string) *Surface {
	if id == "" {
		id = DefaultSurfaceID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache.Get(id); ok {
		return s
	}

	s := newSurface(id, r.newScheduler(), r.hostTimestamps, r.settings)
	r.cache.Add(id, s)
	utils.Verbose("Created surface %s", id)
	return s
}

// Lookup returns an existing surface without creating one.
func (r *Registry) Lookup(id string) (*Surface, bool) {
	if id == "" {
		id = DefaultSurfaceID
	}
	return r.cache.Get(id)
}

// Remove closes and forgets a surface.
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// IDs lists live surfaces in sorted order.
func (r *Registry) IDs() []string {
	ids := r.cache.Keys()
	sort.Strings(ids)
	return ids
}

// ApplySettings makes snap the base for new surfaces and applies it to
// live ones. Live surfaces keep per-surface overrides for fields the
// snapshot does not set.
func (r *Registry) ApplySettings(snap *settings.Snapshot) {
	r.mu.Lock()
	r.settings = settingsSnapshot{snap: snap}
	r.mu.Unlock()

	for _, s := range r.cache.Values() {
		snap.Tunables.Apply(s.Engine.Configs())
		s.Engine.SetActionMap(snap.Actions)
	}
}

// CleanupAll closes every surface.
func (r *Registry) CleanupAll() {
	if r.cache.Len() == 0 {
		return
	}
	r.cache.Purge()
}
