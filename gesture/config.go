package gesture

import (
	"sync"
	"time"
)

// Config holds the tunables for one gesture kind.
type Config struct {
	Threshold            float64       `json:"threshold"`
	Timeout              time.Duration `json:"timeout"`
	Sensitivity          float64       `json:"sensitivity"`
	RequiresMultiTouch   bool          `json:"requiresMultiTouch"`
	PreventDefaultScroll bool          `json:"preventDefaultScroll"`
}

// Patch is a partial Config update. Nil fields are left unchanged.
type Patch struct {
	Threshold            *float64       `json:"threshold,omitempty"`
	Timeout              *time.Duration `json:"timeout,omitempty"`
	Sensitivity          *float64       `json:"sensitivity,omitempty"`
	RequiresMultiTouch   *bool          `json:"requiresMultiTouch,omitempty"`
	PreventDefaultScroll *bool          `json:"preventDefaultScroll,omitempty"`
}

func (p Patch) apply(c Config) Config {
	if p.Threshold != nil {
		c.Threshold = *p.Threshold
	}
	if p.Timeout != nil {
		c.Timeout = *p.Timeout
	}
	if p.Sensitivity != nil {
		c.Sensitivity = *p.Sensitivity
	}
	if p.RequiresMultiTouch != nil {
		c.RequiresMultiTouch = *p.RequiresMultiTouch
	}
	if p.PreventDefaultScroll != nil {
		c.PreventDefaultScroll = *p.PreventDefaultScroll
	}
	return c
}

// DefaultConfigs returns a fresh copy of the built-in tunables.
// Tap has no entry: its limits are derived from longPress.
func DefaultConfigs() map[Kind]Config {
	return map[Kind]Config{
		KindSwipe: {
			Threshold:   50,
			Timeout:     300 * time.Millisecond,
			Sensitivity: 0.3,
		},
		KindPinch: {
			Threshold:          10,
			Timeout:            5000 * time.Millisecond,
			Sensitivity:        0.1,
			RequiresMultiTouch: true,
		},
		KindLongPress: {
			Threshold:   10,
			Timeout:     500 * time.Millisecond,
			Sensitivity: 1.0,
		},
		KindPan: {
			Threshold:   5,
			Timeout:     10000 * time.Millisecond,
			Sensitivity: 0.5,
		},
		KindDoubleTap: {
			Threshold:   30,
			Timeout:     300 * time.Millisecond,
			Sensitivity: 1.0,
		},
		KindPullToRefresh: {
			Threshold:            80,
			Timeout:              2000 * time.Millisecond,
			Sensitivity:          0.5,
			PreventDefaultScroll: true,
		},
	}
}

// ConfigStore holds runtime-updatable tunables keyed by gesture kind.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[Kind]Config
}

// NewConfigStore creates a store seeded with DefaultConfigs.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: DefaultConfigs()}
}

// Get returns the current tunables for kind, and whether kind is configurable.
func (s *ConfigStore) Get(kind Kind) (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.configs[kind]
	return c, ok
}

// Set applies patch to kind. Unknown kinds are ignored and report false.
func (s *ConfigStore) Set(kind Kind, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.configs[kind]
	if !ok {
		return false
	}
	s.configs[kind] = patch.apply(c)
	return true
}

// Snapshot copies every entry.
func (s *ConfigStore) Snapshot() map[Kind]Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Kind]Config, len(s.configs))
	for k, c := range s.configs {
		out[k] = c
	}
	return out
}

func (s *ConfigStore) get(kind Kind) Config {
	c, _ := s.Get(kind)
	return c
}
