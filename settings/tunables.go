package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/utils"
	"gopkg.in/ini.v1"
)

// Tunables are per-kind config patches read from an ini file:
//
//	[swipe]
//	threshold = 50
//	timeout = 300ms
//	sensitivity = 0.3
//	requires_multi_touch = false
//	prevent_default_scroll = false
type Tunables map[gesture.Kind]gesture.Patch

// LoadTunables reads an ini tunables file. Sections that do not name a
// configurable gesture kind are skipped.
func LoadTunables(path string) (Tunables, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tunables %s: %w", path, err)
	}

	defaults := gesture.DefaultConfigs()
	tunables := make(Tunables)
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		kind, ok := gesture.ParseKind(section.Name())
		if _, configurable := defaults[kind]; !ok || !configurable {
			utils.Verbose("Ignoring unknown tunables section [%s] in %s", section.Name(), path)
			continue
		}

		patch, err := parseSection(section)
		if err != nil {
			return nil, fmt.Errorf("tunables %s, section [%s]: %w", path, section.Name(), err)
		}
		tunables[kind] = patch
	}

	return tunables, nil
}

func parseSection(section *ini.Section) (gesture.Patch, error) {
	var patch gesture.Patch

	if section.HasKey("threshold") {
		v, err := section.Key("threshold").Float64()
		if err != nil {
			return patch, fmt.Errorf("invalid threshold: %w", err)
		}
		patch.Threshold = &v
	}

	if section.HasKey("timeout") {
		v, err := ParseTimeout(section.Key("timeout").String())
		if err != nil {
			return patch, err
		}
		patch.Timeout = &v
	}

	if section.HasKey("sensitivity") {
		v, err := section.Key("sensitivity").Float64()
		if err != nil {
			return patch, fmt.Errorf("invalid sensitivity: %w", err)
		}
		patch.Sensitivity = &v
	}

	if section.HasKey("requires_multi_touch") {
		v, err := section.Key("requires_multi_touch").Bool()
		if err != nil {
			return patch, fmt.Errorf("invalid requires_multi_touch: %w", err)
		}
		patch.RequiresMultiTouch = &v
	}

	if section.HasKey("prevent_default_scroll") {
		v, err := section.Key("prevent_default_scroll").Bool()
		if err != nil {
			return patch, fmt.Errorf("invalid prevent_default_scroll: %w", err)
		}
		patch.PreventDefaultScroll = &v
	}

	return patch, nil
}

// ParseTimeout accepts a Go duration ("300ms", "2s") or a bare number of
// milliseconds ("300").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: expected duration like 300ms or milliseconds", s)
	}
	return d, nil
}

// Apply patches every kind in t onto store.
func (t Tunables) Apply(store *gesture.ConfigStore) {
	for kind, patch := range t {
		store.Set(kind, patch)
	}
}
