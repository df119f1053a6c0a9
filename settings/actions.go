package settings

import (
	"fmt"
	"os"

	"github.com/mobile-next/gesturecli/gesture"
	"gopkg.in/yaml.v3"
)

// actionsFile is the yaml layout of an action map:
//
//	defaults: true
//	actions:
//	  - zone: talent-card
//	    gesture: swipe
//	    direction: right
//	    event: talent:shortlist
type actionsFile struct {
	// Defaults keeps the built-in rules and layers these on top.
	Defaults bool                 `yaml:"defaults"`
	Actions  []gesture.ActionRule `yaml:"actions"`
}

// LoadActions reads a yaml action map.
func LoadActions(path string) (*gesture.ActionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions %s: %w", path, err)
	}
	return ParseActions(data)
}

// ParseActions decodes a yaml action map and validates gesture names.
func ParseActions(data []byte) (*gesture.ActionMap, error) {
	var file actionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}

	var rules []gesture.ActionRule
	if file.Defaults {
		rules = gesture.DefaultActionRules()
	}
	for i, rule := range file.Actions {
		if _, ok := gesture.ParseKind(string(rule.Gesture)); !ok {
			return nil, fmt.Errorf("action %d: %w %q", i, gesture.ErrUnknownKind, rule.Gesture)
		}
		if rule.Zone == "" || rule.Event == "" {
			return nil, fmt.Errorf("action %d: zone and event are required", i)
		}
		rules = append(rules, rule)
	}

	return gesture.NewActionMap(rules), nil
}

// MarshalActions renders an action map in the same layout LoadActions reads.
func MarshalActions(m *gesture.ActionMap) ([]byte, error) {
	return yaml.Marshal(actionsFile{Actions: m.Rules()})
}
