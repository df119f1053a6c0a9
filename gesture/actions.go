package gesture

// ActionRule maps a (zone, gesture, direction) combination to a semantic
// event name. An empty Direction matches any direction.
type ActionRule struct {
	Zone      string    `json:"zone" yaml:"zone"`
	Gesture   Kind      `json:"gesture" yaml:"gesture"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Event     string    `json:"event" yaml:"event"`
}

type actionKey struct {
	zone      string
	kind      Kind
	direction Direction
}

// ActionMap is the lookup table behind semantic events. Unmapped
// combinations resolve to nothing.
type ActionMap struct {
	rules   []ActionRule
	byKey   map[actionKey]string
	zoneSet map[string]bool
}

// NewActionMap builds a map from rules. Later rules override earlier ones
// with the same key.
func NewActionMap(rules []ActionRule) *ActionMap {
	m := &ActionMap{
		byKey:   make(map[actionKey]string, len(rules)),
		zoneSet: make(map[string]bool),
	}
	for _, r := range rules {
		if r.Zone == "" || r.Gesture == "" || r.Event == "" {
			continue
		}
		m.rules = append(m.rules, r)
		m.byKey[actionKey{r.Zone, r.Gesture, r.Direction}] = r.Event
		m.zoneSet[r.Zone] = true
	}
	return m
}

// Lookup returns the semantic event name for the combination, preferring
// an exact direction match over a direction wildcard.
func (m *ActionMap) Lookup(zone string, kind Kind, direction Direction) (string, bool) {
	if m == nil {
		return "", false
	}
	if name, ok := m.byKey[actionKey{zone, kind, direction}]; ok {
		return name, true
	}
	if direction != DirectionNone {
		if name, ok := m.byKey[actionKey{zone, kind, DirectionNone}]; ok {
			return name, true
		}
	}
	return "", false
}

// Rules returns the effective rules in insertion order.
func (m *ActionMap) Rules() []ActionRule {
	if m == nil {
		return nil
	}
	out := make([]ActionRule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Zones lists every zone named by a rule.
func (m *ActionMap) Zones() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.zoneSet))
	for _, r := range m.rules {
		if !contains(out, r.Zone) {
			out = append(out, r.Zone)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultActionRules is the built-in casting-marketplace mapping.
func DefaultActionRules() []ActionRule {
	return []ActionRule{
		{Zone: "talent-card", Gesture: KindSwipe, Direction: DirectionRight, Event: "talent:shortlist"},
		{Zone: "talent-card", Gesture: KindSwipe, Direction: DirectionLeft, Event: "talent:dismiss"},
		{Zone: "talent-card", Gesture: KindDoubleTap, Event: "talent:favorite"},
		{Zone: "talent-card", Gesture: KindLongPress, Event: "talent:preview"},
		{Zone: "media-gallery", Gesture: KindSwipe, Direction: DirectionLeft, Event: "media:next"},
		{Zone: "media-gallery", Gesture: KindSwipe, Direction: DirectionRight, Event: "media:previous"},
		{Zone: "media-gallery", Gesture: KindPinch, Direction: ZoomIn, Event: "media:zoomIn"},
		{Zone: "media-gallery", Gesture: KindPinch, Direction: ZoomOut, Event: "media:zoomOut"},
		{Zone: "media-gallery", Gesture: KindDoubleTap, Event: "media:toggleZoom"},
		{Zone: "chat-message", Gesture: KindSwipe, Direction: DirectionRight, Event: "chat:reply"},
		{Zone: "chat-message", Gesture: KindLongPress, Event: "chat:options"},
		{Zone: "navigation", Gesture: KindSwipe, Direction: DirectionRight, Event: "navigation:back"},
		{Zone: "navigation", Gesture: KindSwipe, Direction: DirectionLeft, Event: "navigation:forward"},
		{Zone: "default", Gesture: KindPullToRefresh, Event: "content:refresh"},
	}
}

// DefaultActionMap returns an ActionMap of DefaultActionRules.
func DefaultActionMap() *ActionMap {
	return NewActionMap(DefaultActionRules())
}
