package gesture

import "sync"

// DefaultZone is resolved when neither a target nor its ancestors are tagged.
const DefaultZone = "default"

// PullToRefreshMarker marks a target (or ancestor) as a pull-to-refresh zone.
const PullToRefreshMarker = "pull-to-refresh"

// TargetLookup exposes the semantic tags of the element tree a host renders.
type TargetLookup interface {
	// Tag returns the explicit zone tag set directly on ref, or "".
	Tag(ref TargetRef) string
	// Markers returns class-like markers on ref.
	Markers(ref TargetRef) []string
	// Parent returns the parent of ref, if any.
	Parent(ref TargetRef) (TargetRef, bool)
}

// Viewport reports the host's global scroll state.
type Viewport interface {
	ScrollY() float64
}

// maxAncestorDepth bounds the walk up a malformed (cyclic) tree.
const maxAncestorDepth = 256

// ContextResolver maps targets to zone labels.
type ContextResolver struct {
	lookup TargetLookup
	// zones are markers that double as zone labels, e.g. a "talent-card"
	// class on an untagged node.
	zones map[string]bool
}

// NewContextResolver creates a resolver. knownZones lists markers that
// count as zone labels when no explicit tag is present.
func NewContextResolver(lookup TargetLookup, knownZones []string) *ContextResolver {
	zones := make(map[string]bool, len(knownZones))
	for _, z := range knownZones {
		zones[z] = true
	}
	return &ContextResolver{lookup: lookup, zones: zones}
}

// Resolve returns the zone for target: the target's own tag or zone marker,
// then the nearest tagged ancestor, then DefaultZone.
func (r *ContextResolver) Resolve(target TargetRef) string {
	if r == nil || r.lookup == nil || target == NoTarget {
		return DefaultZone
	}

	ref := target
	for depth := 0; depth < maxAncestorDepth; depth++ {
		if zone := r.zoneOf(ref); zone != "" {
			return zone
		}
		parent, ok := r.lookup.Parent(ref)
		if !ok || parent == NoTarget {
			break
		}
		ref = parent
	}
	return DefaultZone
}

func (r *ContextResolver) zoneOf(ref TargetRef) string {
	if tag := r.lookup.Tag(ref); tag != "" {
		return tag
	}
	for _, m := range r.lookup.Markers(ref) {
		if r.zones[m] {
			return m
		}
	}
	return ""
}

// HasMarker reports whether target or one of its ancestors carries marker.
func (r *ContextResolver) HasMarker(target TargetRef, marker string) bool {
	if r == nil || r.lookup == nil || target == NoTarget {
		return false
	}

	ref := target
	for depth := 0; depth < maxAncestorDepth; depth++ {
		for _, m := range r.lookup.Markers(ref) {
			if m == marker {
				return true
			}
		}
		parent, ok := r.lookup.Parent(ref)
		if !ok || parent == NoTarget {
			return false
		}
		ref = parent
	}
	return false
}

// TargetNode describes one element of a TargetTree.
type TargetNode struct {
	ID      TargetRef `json:"id" yaml:"id"`
	Parent  TargetRef `json:"parent,omitempty" yaml:"parent,omitempty"`
	Tag     string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Markers []string  `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// TargetTree is an in-memory TargetLookup.
type TargetTree struct {
	mu    sync.RWMutex
	nodes map[TargetRef]TargetNode
}

func NewTargetTree(nodes ...TargetNode) *TargetTree {
	t := &TargetTree{nodes: make(map[TargetRef]TargetNode)}
	t.Put(nodes...)
	return t
}

// Put adds or replaces nodes.
func (t *TargetTree) Put(nodes ...TargetNode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range nodes {
		if n.ID == NoTarget {
			continue
		}
		t.nodes[n.ID] = n
	}
}

func (t *TargetTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

func (t *TargetTree) Tag(ref TargetRef) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[ref].Tag
}

func (t *TargetTree) Markers(ref TargetRef) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[ref].Markers
}

func (t *TargetTree) Parent(ref TargetRef) (TargetRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[ref]
	if !ok || n.Parent == NoTarget {
		return NoTarget, false
	}
	return n.Parent, true
}

// ScrollState is a settable Viewport.
type ScrollState struct {
	mu sync.RWMutex
	y  float64
}

func (s *ScrollState) ScrollY() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.y
}

func (s *ScrollState) SetScrollY(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.y = y
}
