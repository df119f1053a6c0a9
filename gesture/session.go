package gesture

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Session is a read-only snapshot of the engine's gesture session.
type Session struct {
	ID            string       `json:"id,omitempty"`
	Active        bool         `json:"active"`
	StartPoints   []TouchPoint `json:"startPoints"`
	CurrentPoints []TouchPoint `json:"currentPoints"`
	Kind          Kind         `json:"kind,omitempty"`
	StartTime     time.Time    `json:"startTime"`
	Target        TargetRef    `json:"target,omitempty"`
}

// session is the single mutable gesture record. The zero value is the
// reset state.
type session struct {
	id        string
	active    bool
	start     []TouchPoint
	current   []TouchPoint
	kind      Kind
	startTime time.Time
	target    TargetRef
}

func (s *session) begin(points []TouchPoint, target TargetRef, t time.Time) {
	*s = session{
		id:        uuid.NewString(),
		active:    true,
		start:     clonePoints(points),
		current:   clonePoints(points),
		startTime: t,
		target:    target,
	}
}

// update replaces the current points with the latest sample of every
// starting contact. It reports false when a starting contact is missing.
func (s *session) update(points []TouchPoint) bool {
	next := make([]TouchPoint, 0, len(s.start))
	for _, sp := range s.start {
		p, ok := findPoint(points, sp.ID)
		if !ok {
			return false
		}
		next = append(next, p)
	}
	s.current = next
	return true
}

// merge applies whichever starting contacts appear in points.
func (s *session) merge(points []TouchPoint) bool {
	changed := false
	for i, cp := range s.current {
		if p, ok := findPoint(points, cp.ID); ok {
			if p.X != cp.X || p.Y != cp.Y {
				changed = true
			}
			s.current[i] = p
		}
	}
	return changed
}

func (s *session) elapsed(t time.Time) time.Duration {
	d := t.Sub(s.startTime)
	if d < 0 {
		return 0
	}
	return d
}

// assign sets the session kind once. Later calls are ignored.
func (s *session) assign(kind Kind) bool {
	if s.kind != "" {
		return false
	}
	s.kind = kind
	return true
}

// movement is the displacement of the first contact since start.
func (s *session) movement() (dx, dy, dist float64) {
	if len(s.start) == 0 || len(s.current) == 0 {
		return 0, 0, 0
	}
	dx = s.current[0].X - s.start[0].X
	dy = s.current[0].Y - s.start[0].Y
	return dx, dy, math.Hypot(dx, dy)
}

func (s *session) reset() {
	*s = session{}
}

func (s *session) snapshot() Session {
	return Session{
		ID:            s.id,
		Active:        s.active,
		StartPoints:   clonePoints(s.start),
		CurrentPoints: clonePoints(s.current),
		Kind:          s.kind,
		StartTime:     s.startTime,
		Target:        s.target,
	}
}

func findPoint(points []TouchPoint, id int) (TouchPoint, bool) {
	for _, p := range points {
		if p.ID == id {
			return p, true
		}
	}
	return TouchPoint{}, false
}

func clonePoints(points []TouchPoint) []TouchPoint {
	out := make([]TouchPoint, len(points))
	copy(out, points)
	return out
}
