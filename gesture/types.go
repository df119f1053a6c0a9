package gesture

import (
	"errors"
	"math"
	"time"
)

// Kind identifies a recognised gesture.
type Kind string

const (
	KindSwipe         Kind = "swipe"
	KindPan           Kind = "pan"
	KindPinch         Kind = "pinch"
	KindLongPress     Kind = "longPress"
	KindTap           Kind = "tap"
	KindDoubleTap     Kind = "doubleTap"
	KindPullToRefresh Kind = "pullToRefresh"
)

// AllKinds lists every gesture kind in classification order.
var AllKinds = []Kind{
	KindSwipe,
	KindPan,
	KindPinch,
	KindLongPress,
	KindTap,
	KindDoubleTap,
	KindPullToRefresh,
}

// ErrUnknownKind is returned for a gesture name outside AllKinds.
var ErrUnknownKind = errors.New("unknown gesture kind")

// ParseKind returns the kind with the given wire name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Direction of a swipe, or the intent of a pinch.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"

	ZoomIn  Direction = "zoomIn"
	ZoomOut Direction = "zoomOut"
)

// TargetRef is an opaque handle to the element a gesture started on.
type TargetRef string

// NoTarget is the zero TargetRef.
const NoTarget TargetRef = ""

// TouchPoint is one sampled contact.
type TouchPoint struct {
	ID   int       `json:"identifier"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Time time.Time `json:"-"`
}

// Point is a plain coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p TouchPoint) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func centroid(points []TouchPoint) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: c.X / n, Y: c.Y / n}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Payload is implemented by every gesture event record.
type Payload interface {
	GestureKind() Kind
	GestureDirection() Direction
	GestureMeta() Meta
}

// Meta is carried by every gesture payload.
type Meta struct {
	SessionID string    `json:"sessionId"`
	Target    TargetRef `json:"target,omitempty"`
	Zone      string    `json:"zone"`
}

func (m Meta) GestureMeta() Meta { return m }

type SwipeEvent struct {
	Meta
	Direction  Direction `json:"direction"`
	Distance   float64   `json:"distance"`
	Velocity   float64   `json:"velocity"`
	DurationMs float64   `json:"duration"`
}

func (SwipeEvent) GestureKind() Kind             { return KindSwipe }
func (e SwipeEvent) GestureDirection() Direction { return e.Direction }

type PinchEvent struct {
	Meta
	Scale           float64   `json:"scale"`
	Center          Point     `json:"center"`
	StartDistance   float64   `json:"startDistance"`
	CurrentDistance float64   `json:"currentDistance"`
	Action          Direction `json:"action"`
}

func (PinchEvent) GestureKind() Kind             { return KindPinch }
func (e PinchEvent) GestureDirection() Direction { return e.Action }

type LongPressEvent struct {
	Meta
	Point      Point   `json:"point"`
	DurationMs float64 `json:"duration"`
}

func (LongPressEvent) GestureKind() Kind           { return KindLongPress }
func (LongPressEvent) GestureDirection() Direction { return DirectionNone }

type TapEvent struct {
	Meta
	Point Point `json:"point"`
}

func (TapEvent) GestureKind() Kind           { return KindTap }
func (TapEvent) GestureDirection() Direction { return DirectionNone }

type DoubleTapEvent struct {
	Meta
	Point Point `json:"point"`
}

func (DoubleTapEvent) GestureKind() Kind           { return KindDoubleTap }
func (DoubleTapEvent) GestureDirection() Direction { return DirectionNone }

type PanEvent struct {
	Meta
	DeltaX   float64 `json:"deltaX"`
	DeltaY   float64 `json:"deltaY"`
	Velocity float64 `json:"velocity"`
}

func (PanEvent) GestureKind() Kind           { return KindPan }
func (PanEvent) GestureDirection() Direction { return DirectionNone }

type PullToRefreshEvent struct {
	Meta
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

func (PullToRefreshEvent) GestureKind() Kind           { return KindPullToRefresh }
func (PullToRefreshEvent) GestureDirection() Direction { return DirectionNone }

// SemanticEvent is the context-qualified event derived from a gesture,
// e.g. "talent:shortlist".
type SemanticEvent struct {
	Name      string    `json:"name"`
	Zone      string    `json:"zone"`
	Gesture   Kind      `json:"gesture"`
	Direction Direction `json:"direction,omitempty"`
	Source    Payload   `json:"source"`
}

func abs(v float64) float64 {
	return math.Abs(v)
}

func atan2Deg(y, x float64) float64 {
	return math.Atan2(y, x) * 180 / math.Pi
}
