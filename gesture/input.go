package gesture

import (
	"errors"
	"fmt"
	"time"

	"github.com/mobile-next/gesturecli/types"
)

// InputKind is the lifecycle phase of a canonical input event.
type InputKind string

const (
	InputStart  InputKind = "start"
	InputMove   InputKind = "move"
	InputEnd    InputKind = "end"
	InputCancel InputKind = "cancel"
)

// InputEvent is the canonical, family-independent input sample.
type InputEvent struct {
	Kind   InputKind
	Points []TouchPoint
	Target TargetRef
	Time   time.Time
}

// InputSource delivers canonical events in order. Subscribe returns a
// function that stops delivery.
type InputSource interface {
	Subscribe(fn func(InputEvent)) (unsubscribe func())
}

var (
	ErrUnknownFamily    = errors.New("unknown input family")
	ErrUnknownEventType = errors.New("unknown input event type")
)

// Normalizer converts raw events of both device families into canonical
// InputEvents. It tracks active pointers so pointer-family events carry
// every concurrent contact, like touch-family events do.
type Normalizer struct {
	clock     func() time.Time
	stampOnly bool

	pointers     []TouchPoint
	pointerIndex map[int]int
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithClock supplies the time used for events without a timestamp.
func WithClock(clock func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.clock = clock
	}
}

// WithReceiveTime stamps every event with clock, ignoring raw timestamps.
func WithReceiveTime(clock func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.clock = clock
		n.stampOnly = true
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		clock:        time.Now,
		pointerIndex: make(map[int]int),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one raw event into zero or one canonical events.
// Pointer hover (movement with no pointer down) produces none.
func (n *Normalizer) Normalize(raw types.RawEvent) ([]InputEvent, error) {
	var (
		ev  InputEvent
		ok  bool
		err error
	)
	switch raw.Family {
	case types.FamilyTouch:
		ev, err = n.fromTouch(raw)
		ok = err == nil
	case types.FamilyPointer:
		ev, ok, err = n.fromPointer(raw)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFamily, raw.Family)
	}
	if err != nil || !ok {
		return nil, err
	}
	return []InputEvent{ev}, nil
}

func (n *Normalizer) timeOf(raw types.RawEvent) time.Time {
	if n.stampOnly || raw.Timestamp == 0 {
		return n.clock()
	}
	return time.Unix(0, int64(raw.Timestamp*float64(time.Millisecond)))
}

func (n *Normalizer) fromTouch(raw types.RawEvent) (InputEvent, error) {
	t := n.timeOf(raw)
	ev := InputEvent{Target: TargetRef(raw.Target), Time: t}

	switch raw.Type {
	case "touchstart":
		ev.Kind = InputStart
		ev.Points = touchPoints(raw.Touches, t)
	case "touchmove":
		ev.Kind = InputMove
		ev.Points = touchPoints(raw.Touches, t)
	case "touchend":
		if len(raw.Touches) > 0 {
			// a contact lifted while others remain down
			ev.Kind = InputMove
			ev.Points = touchPoints(raw.Touches, t)
		} else {
			ev.Kind = InputEnd
			ev.Points = touchPoints(raw.ChangedTouches, t)
		}
	case "touchcancel":
		ev.Kind = InputCancel
	default:
		return InputEvent{}, fmt.Errorf("%w: %q", ErrUnknownEventType, raw.Type)
	}
	return ev, nil
}

func touchPoints(touches []types.RawTouch, t time.Time) []TouchPoint {
	points := make([]TouchPoint, 0, len(touches))
	for _, tc := range touches {
		points = append(points, TouchPoint{ID: tc.Identifier, X: tc.X, Y: tc.Y, Time: t})
	}
	return points
}

func (n *Normalizer) fromPointer(raw types.RawEvent) (InputEvent, bool, error) {
	t := n.timeOf(raw)
	ev := InputEvent{Target: TargetRef(raw.Target), Time: t}
	p := TouchPoint{ID: raw.PointerID, X: raw.X, Y: raw.Y, Time: t}

	switch raw.Type {
	case "pointerdown":
		n.setPointer(p)
		ev.Kind = InputStart
		ev.Points = n.activePointers(t)
	case "pointermove":
		if _, ok := n.pointerIndex[p.ID]; !ok {
			return InputEvent{}, false, nil
		}
		n.setPointer(p)
		ev.Kind = InputMove
		ev.Points = n.activePointers(t)
	case "pointerup":
		n.removePointer(p.ID)
		if len(n.pointers) > 0 {
			ev.Kind = InputMove
			ev.Points = n.activePointers(t)
		} else {
			ev.Kind = InputEnd
			ev.Points = []TouchPoint{p}
		}
	case "pointercancel":
		n.pointers = nil
		n.pointerIndex = make(map[int]int)
		ev.Kind = InputCancel
	default:
		return InputEvent{}, false, fmt.Errorf("%w: %q", ErrUnknownEventType, raw.Type)
	}
	return ev, true, nil
}

func (n *Normalizer) setPointer(p TouchPoint) {
	if i, ok := n.pointerIndex[p.ID]; ok {
		n.pointers[i] = p
		return
	}
	n.pointerIndex[p.ID] = len(n.pointers)
	n.pointers = append(n.pointers, p)
}

func (n *Normalizer) removePointer(id int) {
	i, ok := n.pointerIndex[id]
	if !ok {
		return
	}
	n.pointers = append(n.pointers[:i], n.pointers[i+1:]...)
	delete(n.pointerIndex, id)
	for j := i; j < len(n.pointers); j++ {
		n.pointerIndex[n.pointers[j].ID] = j
	}
}

func (n *Normalizer) activePointers(t time.Time) []TouchPoint {
	points := make([]TouchPoint, 0, len(n.pointers))
	for _, p := range n.pointers {
		p.Time = t
		points = append(points, p)
	}
	return points
}
