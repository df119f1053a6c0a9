package surfaces

import (
	"sync"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/types"
)

// maxBufferedEvents bounds the per-surface event backlog for pollers.
const maxBufferedEvents = 256

// Surface is one input surface (a screen, a web view) with its own engine.
type Surface struct {
	ID      string
	Engine  *gesture.Engine
	Targets *gesture.TargetTree
	Scroll  *gesture.ScrollState

	// inputMu keeps normalisation and engine input in arrival order
	inputMu    sync.Mutex
	normalizer *gesture.Normalizer

	bufMu  sync.Mutex
	seq    uint64
	buffer []sequencedEvent
}

type sequencedEvent struct {
	seq uint64
	ev  gesture.Event
}

// InputResult is what a single raw input produced synchronously.
type InputResult struct {
	PreventDefault bool            `json:"preventDefault"`
	Active         bool            `json:"active"`
	Kind           gesture.Kind    `json:"kind,omitempty"`
	Events         []gesture.Event `json:"events"`
}

func newSurface(id string, sched gesture.Scheduler, hostTimestamps bool, snap settingsSnapshot) *Surface {
	s := &Surface{
		ID:      id,
		Targets: gesture.NewTargetTree(),
		Scroll:  &gesture.ScrollState{},
	}

	if hostTimestamps {
		s.normalizer = gesture.NewNormalizer(gesture.WithClock(sched.Now))
	} else {
		s.normalizer = gesture.NewNormalizer(gesture.WithReceiveTime(sched.Now))
	}

	s.Engine = gesture.New(
		gesture.WithScheduler(sched),
		gesture.WithConfigStore(snap.configStore()),
		gesture.WithActionMap(snap.actions()),
		gesture.WithTargetLookup(s.Targets),
		gesture.WithViewport(s.Scroll),
	)
	s.Engine.OnAny(s.record)
	return s
}

func (s *Surface) record(ev gesture.Event) {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	s.seq++
	s.buffer = append(s.buffer, sequencedEvent{seq: s.seq, ev: ev})
	if over := len(s.buffer) - maxBufferedEvents; over > 0 {
		s.buffer = append(s.buffer[:0:0], s.buffer[over:]...)
	}
}

func (s *Surface) lastSeq() uint64 {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return s.seq
}

func (s *Surface) since(seq uint64) []gesture.Event {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	out := []gesture.Event{}
	for _, e := range s.buffer {
		if e.seq > seq {
			out = append(out, e.ev)
		}
	}
	return out
}

// Input normalises raw and feeds it to the engine. The result lists the
// events emitted while handling it; deferred events (tap, long press)
// arrive later through Drain or a subscription.
func (s *Surface) Input(raw types.RawEvent) (*InputResult, error) {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()

	events, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	before := s.lastSeq()
	result := &InputResult{}
	for _, ev := range events {
		if s.Engine.Handle(ev) {
			result.PreventDefault = true
		}
	}
	result.Events = s.since(before)

	session := s.Engine.Session()
	result.Active = session.Active
	result.Kind = session.Kind
	return result, nil
}

// Drain returns and forgets every buffered event.
func (s *Surface) Drain() []gesture.Event {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	out := make([]gesture.Event, 0, len(s.buffer))
	for _, e := range s.buffer {
		out = append(out, e.ev)
	}
	s.buffer = nil
	return out
}

// Subscribe forwards every event on this surface to fn.
func (s *Surface) Subscribe(fn gesture.Listener) gesture.Subscription {
	return s.Engine.OnAny(fn)
}

// Subscribers reports how many outside listeners follow this surface.
func (s *Surface) Subscribers() int {
	// the event buffer's own listener is not counted
	return s.Engine.Listeners() - 1
}

func (s *Surface) Unsubscribe(sub gesture.Subscription) {
	s.Engine.Off(sub)
}

// Close stops the engine and its timers.
func (s *Surface) Close() {
	s.Engine.Close()
}
