package gesture

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1700000000, 0)

type harness struct {
	t      *testing.T
	sched  *VirtualScheduler
	engine *Engine
	events []Event
}

func newHarness(t *testing.T, opts ...Option) *harness {
	h := &harness{t: t, sched: NewVirtualScheduler(epoch)}
	opts = append([]Option{WithScheduler(h.sched)}, opts...)
	h.engine = New(opts...)
	h.engine.OnAny(func(ev Event) {
		h.events = append(h.events, ev)
	})
	return h
}

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func pt(id int, x, y float64) TouchPoint {
	return TouchPoint{ID: id, X: x, Y: y}
}

func (h *harness) feed(kind InputKind, ms int, target TargetRef, points ...TouchPoint) bool {
	t := at(ms)
	h.sched.AdvanceTo(t)
	for i := range points {
		points[i].Time = t
	}
	return h.engine.Handle(InputEvent{Kind: kind, Points: points, Target: target, Time: t})
}

func (h *harness) start(ms int, points ...TouchPoint) { h.feed(InputStart, ms, NoTarget, points...) }
func (h *harness) move(ms int, points ...TouchPoint) bool {
	return h.feed(InputMove, ms, NoTarget, points...)
}
func (h *harness) end(ms int, points ...TouchPoint) { h.feed(InputEnd, ms, NoTarget, points...) }
func (h *harness) cancel(ms int)                    { h.feed(InputCancel, ms, NoTarget) }

func (h *harness) named(name string) []Event {
	var out []Event
	for _, ev := range h.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func TestSwipe_Right(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100))
	h.move(150, pt(1, 160, 100))

	swipes := h.named("swipe")
	require.Len(t, swipes, 1)
	ev := swipes[0].Payload.(SwipeEvent)
	assert.Equal(t, DirectionRight, ev.Direction)
	assert.InDelta(t, 60, ev.Distance, 1e-9)
	assert.InDelta(t, 150, ev.DurationMs, 1e-9)
	assert.InDelta(t, 0.4, ev.Velocity, 1e-9)

	kind, ok := h.engine.CurrentKind()
	assert.True(t, ok)
	assert.Equal(t, KindSwipe, kind)
}

func TestSwipe_Down(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100))
	h.move(150, pt(1, 100, 160))

	swipes := h.named("swipe")
	require.Len(t, swipes, 1)
	assert.Equal(t, DirectionDown, swipes[0].Payload.(SwipeEvent).Direction)
}

func TestSwipeDirection(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   Direction
	}{
		{"right", 60, 0, DirectionRight},
		{"left", -60, 10, DirectionLeft},
		{"up", 5, -60, DirectionUp},
		{"down", 0, 60, DirectionDown},
		{"diagonal counts as vertical", 40, -40, DirectionUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swipeDirection(tt.dx, tt.dy))
		})
	}
}

func TestSwipe_TooSlowBecomesPan(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	h.move(400, pt(1, 60, 0))

	assert.Empty(t, h.named("swipe"))
	pans := h.named("pan")
	require.Len(t, pans, 1)
	assert.InDelta(t, 60, pans[0].Payload.(PanEvent).DeltaX, 1e-9)
}

func TestSwipe_EmittedOncePerSession(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 60, 0))
	h.move(150, pt(1, 120, 0))
	h.end(200, pt(1, 130, 0))

	assert.Len(t, h.named("swipe"), 1)
	assert.Empty(t, h.named("tap"))
	assert.False(t, h.engine.IsActive())
}

func TestPan_KeepsEmittingAfterAssignment(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 10, 0)) // inside the swipe window: undecided
	assert.Empty(t, h.events)

	h.move(350, pt(1, 20, 0))
	h.move(400, pt(1, 20, 30))

	pans := h.named("pan")
	require.Len(t, pans, 2)
	last := pans[1].Payload.(PanEvent)
	assert.InDelta(t, 20, last.DeltaX, 1e-9)
	assert.InDelta(t, 30, last.DeltaY, 1e-9)
	assert.Equal(t, pans[0].Payload.(PanEvent).SessionID, last.SessionID)
}

func TestPan_ShortDragEndingInsideSwipeWindow(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 20, 0))
	h.move(200, pt(1, 40, 0))
	assert.Empty(t, h.events, "undecided while swipe can still win")

	h.end(250, pt(1, 40, 0))
	h.sched.Advance(time.Second)

	pans := h.named("pan")
	require.Len(t, pans, 1)
	ev := pans[0].Payload.(PanEvent)
	assert.InDelta(t, 40, ev.DeltaX, 1e-9)
	assert.InDelta(t, 0.16, ev.Velocity, 1e-9)
	assert.Empty(t, h.named("swipe"))
	assert.Empty(t, h.named("tap"))
	assert.False(t, h.engine.IsActive())
}

func TestPinch_ZoomIn(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0), pt(2, 100, 0))
	h.move(100, pt(1, 0, 0), pt(2, 130, 0))

	pinches := h.named("pinch")
	require.Len(t, pinches, 1)
	ev := pinches[0].Payload.(PinchEvent)
	assert.InDelta(t, 1.3, ev.Scale, 1e-9)
	assert.Equal(t, ZoomIn, ev.Action)
	assert.InDelta(t, 100, ev.StartDistance, 1e-9)
	assert.InDelta(t, 130, ev.CurrentDistance, 1e-9)
	assert.Equal(t, Point{X: 65, Y: 0}, ev.Center)
}

func TestPinch_CenterCoversEveryContact(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100), pt(2, 200, 100), pt(3, 150, 400))
	h.move(50, pt(1, 50, 100), pt(2, 250, 100), pt(3, 150, 400))

	pinches := h.named("pinch")
	require.Len(t, pinches, 1)
	ev := pinches[0].Payload.(PinchEvent)
	assert.InDelta(t, 2, ev.Scale, 1e-9)
	assert.InDelta(t, 150, ev.Center.X, 1e-9)
	assert.InDelta(t, 200, ev.Center.Y, 1e-9)
}

func TestPinch_BelowSensitivity(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0), pt(2, 100, 0))
	h.move(100, pt(1, 0, 0), pt(2, 105, 0))

	assert.Empty(t, h.named("pinch"))
	_, ok := h.engine.CurrentKind()
	assert.False(t, ok)
}

func TestPinch_ZoomOut(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0), pt(2, 100, 0))
	h.move(100, pt(1, 10, 0), pt(2, 70, 0))

	pinches := h.named("pinch")
	require.Len(t, pinches, 1)
	assert.Equal(t, ZoomOut, pinches[0].Payload.(PinchEvent).Action)
}

func TestPinch_LostContactAborts(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0), pt(2, 100, 0))
	h.move(100, pt(1, 0, 0), pt(2, 130, 0))
	require.Len(t, h.named("pinch"), 1)

	// second finger lifted: only contact 1 remains
	h.move(150, pt(1, 0, 0))
	assert.False(t, h.engine.IsActive())

	h.move(200, pt(1, 0, 0), pt(2, 200, 0))
	assert.Len(t, h.named("pinch"), 1)
}

func TestSecondContactRestartsSessionAsPinch(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	first := h.engine.Session().ID
	h.start(50, pt(1, 0, 0), pt(2, 100, 0))
	second := h.engine.Session()

	assert.NotEqual(t, first, second.ID)
	assert.Len(t, second.StartPoints, 2)

	// the first session's long-press timer is gone
	h.sched.Advance(time.Second)
	assert.Empty(t, h.named("longPress"))
}

func TestLongPress_Stationary(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 50, 50))
	h.sched.AdvanceTo(at(499))
	assert.Empty(t, h.named("longPress"))

	h.sched.AdvanceTo(at(500))
	presses := h.named("longPress")
	require.Len(t, presses, 1)
	ev := presses[0].Payload.(LongPressEvent)
	assert.Equal(t, Point{X: 50, Y: 50}, ev.Point)
	assert.InDelta(t, 500, ev.DurationMs, 1e-9)

	// releasing after a long press is not a tap
	h.end(800, pt(1, 50, 50))
	h.sched.Advance(time.Second)
	assert.Empty(t, h.named("tap"))
}

func TestLongPress_SmallJitterStillCounts(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 50, 50))
	h.move(200, pt(1, 55, 53))
	h.sched.AdvanceTo(at(500))

	assert.Len(t, h.named("longPress"), 1)
}

func TestLongPress_MovedAwayNeverFires(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 50, 50))
	h.move(300, pt(1, 70, 50))
	assert.Equal(t, 0, h.sched.Pending(), "long-press timer should be cancelled")

	h.sched.AdvanceTo(at(1000))
	assert.Empty(t, h.named("longPress"))
}

func TestLongPress_MovedBackStillDisqualified(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 50, 50))
	h.move(100, pt(1, 70, 50))
	h.move(200, pt(1, 50, 50))
	h.sched.AdvanceTo(at(1000))

	assert.Empty(t, h.named("longPress"))
}

func TestCancel_ClearsLongPressTimer(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 50, 50))
	require.Equal(t, 1, h.sched.Pending())

	h.cancel(200)
	assert.Equal(t, 0, h.sched.Pending())
	assert.False(t, h.engine.IsActive())

	h.sched.AdvanceTo(at(2000))
	assert.Empty(t, h.events)
}

func TestCancel_OverridesPartialGesture(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 30, 0))
	h.cancel(120)
	h.end(150, pt(1, 80, 0))

	assert.Empty(t, h.events)
}

func TestTap_EmittedAfterDoubleTapWindow(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 10, 10))
	h.end(80, pt(1, 12, 11))
	assert.Empty(t, h.named("tap"), "tap waits for the double-tap window")

	h.sched.AdvanceTo(at(379))
	assert.Empty(t, h.named("tap"))
	h.sched.AdvanceTo(at(380))
	taps := h.named("tap")
	require.Len(t, taps, 1)
	assert.Equal(t, Point{X: 12, Y: 11}, taps[0].Payload.(TapEvent).Point)
}

func TestDoubleTap_CollapsesTwoTaps(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100))
	h.end(50, pt(1, 100, 100))
	h.start(100, pt(1, 104, 103))
	h.end(150, pt(1, 104, 103))

	h.sched.Advance(time.Second)
	assert.Len(t, h.named("doubleTap"), 1)
	assert.Empty(t, h.named("tap"))
	assert.Equal(t, 0, h.sched.Pending())
}

func TestDoubleTap_TooFarApartInTime(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100))
	h.end(50, pt(1, 100, 100))
	h.start(550, pt(1, 100, 100))
	h.end(600, pt(1, 100, 100))

	h.sched.Advance(time.Second)
	assert.Len(t, h.named("tap"), 2)
	assert.Empty(t, h.named("doubleTap"))
}

func TestDoubleTap_WindowIsExclusive(t *testing.T) {
	tests := []struct {
		name       string
		secondEnd  int
		doubleTaps int
		taps       int
	}{
		{"just inside", 349, 1, 0},
		{"at the boundary", 350, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			h.start(0, pt(1, 100, 100))
			h.end(50, pt(1, 100, 100))
			h.start(tt.secondEnd-40, pt(1, 100, 100))
			h.end(tt.secondEnd, pt(1, 100, 100))
			h.sched.Advance(time.Second)

			assert.Len(t, h.named("doubleTap"), tt.doubleTaps)
			assert.Len(t, h.named("tap"), tt.taps)
		})
	}
}

func TestDoubleTap_TooFarApartInSpace(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 100, 100))
	h.end(50, pt(1, 100, 100))
	h.start(100, pt(1, 200, 100))
	h.end(150, pt(1, 200, 100))

	// the unrelated first tap is flushed as soon as the second lands
	require.Len(t, h.named("tap"), 1)
	assert.Equal(t, Point{X: 100, Y: 100}, h.named("tap")[0].Payload.(TapEvent).Point)

	h.sched.Advance(time.Second)
	assert.Len(t, h.named("tap"), 2)
	assert.Empty(t, h.named("doubleTap"))
}

func TestTap_HeldTooLongIsNotATap(t *testing.T) {
	h := newHarness(t, WithTapTimeout(200*time.Millisecond))

	h.start(0, pt(1, 10, 10))
	h.end(300, pt(1, 10, 10))
	h.sched.Advance(time.Second)

	assert.Empty(t, h.named("tap"))
}

func TestTap_MovedIsNotATap(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 10, 10))
	h.end(100, pt(1, 30, 10))
	h.sched.Advance(time.Second)

	assert.Empty(t, h.named("tap"))
}

func TestReset_Idempotent(t *testing.T) {
	h := newHarness(t)

	h.start(0, pt(1, 10, 10))
	h.end(50, pt(1, 10, 10))
	h.start(60, pt(1, 10, 10))
	require.Equal(t, 2, h.sched.Pending())

	h.engine.Reset()
	assert.Equal(t, Session{StartPoints: []TouchPoint{}, CurrentPoints: []TouchPoint{}}, h.engine.Session())
	assert.Equal(t, 0, h.sched.Pending())

	h.engine.Reset()
	s := h.engine.Session()
	assert.False(t, s.Active)
	assert.Empty(t, s.StartPoints)
	assert.Empty(t, s.CurrentPoints)
	assert.Equal(t, Kind(""), s.Kind)

	h.sched.Advance(time.Second)
	assert.Empty(t, h.events)
}

func TestClose_IgnoresInput(t *testing.T) {
	h := newHarness(t)

	h.engine.Close()
	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 80, 0))

	assert.False(t, h.engine.IsActive())
	assert.Empty(t, h.events)
}

func TestMoveWithoutSessionIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.move(100, pt(1, 80, 0))
	h.end(120, pt(1, 80, 0))

	assert.Empty(t, h.events)
	assert.False(t, h.engine.IsActive())
}

func TestSetConfig_AppliesToNextPass(t *testing.T) {
	h := newHarness(t)

	threshold := 100.0
	require.True(t, h.engine.SetConfig(KindSwipe, Patch{Threshold: &threshold}))

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 60, 0))
	assert.Empty(t, h.named("swipe"))

	h.move(150, pt(1, 120, 0))
	assert.Len(t, h.named("swipe"), 1)
}

func TestSetConfig_LongPressTimeout(t *testing.T) {
	h := newHarness(t)

	timeout := 800 * time.Millisecond
	h.engine.SetConfig(KindLongPress, Patch{Timeout: &timeout})

	h.start(0, pt(1, 0, 0))
	h.sched.AdvanceTo(at(700))
	assert.Empty(t, h.named("longPress"))
	h.sched.AdvanceTo(at(800))
	assert.Len(t, h.named("longPress"), 1)
}

func TestPullToRefresh(t *testing.T) {
	tree := NewTargetTree(
		TargetNode{ID: "feed", Markers: []string{PullToRefreshMarker}},
		TargetNode{ID: "row-1", Parent: "feed"},
	)
	scroll := &ScrollState{}
	h := newHarness(t, WithTargetLookup(tree), WithViewport(scroll))

	h.feed(InputStart, 0, "row-1", pt(1, 100, 100))
	prevent := h.move(400, pt(1, 100, 140))
	assert.True(t, prevent, "a pull in progress suppresses scrolling")
	assert.Empty(t, h.named("pan"))

	h.move(700, pt(1, 102, 190))
	pulls := h.named("pullToRefresh")
	require.Len(t, pulls, 1)
	ev := pulls[0].Payload.(PullToRefreshEvent)
	assert.InDelta(t, 90, ev.Distance, 1e-9)
	assert.InDelta(t, 80, ev.Threshold, 1e-9)

	refresh := h.named("content:refresh")
	require.Len(t, refresh, 1)
}

func TestPullToRefresh_ReleasedShortEmitsNothing(t *testing.T) {
	tree := NewTargetTree(TargetNode{ID: "feed", Markers: []string{PullToRefreshMarker}})
	h := newHarness(t, WithTargetLookup(tree))

	h.feed(InputStart, 0, "feed", pt(1, 100, 100))
	h.move(100, pt(1, 100, 130))
	h.end(150, pt(1, 100, 130))
	h.sched.Advance(time.Second)

	assert.Empty(t, h.events)
}

func TestPullToRefresh_NotAtTop(t *testing.T) {
	tree := NewTargetTree(TargetNode{ID: "feed", Markers: []string{PullToRefreshMarker}})
	scroll := &ScrollState{}
	scroll.SetScrollY(120)
	h := newHarness(t, WithTargetLookup(tree), WithViewport(scroll))

	h.feed(InputStart, 0, "feed", pt(1, 100, 100))
	h.move(200, pt(1, 100, 115)) // past the long-press threshold
	h.move(700, pt(1, 100, 200))

	assert.Empty(t, h.named("pullToRefresh"))
	assert.Len(t, h.named("pan"), 1)
}

func TestPullToRefresh_OutsideZone(t *testing.T) {
	h := newHarness(t)

	h.feed(InputStart, 0, "feed", pt(1, 100, 100))
	h.move(200, pt(1, 100, 115)) // past the long-press threshold
	h.move(700, pt(1, 100, 200))

	assert.Empty(t, h.named("pullToRefresh"))
	assert.Len(t, h.named("pan"), 1)
}

func TestSemanticEvents(t *testing.T) {
	tree := NewTargetTree(
		TargetNode{ID: "card-7", Tag: "talent-card"},
		TargetNode{ID: "photo", Parent: "gallery"},
		TargetNode{ID: "gallery", Markers: []string{"media-gallery"}},
	)
	h := newHarness(t, WithTargetLookup(tree))

	h.feed(InputStart, 0, "card-7", pt(1, 0, 0))
	h.feed(InputMove, 100, "card-7", pt(1, 80, 0))
	h.feed(InputEnd, 120, "card-7", pt(1, 80, 0))

	h.feed(InputStart, 1000, "photo", pt(1, 200, 0))
	h.feed(InputMove, 1100, "photo", pt(1, 120, 0))
	h.feed(InputEnd, 1120, "photo", pt(1, 120, 0))

	shortlist := h.named("talent:shortlist")
	require.Len(t, shortlist, 1)
	sem := shortlist[0].Payload.(SemanticEvent)
	assert.Equal(t, "talent-card", sem.Zone)
	assert.Equal(t, KindSwipe, sem.Gesture)
	assert.Equal(t, DirectionRight, sem.Direction)

	assert.Len(t, h.named("media:next"), 1)
	assert.Len(t, h.named("swipe"), 2)
}

func TestSemanticEvents_UnmappedEmitsGenericOnly(t *testing.T) {
	tree := NewTargetTree(TargetNode{ID: "card-7", Tag: "talent-card"})
	h := newHarness(t, WithTargetLookup(tree))

	h.feed(InputStart, 0, "card-7", pt(1, 0, 80))
	h.feed(InputMove, 100, "card-7", pt(1, 0, 0))

	require.Len(t, h.events, 1)
	assert.Equal(t, "swipe", h.events[0].Name)
	assert.Equal(t, "talent-card", h.events[0].Payload.(SwipeEvent).Zone)
}

func TestSetActionMap(t *testing.T) {
	tree := NewTargetTree(TargetNode{ID: "inbox", Tag: "inbox"})
	h := newHarness(t, WithTargetLookup(tree))
	h.engine.SetActionMap(NewActionMap([]ActionRule{
		{Zone: "inbox", Gesture: KindSwipe, Direction: DirectionLeft, Event: "inbox:archive"},
	}))

	h.feed(InputStart, 0, "inbox", pt(1, 100, 0))
	h.feed(InputMove, 100, "inbox", pt(1, 20, 0))

	assert.Len(t, h.named("inbox:archive"), 1)
}

func TestListenerCanCallBackIntoEngine(t *testing.T) {
	h := newHarness(t)
	var kindSeen Kind
	h.engine.On("swipe", func(Event) {
		kindSeen, _ = h.engine.CurrentKind()
		h.engine.Reset()
	})

	h.start(0, pt(1, 0, 0))
	h.move(100, pt(1, 80, 0))

	assert.Equal(t, KindSwipe, kindSeen)
	assert.False(t, h.engine.IsActive())
}

func TestAttach(t *testing.T) {
	h := newHarness(t)
	src := &sliceSource{}
	detach := h.engine.Attach(src)

	src.push(InputEvent{Kind: InputStart, Points: []TouchPoint{pt(1, 0, 0)}, Time: at(0)})
	src.push(InputEvent{Kind: InputMove, Points: []TouchPoint{pt(1, 70, 0)}, Time: at(100)})
	assert.Len(t, h.named("swipe"), 1)

	before := h.engine.Session().ID
	detach()
	src.push(InputEvent{Kind: InputStart, Points: []TouchPoint{pt(1, 0, 0)}, Time: at(1000)})
	assert.Equal(t, before, h.engine.Session().ID)
	assert.Len(t, h.named("swipe"), 1)
}

type sliceSource struct {
	fn func(InputEvent)
}

func (s *sliceSource) Subscribe(fn func(InputEvent)) func() {
	s.fn = fn
	return func() { s.fn = nil }
}

func (s *sliceSource) push(ev InputEvent) {
	if s.fn != nil {
		s.fn(ev)
	}
}

// Kind assignment never changes within a session across random streams.
func TestAssignedKindIsStickyAcrossRandomStreams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		h := newHarness(t)
		seen := map[string]Kind{}
		ms := 0

		check := func() {
			s := h.engine.Session()
			if !s.Active || s.Kind == "" {
				return
			}
			if prev, ok := seen[s.ID]; ok {
				require.Equal(t, prev, s.Kind, "run %d: session %s changed kind", run, s.ID)
			}
			seen[s.ID] = s.Kind
		}

		for step := 0; step < 40; step++ {
			ms += rng.Intn(120)
			contacts := 1 + rng.Intn(2)
			points := make([]TouchPoint, contacts)
			for i := range points {
				points[i] = pt(i+1, rng.Float64()*300, rng.Float64()*300)
			}

			switch r := rng.Intn(10); {
			case r < 2:
				h.feed(InputStart, ms, NoTarget, points...)
			case r < 8:
				h.feed(InputMove, ms, NoTarget, points...)
			case r < 9:
				h.feed(InputEnd, ms, NoTarget, points[:1]...)
			default:
				h.feed(InputCancel, ms, NoTarget)
			}
			check()
		}

		h.engine.Reset()
		assert.Equal(t, 0, h.sched.Pending(), "run %d: reset left timers behind", run)
	}
}
