package gesture

import (
	"sync"
	"time"

	"github.com/mobile-next/gesturecli/utils"
)

// Engine classifies a stream of canonical input events into gestures.
//
// All session and pending-tap state is guarded by one mutex; timer
// callbacks take the same mutex and check that their handle is still the
// armed one, so a callback that lost a race with reset does nothing.
// Listeners run after the mutex is released and may call back into the
// engine.
type Engine struct {
	mu sync.Mutex

	scheduler  Scheduler
	configs    *ConfigStore
	lookup     TargetLookup
	viewport   Viewport
	actions    *ActionMap
	resolver   *ContextResolver
	bus        *Bus
	tapTimeout time.Duration

	session    session
	longPress  *armedTimer
	pendingTap *pendingTap
	closed     bool
}

type armedTimer struct {
	timer Timer
}

func (a *armedTimer) stop() {
	if a != nil && a.timer != nil {
		a.timer.Stop()
	}
}

// pendingTap is a completed tap waiting out the double-tap window.
type pendingTap struct {
	event TapEvent
	at    time.Time
	timer Timer
}

// Option configures an Engine.
type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithConfigStore shares a config store with the engine.
func WithConfigStore(c *ConfigStore) Option {
	return func(e *Engine) {
		e.configs = c
	}
}

func WithTargetLookup(l TargetLookup) Option {
	return func(e *Engine) {
		e.lookup = l
	}
}

func WithViewport(v Viewport) Option {
	return func(e *Engine) {
		e.viewport = v
	}
}

func WithActionMap(m *ActionMap) Option {
	return func(e *Engine) {
		e.actions = m
	}
}

// WithTapTimeout sets the maximum press duration of a tap. Zero (the
// default) uses the live long-press timeout.
func WithTapTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.tapTimeout = d
	}
}

// New creates an engine. Without options it runs on the wall clock with
// default tunables and the default action map.
func New(opts ...Option) *Engine {
	e := &Engine{
		scheduler: RealScheduler{},
		bus:       NewBus(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.configs == nil {
		e.configs = NewConfigStore()
	}
	if e.actions == nil {
		e.actions = DefaultActionMap()
	}
	if e.viewport == nil {
		e.viewport = &ScrollState{}
	}
	e.resolver = NewContextResolver(e.lookup, e.actions.Zones())
	return e
}

// On registers a listener for a gesture kind or semantic event name.
func (e *Engine) On(name string, fn Listener) Subscription {
	return e.bus.On(name, fn)
}

// OnAny registers a listener for every emitted event.
func (e *Engine) OnAny(fn Listener) Subscription {
	return e.bus.OnAny(fn)
}

func (e *Engine) Off(sub Subscription) {
	e.bus.Off(sub)
}

// Listeners reports how many listeners are registered.
func (e *Engine) Listeners() int {
	return e.bus.Len()
}

// GetConfig returns the tunables for kind.
func (e *Engine) GetConfig(kind Kind) (Config, bool) {
	return e.configs.Get(kind)
}

// SetConfig patches the tunables for kind. Unknown kinds are ignored.
// Changes apply from the next classification pass.
func (e *Engine) SetConfig(kind Kind, patch Patch) bool {
	return e.configs.Set(kind, patch)
}

// Configs exposes the engine's config store.
func (e *Engine) Configs() *ConfigStore {
	return e.configs
}

// SetActionMap swaps the semantic action table.
func (e *Engine) SetActionMap(m *ActionMap) {
	if m == nil {
		m = NewActionMap(nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = m
	e.resolver = NewContextResolver(e.lookup, m.Zones())
}

// ActionMap returns the current semantic action table.
func (e *Engine) ActionMap() *ActionMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actions
}

// IsActive reports whether a gesture session is in progress.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.active
}

// CurrentKind returns the kind assigned to the active session, if any.
func (e *Engine) CurrentKind() (Kind, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.kind, e.session.kind != ""
}

// Session returns a snapshot of the current session.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.snapshot()
}

// Attach feeds every event from src into the engine. The returned
// function detaches it.
func (e *Engine) Attach(src InputSource) func() {
	return src.Subscribe(func(ev InputEvent) {
		e.Handle(ev)
	})
}

// Handle processes one input event and reports whether the host should
// suppress its default scrolling for it.
func (e *Engine) Handle(ev InputEvent) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}

	var (
		out     []Event
		prevent bool
	)
	switch ev.Kind {
	case InputStart:
		e.startLocked(ev)
	case InputMove:
		out, prevent = e.moveLocked(ev)
	case InputEnd:
		out = e.endLocked(ev)
	case InputCancel:
		e.cancelLocked()
	}
	e.mu.Unlock()

	e.dispatch(out)
	return prevent
}

// Reset drops the session and every pending timer, including a tap still
// waiting for its double-tap window. Calling it repeatedly is a no-op.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

// Close resets the engine and ignores further input.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.closed = true
}

func (e *Engine) timeOf(ev InputEvent) time.Time {
	if ev.Time.IsZero() {
		return e.scheduler.Now()
	}
	return ev.Time
}

func (e *Engine) startLocked(ev InputEvent) {
	if len(ev.Points) == 0 {
		return
	}
	if e.session.active {
		utils.Verbose("gesture: session %s overwritten by new contact set", e.session.id)
		e.stopLongPressLocked()
	}

	e.session.begin(ev.Points, ev.Target, e.timeOf(ev))
	if len(ev.Points) == 1 {
		e.armLongPressLocked()
	}
}

func (e *Engine) moveLocked(ev InputEvent) ([]Event, bool) {
	if !e.session.active {
		return nil, false
	}
	if !e.session.update(ev.Points) {
		utils.Verbose("gesture: session %s lost a contact, aborting", e.session.id)
		e.abortLocked()
		return nil, false
	}
	return e.classifyLocked(e.timeOf(ev))
}

func (e *Engine) endLocked(ev InputEvent) []Event {
	if !e.session.active {
		return nil
	}

	t := e.timeOf(ev)
	var out []Event
	if e.session.merge(ev.Points) {
		out, _ = e.classifyLocked(t)
	}

	elapsed := e.session.elapsed(t)
	e.stopLongPressLocked()

	if e.session.kind == "" && len(e.session.start) == 1 {
		dx, dy, dist := e.session.movement()
		lp := e.configs.get(KindLongPress)
		pan := e.configs.get(KindPan)
		switch {
		case dist < lp.Threshold && elapsed < e.tapMaxLocked(lp):
			out = append(out, e.resolveTapLocked(t)...)
		case dist > pan.Threshold && elapsed <= pan.Timeout && !e.pullingLocked(dx, dy, elapsed):
			// a drag that ended inside the swipe window without becoming a swipe
			e.assignLocked(KindPan)
			out = append(out, e.eventsLocked(e.panEventLocked(dx, dy, dist, elapsed))...)
		}
	}

	e.session.reset()
	return out
}

func (e *Engine) tapMaxLocked(lp Config) time.Duration {
	if e.tapTimeout > 0 {
		return e.tapTimeout
	}
	return lp.Timeout
}

// abortLocked ends the session without emitting. A pending tap from an
// earlier session is left alone.
func (e *Engine) abortLocked() {
	e.stopLongPressLocked()
	e.session.reset()
}

func (e *Engine) cancelLocked() {
	e.abortLocked()
	if e.pendingTap != nil {
		e.pendingTap.timer.Stop()
		e.pendingTap = nil
	}
}

func (e *Engine) classifyLocked(t time.Time) ([]Event, bool) {
	if len(e.session.start) == 1 {
		return e.classifySingleLocked(t)
	}
	return e.classifyPinchLocked(t)
}

func (e *Engine) classifySingleLocked(t time.Time) ([]Event, bool) {
	dx, dy, dist := e.session.movement()
	elapsed := e.session.elapsed(t)

	if dist >= e.configs.get(KindLongPress).Threshold {
		e.stopLongPressLocked()
	}

	switch e.session.kind {
	case "":
	case KindPan:
		pan := e.configs.get(KindPan)
		return e.eventsLocked(e.panEventLocked(dx, dy, dist, elapsed)), pan.PreventDefaultScroll
	case KindPullToRefresh:
		return nil, e.configs.get(KindPullToRefresh).PreventDefaultScroll
	default:
		return nil, false
	}

	swipe := e.configs.get(KindSwipe)
	if dist > swipe.Threshold && elapsed <= swipe.Timeout {
		e.assignLocked(KindSwipe)
		return e.eventsLocked(e.swipeEventLocked(dx, dy, dist, elapsed)), swipe.PreventDefaultScroll
	}

	pull := e.configs.get(KindPullToRefresh)
	if elapsed <= pull.Timeout && e.pullCandidateLocked(dx, dy) {
		if dy > pull.Threshold {
			e.assignLocked(KindPullToRefresh)
			ev := PullToRefreshEvent{Meta: e.metaLocked(), Distance: dy, Threshold: pull.Threshold}
			return e.eventsLocked(ev), pull.PreventDefaultScroll
		}
		// still pulling: hold off pan until the pull resolves
		return nil, pull.PreventDefaultScroll
	}

	pan := e.configs.get(KindPan)
	if dist > pan.Threshold && elapsed > swipe.Timeout && elapsed <= pan.Timeout {
		e.assignLocked(KindPan)
		return e.eventsLocked(e.panEventLocked(dx, dy, dist, elapsed)), pan.PreventDefaultScroll
	}
	return nil, false
}

// pullingLocked reports whether an unassigned drag is still a pull
// that has not reached its threshold.
func (e *Engine) pullingLocked(dx, dy float64, elapsed time.Duration) bool {
	return elapsed <= e.configs.get(KindPullToRefresh).Timeout && e.pullCandidateLocked(dx, dy)
}

func (e *Engine) pullCandidateLocked(dx, dy float64) bool {
	if dy <= 0 || abs(dy) < abs(dx) {
		return false
	}
	if e.viewport.ScrollY() > 0 {
		return false
	}
	return e.resolver.HasMarker(e.session.target, PullToRefreshMarker)
}

func (e *Engine) classifyPinchLocked(t time.Time) ([]Event, bool) {
	if len(e.session.start) < 2 || len(e.session.current) < 2 {
		return nil, false
	}

	startDist := distance(e.session.start[0].Point(), e.session.start[1].Point())
	if startDist == 0 {
		return nil, false
	}
	currentDist := distance(e.session.current[0].Point(), e.session.current[1].Point())
	scale := currentDist / startDist
	pinch := e.configs.get(KindPinch)

	switch e.session.kind {
	case KindPinch:
	case "":
		if abs(scale-1) <= pinch.Sensitivity || e.session.elapsed(t) > pinch.Timeout {
			return nil, false
		}
		e.assignLocked(KindPinch)
	default:
		return nil, false
	}

	action := ZoomOut
	if scale > 1 {
		action = ZoomIn
	}
	ev := PinchEvent{
		Meta:            e.metaLocked(),
		Scale:           scale,
		Center:          centroid(e.session.current),
		StartDistance:   startDist,
		CurrentDistance: currentDist,
		Action:          action,
	}
	return e.eventsLocked(ev), pinch.PreventDefaultScroll
}

func (e *Engine) assignLocked(kind Kind) {
	if e.session.assign(kind) {
		utils.Verbose("gesture: session %s classified as %s", e.session.id, kind)
		e.stopLongPressLocked()
	}
}

func (e *Engine) swipeEventLocked(dx, dy, dist float64, elapsed time.Duration) SwipeEvent {
	return SwipeEvent{
		Meta:       e.metaLocked(),
		Direction:  swipeDirection(dx, dy),
		Distance:   dist,
		Velocity:   velocity(dist, elapsed),
		DurationMs: durationMs(elapsed),
	}
}

func (e *Engine) panEventLocked(dx, dy, dist float64, elapsed time.Duration) PanEvent {
	return PanEvent{
		Meta:     e.metaLocked(),
		DeltaX:   dx,
		DeltaY:   dy,
		Velocity: velocity(dist, elapsed),
	}
}

// swipeDirection picks the dominant axis; exactly 45 degrees counts as
// vertical.
func swipeDirection(dx, dy float64) Direction {
	angle := atan2Deg(abs(dy), abs(dx))
	if angle < 45 {
		if dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}
	if dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}

// velocity in px/ms; sub-millisecond gestures count as one millisecond.
func velocity(dist float64, elapsed time.Duration) float64 {
	ms := durationMs(elapsed)
	if ms < 1 {
		ms = 1
	}
	return dist / ms
}

func (e *Engine) metaLocked() Meta {
	return Meta{
		SessionID: e.session.id,
		Target:    e.session.target,
		Zone:      e.resolver.Resolve(e.session.target),
	}
}

// eventsLocked expands a payload into its gesture event and, when the
// action map has an entry, the semantic event.
func (e *Engine) eventsLocked(p Payload) []Event {
	out := []Event{{Name: string(p.GestureKind()), Payload: p}}
	meta := p.GestureMeta()
	if name, ok := e.actions.Lookup(meta.Zone, p.GestureKind(), p.GestureDirection()); ok {
		out = append(out, Event{
			Name: name,
			Payload: SemanticEvent{
				Name:      name,
				Zone:      meta.Zone,
				Gesture:   p.GestureKind(),
				Direction: p.GestureDirection(),
				Source:    p,
			},
		})
	}
	return out
}

func (e *Engine) dispatch(events []Event) {
	for _, ev := range events {
		e.bus.Emit(ev.Name, ev.Payload)
	}
}

func (e *Engine) armLongPressLocked() {
	lp := e.configs.get(KindLongPress)
	armed := &armedTimer{}
	armed.timer = e.scheduler.Schedule(lp.Timeout, func() {
		e.fireLongPress(armed)
	})
	e.longPress = armed
}

func (e *Engine) stopLongPressLocked() {
	e.longPress.stop()
	e.longPress = nil
}

func (e *Engine) fireLongPress(armed *armedTimer) {
	e.mu.Lock()
	if e.longPress != armed || e.closed {
		e.mu.Unlock()
		return
	}
	e.longPress = nil

	var out []Event
	if e.session.active && e.session.kind == "" && len(e.session.current) == 1 {
		_, _, dist := e.session.movement()
		if dist < e.configs.get(KindLongPress).Threshold {
			e.assignLocked(KindLongPress)
			out = e.eventsLocked(LongPressEvent{
				Meta:       e.metaLocked(),
				Point:      e.session.current[0].Point(),
				DurationMs: durationMs(e.session.elapsed(e.scheduler.Now())),
			})
		}
	}
	e.mu.Unlock()

	e.dispatch(out)
}

// resolveTapLocked turns a completed tap into a double tap when it
// follows a pending tap closely enough, otherwise parks it as the new
// pending tap. A pending tap that does not match is emitted right away.
func (e *Engine) resolveTapLocked(t time.Time) []Event {
	point := e.session.current[0].Point()
	dt := e.configs.get(KindDoubleTap)

	var out []Event
	if prev := e.pendingTap; prev != nil {
		e.pendingTap = nil
		prev.timer.Stop()
		if t.Sub(prev.at) < dt.Timeout && distance(prev.event.Point, point) <= dt.Threshold {
			return e.eventsLocked(DoubleTapEvent{Meta: e.metaLocked(), Point: point})
		}
		out = e.eventsLocked(prev.event)
	}

	pending := &pendingTap{
		event: TapEvent{Meta: e.metaLocked(), Point: point},
		at:    t,
	}
	pending.timer = e.scheduler.Schedule(dt.Timeout, func() {
		e.firePendingTap(pending)
	})
	e.pendingTap = pending
	return out
}

func (e *Engine) firePendingTap(pending *pendingTap) {
	e.mu.Lock()
	if e.pendingTap != pending || e.closed {
		e.mu.Unlock()
		return
	}
	e.pendingTap = nil
	out := e.eventsLocked(pending.event)
	e.mu.Unlock()

	e.dispatch(out)
}
