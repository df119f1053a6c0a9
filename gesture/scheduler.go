package gesture

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Scheduler abstracts the clock and deferred callbacks.
type Scheduler interface {
	Now() time.Time
	Schedule(delay time.Duration, fn func()) Timer
}

// RealScheduler runs callbacks on the wall clock.
type RealScheduler struct{}

func (RealScheduler) Now() time.Time { return time.Now() }

func (RealScheduler) Schedule(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// VirtualScheduler is a deterministic clock on top of a clockwork fake
// clock. The fake clock decides when a timer expires; callbacks then run
// synchronously from Advance/AdvanceTo in due order, so a test sees every
// effect of a timer as soon as Advance returns.
type VirtualScheduler struct {
	mu     sync.Mutex
	clock  fakeClock
	seq    uint64
	timers []*virtualTimer
}

// fakeClock is the part of clockwork's fake clock the scheduler drives.
type fakeClock interface {
	Now() time.Time
	Advance(d time.Duration)
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

type virtualTimer struct {
	s     *VirtualScheduler
	due   time.Time
	seq   uint64
	fn    func()
	timer clockwork.Timer

	// expired is closed by the fake clock; stopped by Stop
	expired chan struct{}
	stopped chan struct{}
	done    bool
}

// NewVirtualScheduler creates a virtual clock starting at start.
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{clock: clockwork.NewFakeClockAt(start)}
}

func (s *VirtualScheduler) Now() time.Time {
	return s.clock.Now()
}

func (s *VirtualScheduler) Schedule(delay time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &virtualTimer{
		s:       s,
		due:     s.clock.Now().Add(delay),
		seq:     s.seq,
		fn:      fn,
		expired: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	t.timer = s.clock.AfterFunc(delay, func() { close(t.expired) })
	s.timers = append(s.timers, t)
	return t
}

// Pending reports how many callbacks are scheduled and not yet run or stopped.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.AdvanceTo(s.Now().Add(d))
}

// AdvanceTo moves the clock to t, running every callback due at or before t.
// The clock never moves backwards.
func (s *VirtualScheduler) AdvanceTo(t time.Time) {
	for {
		s.mu.Lock()
		next := s.nextDueLocked(t)
		s.mu.Unlock()
		if next == nil {
			break
		}

		s.advanceClock(next.due)
		select {
		case <-next.expired:
		case <-next.stopped:
			continue
		}

		s.mu.Lock()
		if next.done {
			s.mu.Unlock()
			continue
		}
		next.done = true
		s.removeLocked(next)
		s.mu.Unlock()

		next.fn()
	}
	s.advanceClock(t)
}

// advanceClock moves the fake clock up to t. Advancing by zero still
// lets the fake clock expire timers due right now.
func (s *VirtualScheduler) advanceClock(t time.Time) {
	d := t.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	s.clock.Advance(d)
}

func (s *VirtualScheduler) nextDueLocked(t time.Time) *virtualTimer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due.Equal(s.timers[j].due) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].due.Before(s.timers[j].due)
	})
	if s.timers[0].due.After(t) {
		return nil
	}
	return s.timers[0]
}

func (s *VirtualScheduler) removeLocked(t *virtualTimer) {
	for i, other := range s.timers {
		if other == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

func (t *virtualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.timer.Stop()
	close(t.stopped)
	t.s.removeLocked(t)
	return true
}
