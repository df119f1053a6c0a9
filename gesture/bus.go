package gesture

import (
	"runtime/debug"
	"sync"

	"github.com/mobile-next/gesturecli/utils"
)

// Event is what listeners receive: the event name and its payload. For
// gesture kinds the payload is one of the *Event records; for semantic
// events it is a SemanticEvent.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// Listener receives dispatched events.
type Listener func(Event)

// Subscription identifies a registered listener so it can be removed.
type Subscription struct {
	id   uint64
	name string
}

// anyEvent is the registry key for catch-all listeners.
const anyEvent = "*"

type subscriber struct {
	id uint64
	fn Listener
}

// Bus is an in-process observer registry keyed by event name.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]subscriber
	nextID    uint64
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]subscriber)}
}

// On registers fn for events named name (a gesture kind or a semantic
// event name such as "talent:shortlist").
func (b *Bus) On(name string, fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners[name] = append(b.listeners[name], subscriber{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, name: name}
}

// OnAny registers fn for every event.
func (b *Bus) OnAny(fn Listener) Subscription {
	return b.On(anyEvent, fn)
}

// Off removes a subscription. Removing twice is a no-op.
func (b *Bus) Off(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.listeners[sub.name]
	for i := range subs {
		if subs[i].id == sub.id {
			b.listeners[sub.name] = append(subs[:i:i], subs[i+1:]...)
			if len(b.listeners[sub.name]) == 0 {
				delete(b.listeners, sub.name)
			}
			return
		}
	}
}

// Len reports how many listeners are registered.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.listeners {
		n += len(subs)
	}
	return n
}

// Emit delivers payload to listeners of name, then to catch-all listeners.
func (b *Bus) Emit(name string, payload any) {
	b.mu.RLock()
	direct := append([]subscriber(nil), b.listeners[name]...)
	catchAll := append([]subscriber(nil), b.listeners[anyEvent]...)
	b.mu.RUnlock()

	ev := Event{Name: name, Payload: payload}
	for _, s := range direct {
		deliver(s.fn, ev)
	}
	for _, s := range catchAll {
		deliver(s.fn, ev)
	}
}

func deliver(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			utils.Info("listener for %s panicked: %v\n%s", ev.Name, r, debug.Stack())
		}
	}()
	fn(ev)
}
