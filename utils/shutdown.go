package utils

import (
	"errors"
	"fmt"
	"sync"
)

// ShutdownHooks runs named cleanup functions when the process is asked to
// stop. Hooks run in reverse registration order, like deferred calls.
type ShutdownHooks struct {
	mu    sync.Mutex
	hooks []shutdownHook
}

type shutdownHook struct {
	name string
	fn   func() error
}

func NewShutdownHooks() *ShutdownHooks {
	return &ShutdownHooks{}
}

// Register adds fn under name.
func (s *ShutdownHooks) Register(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, shutdownHook{name: name, fn: fn})
	Verbose("Registered shutdown hook: %s", name)
}

// Run executes every hook once, continuing past failures, and clears the
// list. The returned error joins every hook failure.
func (s *ShutdownHooks) Run() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		Verbose("Running shutdown hook: %s", hook.name)
		if err := hook.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *ShutdownHooks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}
