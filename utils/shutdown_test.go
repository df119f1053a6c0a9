package utils

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHooks_RunsInReverseOrder(t *testing.T) {
	hooks := NewShutdownHooks()

	var order []string
	hooks.Register("first", func() error { order = append(order, "first"); return nil })
	hooks.Register("second", func() error { order = append(order, "second"); return nil })
	assert.Equal(t, 2, hooks.Len())

	require.NoError(t, hooks.Run())
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, 0, hooks.Len())

	// a second run has nothing left to do
	require.NoError(t, hooks.Run())
	assert.Len(t, order, 2)
}

func TestShutdownHooks_ContinuesPastFailures(t *testing.T) {
	hooks := NewShutdownHooks()
	cause := errors.New("cleanup failed")

	ran := 0
	hooks.Register("ok", func() error { ran++; return nil })
	hooks.Register("broken", func() error { ran++; return cause })

	err := hooks.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 2, ran)
}

func TestShutdownHooks_ConcurrentRegister(t *testing.T) {
	hooks := NewShutdownHooks()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hooks.Register(fmt.Sprintf("hook-%d", n), func() error { return nil })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, hooks.Len())
}
