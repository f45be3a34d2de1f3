package registry

import (
	"errors"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reflect"
	"sync"
	"testing"
	"time"
)

type countingListener struct {
	count int
}

func (c *countingListener) OnEvent(listener.Event) {
	c.count++
}

func TestContainer_Define(t *testing.T) {
	c := NewContainer()
	require.NoError(t, Define(c, "counter", func() (*countingListener, error) {
		return &countingListener{}, nil
	}))
	assert.Equal(t, 0, c.Creations("counter"), "Listeners should be created lazily")

	rt, err := c.ResolveListenerType("counter")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[*countingListener](), rt)
	assert.Equal(t, 0, c.Creations("counter"), "Resolving a type shouldn't create the listener")

	first, err := c.ResolveListener("counter")
	require.NoError(t, err)
	second, err := c.ResolveListener("counter")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Creations("counter"))

	err = Define(c, "counter", func() (*countingListener, error) {
		return &countingListener{}, nil
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestContainer_Singleton(t *testing.T) {
	var c Container
	l := &countingListener{}
	require.NoError(t, c.Singleton("single", l))
	resolved, err := c.ResolveListener("single")
	require.NoError(t, err)
	assert.Same(t, l, resolved)
	assert.Equal(t, []string{"single"}, c.Names())

	assert.Panics(t, func() {
		_ = c.Singleton("", l)
	})
	assert.Panics(t, func() {
		_ = c.Singleton("nil", nil)
	})
}

func TestContainer_NotFound(t *testing.T) {
	c := NewContainer()
	_, err := c.ResolveListenerType("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ResolveListener("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Singleton("gone", &countingListener{}))
	assert.True(t, c.Remove("gone"))
	assert.False(t, c.Remove("gone"))
	_, err = c.ResolveListener("gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContainer_FactoryErrors(t *testing.T) {
	errBoom := errors.New("boom")
	c := NewContainer()
	require.NoError(t, Define(c, "failing", func() (*countingListener, error) {
		return nil, errBoom
	}))
	require.NoError(t, Define(c, "nil", func() (*countingListener, error) {
		return nil, nil
	}))

	_, err := c.ResolveListener("failing")
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, errors.Is(err, ErrNotFound))
	_, err = c.ResolveListener("failing")
	assert.ErrorIs(t, err, errBoom, "Failed creations should be retried")
	assert.Equal(t, 2, c.Creations("failing"))

	_, err = c.ResolveListener("nil")
	assert.Error(t, err)
}

func TestContainer_Concurrent(t *testing.T) {
	c := NewContainer()
	require.NoError(t, Define(c, "counter", func() (*countingListener, error) {
		return &countingListener{}, nil
	}))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ResolveListener("counter")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Creations("counter"))
}

func TestContainer_RemovedWhileResolving(t *testing.T) {
	if raceEnabled {
		t.Skip("Removes the definition without the write lock to reach the window between lookup and creation")
	}
	c := NewContainer()
	var created int
	require.NoError(t, Define(c, "counter", func() (*countingListener, error) {
		created++
		return &countingListener{}, nil
	}))

	// Resolution can read the definition, but has to wait to create it.
	c.mux.RLock()
	result := make(chan error, 1)
	go func() {
		_, err := c.ResolveListener("counter")
		result <- err
	}()
	time.Sleep(50 * time.Millisecond)
	delete(c.defs, "counter")
	c.mux.RUnlock()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("Resolution should finish once the lock is released")
	}
	assert.Equal(t, 0, created, "A removed listener shouldn't be created")
}

func TestContainer_Redefine(t *testing.T) {
	c := NewContainer()
	first, second := &countingListener{}, &countingListener{}
	require.NoError(t, c.Singleton("counter", first))
	assert.ErrorIs(t, c.Singleton("counter", second), ErrDuplicate)
	assert.True(t, c.Remove("counter"))
	require.NoError(t, Define(c, "counter", func() (*countingListener, error) {
		return second, nil
	}))
	l, err := c.ResolveListener("counter")
	require.NoError(t, err)
	assert.Same(t, second, l)
	assert.Equal(t, []string{"counter"}, c.Names())
}
