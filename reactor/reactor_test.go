package reactor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startReactor(t *testing.T, opts ...Option) *Reactor {
	t.Helper()
	r := New(opts...)
	r.Run()
	t.Cleanup(r.Stop)
	return r
}

func TestPostRunsOnReactorGoroutine(t *testing.T) {
	r := startReactor(t)

	done := make(chan struct{})
	r.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted closure did not run")
	}
}

func TestPostSerialized(t *testing.T) {
	r := startReactor(t)

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		r.Post(func() { order = append(order, i) })
	}
	r.Post(func() { close(done) })

	<-done
	require.Len(t, order, 10)
	for i, v := range order {
		require.Equal(t, i, v)
	}
}

func TestNotifySignal(t *testing.T) {
	r := startReactor(t)

	fired := make(chan *Notify, 1)
	n, err := r.CreateNotify(func(n *Notify) {
		n.Rearm()
		fired <- n
	}, "payload")
	require.NoError(t, err)
	require.Equal(t, "payload", n.Data)

	n.Signal()

	select {
	case got := <-fired:
		require.Same(t, n, got)
	case <-time.After(time.Second):
		t.Fatal("handler did not fire")
	}

	// Re-armed: a further signal produces a further invocation.
	n.Signal()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("handler did not fire after re-arm")
	}
}

func TestNotifyCoalesce(t *testing.T) {
	r := startReactor(t)

	var calls atomic.Int64
	n, err := r.CreateNotify(func(n *Notify) {
		// Deliberately no Rearm: every signal must coalesce into the
		// single pending invocation.
		calls.Add(1)
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		n.Signal()
	}

	// Let the loop settle.
	settle := make(chan struct{})
	r.Post(func() { close(settle) })
	<-settle

	require.Equal(t, int64(1), calls.Load())

	// After an explicit re-arm a new signal is delivered again.
	n.Rearm()
	n.Signal()
	settle2 := make(chan struct{})
	r.Post(func() { close(settle2) })
	<-settle2
	require.Equal(t, int64(2), calls.Load())
}

func TestNotifyClosedDropsSignals(t *testing.T) {
	r := startReactor(t)

	fired := make(chan struct{}, 8)
	n, err := r.CreateNotify(func(n *Notify) {
		n.Rearm()
		fired <- struct{}{}
	}, nil)
	require.NoError(t, err)

	n.Close()
	n.Signal()

	select {
	case <-fired:
		t.Fatal("closed notify fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWithoutNotify(t *testing.T) {
	r := startReactor(t, WithoutNotify())

	require.False(t, r.SupportsNotify())
	_, err := r.CreateNotify(func(*Notify) {}, nil)
	require.ErrorIs(t, err, ErrNoNotify)
}

func TestStopIdempotent(t *testing.T) {
	r := New()
	r.Run()
	r.Run() // second Run is a no-op

	r.Stop()
	r.Stop() // second Stop is a no-op
}
