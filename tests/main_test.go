// Package tests holds cross-cutting functional tests exercising pools
// end-to-end through a running reactor.
package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dispbd/threadpool"
	"github.com/dispbd/threadpool/reactor"
)

func startReactor(t *testing.T) *reactor.Reactor {
	t.Helper()
	r := reactor.New()
	r.Run()
	t.Cleanup(r.Stop)
	return r
}

func startPool(t *testing.T, r *reactor.Reactor, opts ...threadpool.Option) *threadpool.Pool {
	t.Helper()
	p, err := threadpool.New(r, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// postRetry posts a task, retrying while the pool reports overflow.
func postRetry(t *testing.T, p *threadpool.Pool, task *threadpool.Task) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := p.Post(task)
		if err == nil {
			return
		}
		require.ErrorIs(t, err, threadpool.ErrQueueOverflow)
		require.True(t, time.Now().Before(deadline), "pool never accepted the task")
		time.Sleep(time.Millisecond)
	}
}

func waitEvent(t *testing.T, ch chan *threadpool.Event) *threadpool.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback did not fire")
		return nil
	}
}
