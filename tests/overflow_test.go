package tests

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dispbd/threadpool"
)

// TestOverflow holds the single worker inside a handler waiting on a
// condition, fills the queue to max_queue, and checks that the next post is
// rejected while every admitted task still completes exactly once after the
// condition is released.
func TestOverflow(t *testing.T) {
	r := startReactor(t)
	p := startPool(t, r, threadpool.WithThreads(1), threadpool.WithMaxQueue(2))

	entered := make(chan struct{})
	cond := make(chan struct{})

	blocker := &threadpool.Task{
		Handler: func(any, zerolog.Logger) {
			close(entered)
			<-cond
		},
	}
	done := make(chan *threadpool.Event, 8)
	blocker.Event.Handler = func(ev *threadpool.Event) { done <- ev }

	require.NoError(t, p.Post(blocker))
	<-entered

	admitted := 0
	for i := 0; i < 2; i++ {
		task := &threadpool.Task{
			Handler: func(any, zerolog.Logger) {},
			Event:   threadpool.Event{Handler: func(ev *threadpool.Event) { done <- ev }},
		}
		require.NoError(t, p.Post(task))
		admitted++
	}

	rejectedDone := make(chan *threadpool.Event, 1)
	rejected := &threadpool.Task{
		Handler: func(any, zerolog.Logger) {},
		Event:   threadpool.Event{Handler: func(ev *threadpool.Event) { rejectedDone <- ev }},
	}
	require.ErrorIs(t, p.Post(rejected), threadpool.ErrQueueOverflow)

	close(cond)

	// The blocker and the two admitted tasks complete.
	for i := 0; i < admitted+1; i++ {
		waitEvent(t, done)
	}

	// The rejected task never does.
	select {
	case <-rejectedDone:
		t.Fatal("rejected task completed")
	case <-time.After(100 * time.Millisecond):
	}
}
