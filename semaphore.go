package threadpool

import "sync"

// semaphore is a counting semaphore used both to park idle workers and to
// observe the number of pending submissions for the admission check.
//
// The standard library and golang.org/x/sync offer no primitive with the
// required surface: post must wake exactly one waiter from any goroutine and
// the current count must be observable without modifying it.
type semaphore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	closed bool
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// wait blocks until the count is positive, decrements it and returns true.
// It returns false once the semaphore has been closed; a false return is the
// worker's signal to exit its run loop.
func (s *semaphore) wait() bool {
	s.mu.Lock()
	for s.count == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.count--
	s.mu.Unlock()
	return true
}

// post increments the count and wakes one waiter. It returns false if the
// semaphore has been closed.
func (s *semaphore) post() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
	return true
}

// value observes the current count without modifying it.
func (s *semaphore) value() int {
	s.mu.Lock()
	n := s.count
	s.mu.Unlock()
	return n
}

// close marks the semaphore closed and wakes every waiter. Subsequent post
// calls fail and subsequent wait calls return false immediately.
func (s *semaphore) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
