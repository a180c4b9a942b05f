// Package threadpool offloads blocking work from a single-goroutine reactor
// to named pools of background workers and delivers completion events back
// on the reactor goroutine, without ever blocking it.
//
// A pool couples three pieces: a lock-free intrusive submission queue fed by
// posters and drained by workers, a lock-free completion queue fed by
// workers and drained by the reactor, and a counting semaphore that parks
// idle workers and bounds admission. Completion delivery rides an in-process
// wake-up source registered with the reactor (see the reactor subpackage).
//
// Construction
//   - New(reactor, opts...): a standalone pool, configured via options.
//   - Registry: named pools bound to configuration. Declarations come from
//     thread_pool directives (Parse/ParseFile) or YAML documents
//     (ParseYAML/LoadYAML); Finalize resolves lazily referenced pools and
//     fills in the reserved "default" pool; Start spawns the workers.
//
// Posting
// A Task carries a caller-owned context value, a handler run on a worker,
// and an embedded completion Event whose handler runs on the reactor
// goroutine. Post never blocks: it either admits the task or fails with
// ErrQueueOverflow, ErrTaskActive, ErrNotStarted or ErrSemaphore. Once admitted, a task
// always runs to completion; there is no cancellation, prioritization or
// work stealing.
//
// Every write a handler makes to the task context happens-before the
// completion handler observes the task, so results travel through the
// context without further synchronization.
package threadpool
