package threadpool

import "errors"

const Namespace = "threadpool"

var (
	// ErrTaskActive is returned by Post when the task has been posted and its
	// completion handler has not run yet.
	ErrTaskActive = errors.New(Namespace + ": task already active")

	// ErrQueueOverflow is returned by Post when the number of pending tasks
	// has reached the pool's max queue. The check is advisory: concurrent
	// posts may overshoot by at most the number of concurrent posters.
	ErrQueueOverflow = errors.New(Namespace + ": queue overflow")

	// ErrSemaphore is returned by Post when the pool's semaphore is closed
	// while the post is in progress, i.e. a concurrent Close is shutting the
	// pool down. A post after Close has begun fails with ErrNotStarted.
	ErrSemaphore = errors.New(Namespace + ": semaphore closed")

	// ErrNotifySupport is returned at pool startup when the reactor has no
	// wake-up notification primitive.
	ErrNotifySupport = errors.New(Namespace + ": the configured event method cannot be used with thread pools")

	// ErrNotStarted is returned by Post on a pool whose workers have not
	// been started or that has been closed.
	ErrNotStarted = errors.New(Namespace + ": pool not started")

	// ErrDuplicatePool reports a second thread_pool declaration for a name.
	ErrDuplicatePool = errors.New(Namespace + ": duplicate thread pool")

	// ErrUnknownPool reports a referenced pool that was never declared.
	ErrUnknownPool = errors.New(Namespace + ": unknown thread pool")

	// ErrConfig reports an invalid thread_pool declaration.
	ErrConfig = errors.New(Namespace + ": invalid configuration")
)
