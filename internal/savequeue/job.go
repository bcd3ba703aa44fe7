package savequeue

import "context"

// Job is a unit of work executed by a Queue. Run may be invoked more than
// once for the same Job when the queue retries a recoverable failure.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a closure to a Job.
type JobFunc func(ctx context.Context) error

// Run implements Job for JobFunc.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Notifier is implemented by jobs that want their terminal result: nil
// after a successful run, the last error once retries are exhausted or
// the failure is irrecoverable. Notify is called exactly once per job.
type Notifier interface {
	Notify(err error)
}
