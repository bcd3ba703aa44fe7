// Package savequeue provides the serialized write path for record saves:
// FIFO order per record ID, at most one save in flight per record, and
// exponential-backoff retry for recoverable failures.
//
// Ordering is structural: a record always hashes to the same lane and
// each lane is a single worker goroutine, so a save cannot begin until
// the previous save for that record has reached a terminal state.
package savequeue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	syncerrors "github.com/studykit/cardsync/internal/errors"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// Queue executes Jobs on worker goroutines partitioned by a stable hash
// of the record ID. FIFO ordering is preserved within a lane; saves for
// different records may run in parallel when more than one lane is
// configured.
type Queue struct {
	cfg   Config
	lanes []chan queuedJob // len == cfg.Lanes

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 -> running, 1 -> closed

	wg sync.WaitGroup
}

// New constructs the queue and starts its lane workers.
func New(cfg Config) *Queue {
	// Apply zero-value defaults.
	if cfg.Lanes <= 0 {
		cfg.Lanes = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 20 * time.Second
	}

	q := &Queue{
		cfg:   cfg,
		lanes: make([]chan queuedJob, cfg.Lanes),
		done:  make(chan struct{}),
	}
	for i := 0; i < cfg.Lanes; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		q.lanes[i] = ch
		q.wg.Add(1)
		go q.runWorker(i, ch)
	}
	return q
}

// Submit enqueues job for the lane derived from recordID.
//
//   - Returns nil on success.
//   - Returns ErrQueueClosed if the queue is stopped.
//   - Returns ErrQueueFull (wrapped in *QueueFullError) if the lane is
//     still full after EnqueueTimeout elapses.
//   - Returns ctx.Err() if the caller-provided context is cancelled first.
func (q *Queue) Submit(ctx context.Context, recordID string, job Job) error {
	// Fast checks to avoid accepting work after Stop().
	if atomic.LoadUint32(&q.closed) == 1 {
		return ErrQueueClosed
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	qj := queuedJob{ctx: ctx, job: job}
	lane := q.laneFor(recordID)
	ch := q.lanes[lane]

	timer := time.NewTimer(q.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- qj:
		submissionsTotal.WithLabelValues(labelFor(lane)).Inc()
		return nil

	case <-q.done: // Stop() may be called while waiting for space
		return ErrQueueClosed

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(lane)).Inc()
		return &QueueFullError{
			Lane:     lane,
			Length:   len(ch),
			Capacity: cap(ch),
		}
	}
}

// Barrier enqueues a no-op job on the lane for recordID and waits until
// it runs, ensuring all previously submitted saves for that record have
// reached a terminal state.
func (q *Queue) Barrier(ctx context.Context, recordID string) error {
	done := make(chan struct{})
	j := JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := q.Submit(ctx, recordID, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop signals every worker to finish draining its current lane, waits
// for them to terminate, and then returns. It is idempotent and safe for
// concurrent use.
func (q *Queue) Stop() {
	if !atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		return // already closed
	}

	log.Debug().Int("lanes", q.cfg.Lanes).Msg("savequeue: stopping, draining lanes")
	close(q.done)
	q.wg.Wait()
	log.Debug().Msg("savequeue: stopped, all lanes drained")
}

// Close lets Queue satisfy io.Closer.
func (q *Queue) Close() error {
	q.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (q *Queue) runWorker(idx int, ch <-chan queuedJob) {
	defer q.wg.Done()

	// Job panics are absorbed per job in runJob; this guard is the last
	// resort for anything else. The lane must survive either way, so a
	// recovered worker restarts: jobs already buffered still run and
	// their callers still get a terminal result.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("lane", idx).Interface("panic", r).Msg("savequeue: worker panic, restarting lane")
			q.wg.Add(1)
			go q.runWorker(idx, ch)
		}
	}()

	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}

			// Honour caller context so an abandoned save doesn't stall the lane.
			select {
			case <-qj.ctx.Done():
				q.settle(qj.job, qj.ctx.Err())
			default:
				q.runWithRetry(label, qj)
			}

			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-q.done:
			q.drain(idx, label, ch)
			return
		}
	}
}

// runWithRetry executes one save until success, an irrecoverable error,
// or exhausted attempts. The backoff sequence is deterministic:
// BaseBackoff, 2*BaseBackoff, ... capped at MaxInterval.
func (q *Queue) runWithRetry(label string, qj queuedJob) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = q.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = q.cfg.MaxInterval
	exp.Reset()

	attempts := 0
	for {
		start := time.Now()
		err := runJob(qj.ctx, qj.job)
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		if err == nil {
			q.settle(qj.job, nil)
			return
		}

		if syncerrors.IsIrrecoverable(err) {
			q.settle(qj.job, err)
			return
		}

		if attempts >= q.cfg.MaxAttempts-1 {
			q.settle(qj.job, err) // max attempts exceeded
			return
		}

		attempts++
		retriesTotal.WithLabelValues(label).Inc()
		wait := exp.NextBackOff()
		log.Warn().Err(err).Int("attempt", attempts).Dur("backoff", wait).Msg("savequeue: save failed, retrying")

		select {
		case <-time.After(wait):
		case <-q.done:
			q.settle(qj.job, ErrQueueClosed)
			return
		case <-qj.ctx.Done():
			q.settle(qj.job, qj.ctx.Err())
			return
		}
	}
}

// drain runs remaining jobs once each, preserving FIFO, then exits.
// Drained jobs get a single attempt without backoff.
func (q *Queue) drain(idx int, label string, ch <-chan queuedJob) {
	if remaining := len(ch); remaining > 0 {
		log.Debug().Int("lane", idx).Int("remaining", remaining).Msg("savequeue: draining lane")
	}
	for {
		select {
		case qj := <-ch:
			if qj.job != nil {
				q.settle(qj.job, runJob(qj.ctx, qj.job))
			}
		default:
			queueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

// runJob executes the job, converting a panic into an irrecoverable
// error so the caller's result handle still settles and the lane keeps
// running.
func runJob(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("savequeue: job panic")
			err = &syncerrors.ClassifiedError{
				Category:   syncerrors.Irrecoverable,
				Underlying: fmt.Errorf("job panicked: %v", r),
			}
		}
	}()
	return j.Run(ctx)
}

// settle reports a job's terminal result to its Notifier (if any) and,
// on failure, to the configured ErrorHandler.
func (q *Queue) settle(j Job, err error) {
	if n, ok := j.(Notifier); ok {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("savequeue: notifier panic")
				}
			}()
			n.Notify(err)
		}()
	}
	if err != nil {
		q.safeHandleError(err)
	}
}

func (q *Queue) safeHandleError(err error) {
	if err == nil || q.cfg.ErrorHandler == nil {
		return
	}
	func() {
		// Guard against panics in the user-supplied handler.
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("savequeue: error handler panic")
			}
		}()
		q.cfg.ErrorHandler(err)
	}()
}

func (q *Queue) laneFor(recordID string) int {
	h := fnv.New32a() // fast and sufficient at our scale
	_, _ = h.Write([]byte(recordID))
	return int(h.Sum32()) % q.cfg.Lanes
}
