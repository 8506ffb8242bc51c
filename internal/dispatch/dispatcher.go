package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/oscargavin/foremost-sub001/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Sender is the downstream transport a job is delivered through. Every
// attempt carries the job's idempotency key.
type Sender interface {
	Send(ctx context.Context, idempotencyKey string, payload json.RawMessage) error
}

// Dispatcher delivers jobs on tracked background tasks with bounded
// exponential-backoff retry. It is decoupled from the request that created
// the job: a client disconnect does not cancel an internal notification,
// but graceful shutdown waits for in-flight jobs via Close.
type Dispatcher struct {
	sender      Sender
	wg          sync.WaitGroup
	maxAttempts uint64
	baseDelay   time.Duration
	maxDelay    time.Duration
	jitter      time.Duration
}

type Option func(*Dispatcher)

// WithBackoff overrides the retry timing, used by tests to avoid real
// sleeps.
func WithBackoff(base, max, jitter time.Duration) Option {
	return func(d *Dispatcher) {
		d.baseDelay = base
		d.maxDelay = max
		d.jitter = jitter
	}
}

// WithMaxAttempts sets the delivery attempt ceiling. Zero is clamped to one:
// maxAttempts-1 feeds WithMaxRetries as a uint64, and an underflow there
// would retry forever.
func WithMaxAttempts(n uint64) Option {
	return func(d *Dispatcher) {
		if n == 0 {
			n = 1
		}
		d.maxAttempts = n
	}
}

func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		maxAttempts: 3,
		baseDelay:   time.Second,
		maxDelay:    10 * time.Second,
		jitter:      500 * time.Millisecond,
	}

	for _, o := range opts {
		o(d)
	}
	return d
}

// Enqueue schedules delivery of job on a tracked background task running on
// a detached context.
func (d *Dispatcher) Enqueue(job *Job) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(context.Background(), job)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, job *Job) {
	backoff := retry.NewExponential(d.baseDelay)
	backoff = retry.WithCappedDuration(d.maxDelay, backoff)
	if d.jitter > 0 {
		// Jitter goes on after the cap so concurrent jobs never line up
		// on the exact capped delay.
		backoff = retry.WithJitter(d.jitter, backoff)
	}
	backoff = retry.WithMaxRetries(d.maxAttempts-1, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		job.Attempt++

		if err := d.sender.Send(ctx, job.IdempotencyKey, job.Payload); err != nil {
			if retryable(err) {
				metrics.IncreaseDispatchAttemptsTotalMetric("retryable_failure")
				zap.S().Named("dispatch").Warnw("delivery attempt failed",
					"attempt", job.Attempt, "idempotency_key", job.IdempotencyKey, "error", err)
				return retry.RetryableError(err)
			}
			metrics.IncreaseDispatchAttemptsTotalMetric("failure")
			return err
		}

		metrics.IncreaseDispatchAttemptsTotalMetric("success")
		return nil
	})
	if err != nil {
		// Terminal. The primary response went out long ago, so the only
		// thing left is to log the loss.
		zap.S().Named("dispatch").Errorw("notification abandoned",
			"attempts", job.Attempt, "idempotency_key", job.IdempotencyKey, "error", err)
		return
	}

	zap.S().Named("dispatch").Infow("notification delivered",
		"attempts", job.Attempt, "idempotency_key", job.IdempotencyKey)
}

// Close blocks until all in-flight jobs finish or ctx expires. Called during
// graceful shutdown so a redeploy does not drop queued notifications.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryable classifies a delivery failure: 429 and 5xx answers are
// transient, any other status is a permanent rejection, and an error with
// no status at all means the transport itself failed.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
