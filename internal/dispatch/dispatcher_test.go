package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeSender struct {
	mu    sync.Mutex
	errs  []error
	keys  []string
	calls int
}

func (f *fakeSender) Send(ctx context.Context, key string, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.keys = append(f.keys, key)
	if f.calls <= len(f.errs) {
		return f.errs[f.calls-1]
	}
	return nil
}

func (f *fakeSender) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]string(nil), f.keys...)
}

var _ = Describe("dispatcher", func() {
	var newTestDispatcher = func(sender Sender, opts ...Option) *Dispatcher {
		opts = append([]Option{WithBackoff(time.Millisecond, 2*time.Millisecond, 0)}, opts...)
		return NewDispatcher(sender, opts...)
	}

	var drain = func(d *Dispatcher) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(d.Close(ctx)).To(Succeed())
	}

	It("retries transient failures and delivers with the same idempotency key", func() {
		sender := &fakeSender{errs: []error{
			NewStatusError(http.StatusServiceUnavailable, "mail api down"),
			NewStatusError(http.StatusServiceUnavailable, "mail api down"),
		}}
		d := newTestDispatcher(sender)

		job, err := NewJob(map[string]string{"subject": "weekly"}, time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, keys := sender.snapshot()
		Expect(calls).To(Equal(3))
		Expect(job.Attempt).To(Equal(3))
		for _, key := range keys {
			Expect(key).To(Equal(job.IdempotencyKey))
		}
	})

	It("treats 429 as transient", func() {
		sender := &fakeSender{errs: []error{NewStatusError(http.StatusTooManyRequests, "slow down")}}
		d := newTestDispatcher(sender)

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(2))
	})

	It("does not retry permanent rejections", func() {
		sender := &fakeSender{errs: []error{NewStatusError(http.StatusUnprocessableEntity, "bad recipient")}}
		d := newTestDispatcher(sender)

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(1))
		Expect(job.Attempt).To(Equal(1))
	})

	It("gives up after the attempt ceiling", func() {
		sender := &fakeSender{errs: []error{
			NewStatusError(http.StatusInternalServerError, "boom"),
			NewStatusError(http.StatusInternalServerError, "boom"),
			NewStatusError(http.StatusInternalServerError, "boom"),
			NewStatusError(http.StatusInternalServerError, "boom"),
		}}
		d := newTestDispatcher(sender)

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(3))
	})

	It("treats transport errors as transient", func() {
		sender := &fakeSender{errs: []error{errors.New("connection reset")}}
		d := newTestDispatcher(sender)

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(2))
	})

	It("clamps a zero attempt ceiling to a single attempt", func() {
		sender := &fakeSender{errs: []error{
			NewStatusError(http.StatusServiceUnavailable, "down"),
			NewStatusError(http.StatusServiceUnavailable, "down"),
		}}
		d := newTestDispatcher(sender, WithMaxAttempts(0))

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(1))
	})

	It("honours a raised attempt ceiling", func() {
		sender := &fakeSender{errs: []error{
			NewStatusError(http.StatusBadGateway, "bad"),
			NewStatusError(http.StatusBadGateway, "bad"),
			NewStatusError(http.StatusBadGateway, "bad"),
			NewStatusError(http.StatusBadGateway, "bad"),
		}}
		d := newTestDispatcher(sender, WithMaxAttempts(5))

		job, err := NewJob("payload", time.Now())
		Expect(err).To(BeNil())

		d.Enqueue(job)
		drain(d)

		calls, _ := sender.snapshot()
		Expect(calls).To(Equal(5))
	})
})

var _ = Describe("job", func() {
	It("collapses identical payloads submitted within the same hour", func() {
		at := time.Date(2026, 8, 31, 10, 12, 0, 0, time.UTC)
		first, err := NewJob(map[string]string{"subject": "s", "html": "<p>b</p>"}, at)
		Expect(err).To(BeNil())
		second, err := NewJob(map[string]string{"subject": "s", "html": "<p>b</p>"}, at.Add(30*time.Minute))
		Expect(err).To(BeNil())

		Expect(first.IdempotencyKey).To(Equal(second.IdempotencyKey))
	})

	It("rotates the key across hour buckets", func() {
		at := time.Date(2026, 8, 31, 10, 12, 0, 0, time.UTC)
		first, err := NewJob("payload", at)
		Expect(err).To(BeNil())
		second, err := NewJob("payload", at.Add(time.Hour))
		Expect(err).To(BeNil())

		Expect(first.IdempotencyKey).NotTo(Equal(second.IdempotencyKey))
	})

	It("derives distinct keys for distinct payloads", func() {
		at := time.Now()
		first, err := NewJob("one", at)
		Expect(err).To(BeNil())
		second, err := NewJob("two", at)
		Expect(err).To(BeNil())

		Expect(first.IdempotencyKey).NotTo(Equal(second.IdempotencyKey))
	})
})
