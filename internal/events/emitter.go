package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lthibault/jitterbug/v2"
)

// ErrStreamClosed reports that the client went away. The pipeline treats it
// as cancellation, not as a failure to surface.
var ErrStreamClosed = errors.New("event stream closed")

// Emitter serializes progress events onto a server-sent-events response in
// the order they are sent. One emitter belongs to exactly one request.
type Emitter struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	f      http.Flusher
	clock  func() time.Time
	closed bool
}

type EmitterOption func(*Emitter)

func WithEmitterClock(clock func() time.Time) EmitterOption {
	return func(e *Emitter) {
		e.clock = clock
	}
}

// NewEmitter prepares w for server-sent events and fails when the transport
// cannot flush partial writes.
func NewEmitter(w http.ResponseWriter, opts ...EmitterOption) (*Emitter, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	e := &Emitter{w: w, f: f, clock: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Send stamps the event with the emission time and writes one data frame.
// A write failure marks the stream closed and every later send reports
// ErrStreamClosed, so the pipeline stops calling out on behalf of a client
// that is gone.
func (e *Emitter) Send(ev ProgressEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrStreamClosed
	}

	ev.Timestamp = e.clock().UnixMilli()

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		e.closed = true
		return ErrStreamClosed
	}
	e.f.Flush()

	return nil
}

// Heartbeat writes comment frames on a jittered interval until ctx is done,
// keeping intermediaries from severing the connection during long stages.
func (e *Emitter) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := jitterbug.New(interval, &jitterbug.Norm{Stdev: 500 * time.Millisecond})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.ping(); err != nil {
				return
			}
		}
	}
}

func (e *Emitter) ping() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrStreamClosed
	}

	if _, err := fmt.Fprint(e.w, ": ping\n\n"); err != nil {
		e.closed = true
		return ErrStreamClosed
	}
	e.f.Flush()

	return nil
}
