package ratelimit

import (
	"sync"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

// Config is the window applied to one route purpose.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Result is what the limiter decided for one request. The limiter never
// fails; denial is a regular outcome the caller turns into a 429.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a sliding-window counter over an injected store. The limiter
// mutex makes check-and-increment atomic across concurrent requests for
// the same key.
type Limiter struct {
	mu            sync.Mutex
	store         Store
	clock         func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

type Option func(*Limiter)

// WithClock replaces the wall clock, used by tests to step through windows
// deterministically.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

func WithSweepInterval(interval time.Duration) Option {
	return func(l *Limiter) {
		l.sweepInterval = interval
	}
}

func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:         store,
		clock:         time.Now,
		sweepInterval: defaultSweepInterval,
	}

	for _, o := range opts {
		o(l)
	}

	l.lastSweep = l.clock()
	return l
}

// Check applies one request against the window for key. A key with no
// record, or with an expired one, opens a fresh window; once the window's
// budget is spent every further request is denied without mutating the
// count.
func (l *Limiter) Check(key string, cfg Config) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.maybeSweep(now)

	rec, ok := l.store.Get(key)
	if !ok || now.After(rec.ResetAt) {
		rec = &Record{Key: key, Count: 1, ResetAt: now.Add(cfg.Window)}
		l.store.Set(key, rec)
		return Result{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: rec.ResetAt}
	}

	if rec.Count < cfg.MaxRequests {
		rec.Count++
		return Result{Allowed: true, Remaining: cfg.MaxRequests - rec.Count, ResetAt: rec.ResetAt}
	}

	return Result{Allowed: false, Remaining: 0, ResetAt: rec.ResetAt}
}

// maybeSweep runs the expiry sweep at most once per sweep interval so the
// cost is amortized over many checks instead of paid on every call.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweepInterval {
		return
	}

	l.lastSweep = now
	l.store.Sweep(now)
}
