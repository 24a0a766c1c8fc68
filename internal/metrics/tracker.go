package metrics

import (
	"context"
	"sync"
	"time"
)

type netSnapshot struct {
	at       time.Time
	counters Counters
}

// RateTracker holds the previous network counter observation and turns each
// new observation into a download/upload rate. A single tracker is meant to
// be shared by every caller that samples the same host. It is thread-safe,
// and the zero value is ready to use.
type RateTracker struct {
	mu   sync.Mutex
	last *netSnapshot
	now  func() time.Time
}

func NewRateTracker() *RateTracker {
	return &RateTracker{now: time.Now}
}

// Observe advances the tracker with counters the caller read itself, at the
// given time. Sampler uses Advance instead; Observe is the hook for feeding
// recorded or synthetic counters, as the tests do.
func (t *RateTracker) Observe(at time.Time, c Counters) Rates {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advance(at, c)
}

// Advance reads the counters from src while holding the tracker lock, so
// concurrent callers see baselines in the same order their counters were read.
// The tracker is left untouched if src fails.
func (t *RateTracker) Advance(ctx context.Context, src NetSource) (Rates, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := src.Counters(ctx)
	if err != nil {
		return Rates{}, err
	}
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return t.advance(now(), c), nil
}

// Reset forgets the baseline; the next observation reports zero rates.
// Nothing in sysstat resets a live tracker. It is kept for embedders that
// swap the network source and for tests.
func (t *RateTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = nil
}

// Baseline returns the stored observation, if any. It is an inspection hook
// for tests and debugging and plays no part in rate computation.
func (t *RateTracker) Baseline() (time.Time, Counters, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return time.Time{}, Counters{}, false
	}
	return t.last.at, t.last.counters, true
}

// advance must be called with t.mu held.
func (t *RateTracker) advance(at time.Time, c Counters) Rates {
	prev := t.last
	// Always replace the baseline, including on the zero-rate paths below.
	t.last = &netSnapshot{at: at, counters: c}

	if prev == nil {
		return Rates{First: true}
	}

	r := Rates{
		Elapsed:   at.Sub(prev.at),
		Regressed: c.BytesRecv < prev.counters.BytesRecv || c.BytesSent < prev.counters.BytesSent,
	}
	if r.Elapsed <= 0 {
		return r
	}

	r.RxDelta = saturatingSub(c.BytesRecv, prev.counters.BytesRecv)
	r.TxDelta = saturatingSub(c.BytesSent, prev.counters.BytesSent)

	secs := r.Elapsed.Seconds()
	r.RxRate = float64(r.RxDelta) / secs
	r.TxRate = float64(r.TxDelta) / secs
	return r
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
