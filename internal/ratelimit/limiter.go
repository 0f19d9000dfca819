// Package ratelimit meters request weight against the exchange's budget.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spends request weight from a token bucket refilled at budget per period.
type Limiter struct {
	limiter *rate.Limiter
	budget  atomic.Int64
	period  time.Duration
	metrics *Metrics
}

// Metrics tracks statistics about limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	spentWeight     atomic.Int64
}

// New creates a Limiter allowing budget weight per period, with the whole
// budget available as burst.
func New(budget int, period time.Duration) *Limiter {
	l := &Limiter{
		limiter: rate.NewLimiter(perSecond(budget, period), budget),
		period:  period,
		metrics: &Metrics{},
	}
	l.budget.Store(int64(budget))
	return l
}

func perSecond(budget int, period time.Duration) rate.Limit {
	return rate.Limit(float64(budget) / period.Seconds())
}

func (l *Limiter) clamp(weight int) int {
	if weight < 1 {
		return 1
	}
	if burst := l.limiter.Burst(); weight > burst {
		return burst
	}
	return weight
}

// Wait blocks until weight can be spent or ctx is done. Weights above the
// budget are clamped to it.
func (l *Limiter) Wait(ctx context.Context, weight int) error {
	l.metrics.totalRequests.Add(1)
	weight = l.clamp(weight)
	if err := l.limiter.WaitN(ctx, weight); err != nil {
		l.metrics.deniedRequests.Add(1)
		return err
	}
	l.metrics.allowedRequests.Add(1)
	l.metrics.spentWeight.Add(int64(weight))
	return nil
}

// Allow spends weight if it is available right now.
func (l *Limiter) Allow(weight int) bool {
	l.metrics.totalRequests.Add(1)
	weight = l.clamp(weight)
	if !l.limiter.AllowN(time.Now(), weight) {
		l.metrics.deniedRequests.Add(1)
		return false
	}
	l.metrics.allowedRequests.Add(1)
	l.metrics.spentWeight.Add(int64(weight))
	return true
}

// Sync aligns the bucket with the weight the exchange reports as used in the
// current window, so other processes sharing the key are accounted for.
// Negative values mean "unknown" and are ignored.
func (l *Limiter) Sync(used int) {
	if used < 0 {
		return
	}
	remaining := float64(l.budget.Load() - int64(used))
	if excess := int(l.limiter.Tokens() - remaining); excess > 0 {
		l.limiter.ReserveN(time.Now(), l.clamp(excess))
	}
}

// SetLimit updates the budget per period.
func (l *Limiter) SetLimit(budget int, period time.Duration) {
	l.budget.Store(int64(budget))
	l.period = period
	l.limiter.SetBurst(budget)
	l.limiter.SetLimit(perSecond(budget, period))
}

// Metrics returns a snapshot of the current limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   l.metrics.totalRequests.Load(),
		AllowedRequests: l.metrics.allowedRequests.Load(),
		DeniedRequests:  l.metrics.deniedRequests.Load(),
		SpentWeight:     l.metrics.spentWeight.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of checks performed.
	TotalRequests int64
	// AllowedRequests is the number of requests that were allowed.
	AllowedRequests int64
	// DeniedRequests is the number of requests that were denied or cancelled.
	DeniedRequests int64
	// SpentWeight is the total weight spent by allowed requests.
	SpentWeight int64
}
