// Package ratelimit paces outgoing requests so the client stays inside the
// exchange's request-weight budget. Binance accounts order endpoints against
// a separate budget, so a named bucket is kept per concern.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// BucketOrders is the bucket name used for order placement and cancellation.
const BucketOrders = "orders"

// Limiter provides a global token bucket plus named per-concern buckets.
type Limiter struct {
	global   *rate.Limiter
	buckets  sync.Map
	requests int
	period   time.Duration
	metrics  *metrics
}

type metrics struct {
	total   atomic.Int64
	allowed atomic.Int64
	denied  atomic.Int64
}

// New creates a Limiter allowing the given number of requests per period.
func New(requests int, period time.Duration) *Limiter {
	rps := float64(requests) / period.Seconds()
	return &Limiter{
		global:   rate.NewLimiter(rate.Limit(rps), requests),
		requests: requests,
		period:   period,
		metrics:  &metrics{},
	}
}

// Wait blocks until the global limiter allows a request or the context is
// cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	l.metrics.total.Add(1)
	if err := l.global.Wait(ctx); err != nil {
		l.metrics.denied.Add(1)
		return err
	}
	l.metrics.allowed.Add(1)
	return nil
}

// WaitBucket blocks until the named bucket allows a request or the context
// is cancelled. Buckets are created on demand with the default limit.
func (l *Limiter) WaitBucket(ctx context.Context, bucket string) error {
	l.metrics.total.Add(1)
	if err := l.getBucket(bucket).Wait(ctx); err != nil {
		l.metrics.denied.Add(1)
		return err
	}
	l.metrics.allowed.Add(1)
	return nil
}

// Allow reports whether the global limiter permits a request immediately.
func (l *Limiter) Allow() bool {
	l.metrics.total.Add(1)
	allowed := l.global.Allow()
	if allowed {
		l.metrics.allowed.Add(1)
	} else {
		l.metrics.denied.Add(1)
	}
	return allowed
}

// SetBucketLimit overrides the rate limit for one bucket. The bucket is
// created if it does not exist.
func (l *Limiter) SetBucketLimit(bucket string, requests int, period time.Duration) {
	rps := float64(requests) / period.Seconds()
	l.getBucket(bucket).SetLimit(rate.Limit(rps))
}

func (l *Limiter) getBucket(bucket string) *rate.Limiter {
	if v, ok := l.buckets.Load(bucket); ok {
		return v.(*rate.Limiter)
	}

	rps := float64(l.requests) / l.period.Seconds()
	limiter := rate.NewLimiter(rate.Limit(rps), l.requests)
	actual, _ := l.buckets.LoadOrStore(bucket, limiter)
	return actual.(*rate.Limiter)
}

// Metrics returns a snapshot of limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   l.metrics.total.Load(),
		AllowedRequests: l.metrics.allowed.Load(),
		DeniedRequests:  l.metrics.denied.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	TotalRequests   int64
	AllowedRequests int64
	DeniedRequests  int64
}
