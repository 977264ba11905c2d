// Package ratelimit provides an optional client-side pacing mechanism for
// requests to the Bitpin REST API.
//
// Bitpin publishes per-endpoint budgets (for example 200 requests/minute on
// authenticated market-data reads, 80/minute on order listing and 5400/hour
// on order placement) but the exchange enforces them server-side. The
// connector therefore does not enforce any rate by default; this package
// exists so a caller who wants to stay inside a documented budget can attach
// a limiter to the transport session instead of building their own.
//
// The implementation wraps Uber's token-bucket limiter behind a small
// interface so tests and callers can substitute their own pacing strategy.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
)

// Rate represents a rate limit configuration: Limit operations allowed per
// Interval. Rate{Limit: 80, Interval: time.Minute} matches Bitpin's
// documented order-listing budget.
type Rate struct {
	Limit    int
	Interval time.Duration
}

// PerMinute is a convenience constructor for the per-minute budgets the
// exchange documents on most endpoints.
func PerMinute(limit int) Rate {
	return Rate{Limit: limit, Interval: time.Minute}
}

// RateLimiter paces operations so they stay within a configured Rate.
type RateLimiter interface {
	// Wait blocks until an operation is permitted or the context is
	// cancelled. It must be called before each rate-limited operation.
	Wait(ctx context.Context) error

	// SetLimit replaces the rate configuration at runtime. Returns an
	// error for a non-positive limit or interval.
	SetLimit(limit Rate) error
}

// uberLimiter implements RateLimiter using Uber's token bucket.
type uberLimiter struct {
	limiter ratelimit.Limiter
	rate    Rate
}

// NewTokenBucketLimiter creates a RateLimiter from the given Rate. The rate
// is converted to operations per second for the underlying limiter, so an
// 80/minute budget paces at roughly one request every 750ms.
func NewTokenBucketLimiter(rate Rate) RateLimiter {
	rps := float64(rate.Limit) / rate.Interval.Seconds()
	if rps < 1 {
		rps = 1
	}
	return &uberLimiter{
		limiter: ratelimit.New(int(rps)),
		rate:    rate,
	}
}

// Wait implements the RateLimiter interface.
func (l *uberLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait cancelled: %w", ctx.Err())
	default:
		l.limiter.Take()
		return nil
	}
}

// SetLimit implements the RateLimiter interface.
func (l *uberLimiter) SetLimit(rate Rate) error {
	if rate.Limit <= 0 || rate.Interval <= 0 {
		return fmt.Errorf("invalid rate limit: %+v", rate)
	}
	rps := float64(rate.Limit) / rate.Interval.Seconds()
	if rps < 1 {
		rps = 1
	}
	l.limiter = ratelimit.New(int(rps))
	l.rate = rate
	return nil
}
