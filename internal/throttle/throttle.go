// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package throttle paces successive calls to an external provider.
package throttle

import (
	"context"
	"sync"
	"time"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// Pacer blocks until the next call may proceed.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Modes accepted by New.
const (
	ModeFixed       = "fixed"
	ModeTokenBucket = "token_bucket"
	ModeNone        = "none"
)

// DefaultDelay is the pause between successive embedding calls.
const DefaultDelay = 3 * time.Second

// Config selects and parameterises a Pacer.
type Config struct {
	Mode          string
	Delay         time.Duration
	RatePerSecond float64
	Burst         int
}

// New builds the Pacer described by cfg. An empty mode means ModeFixed.
func New(cfg Config) (Pacer, error) {
	switch cfg.Mode {
	case "", ModeFixed:
		return NewFixedDelay(cfg.Delay)
	case ModeTokenBucket:
		return NewTokenBucket(cfg.RatePerSecond, cfg.Burst)
	case ModeNone:
		return Nop{}, nil
	default:
		return nil, fserr.Errorf(fserr.CodeThrottleConfigInvalid, "unknown throttle mode %q", cfg.Mode)
	}
}

// Nop never waits.
type Nop struct{}

func (Nop) Wait(context.Context) error { return nil }

// FixedDelay sleeps for the same duration on every Wait.
type FixedDelay struct {
	delay time.Duration
}

func NewFixedDelay(d time.Duration) (*FixedDelay, error) {
	if d < 0 {
		return nil, fserr.Errorf(fserr.CodeThrottleConfigInvalid, "throttle delay must not be negative, got %s", d)
	}
	return &FixedDelay{delay: d}, nil
}

func (p *FixedDelay) Wait(ctx context.Context) error {
	return sleep(ctx, p.delay)
}

// TokenBucket allows bursts of up to burst calls, refilled at rate per
// second. One bucket is shared by every caller.
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	rate       float64
	burst      float64
	lastRefill time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewTokenBucket(rate float64, burst int) (*TokenBucket, error) {
	if rate <= 0 {
		return nil, fserr.Errorf(fserr.CodeThrottleConfigInvalid, "token bucket rate must be positive, got %g", rate)
	}
	if burst <= 0 {
		return nil, fserr.Errorf(fserr.CodeThrottleConfigInvalid, "token bucket burst must be positive, got %d", burst)
	}
	return &TokenBucket{
		tokens:     float64(burst),
		rate:       rate,
		burst:      float64(burst),
		lastRefill: time.Now(),
		now:        time.Now,
		sleep:      sleep,
	}, nil
}

// Wait takes one token, sleeping until one is available.
func (b *TokenBucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		now := b.now()
		b.tokens = min(b.burst, b.tokens+now.Sub(b.lastRefill).Seconds()*b.rate)
		b.lastRefill = now

		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		need := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()

		if err := b.sleep(ctx, need); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return cancelled(ctx.Err())
	}
}

func cancelled(err error) error {
	return fserr.Wrap(err, fserr.CodeThrottleWaitCancelled, "throttle wait cancelled")
}
