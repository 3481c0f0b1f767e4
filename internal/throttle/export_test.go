// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package throttle

import (
	"context"
	"time"
)

// SetClock replaces the bucket's time source and sleeper.
func (b *TokenBucket) SetClock(now func() time.Time, sleep func(context.Context, time.Duration) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.sleep = sleep
	b.lastRefill = now()
}

// Delay reports the configured pause.
func (p *FixedDelay) Delay() time.Duration { return p.delay }
