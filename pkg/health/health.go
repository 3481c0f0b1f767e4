// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package health holds the point-in-time health snapshot reported by
// embedding and answer backends.
package health

import "time"

// Metrics is a JSON-safe snapshot of one backend's health. Available is
// false while the backend sits in its failure cooldown.
type Metrics struct {
	Backend       string     `json:"backend"`
	FailureCount  int64      `json:"failure_count"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	Available     bool       `json:"available"`
}
