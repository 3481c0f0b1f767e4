// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "errors"

// Sentinel errors for store operations. Returned errors wrap these and also
// carry an fserr code, so both errors.Is and fserr.IsNotFound work.
var (
	// ErrNotFound indicates the requested store does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed store id or record.
	ErrInvalidInput = errors.New("invalid input")
)
