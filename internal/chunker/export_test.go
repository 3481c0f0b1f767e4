// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package chunker

// MaxChunks reports the configured chunk limit.
func (c *Chunker) MaxChunks() int { return c.maxChunks }
