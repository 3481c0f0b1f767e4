// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"io/fs"
	"os"
	"runtime"

	"github.com/rs/zerolog"
)

// WarnInsecurePermissions logs a warning when the config file at path is
// group- or world-readable, since it may hold API keys. It never fails.
func WarnInsecurePermissions(logger zerolog.Logger, path string) {
	if path == "" || runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("could not stat config file for permission check")
		return
	}

	const groupRead fs.FileMode = 0o040
	const otherRead fs.FileMode = 0o004

	if info.Mode().Perm()&(groupRead|otherRead) != 0 {
		logger.Warn().
			Str("path", path).
			Str("mode", info.Mode().String()).
			Str("recommended", "0600").
			Msg("config file has insecure permissions, API keys may be exposed to other users")
	}
}
