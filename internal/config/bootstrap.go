// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

//go:embed filesearch.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/filesearch/filesearch.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fserr.Errorf(fserr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "filesearch", "filesearch.yaml"), nil
}

// BootstrapConfig writes the default commented config to the default path
// if nothing exists there yet. It returns the path written, or "" when the
// file already existed or could not be written.
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		log.Debug().Err(err).Msg("skipping config bootstrap")
		return ""
	}
	return bootstrapAt(cfgPath)
}

func bootstrapAt(cfgPath string) string {
	if _, err := os.Stat(cfgPath); err == nil {
		return ""
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Debug().Err(err).Str("path", dir).Msg("skipping config bootstrap: cannot create directory")
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		log.Debug().Err(err).Str("path", cfgPath).Msg("skipping config bootstrap: cannot write config")
		return ""
	}

	log.Info().Str("path", cfgPath).Msg("created default config")
	return cfgPath
}
