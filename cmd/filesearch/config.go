// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/filesearch/internal/config"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML with API keys redacted",
			Args:  cobra.NoArgs,
			RunE:  a.runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file in use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := a.v.ConfigFileUsed()
				if path == "" {
					path = "(none, using defaults)"
				}
				fprintf(cmd.OutOrStdout(), "%s\n", path)
				return nil
			},
		},
	)

	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	// keyring:// references are printed as-is, never resolved.
	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fserr.Wrap(err, fserr.CodeCLISetupFailure, "encoding config")
	}
	return enc.Close()
}
