// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/provider"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and provider status",
		Long:  "Query the running server's status endpoint and show the health of its embedding and answer backends.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	var body struct {
		Status    string          `json:"status"`
		Version   string          `json:"version"`
		Providers provider.Status `json:"providers"`
	}
	if err := clientFor(cmd).getJSON(cmd.Context(), "/api/v1/status", &body); err != nil {
		if fserr.HasCode(err, fserr.CodeCLIServerNotRunning) {
			fprintf(out, "filesearch at %s is not running (connection refused)\n", addr)
			return nil
		}
		fprintf(out, "filesearch at %s: %s\n", addr, err)
		return nil
	}

	fprintf(out, "filesearch at %s: %s (version %s)\n", addr, body.Status, body.Version)
	printBackend(cmd, "embedding", body.Providers.Embedder)
	printBackend(cmd, "answer", body.Providers.Generator)
	return nil
}

func printBackend(cmd *cobra.Command, role string, m health.Metrics) {
	state := color.GreenString("available")
	if !m.Available {
		state = color.RedString("cooling down")
		if m.CooldownUntil != nil {
			state += " until " + m.CooldownUntil.Format("15:04:05")
		}
	}
	fprintf(cmd.OutOrStdout(), "  %-9s %s: %s (failures: %d)\n", role, m.Backend, state, m.FailureCount)
}
