// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/store"
)

func (a *app) newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Create and inspect stores on a running server",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create an empty store and print its id",
			Args:  cobra.NoArgs,
			RunE:  runStoreCreate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stores",
			Args:  cobra.NoArgs,
			RunE:  runStoreList,
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one store",
			Args:  cobra.ExactArgs(1),
			RunE:  runStoreShow,
		},
	)

	return cmd
}

func runStoreCreate(cmd *cobra.Command, _ []string) error {
	var body struct {
		StoreID string `json:"store_id"`
	}
	if err := clientFor(cmd).postJSON(cmd.Context(), "/api/v1/stores", nil, &body); err != nil {
		return err
	}
	fprintf(cmd.OutOrStdout(), "%s\n", body.StoreID)
	return nil
}

func runStoreList(cmd *cobra.Command, _ []string) error {
	var body struct {
		Stores []store.Summary `json:"stores"`
	}
	if err := clientFor(cmd).getJSON(cmd.Context(), "/api/v1/stores", &body); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(body.Stores) == 0 {
		fprintf(out, "No stores.\n")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fprintf(tw, "ID\tCHUNKS\tFILES\tCREATED\n")
	for _, s := range body.Stores {
		fprintf(tw, "%s\t%d\t%d\t%s\n", s.ID, s.Records, len(s.Files), s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	var s store.Summary
	if err := clientFor(cmd).getJSON(cmd.Context(), "/api/v1/stores/"+pathEscape(args[0]), &s); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fprintf(out, "Store:   %s\n", s.ID)
	fprintf(out, "Chunks:  %d\n", s.Records)
	fprintf(out, "Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	if len(s.Files) > 0 {
		fprintf(out, "Files:   %s\n", strings.Join(s.Files, ", "))
	}
	return nil
}
