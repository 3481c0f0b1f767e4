// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func (a *app) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query --store ID QUESTION...",
		Short: "Ask a question about a store",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().StringP("store", "s", "", "store id to search (required)")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	storeID, _ := cmd.Flags().GetString("store")
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fserr.New(fserr.CodeCLIInputInvalid, "question must not be empty")
	}

	var res pipeline.QueryResult
	req := map[string]string{"query": question}
	if err := clientFor(cmd).postJSON(cmd.Context(), "/api/v1/stores/"+pathEscape(storeID)+"/query", req, &res); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Status {
	case pipeline.StatusAnswered:
		fprintf(out, "%s\n", color.New(color.Bold).Sprint(res.Answer))
	case pipeline.StatusNoData:
		fprintf(out, "%s\n", color.YellowString("%s", res.Answer))
	default:
		fprintf(out, "%s\n", color.RedString("%s", res.Answer))
	}

	if len(res.Matches) == 0 {
		return nil
	}
	faint := color.New(color.Faint).SprintFunc()
	fprintf(out, "\nSources:\n")
	for i, m := range res.Matches {
		fprintf(out, "  %d. %s (score %.3f)\n", i+1, m.Filename, m.Score)
		fprintf(out, "     %s\n", faint(strings.ReplaceAll(m.Preview, "\n", " ")))
	}
	return nil
}
