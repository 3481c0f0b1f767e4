// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/extract"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

type uploadResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details"`
	Files   []string `json:"files"`
	StoreID string   `json:"store_id"`
}

func (a *app) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload documents into a store",
		Long: "Upload one or more files into a store. Without --store a new store is created first.\n\n" +
			"Files ending in " + strings.Join(extract.Formats(), ", ") +
			" are decoded by format; anything else is read as UTF-8 text.",
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}
	cmd.Flags().StringP("store", "s", "", "target store id")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	client := clientFor(cmd)
	out := cmd.OutOrStdout()

	storeID, _ := cmd.Flags().GetString("store")
	if storeID == "" {
		var created struct {
			StoreID string `json:"store_id"`
		}
		if err := client.postJSON(cmd.Context(), "/api/v1/stores", nil, &created); err != nil {
			return err
		}
		storeID = created.StoreID
		fprintf(out, "Created store %s\n", storeID)
	}

	var res uploadResponse
	if err := client.postFiles(cmd.Context(), "/api/upload", url.Values{"store_id": {storeID}}, args, &res); err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	for _, f := range res.Files {
		fprintf(out, "%s %s\n", ok("✓"), f)
	}
	for _, d := range res.Details {
		fprintf(out, "%s %s\n", bad("✗"), d)
	}

	if !res.Success {
		return fserr.Errorf(fserr.CodeCLIRequestFailure, "%s in store %s", res.Error, storeID)
	}
	fprintf(out, "Uploaded %d file(s) to %s\n", len(res.Files), storeID)
	return nil
}
