// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bufio"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/config"
	"github.com/sigil-dev/filesearch/internal/secrets"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func (a *app) newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage provider API keys in the OS keyring",
		Long: "Store provider API keys in the operating system keyring so the config file can " +
			"reference them as keyring://filesearch/<provider>.",
	}

	set := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key read from --value or the first line of stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runSecretSet,
	}
	set.Flags().String("value", "", "API key value (read from stdin when empty)")

	cmd.AddCommand(
		set,
		&cobra.Command{
			Use:   "delete <provider>",
			Short: "Remove a stored API key",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runSecretDelete,
		},
	)

	return cmd
}

func checkProvider(name string) error {
	if !slices.Contains(config.KnownProviders, name) {
		return fserr.Errorf(fserr.CodeCLIInputInvalid, "unknown provider %q, expected one of %v", name, config.KnownProviders)
	}
	return nil
}

func (a *app) runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkProvider(name); err != nil {
		return err
	}

	value, _ := cmd.Flags().GetString("value")
	if value == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fserr.Wrap(err, fserr.CodeCLIInputInvalid, "reading API key from stdin")
		}
		value = strings.TrimSpace(line)
	}

	if err := a.secretStore().Set(secrets.DefaultService, name, value); err != nil {
		return err
	}

	fprintf(cmd.OutOrStdout(), "Stored. Reference it in your config as:\n  providers:\n    %s:\n      api_key: %q\n",
		name, secrets.URI(secrets.DefaultService, name))
	return nil
}

func (a *app) runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkProvider(name); err != nil {
		return err
	}

	if err := a.secretStore().Delete(secrets.DefaultService, name); err != nil {
		if fserr.IsNotFound(err) {
			return fserr.Errorf(fserr.CodeSecretNotFound, "no API key stored for %q", name)
		}
		return err
	}
	fprintf(cmd.OutOrStdout(), "Deleted API key for %s\n", name)
	return nil
}
