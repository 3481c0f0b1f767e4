// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/filesearch/internal/config"
	"github.com/sigil-dev/filesearch/internal/secrets"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

const (
	defaultAddress = "127.0.0.1:8000"
	envFile        = ".env"
)

// app carries the state shared by every subcommand of one root command.
type app struct {
	v *viper.Viper
	// secretStore builds the store used to resolve keyring:// values.
	secretStore func() secrets.Store
}

// NewRootCmd creates the root filesearch command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(func() secrets.Store { return secrets.NewKeyringStore() })
}

func newRootCmd(secretStore func() secrets.Store) *cobra.Command {
	a := &app{v: viper.New(), secretStore: secretStore}

	root := &cobra.Command{
		Use:           "filesearch",
		Short:         "filesearch: ask questions about uploaded documents",
		Long:          "filesearch embeds uploaded documents into in-memory stores and answers questions from the most similar chunks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("address", defaultAddress, "address of a running filesearch server")
	root.PersistentFlags().Duration("timeout", 10*time.Minute, "client request timeout")

	root.AddCommand(
		a.newServeCmd(),
		a.newStoreCmd(),
		a.newUploadCmd(),
		a.newQueryCmd(),
		a.newStatusCmd(),
		a.newConfigCmd(),
		a.newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// init loads .env, then sets up viper so the standard precedence
// (flag > env > file > defaults) applies, then configures logging.
func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fserr.Errorf(fserr.CodeConfigLoadReadFailure, "loading %s: %w", envFile, err)
	}

	v := a.v
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fserr.Errorf(fserr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is left unset so viper does not also try the bare
		// name, which would match the filesearch binary itself.
		v.SetConfigName("filesearch")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/filesearch")
		v.AddConfigPath("/etc/filesearch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fserr.Errorf(fserr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fserr.Errorf(fserr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return fserr.Errorf(fserr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	setupLogging(v.GetString("logging.level"), v.GetString("logging.format"), v.GetBool("verbose"), cmd.ErrOrStderr())
	return nil
}

// loadConfig resolves keyring references and decodes the full config.
func (a *app) loadConfig() (*config.Config, error) {
	if err := secrets.ResolveViperSecrets(a.v, a.secretStore()); err != nil {
		return nil, err
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return nil, err
	}

	config.WarnInsecurePermissions(log.Logger, a.v.ConfigFileUsed())
	return cfg, nil
}
