// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sigil-dev/filesearch/internal/server"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the filesearch HTTP server",
		Long:  "Load configuration, build the configured embedding and answer backends, and serve the HTTP API until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = a.v.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	orch, err := wirePipeline(cfg, newProviderRegistry(cfg))
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLISetupFailure, "building pipeline")
	}

	srv, err := server.New(serverConfig(cfg), orch,
		server.WithLogger(log.Logger.With().Str("component", "server").Logger()))
	if err != nil {
		return err
	}

	log.Info().
		Str("listen", cfg.Networking.Listen).
		Str("embedding", cfg.Embedding.Provider+"/"+cfg.Embedding.Model).
		Str("answer", cfg.Answer.Provider+"/"+cfg.Answer.Model).
		Msg("starting filesearch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
