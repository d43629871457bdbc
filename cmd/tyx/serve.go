// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tyx/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP",
	Long: `Serve starts an HTTP server exposing POST /api/convert and
POST /api/roundtrip (both take ?direction=tex2typst|typst2tex and the
source as the request body) plus GET /health. Conversions are not recorded
in the history store.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"serve.addr":           "addr",
		"serve.max_body_bytes": "max-body-bytes",
	})
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	cfg.Store.Enabled = false
	c, _, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(c, log, cfg.Serve).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8090", "listen address")
	serveCmd.Flags().Int64("max-body-bytes", 4<<20, "maximum request body size")
	rootCmd.AddCommand(serveCmd)
}
