// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tyx/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Reconvert sources in a directory as they change",
	Long: `Watch monitors a directory and reconverts every .tex file (or .typ file
with --direction typst2tex) when it is written. Bursts of writes to the
same file trigger a single conversion.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"convert.out_dir": "out-dir",
		"watch.debounce":  "debounce",
	})
	if err != nil {
		return err
	}
	dir, err := directionFlag(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	c, closeStore, err := newConverter(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	w := watch.New(args[0], dir.SourceExt(), cfg.Watch.Debounce, func(ctx context.Context, path string) {
		c.ConvertFile(ctx, path, dir, out)
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

func init() {
	watchCmd.Flags().String("direction", "tex2typst", "conversion direction: tex2typst or typst2tex")
	watchCmd.Flags().String("out-dir", ".", "directory for converted files")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a changed file is reconverted (default from config, 200ms)")
	rootCmd.AddCommand(watchCmd)
}
