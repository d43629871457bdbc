// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errDiffers is returned when at least one document does not survive the
// round trip, so the process exits non-zero.
var errDiffers = errors.New("round trip differs")

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [files...]",
	Short: "Check that documents survive conversion there and back",
	Long: `Roundtrip converts each document to the other format and back, then
compares the result with the source ignoring whitespace and provenance
markers. A unified diff is printed for every document that differs, and the
command fails when any does. With no arguments it reads stdin.`,
	RunE: runRoundtrip,
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"convert.max_depth": "max-depth"})
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
	cfg.Store.Enabled = false
	c, _, err := newConverter(cfg, log)
	if err != nil {
		return err
	}

	type source struct{ name, text string }
	var sources []source
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		sources = append(sources, source{"<stdin>", string(data)})
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, source{path, string(data)})
	}

	out := cmd.OutOrStdout()
	differs := 0
	for _, s := range sources {
		res, err := c.RoundTrip(s.text, dir)
		if err != nil {
			return err
		}
		if res.Equal {
			fmt.Fprintf(out, "ok:      %s\n", s.name)
			continue
		}
		differs++
		fmt.Fprintf(out, "differs: %s\n%s\n", s.name, res.Diff)
	}
	fmt.Fprintf(out, "\nRoundtrip summary: %d ok, %d differ (total: %d)\n", len(sources)-differs, differs, len(sources))
	if differs > 0 {
		return errDiffers
	}
	return nil
}

func init() {
	roundtripCmd.Flags().String("direction", "tex2typst", "first conversion: tex2typst or typst2tex")
	roundtripCmd.Flags().Int("max-depth", 64, "nesting bound for theorems and math")
	rootCmd.AddCommand(roundtripCmd)
}
