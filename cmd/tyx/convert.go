// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tyx/internal/report"
	"github.com/pdiddy/tyx/pkg/types"
)

var tex2typstCmd = &cobra.Command{
	Use:   "tex2typst [files...]",
	Short: "Convert TeX documents to Typst",
	Long: `Tex2typst converts TeX sources to Typst. With no arguments it reads
stdin and writes stdout; otherwise each file is converted into --out-dir,
skipping files unchanged since their last recorded conversion.`,
	RunE: runConvert(types.TeXToTypst),
}

var typst2texCmd = &cobra.Command{
	Use:   "typst2tex [files...]",
	Short: "Convert Typst documents back to TeX",
	Long: `Typst2tex converts Typst sources, typically produced by tex2typst, back
to TeX. With no arguments it reads stdin and writes stdout.`,
	RunE: runConvert(types.TypstToTeX),
}

var convertBindings = map[string]string{
	"convert.out_dir":   "out-dir",
	"convert.workers":   "workers",
	"convert.force":     "force",
	"convert.import":    "import",
	"convert.max_depth": "max-depth",
}

func runConvert(dir types.Direction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, convertBindings)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		reportPath, _ := cmd.Flags().GetString("report")

		if len(args) == 0 {
			cfg.Store.Enabled = false
			c, _, err := newConverter(cfg, log)
			if err != nil {
				return err
			}
			src, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			res, err := c.Convert(string(src), dir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Output)
			for _, d := range res.Diagnostics {
				log.Warn("diagnostic", "kind", d.Kind, "from", d.Range.From, "to", d.Range.To, "message", d.Message)
			}
			if reportPath != "" {
				return report.Write(reportPath, []report.Entry{{Path: "<stdin>", Result: res}})
			}
			return nil
		}

		c, closeStore, err := newConverter(cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		result := c.ConvertBatch(context.Background(), args, dir, cmd.OutOrStdout())
		if reportPath != "" {
			var entries []report.Entry
			for _, f := range result.Files {
				if f.Status == types.ConversionDone {
					entries = append(entries, report.Entry{Path: f.SourcePath, Result: f.Result})
				}
			}
			if err := report.Write(reportPath, entries); err != nil {
				return err
			}
		}
		if result.HasFailures() {
			return fmt.Errorf("%d file(s) failed conversion", result.Failed)
		}
		return nil
	}
}

func init() {
	for _, cmd := range []*cobra.Command{tex2typstCmd, typst2texCmd} {
		cmd.Flags().String("out-dir", ".", "directory for converted files")
		cmd.Flags().Int("workers", 4, "number of files converted in parallel")
		cmd.Flags().Bool("force", false, "reconvert files even when unchanged")
		cmd.Flags().String("import", "article.typ", "Typst template imported by emitted documents")
		cmd.Flags().Int("max-depth", 64, "nesting bound for theorems and math")
		cmd.Flags().String("report", "", "write a diagnostics report (.md or .html)")
		rootCmd.AddCommand(cmd)
	}
}
