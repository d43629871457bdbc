// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tyx/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the conversion history",
	Long: `History reads the SQLite database in which file conversions are
recorded: source and output hashes, diagnostics and defined labels.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the history as YAML or JSON",
	Long: `Export writes every recorded conversion with its diagnostics and labels.
The format follows the file extension: .json for JSON, YAML otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryExport,
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd, map[string]string{"store.path": "db"})
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := st.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No conversions recorded.")
		return nil
	}
	fmt.Fprintf(out, "%-4s  %-20s  %-9s  %-5s  %s\n", "ID", "Converted", "Direction", "Diags", "Source")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, r := range records {
		fmt.Fprintf(out, "%-4d  %-20s  %-9s  %-5d  %s\n",
			r.ID, r.ConvertedAt.Format("2006-01-02 15:04:05"), r.Direction, r.Diagnostics, r.SourcePath)
	}
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	path := args[0]
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = st.ExportJSON(context.Background(), path)
	} else {
		err = st.ExportYAML(context.Background(), path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported: %s\n", path)
	return nil
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "history database (default from config, .tyx/history.db)")
	historyListCmd.Flags().Int("limit", 20, "number of conversions to list")

	historyCmd.AddCommand(historyListCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
