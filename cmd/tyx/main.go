// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tyx CLI, which converts
// documents between TeX and Typst.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tyx CLI.
var rootCmd = &cobra.Command{
	Use:   "tyx",
	Short: "Convert documents between TeX and Typst",
	Long: `tyx converts academic documents between TeX and Typst. Sections, theorem
environments, math, labels and references are translated structurally;
everything else is preserved verbatim and reported as a diagnostic.

Emitted Typst carries //[...] provenance markers so that a document can be
converted back without losing information.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tyx.yaml or ~/.config/tyx/tyx.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tyx")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tyx"))
		}
	}

	viper.SetEnvPrefix("TYX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
