// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tyx/internal/convert"
	"github.com/pdiddy/tyx/internal/logging"
	"github.com/pdiddy/tyx/internal/store"
	"github.com/pdiddy/tyx/pkg/types"
)

func init() {
	setDefaults(types.DefaultConfig())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// setDefaults registers every configuration key so that environment
// variables such as TYX_CONVERT_WORKERS are picked up by Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("convert.max_depth", d.Convert.MaxDepth)
	viper.SetDefault("convert.import", d.Convert.Import)
	viper.SetDefault("convert.workers", d.Convert.Workers)
	viper.SetDefault("convert.out_dir", d.Convert.OutDir)
	viper.SetDefault("convert.force", d.Convert.Force)
	viper.SetDefault("store.path", d.Store.Path)
	viper.SetDefault("store.enabled", d.Store.Enabled)
	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.max_body_bytes", d.Serve.MaxBodyBytes)
	viper.SetDefault("serve.read_timeout", d.Serve.ReadTimeout)
	viper.SetDefault("serve.write_timeout", d.Serve.WriteTimeout)
	viper.SetDefault("watch.debounce", d.Watch.Debounce)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig binds the running command's flags to their configuration keys
// and decodes the merged configuration. Flags are bound here rather than
// in init because several commands share flag names.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (types.Config, error) {
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return types.Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg types.Config) (*slog.Logger, error) {
	return logging.New(cfg.Log, os.Stderr)
}

// newConverter builds a Converter with the history store attached when it
// is enabled. The returned close function is never nil.
func newConverter(cfg types.Config, log *slog.Logger) (*convert.Converter, func(), error) {
	if !cfg.Store.Enabled {
		return convert.New(cfg.Convert, nil, log), func() {}, nil
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return convert.New(cfg.Convert, st, log), func() { st.Close() }, nil
}

// directionFlag reads and validates a --direction flag.
func directionFlag(cmd *cobra.Command) (types.Direction, error) {
	s, _ := cmd.Flags().GetString("direction")
	dir := types.Direction(s)
	if !dir.Valid() {
		return "", fmt.Errorf("unsupported direction %q (want %s or %s)", s, types.TeXToTypst, types.TypstToTeX)
	}
	return dir, nil
}
