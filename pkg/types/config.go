// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConvertConfig holds settings for the conversion pipeline.
type ConvertConfig struct {
	// MaxDepth bounds recursion in the scanner and the recursive builders
	// (default 64). Exceeding it is reported as a structural mismatch.
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`

	// Import is the Typst module imported at the top of every emitted
	// document (default "article.typ"). Empty disables the header line.
	Import string `json:"import" yaml:"import" mapstructure:"import"`

	// Workers is the size of the batch conversion pool (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// OutDir is where converted files are written (default ".").
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// Force reconverts files even when the history store has an identical source.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// StoreConfig holds settings for the conversion history database.
type StoreConfig struct {
	// Path is the SQLite database file (default ".tyx/history.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Enabled controls whether conversions are recorded at all.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// ServeConfig holds settings for the HTTP conversion endpoint.
type ServeConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxBodyBytes caps the request body size (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is how long a path must stay quiet before it is reconverted
	// (default 200ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// LogConfig selects the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config is the full tyx configuration as loaded from tyx.yaml, the
// environment (TYX_ prefix) and command-line flags.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Serve   ServeConfig   `json:"serve" yaml:"serve" mapstructure:"serve"`
	Watch   WatchConfig   `json:"watch" yaml:"watch" mapstructure:"watch"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		Convert: ConvertConfig{
			MaxDepth: 64,
			Import:   "article.typ",
			Workers:  4,
			OutDir:   ".",
		},
		Store: StoreConfig{
			Path:    ".tyx/history.db",
			Enabled: true,
		},
		Serve: ServeConfig{
			Addr:         ":8090",
			MaxBodyBytes: 4 << 20,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
