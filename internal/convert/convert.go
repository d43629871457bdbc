// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs whole-document conversions between TeX and Typst:
// single sources, round trips, files on disk and parallel batches.
package convert

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/labels"
	"github.com/pdiddy/tyx/internal/tex"
	"github.com/pdiddy/tyx/internal/typst"
	"github.com/pdiddy/tyx/pkg/types"
)

// Result is the outcome of converting one source text. Diagnostics never
// prevent output; Output is always the best-effort rendering.
type Result struct {
	Output      string
	Diagnostics diag.List
	// Undefined lists referenced labels that were never defined.
	Undefined []string
	// Unused lists defined labels that were never referenced.
	Unused    []string
	Citations []string
	Labels    []labels.Info
}

// Converter converts documents with a fixed configuration. It holds no
// per-document state, so one Converter may serve concurrent callers.
type Converter struct {
	cfg     types.ConvertConfig
	history History
	log     *slog.Logger
}

// New returns a Converter. history may be nil, in which case nothing is
// recorded and no source is skipped. A nil logger discards output.
func New(cfg types.ConvertConfig, history History, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{cfg: cfg, history: history, log: logger}
}

// Convert parses src in the source format of dir and renders it in the
// target format. Each call uses a fresh label registry. The only error is
// an unsupported direction.
func (c *Converter) Convert(src string, dir types.Direction) (Result, error) {
	if !dir.Valid() {
		return Result{}, fmt.Errorf("unsupported direction %q", dir)
	}
	reg := labels.New()
	var (
		doc   *ast.Node
		diags diag.List
		out   string
	)
	switch dir {
	case types.TeXToTypst:
		doc, diags = tex.Parse(src, reg, tex.Options{MaxDepth: c.cfg.MaxDepth})
		out = typst.Render(doc, typst.Options{Import: c.cfg.Import})
	case types.TypstToTeX:
		doc, diags = typst.Parse(src, reg, typst.Options{MaxDepth: c.cfg.MaxDepth})
		out = tex.Render(doc)
	}
	// Conflicts are already reported by the parsers with their positions.
	for _, d := range reg.Diagnostics() {
		if d.Kind == diag.UnresolvedReference {
			diags = append(diags, d)
		}
	}

	c.log.Debug("converted document",
		"direction", dir,
		"bytes_in", len(src),
		"bytes_out", len(out),
		"diagnostics", len(diags))

	return Result{
		Output:      out,
		Diagnostics: diags,
		Undefined:   reg.UndefinedReferences(),
		Unused:      reg.UnusedLabels(),
		Citations:   reg.Citations(),
		Labels:      reg.Labels(),
	}, nil
}
