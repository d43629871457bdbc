// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tyx/internal/convert"
	"github.com/pdiddy/tyx/internal/diag"
)

func sampleEntries() []Entry {
	var diags diag.List
	diags.Add(diag.UnresolvedReference, diag.Ranging{}, "reference to undefined label %q", "eq:9")
	diags.Add(diag.StructuralMismatch, diag.Ranging{From: 4, To: 10}, "a | b")
	diags.Add(diag.StructuralMismatch, diag.Ranging{From: 12, To: 12}, "second")
	return []Entry{
		{Path: "a.tex", Result: convert.Result{
			Diagnostics: diags,
			Undefined:   []string{"eq:9"},
			Unused:      []string{"sec:intro"},
			Citations:   []string{"knuth"},
		}},
		{Path: "b.tex"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleEntries())

	assert.Contains(t, md, "2 documents, 3 diagnostics.")
	assert.Contains(t, md, "| a.tex | 3 | 1 | 1 | 1 |")
	assert.Contains(t, md, "| b.tex | 0 | 0 | 0 | 0 |")
	assert.Contains(t, md, "### StructuralMismatch (2)")
	assert.Contains(t, md, `| 4-10 | a \| b |`)
	assert.Contains(t, md, "### UnresolvedReference (1)")
	assert.Contains(t, md, "- `sec:intro`")
	assert.Contains(t, md, "## b.tex\n\nNo diagnostics.")

	// Kinds are listed in sorted order.
	assert.Less(t, strings.Index(md, "StructuralMismatch"), strings.Index(md, "UnresolvedReference ("))
}

func TestHTML(t *testing.T) {
	html, err := HTML(Markdown(sampleEntries()))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Conversion report</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<code>knuth</code>")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		want string
	}{
		{"markdown", "report.md", "# Conversion report"},
		{"html", "report.html", "<!DOCTYPE html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, Write(path, sampleEntries()))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.want))
		})
	}
}
