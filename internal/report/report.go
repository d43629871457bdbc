// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report summarizes conversion results as Markdown, optionally
// rendered to HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/tyx/internal/convert"
	"github.com/pdiddy/tyx/internal/diag"
)

// Entry is the result of converting one document.
type Entry struct {
	Path   string
	Result convert.Result
}

// Markdown builds the report: a summary table with one row per document,
// then per document its diagnostics grouped by kind, undefined
// references, unused labels and citations.
func Markdown(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# Conversion report\n\n")

	total := 0
	for _, e := range entries {
		total += len(e.Result.Diagnostics)
	}
	fmt.Fprintf(&b, "%d documents, %d diagnostics.\n\n", len(entries), total)

	b.WriteString("| File | Diagnostics | Undefined | Unused | Citations |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n", cell(e.Path),
			len(e.Result.Diagnostics), len(e.Result.Undefined), len(e.Result.Unused), len(e.Result.Citations))
	}

	for _, e := range entries {
		fmt.Fprintf(&b, "\n## %s\n", e.Path)
		if len(e.Result.Diagnostics) == 0 {
			b.WriteString("\nNo diagnostics.\n")
		}
		groups := e.Result.Diagnostics.ByKind()
		for _, kind := range e.Result.Diagnostics.Kinds() {
			writeDiagnostics(&b, kind, groups[kind])
		}
		writeList(&b, "Undefined references", e.Result.Undefined)
		writeList(&b, "Unused labels", e.Result.Unused)
		writeList(&b, "Citations", e.Result.Citations)
	}
	return b.String()
}

func writeDiagnostics(b *strings.Builder, kind diag.Kind, ds diag.List) {
	fmt.Fprintf(b, "\n### %s (%d)\n\n", kind, len(ds))
	b.WriteString("| Range | Message |\n|---|---|\n")
	for _, d := range ds {
		fmt.Fprintf(b, "| %d-%d | %s |\n", d.Range.From, d.Range.To, cell(d.Message))
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- `%s`\n", it)
	}
}

// cell escapes text for a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// HTML renders Markdown, tables included, to an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// Write stores the report at path, as HTML when path ends in .html and as
// Markdown otherwise.
func Write(path string, entries []Entry) error {
	content := Markdown(entries)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		body, err := HTML(content)
		if err != nil {
			return err
		}
		content = "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Conversion report</title></head>\n<body>\n" +
			body + "</body></html>\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
