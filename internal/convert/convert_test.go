// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/pkg/types"
)

const lemmaTeX = `\section{Intro}\label{sec:intro}
See \ref{sec:intro} and \cite{knuth}.
\begin{Lemma}[Bound]\label{lem:b}
For $\alpha > 0$ we have $\|x\|_{2} \le 1$.
\end{Lemma}`

func newConverter(t *testing.T, history History) *Converter {
	t.Helper()
	cfg := types.DefaultConfig().Convert
	cfg.OutDir = t.TempDir()
	return New(cfg, history, nil)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		dir       types.Direction
		contains  []string
		wantDiags map[diag.Kind]int
	}{
		{
			name:     "tex to typst",
			src:      lemmaTeX,
			dir:      types.TeXToTypst,
			contains: []string{`#import "article.typ": *`, "= Intro <sec:intro>", "$norm(x)_(2) ≤ 1$", "] //[Lemma]"},
		},
		{
			name:     "typst to tex",
			src:      "= Intro <sec:intro>\n$\n  a\n$ <eq:1> //[formula:display,labels:eq:1]",
			dir:      types.TypstToTeX,
			contains: []string{`\section{Intro}\label{sec:intro}`, "\\[\na \\label{eq:1}\n\\]"},
		},
		{
			name:      "undefined reference",
			src:       `see \ref{nowhere}`,
			dir:       types.TeXToTypst,
			contains:  []string{"@nowhere //[ref:ref]"},
			wantDiags: map[diag.Kind]int{diag.UnresolvedReference: 1},
		},
		{
			name:      "duplicate label",
			src:       "\\section{A}\\label{x}\n\\section{B}\\label{x}",
			dir:       types.TeXToTypst,
			wantDiags: map[diag.Kind]int{diag.LabelConflict: 1},
		},
		{
			name:      "unclosed theorem",
			src:       "\\begin{Lemma}\nbody",
			dir:       types.TeXToTypst,
			contains:  []string{"#lemma["},
			wantDiags: map[diag.Kind]int{diag.StructuralMismatch: 1},
		},
	}
	c := newConverter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Convert(tt.src, tt.dir)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, res.Output, s)
			}
			assert.Len(t, res.Diagnostics, sumCounts(tt.wantDiags), "%v", res.Diagnostics)
			for kind, n := range tt.wantDiags {
				assert.Equal(t, n, res.Diagnostics.Count(kind), "kind %s", kind)
			}
		})
	}
}

func sumCounts(m map[diag.Kind]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

func TestConvertLabels(t *testing.T) {
	res, err := newConverter(t, nil).Convert(lemmaTeX, types.TeXToTypst)
	require.NoError(t, err)
	assert.Empty(t, res.Undefined)
	assert.Equal(t, []string{"lem:b"}, res.Unused)
	assert.Equal(t, []string{"knuth"}, res.Citations)
	require.Len(t, res.Labels, 2)
	assert.Equal(t, "sec:intro", res.Labels[0].Label)
	assert.Equal(t, "Lemma", res.Labels[1].Kind)
}

func TestConvertBadDirection(t *testing.T) {
	_, err := newConverter(t, nil).Convert("x", types.Direction("md2html"))
	assert.Error(t, err)
}

func TestConvertDeterministic(t *testing.T) {
	c := newConverter(t, nil)
	first, err := c.Convert(lemmaTeX, types.TeXToTypst)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Convert(lemmaTeX, types.TeXToTypst)
		require.NoError(t, err)
		assert.Equal(t, first.Output, again.Output)
	}
}

func TestRoundTrip(t *testing.T) {
	c := newConverter(t, nil)
	typ, err := c.Convert(lemmaTeX, types.TeXToTypst)
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
		dir  types.Direction
	}{
		{"lemma", lemmaTeX, types.TeXToTypst},
		{"sized norm", `Let $\left\| x \right\|_{p} = |y|$.`, types.TeXToTypst},
		{"left right parens", `Take $\left( x \right)$ here.`, types.TeXToTypst},
		{"bigl bigr abs", `Take $\bigl| x \bigr|$ here.`, types.TeXToTypst},
		{"abs inside norm", `$\|\bigl| x \bigr|\| = \|x\|$`, types.TeXToTypst},
		{"mixed norm sizes", `$\left\| x \big\|$`, types.TeXToTypst},
		{"empty delimiter", `$\left. x \right|$`, types.TeXToTypst},
		{"silent command", `$a \nonumber$`, types.TeXToTypst},
		{"set builder", `$\{ x | P(x) \} \cup \{ y | Q(y) \}$`, types.TeXToTypst},
		{"align", "\\begin{align}\na &= b \\\\\nc &= d \\label{eq:1}\n\\end{align}", types.TeXToTypst},
		{"comments", "% a note\ntext", types.TeXToTypst},
		{"typst source", typ.Output, types.TypstToTeX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.RoundTrip(tt.src, tt.dir)
			require.NoError(t, err)
			assert.True(t, res.Equal, "diff:\n%s\nintermediate:\n%s", res.Diff, res.Intermediate)
			assert.Empty(t, res.Diff)
		})
	}
}

func TestRoundTripCorpus(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "testdata", "roundtrip", "*.tex"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	c := newConverter(t, nil)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			res, err := c.RoundTrip(string(src), types.TeXToTypst)
			require.NoError(t, err)
			assert.True(t, res.Equal, "diff:\n%s\nintermediate:\n%s", res.Diff, res.Intermediate)
		})
	}
}

func TestCompare(t *testing.T) {
	equal, diff, err := compare("a b\nc", "ab\n\nc  ")
	require.NoError(t, err)
	assert.True(t, equal)
	assert.Empty(t, diff)

	equal, diff, err = compare("a\nb\nc", "a\nx\nc")
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+x")
	assert.Contains(t, diff, "--- source")
}

func TestSquashScripts(t *testing.T) {
	assert.Equal(t, squash(`x_{2}^{n}`), squash("x_2^n"))
	assert.Equal(t, squash("norm(x)_(p)"), squash("norm(x)_p"))
	assert.NotEqual(t, squash(`x_{ij}`), squash("x_ij"))
}

// memHistory is an in-memory History for tests.
type memHistory struct {
	mu      sync.Mutex
	records []*types.ConversionRecord
}

func (h *memHistory) Latest(_ context.Context, path string, dir types.Direction) (*types.ConversionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.records) - 1; i >= 0; i-- {
		if r := h.records[i]; r.SourcePath == path && r.Direction == dir {
			return r, nil
		}
	}
	return nil, nil
}

func (h *memHistory) Record(_ context.Context, rec *types.ConversionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertFile(t *testing.T) {
	ctx := context.Background()
	history := &memHistory{}
	c := newConverter(t, history)
	src := writeSource(t, t.TempDir(), "paper.tex", lemmaTeX)

	var log bytes.Buffer
	res := c.ConvertFile(ctx, src, types.TeXToTypst, &log)
	require.NoError(t, res.Err)
	assert.Equal(t, types.ConversionDone, res.Status)
	assert.Equal(t, "paper.typ", filepath.Base(res.OutputPath))
	assert.Contains(t, log.String(), "converted: ")

	out, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, res.Result.Output, string(out))

	require.Len(t, history.records, 1)
	rec := history.records[0]
	assert.Equal(t, hashOf([]byte(lemmaTeX)), rec.SourceHash)
	assert.Equal(t, hashOf(out), rec.OutputHash)
	assert.Len(t, rec.Labels, 2)

	log.Reset()
	res = c.ConvertFile(ctx, src, types.TeXToTypst, &log)
	assert.Equal(t, types.ConversionNone, res.Status)
	assert.Contains(t, log.String(), "skipped: ")

	require.NoError(t, os.WriteFile(src, []byte(lemmaTeX+"\nMore."), 0o644))
	res = c.ConvertFile(ctx, src, types.TeXToTypst, &log)
	assert.Equal(t, types.ConversionDone, res.Status)
	assert.Len(t, history.records, 2)
}

func TestConvertFileForce(t *testing.T) {
	history := &memHistory{}
	c := newConverter(t, history)
	c.cfg.Force = true
	src := writeSource(t, t.TempDir(), "paper.tex", lemmaTeX)

	for i := 0; i < 2; i++ {
		res := c.ConvertFile(context.Background(), src, types.TeXToTypst, &bytes.Buffer{})
		assert.Equal(t, types.ConversionDone, res.Status)
	}
	assert.Len(t, history.records, 2)
}

func TestConvertFileFailures(t *testing.T) {
	c := newConverter(t, nil)
	var log bytes.Buffer
	res := c.ConvertFile(context.Background(), filepath.Join(t.TempDir(), "missing.tex"), types.TeXToTypst, &log)
	assert.Equal(t, types.ConversionFailed, res.Status)
	assert.Error(t, res.Err)
	assert.True(t, strings.HasPrefix(log.String(), "failed:  "))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := writeSource(t, t.TempDir(), "a.tex", "x")
	res = c.ConvertFile(ctx, src, types.TeXToTypst, &log)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestConvertBatch(t *testing.T) {
	srcDir := t.TempDir()
	var paths []string
	for i, body := range []string{lemmaTeX, `$\|x\|$`, "\\begin{Lemma}\nopen", `\section{S}`} {
		paths = append(paths, writeSource(t, srcDir, string(rune('a'+i))+".tex", body))
	}
	paths = append(paths, filepath.Join(srcDir, "missing.tex"))

	run := func(workers int) (BatchResult, string, map[string]string) {
		c := newConverter(t, nil)
		c.cfg.Workers = workers
		var log bytes.Buffer
		res := c.ConvertBatch(context.Background(), paths, types.TeXToTypst, &log)
		outputs := make(map[string]string)
		for _, f := range res.Files {
			if f.Status == types.ConversionDone {
				data, err := os.ReadFile(f.OutputPath)
				require.NoError(t, err)
				outputs[filepath.Base(f.OutputPath)] = string(data)
			}
		}
		// Output directories differ between runs.
		return res, strings.ReplaceAll(log.String(), c.cfg.OutDir, "OUT"), outputs
	}

	seq, seqLog, seqOut := run(1)
	par, parLog, parOut := run(4)

	assert.Equal(t, 4, seq.Converted)
	assert.Equal(t, 1, seq.Failed)
	assert.True(t, seq.HasFailures())
	assert.Equal(t, 5, seq.Total())
	assert.Contains(t, seqLog, "Batch summary: 4 converted, 0 skipped, 1 failed (total: 5)")

	assert.Equal(t, seqLog, parLog)
	assert.Equal(t, seqOut, parOut)
	assert.Equal(t, seq.Converted, par.Converted)
}

func TestConvertBatchOutputCollision(t *testing.T) {
	srcDir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.Mkdir(filepath.Join(srcDir, sub), 0o755))
	}
	first := writeSource(t, filepath.Join(srcDir, "a"), "x.tex", `\section{First}`)
	second := writeSource(t, filepath.Join(srcDir, "b"), "x.tex", `\section{Second}`)

	c := newConverter(t, nil)
	c.cfg.Workers = 4
	var log bytes.Buffer
	res := c.ConvertBatch(context.Background(), []string{first, second}, types.TeXToTypst, &log)

	assert.Equal(t, 1, res.Converted)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Files, 2)
	assert.Equal(t, types.ConversionDone, res.Files[0].Status)
	assert.Equal(t, types.ConversionFailed, res.Files[1].Status)
	assert.ErrorContains(t, res.Files[1].Err, "also written by "+first)

	data, err := os.ReadFile(res.Files[0].OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "First")
	assert.NotContains(t, string(data), "Second")
}
