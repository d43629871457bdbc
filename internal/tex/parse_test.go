// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/labels"
)

func TestParseSection(t *testing.T) {
	doc, diags := Parse(`\section{Intro}`, nil, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 1)
	s := doc.Children[0]
	assert.Equal(t, ast.Section, s.Kind)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, "Intro", s.Title)
}

func TestParseTheorem(t *testing.T) {
	reg := labels.New()
	src := `\begin{Lemma}[Key bound]\label{lem:key}
For all $x$,
\[ \|x\|_{2} \le 1 \]
as in \eqref{eq:one}.
\end{Lemma}`
	doc, diags := Parse(src, reg, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 1)

	th := doc.Children[0]
	assert.Equal(t, ast.Theorem, th.Kind)
	assert.Equal(t, "Lemma", th.Env)
	assert.Equal(t, "Key bound", th.Title)
	assert.Equal(t, "lem:key", th.Label)

	var kinds []ast.Kind
	for _, c := range th.Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []ast.Kind{ast.Text, ast.Math, ast.Text, ast.Math, ast.Text, ast.Reference, ast.Text}, kinds)

	display := th.Children[3]
	assert.Equal(t, ast.Display, display.MathKind)
	assert.Empty(t, display.Content)
	require.Len(t, display.Children, 2)
	assert.Equal(t, ast.Norm, display.Children[0].Kind)
	assert.Equal(t, "2", display.Children[0].Subscript)

	info, ok := reg.Lookup("lem:key")
	require.True(t, ok)
	assert.Equal(t, "Lemma", info.Kind)
	assert.Equal(t, "Key bound", info.Title)
	assert.Equal(t, []string{"eq:one"}, reg.UndefinedReferences())
	require.NoError(t, ast.Validate(doc))
}

func TestParseUnclosedTheorem(t *testing.T) {
	src := "\\begin{Lemma}\nbody with $x$\nand more"
	doc, diags := Parse(src, nil, Options{})
	require.Len(t, doc.Children, 1)
	th := doc.Children[0]
	assert.Equal(t, ast.Theorem, th.Kind)
	assert.Equal(t, "body with $x$\nand more", th.Content)
	assert.Equal(t, 1, diags.Count(diag.StructuralMismatch))
	assert.Len(t, diags, 1)
}

func TestParseMathStructure(t *testing.T) {
	doc, _ := Parse(`$\|x\|_{2}$ and $\|\bigg| y \bigg|\|$ and $a+b$`, nil, Options{})
	maths := doc.Children
	require.Len(t, maths, 5)

	first := maths[0]
	require.Len(t, first.Children, 1)
	assert.Empty(t, first.Content)
	assert.Equal(t, "x", first.Children[0].Content)
	assert.Equal(t, "2", first.Children[0].Subscript)

	second := maths[2]
	require.Len(t, second.Children, 1)
	norm := second.Children[0]
	require.Len(t, norm.Children, 1)
	assert.Equal(t, ast.Abs, norm.Children[0].Kind)
	assert.Equal(t, "y", norm.Children[0].Content)

	plain := maths[4]
	assert.Equal(t, "a+b", plain.Content)
	assert.Empty(t, plain.Children)
}

func TestParseMathLabels(t *testing.T) {
	reg := labels.New()
	doc, diags := Parse(`\begin{align} a &= b \label{eq:1} \end{align} see \eqref{eq:1}`, reg, Options{})
	require.Empty(t, diags)
	m := doc.Children[0]
	assert.Equal(t, ast.Align, m.MathKind)
	assert.Equal(t, "a &= b", m.Content)
	assert.Equal(t, "eq:1", m.Attr(ast.AttrLabels))
	assert.Empty(t, reg.UndefinedReferences())
	assert.Empty(t, reg.UnusedLabels())
}

func TestParseLabelConflict(t *testing.T) {
	src := `\begin{Theorem}\label{L} a \end{Theorem}
\begin{Lemma}\label{L} b \end{Lemma}`
	reg := labels.New()
	_, diags := Parse(src, reg, Options{})
	assert.Equal(t, 1, diags.Count(diag.LabelConflict))
	info, _ := reg.Lookup("L")
	assert.Equal(t, "Theorem", info.Kind)
}

func TestParseUnknownEnvironment(t *testing.T) {
	doc, diags := Parse(`\begin{itemize}\item one\end{itemize}`, nil, Options{})
	require.Len(t, doc.Children, 1)
	u := doc.Children[0]
	assert.Equal(t, ast.Unknown, u.Kind)
	assert.Equal(t, `\begin{itemize}\item one\end{itemize}`, u.Original)
	assert.Equal(t, "itemize", u.Attr(ast.AttrEnv))
	assert.Equal(t, 1, diags.Count(diag.UnknownConstruct))
}

func TestParseCitations(t *testing.T) {
	reg := labels.New()
	doc, _ := Parse(`\cite{knuth,lamport}`, reg, Options{})
	r := doc.Children[0]
	assert.Equal(t, ast.RefCite, r.RefKind)
	assert.Equal(t, "knuth,lamport", r.Target)
	assert.Equal(t, []string{"knuth", "lamport"}, reg.Citations())
	assert.Empty(t, reg.UndefinedReferences())
}

func TestParseDepthLimit(t *testing.T) {
	src := strings.Repeat(`\begin{lemma}`, 4) + "x" + strings.Repeat(`\end{lemma}`, 4)
	doc, diags := Parse(src, nil, Options{MaxDepth: 2})
	assert.Equal(t, 1, diags.Count(diag.StructuralMismatch))
	require.NoError(t, ast.Validate(doc))

	deepMath := "$" + strings.Repeat("{", 10) + `\|x\|` + strings.Repeat("}", 10) + "$"
	doc, diags = Parse(deepMath, nil, Options{MaxDepth: 5})
	assert.Equal(t, 1, diags.Count(diag.StructuralMismatch))
	assert.NotEmpty(t, doc.Children[0].Content, "math keeps raw content when too deep")
}

func TestParseDeterministic(t *testing.T) {
	src := `\section{A} $\|x\|$ \begin{proof} $|y|$ \end{proof} \ref{a}`
	first, _ := Parse(src, nil, Options{})
	second, _ := Parse(src, nil, Options{})
	if diff := cmp.Diff(ast.Dump(first), ast.Dump(second)); diff != "" {
		t.Errorf("parse is not deterministic (-first +second):\n%s", diff)
	}
}
