// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/labels"
	"github.com/pdiddy/tyx/internal/tex"
)

// shape describes a tree ignoring prose whitespace, which the two front
// ends lay out differently.
func shape(n *ast.Node) []string {
	var out []string
	squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
	ast.Walk(n, func(x *ast.Node) bool {
		switch x.Kind {
		case ast.Section:
			out = append(out, fmt.Sprintf("Section %d %s %s", x.Level, x.Title, x.Label))
		case ast.Theorem:
			out = append(out, fmt.Sprintf("Theorem %s %s %s", x.Env, x.Title, x.Label))
		case ast.Math:
			out = append(out, fmt.Sprintf("Math %s %s %s", x.MathKind, squash(x.Content), x.Attr(ast.AttrLabels)))
		case ast.Norm:
			out = append(out, fmt.Sprintf("Norm %s sub=%s size=%s/%s", squash(x.Content), x.Subscript, x.Size, x.CloseSize))
		case ast.Abs:
			out = append(out, fmt.Sprintf("Abs %s size=%s/%s", squash(x.Content), x.Size, x.CloseSize))
		case ast.Reference:
			out = append(out, fmt.Sprintf("Reference %s %s", x.RefKind, x.Target))
		case ast.Text:
			if squash(x.Content) != "" {
				out = append(out, "Text "+squash(x.Content))
			}
		default:
			out = append(out, x.Kind.String())
		}
		return true
	})
	return out
}

func TestParseRoundTrip(t *testing.T) {
	texDoc, diags := tex.Parse(lemmaDoc, nil, tex.Options{})
	require.Empty(t, diags)

	out := Render(texDoc, Options{Import: "article.typ"})
	reg := labels.New()
	typDoc, diags := Parse(out, reg, Options{})
	require.Empty(t, diags)
	require.NoError(t, ast.Validate(typDoc))

	assert.Equal(t, "article.typ", typDoc.Attr(ast.AttrImport))
	if d := cmp.Diff(shape(texDoc), shape(typDoc)); d != "" {
		t.Errorf("tree mismatch (-tex +typst):\n%s", d)
	}
	info, ok := reg.Lookup("lem:b")
	require.True(t, ok)
	assert.Equal(t, "Lemma", info.Kind)
	assert.Equal(t, "Bound", info.Title)
	assert.Equal(t, []string{"lem:b"}, reg.UnusedLabels())
}

func TestParseMath(t *testing.T) {
	doc, diags := Parse("$norm(x)_(2) ≤ 1$", nil, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 1)
	m := doc.Children[0]
	assert.Equal(t, ast.Inline, m.MathKind)
	require.NotEmpty(t, m.Children)
	norm := m.Children[0]
	assert.Equal(t, ast.Norm, norm.Kind)
	assert.Equal(t, "x", norm.Content)
	assert.Equal(t, "2", norm.Subscript)

	doc, diags = Parse("$norm(abs(y))$ //[formula:inline,sizes:- bigg]", nil, Options{})
	require.Empty(t, diags)
	norm = doc.Children[0].Children[0]
	require.Equal(t, ast.Norm, norm.Kind)
	assert.Empty(t, norm.Size)
	require.Len(t, norm.Children, 1)
	assert.Equal(t, ast.Abs, norm.Children[0].Kind)
	assert.Equal(t, "bigg", norm.Children[0].Size)
	assert.Equal(t, "bigg", norm.Children[0].CloseSize)

	doc, diags = Parse("$norm(abs(y))$ //[formula:inline,sizes:left/big bigl]", nil, Options{})
	require.Empty(t, diags)
	norm = doc.Children[0].Children[0]
	assert.Equal(t, "left", norm.Size)
	assert.Equal(t, "big", norm.CloseSize)
	require.Len(t, norm.Children, 1)
	assert.Equal(t, "bigl", norm.Children[0].Size)
	assert.Equal(t, "bigr", norm.Children[0].CloseSize)
}

func TestParseDisplayLabels(t *testing.T) {
	reg := labels.New()
	src := "$\n  a\n$ <eq:1> //[formula:display,labels:eq:1,delim:$$]\n$\n  a & = b \\\n  c & = d\n$ //[formula:align]"
	doc, diags := Parse(src, reg, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 2)

	display := doc.Children[0]
	assert.Equal(t, ast.Display, display.MathKind)
	assert.Equal(t, "a", display.Content)
	assert.Equal(t, "eq:1", display.Attr(ast.AttrLabels))
	assert.Equal(t, "$$", display.Attr(ast.AttrDelim))
	info, ok := reg.Lookup("eq:1")
	require.True(t, ok)
	assert.Equal(t, "equation", info.Kind)

	align := doc.Children[1]
	assert.Equal(t, ast.Align, align.MathKind)
	assert.Equal(t, `a & = b \\ c & = d`, align.Content)
}

func TestParseReferences(t *testing.T) {
	reg := labels.New()
	doc, diags := Parse("@a @b[p. 3] //[ref:cite]\n@eq:1 //[ref:eqref]", reg, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 2)

	cite := doc.Children[0]
	assert.Equal(t, ast.RefCite, cite.RefKind)
	assert.Equal(t, "a,b", cite.Target)
	assert.Equal(t, "p. 3", cite.Attr(ast.AttrSupplement))
	assert.Equal(t, []string{"a", "b"}, reg.Citations())

	assert.Equal(t, ast.RefEq, doc.Children[1].RefKind)
	assert.Equal(t, []string{"eq:1"}, reg.UndefinedReferences())
}

func TestParseHeadings(t *testing.T) {
	doc, diags := Parse("== Notes <sec:n> //[section:star]\n==== Deep", nil, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 2)

	s := doc.Children[0]
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, "Notes", s.Title)
	assert.Equal(t, "sec:n", s.Label)
	assert.Equal(t, "true", s.Attr(ast.AttrStarred))

	assert.Equal(t, 3, doc.Children[1].Level)
	assert.Empty(t, doc.Children[1].Attr(ast.AttrStarred))
}

func TestParseRawBlock(t *testing.T) {
	doc, diags := Parse("```tex\n\\begin{itemize}\\item one\\end{itemize}\n``` //[unknown:itemize]", nil, Options{})
	require.Len(t, doc.Children, 1)
	u := doc.Children[0]
	assert.Equal(t, ast.Unknown, u.Kind)
	assert.Equal(t, `\begin{itemize}\item one\end{itemize}`, u.Original)
	assert.Equal(t, "itemize", u.Attr(ast.AttrEnv))
	assert.Equal(t, 1, diags.Count(diag.UnknownConstruct))
}

func TestParseStructuralMismatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
	}{
		{"unclosed theorem", "#lemma[\ntext", Options{}},
		{"unclosed raw", "```tex\n\\foo", Options{}},
		{"unclosed display", "$\n  a", Options{}},
		{"nesting", "#lemma[\n#proof[\nx\n] //[proof]\n] //[Lemma]", Options{MaxDepth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := Parse(tt.src, nil, tt.opts)
			assert.Equal(t, 1, diags.Count(diag.StructuralMismatch), "%v", diags)
		})
	}
}

func TestParseTheoremEnv(t *testing.T) {
	doc, diags := Parse("#lemma(title: \"Key \\\"bound\\\"\", id: \"lem:k\")[\n  text\n] //[Lemma]", nil, Options{})
	require.Empty(t, diags)
	require.Len(t, doc.Children, 1)
	th := doc.Children[0]
	assert.Equal(t, "Lemma", th.Env)
	assert.Equal(t, `Key "bound"`, th.Title)
	assert.Equal(t, "lem:k", th.Label)
	require.Len(t, th.Children, 1)
	assert.Equal(t, "text", th.Children[0].Content)
}

func TestParseLabelConflict(t *testing.T) {
	_, diags := Parse("= A <x>\n= B <x>", nil, Options{})
	assert.Equal(t, 1, diags.Count(diag.LabelConflict))
}
