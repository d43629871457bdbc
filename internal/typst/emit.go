// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package typst writes and reads the Typst side of a conversion. Render
// emits Typst markup with provenance markers; Parse reads that markup back
// into the same tree shape the TeX builder produces.
package typst

import (
	"fmt"
	"strings"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/meta"
	"github.com/pdiddy/tyx/internal/tex"
)

// Options configures both directions.
type Options struct {
	// Import is the template imported at the top of emitted documents.
	// Empty falls back to the document's import attribute; no header is
	// written when both are empty.
	Import string
	// MaxDepth bounds theorem nesting and math depth when parsing.
	MaxDepth int
}

// Render emits a document tree as Typst.
func Render(doc *ast.Node, opts Options) string {
	var b strings.Builder
	imp := opts.Import
	if imp == "" {
		imp = doc.Attr(ast.AttrImport)
	}
	if imp != "" {
		fmt.Fprintf(&b, "#import %q: *\n\n", imp)
	}
	b.WriteString(renderChildren(doc))
	return normalizeIndent(b.String()) + "\n"
}

func renderChildren(n *ast.Node) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, renderNode(c))
	}
	return strings.Join(parts, "\n")
}

func renderNode(n *ast.Node) string {
	switch n.Kind {
	case ast.Document:
		return renderChildren(n)
	case ast.Section:
		return renderSection(n)
	case ast.Theorem:
		return renderTheorem(n)
	case ast.Math:
		return renderMath(n)
	case ast.Reference:
		return renderReference(n)
	case ast.Norm, ast.Abs:
		return delimited(n)
	case ast.Text:
		return proseToTypst(n.Content)
	case ast.Unknown:
		m := meta.New("unknown", n.Attr(ast.AttrEnv))
		if n.Attr(ast.AttrEnv) == "" {
			m = meta.Bare("unknown")
		}
		return "```tex\n" + n.Original + "\n``` " + m.String()
	default:
		panic(fmt.Sprintf("typst: unhandled node kind %v", n.Kind))
	}
}

func renderSection(n *ast.Node) string {
	level := min(max(n.Level, 1), 6)
	s := strings.Repeat("=", level) + " " + proseToTypst(n.Title)
	if n.Label != "" {
		s += " <" + n.Label + ">"
	}
	if n.Attr(ast.AttrStarred) != "" {
		s += " " + meta.New("section", "star").String()
	}
	return s
}

// theoremFunc is the template function for a theorem environment.
func theoremFunc(env string) string {
	return strings.ToLower(strings.TrimSuffix(env, "*"))
}

func renderTheorem(n *ast.Node) string {
	var args []string
	if n.Title != "" {
		args = append(args, `title: "`+escapeString(n.Title)+`"`)
	}
	if n.Label != "" {
		args = append(args, `id: "`+escapeString(n.Label)+`"`)
	}
	var b strings.Builder
	b.WriteString("#" + theoremFunc(n.Env))
	if len(args) > 0 {
		b.WriteString("(" + strings.Join(args, ", ") + ")")
	}
	b.WriteString("[\n")
	if len(n.Children) > 0 {
		b.WriteString(renderChildren(n))
	} else {
		b.WriteString(proseToTypst(n.Content))
	}
	b.WriteString("\n] " + meta.Bare(n.Env).String())
	return b.String()
}

// mathSizes lists the sizing commands of each Norm and Abs in pre-order,
// one entry per delimiter pair as written by tex.FormatSizes. It returns
// "" when nothing is sized.
func mathSizes(n *ast.Node) string {
	var sizes []string
	sized := false
	ast.Walk(n, func(x *ast.Node) bool {
		if x.Kind == ast.Norm || x.Kind == ast.Abs {
			entry := tex.FormatSizes(x.Size, x.CloseSize)
			sizes = append(sizes, entry)
			sized = sized || entry != "-"
		}
		return true
	})
	if !sized {
		return ""
	}
	return strings.Join(sizes, " ")
}

// spliced returns the TeX source of a Math, Norm or Abs node with every
// Norm/Abs child replaced by a slot, plus the rendered children.
func spliced(n *ast.Node, sep string) (string, []string) {
	if len(n.Children) == 0 {
		return n.Content, nil
	}
	var src []string
	var rendered []string
	for _, c := range n.Children {
		switch c.Kind {
		case ast.Norm, ast.Abs:
			src = append(src, string(slot(len(rendered))))
			rendered = append(rendered, delimited(c))
		default:
			src = append(src, c.Content)
		}
	}
	return strings.Join(src, sep), rendered
}

// delimited renders a Norm or Abs node.
func delimited(n *ast.Node) string {
	src, rendered := spliced(n, " ")
	inner := escapeArg(fillSlots(Transform(src), rendered))
	if n.Kind == ast.Abs {
		return "abs(" + inner + ")"
	}
	s := "norm(" + inner + ")"
	if n.Subscript != "" {
		s += "_(" + Transform(n.Subscript) + ")"
	}
	return s
}

func renderMath(n *ast.Node) string {
	src, rendered := spliced(n, "")
	m := meta.New("formula", string(n.MathKind)).
		With("labels", n.Attr(ast.AttrLabels)).
		With("sizes", mathSizes(n)).
		With("delim", n.Attr(ast.AttrDelim))

	if n.MathKind == ast.Inline {
		body := fillSlots(Transform(src), rendered)
		s := "$" + body + "$"
		if len(m) > 1 || strings.Contains(body, "\n") {
			s += " " + m.String()
		}
		return s
	}

	var body string
	if n.MathKind == ast.Align || n.MathKind == ast.AlignStar {
		body = transformAlign(src)
	} else {
		body = Transform(src)
	}
	body = strings.TrimRight(fillSlots(body, rendered), " \n")
	closing := "$"
	if labels := strings.Fields(n.Attr(ast.AttrLabels)); len(labels) > 0 {
		closing += " <" + labels[0] + ">"
	}
	return "$\n" + body + "\n" + closing + " " + m.String()
}

func renderReference(n *ast.Node) string {
	keys := strings.Split(n.Target, ",")
	refs := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			refs = append(refs, "@"+k)
		}
	}
	if supp := n.Attr(ast.AttrSupplement); supp != "" && len(refs) > 0 {
		refs[len(refs)-1] += "[" + supp + "]"
	}
	return strings.Join(refs, " ") + " " + meta.New("ref", string(n.RefKind)).String()
}
