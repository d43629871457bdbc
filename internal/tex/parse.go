// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tex reads and writes the TeX side of a conversion: the line
// preprocessor, the element extractor, the tree builder and the renderer
// that turns a tree back into TeX.
package tex

import (
	"errors"
	"regexp"
	"strings"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/labels"
	"github.com/pdiddy/tyx/internal/scan"
	"github.com/pdiddy/tyx/internal/symbols"
)

// labelCmd matches a label inside math content.
var labelCmd = regexp.MustCompile(`\\label\{([^}]*)\}`)

// Options configures the builder.
type Options struct {
	// MaxDepth bounds theorem nesting and math brace depth. Zero means
	// scan.DefaultMaxDepth.
	MaxDepth int
}

// builder turns extracted elements into nodes. It lives for one Parse
// call.
type builder struct {
	reg     *labels.Registry
	scanner scan.Scanner
	max     int
	diags   diag.List
}

// Parse builds the document tree of a TeX source. Labels are recorded in
// reg; a nil reg gets a private registry. Problems are returned as
// diagnostics and never stop the parse.
func Parse(src string, reg *labels.Registry, opts Options) (*ast.Node, diag.List) {
	if reg == nil {
		reg = labels.New()
	}
	max := opts.MaxDepth
	if max <= 0 {
		max = scan.DefaultMaxDepth
	}
	b := &builder{reg: reg, scanner: scan.Scanner{MaxDepth: max}, max: max}
	doc := ast.NewDocument()
	doc.Children = b.build(Preprocess(symbols.NFC(src)), 0, 0)
	return doc, b.diags
}

// BuildMath builds a Math node from delimiter-free TeX math content,
// registering its labels and splitting out norms and absolute values.
// Other front ends use it to produce the same node shape as Parse.
func BuildMath(kind ast.MathKind, inner string, reg *labels.Registry, maxDepth int) (*ast.Node, diag.List) {
	if reg == nil {
		reg = labels.New()
	}
	b := &builder{reg: reg, scanner: scan.Scanner{MaxDepth: maxDepth}, max: maxDepth}
	n := b.math(Element{Kind: ElemMath, MathKind: kind, Inner: inner}, 0)
	return n, b.diags
}

func (b *builder) build(text string, offset, depth int) []*ast.Node {
	var nodes []*ast.Node
	for _, e := range Extract(text) {
		if e.Problem != nil {
			d := *e.Problem
			d.Range.From += offset
			d.Range.To += offset
			b.diags = append(b.diags, d)
		}
		var n *ast.Node
		switch e.Kind {
		case ElemText:
			n = ast.NewText(e.Text)
		case ElemSection:
			n = b.section(e, offset)
		case ElemTheorem:
			n = b.theorem(e, offset, depth)
		case ElemMath:
			n = b.math(e, offset+e.InnerStart)
		case ElemRef:
			n = b.reference(e)
		case ElemUnknown:
			n = ast.NewUnknown(e.Text)
			n.SetAttr(ast.AttrEnv, e.Env)
			b.diags.Add(diag.UnknownConstruct, diag.Ranging{From: offset + e.Start, To: offset + e.End},
				"environment %s preserved verbatim", e.Env)
		default:
			panic("tex: unhandled element kind")
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func (b *builder) section(e Element, offset int) *ast.Node {
	n := ast.NewSection(e.Level, e.Title)
	n.Label = e.Label
	n.Provenance = e.Text
	if e.Starred {
		n.SetAttr(ast.AttrStarred, "true")
	}
	if e.Label != "" {
		b.define(e.Label, "section", e.Title, offset+e.Start)
	}
	return n
}

func (b *builder) theorem(e Element, offset, depth int) *ast.Node {
	title, label, body, bodyOffset := splitTheoremHead(e.Body)
	n := ast.NewTheorem(e.Env, title, label)
	n.Content = body
	n.Provenance = `\begin{` + e.Env + `}`
	if label != "" {
		b.define(label, e.Env, title, offset+e.Start)
	}
	if depth+1 > b.max {
		b.diags.Add(diag.StructuralMismatch, diag.Ranging{From: offset + e.Start, To: offset + e.End},
			"theorem nesting exceeds %d levels", b.max)
		if body != "" {
			n.Append(ast.NewText(body))
		}
		return n
	}
	n.Children = b.build(body, offset+e.BodyStart+bodyOffset, depth+1)
	return n
}

// splitTheoremHead separates an optional [title] and an immediately
// following \label{...} from a theorem body. bodyOffset is the position of
// the returned body inside the original body.
func splitTheoremHead(raw string) (title, label, body string, bodyOffset int) {
	pos := skipSpace(raw, 0)
	if pos < len(raw) && raw[pos] == '[' {
		if end := matchBracket(raw, pos); end >= 0 {
			title = strings.TrimSpace(raw[pos+1 : end])
			pos = end + 1
		}
	}
	if m := labelAfter.FindStringSubmatchIndex(raw[pos:]); m != nil {
		label = strings.TrimSpace(raw[pos+m[2] : pos+m[3]])
		pos += m[1]
	}
	rest := raw[pos:]
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		return title, label, "", len(raw)
	}
	return title, label, trimmed, pos + strings.Index(rest, trimmed)
}

// matchBracket returns the ] closing the [ at open, skipping brace groups.
func matchBracket(s string, open int) int {
	depth, braces := 0, 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			if braces == 0 {
				depth++
			}
		case ']':
			if braces == 0 {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// math builds a Math node; pos is the offset of the content in the
// source, used for diagnostics.
func (b *builder) math(e Element, pos int) *ast.Node {
	inner := e.Inner
	var found []string
	for _, m := range labelCmd.FindAllStringSubmatch(inner, -1) {
		found = append(found, strings.TrimSpace(m[1]))
	}
	inner = strings.TrimSpace(labelCmd.ReplaceAllString(inner, ""))
	for _, l := range found {
		b.define(l, "equation", "", pos)
	}

	n := ast.NewMath(e.MathKind, inner)
	n.Provenance = mathOpening(e)
	n.SetAttr(ast.AttrLabels, strings.Join(found, " "))
	n.SetAttr(ast.AttrDelim, e.Delim)

	children, err := b.scanner.Parse(inner)
	if err != nil {
		var de *scan.DepthError
		if errors.As(err, &de) {
			b.diags.Add(diag.StructuralMismatch, diag.Ranging{From: pos, To: pos + len(e.Inner)}, "%v", de)
		}
		return n
	}
	if len(children) > 0 {
		n.Children = children
		n.Content = ""
	}
	return n
}

func mathOpening(e Element) string {
	switch {
	case e.Delim != "":
		return e.Delim
	case e.MathKind == ast.Align:
		return `\begin{align}`
	case e.MathKind == ast.AlignStar:
		return `\begin{align*}`
	case e.MathKind == ast.Display:
		return `\[`
	}
	return "$"
}

func (b *builder) reference(e Element) *ast.Node {
	n := ast.NewReference(e.RefKind, e.Target)
	n.Provenance = e.Text
	n.SetAttr(ast.AttrSupplement, e.Supplement)
	if e.RefKind == ast.RefCite {
		for _, k := range strings.Split(e.Target, ",") {
			b.reg.Cite(k)
		}
	} else {
		b.reg.Reference(e.Target)
	}
	return n
}

func (b *builder) define(label, kind, title string, pos int) {
	if err := b.reg.Define(label, kind, title); err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			c := *d
			c.Range = diag.PointRanging(pos)
			b.diags = append(b.diags, c)
		}
	}
}
