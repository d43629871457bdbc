// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"errors"
	"regexp"
	"strings"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/labels"
	"github.com/pdiddy/tyx/internal/meta"
	"github.com/pdiddy/tyx/internal/scan"
	"github.com/pdiddy/tyx/internal/symbols"
	"github.com/pdiddy/tyx/internal/tex"
)

var (
	importLine   = regexp.MustCompile(`^#import\s+"([^"]*)"\s*:\s*\*\s*$`)
	theoremOpen  = regexp.MustCompile(`^#([A-Za-z][A-Za-z0-9-]*)(?:\((.*)\))?\[$`)
	headingLine  = regexp.MustCompile(`^(=+)\s+(.*)$`)
	trailingTag  = regexp.MustCompile(`\s*<([^<>\s]+)>$`)
	stringArgRe  = regexp.MustCompile(`(\w+)\s*:\s*"((?:[^"\\]|\\.)*)"`)
	refItem      = regexp.MustCompile(`@([^\s\[@]+)(?:\[([^\]]*)\])?`)
)

// maxHeadingLevel is the deepest section level TeX can express.
const maxHeadingLevel = 3

// parser reads emitted Typst line by line. Indentation is ignored.
type parser struct {
	lines []string
	// offsets holds the byte offset of each line.
	offsets []int
	pos     int
	reg     *labels.Registry
	max     int
	diags   diag.List
}

// Parse builds the document tree of a Typst source. Labels are recorded
// in reg; a nil reg gets a private registry.
func Parse(src string, reg *labels.Registry, opts Options) (*ast.Node, diag.List) {
	if reg == nil {
		reg = labels.New()
	}
	max := opts.MaxDepth
	if max <= 0 {
		max = scan.DefaultMaxDepth
	}
	src = symbols.NFC(src)
	p := &parser{lines: strings.Split(src, "\n"), reg: reg, max: max}
	off := 0
	for _, l := range p.lines {
		p.offsets = append(p.offsets, off)
		off += len(l) + 1
	}

	doc := ast.NewDocument()
	for p.pos < len(p.lines) && strings.TrimSpace(p.lines[p.pos]) == "" {
		p.pos++
	}
	if p.pos < len(p.lines) {
		if m := importLine.FindStringSubmatch(strings.TrimSpace(p.lines[p.pos])); m != nil {
			doc.SetAttr(ast.AttrImport, m[1])
			p.pos++
		}
	}
	doc.Children, _ = p.block(0)
	return doc, p.diags
}

func (p *parser) offset(line int) int {
	if line >= len(p.offsets) {
		if len(p.offsets) == 0 {
			return 0
		}
		return p.offsets[len(p.offsets)-1] + len(p.lines[len(p.lines)-1])
	}
	return p.offsets[line]
}

// block parses lines until EOF or, inside a theorem, a closing bracket
// line. closed reports whether the closing line was found; it is left
// for the caller.
func (p *parser) block(depth int) (nodes []*ast.Node, closed bool) {
	var text []string
	flush := func() {
		if s := strings.Trim(strings.Join(text, "\n"), "\n"); strings.TrimSpace(s) != "" {
			nodes = append(nodes, ast.NewText(proseToTeX(s)))
		}
		text = nil
	}
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		t := strings.TrimSpace(raw)
		switch {
		case depth > 0 && strings.HasPrefix(t, "]"):
			flush()
			return nodes, true
		case strings.HasPrefix(t, "```"):
			flush()
			nodes = append(nodes, p.raw())
		case headingLine.MatchString(t):
			flush()
			nodes = append(nodes, p.heading(t))
		case p.isTheorem(t):
			flush()
			nodes = append(nodes, p.theorem(t, depth))
		case t == "$":
			flush()
			nodes = append(nodes, p.displayMath())
		case strings.HasPrefix(t, "$"):
			flush()
			nodes = append(nodes, p.inlineMath())
		case strings.HasPrefix(t, "@"):
			flush()
			nodes = append(nodes, p.reference(t))
		default:
			text = append(text, t)
			p.pos++
		}
	}
	flush()
	return nodes, false
}

func (p *parser) isTheorem(t string) bool {
	m := theoremOpen.FindStringSubmatch(t)
	return m != nil && tex.IsTheoremEnv(m[1])
}

func (p *parser) raw() *ast.Node {
	start := p.pos
	first := strings.TrimSpace(p.lines[p.pos])
	p.pos++
	var body []string
	for p.pos < len(p.lines) {
		t := strings.TrimSpace(p.lines[p.pos])
		if strings.HasPrefix(t, "```") {
			p.pos++
			n := ast.NewUnknown(strings.Join(body, "\n"))
			if _, m, ok := meta.Trailing(t); ok {
				env := m.Value("unknown")
				n.SetAttr(ast.AttrEnv, env)
			}
			p.diags.Add(diag.UnknownConstruct, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
				"unsupported construct %s kept verbatim", describeRaw(n))
			return n
		}
		body = append(body, p.lines[p.pos])
		p.pos++
	}
	p.diags.Add(diag.StructuralMismatch, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
		"raw block %q is not closed", first)
	return ast.NewUnknown(strings.Join(body, "\n"))
}

func describeRaw(n *ast.Node) string {
	if env := n.Attr(ast.AttrEnv); env != "" {
		return `\begin{` + env + "}"
	}
	return "block"
}

func (p *parser) heading(t string) *ast.Node {
	p.pos++
	before, m, hasMarker := meta.Trailing(t)
	hm := headingLine.FindStringSubmatch(before)
	level := min(len(hm[1]), maxHeadingLevel)
	title := hm[2]
	label := ""
	if lm := trailingTag.FindStringSubmatch(title); lm != nil {
		label = lm[1]
		title = title[:len(title)-len(lm[0])]
	}
	n := ast.NewSection(level, proseToTeX(strings.TrimSpace(title)))
	n.Label = label
	if hasMarker && m.Value("section") == "star" {
		n.SetAttr(ast.AttrStarred, "true")
	}
	if label != "" {
		p.define(label, "section", n.Title, p.pos-1)
	}
	return n
}

func (p *parser) theorem(t string, depth int) *ast.Node {
	start := p.pos
	m := theoremOpen.FindStringSubmatch(t)
	name := m[1]
	var title, id string
	for _, a := range stringArgRe.FindAllStringSubmatch(m[2], -1) {
		switch a[1] {
		case "title":
			title = unescapeString(a[2])
		case "id":
			id = unescapeString(a[2])
		}
	}
	p.pos++

	n := ast.NewTheorem(name, title, id)
	if depth+1 > p.max {
		n.Content = p.skipBody()
		n.Append(ast.NewText(n.Content))
		p.diags.Add(diag.StructuralMismatch, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
			"theorem nesting exceeds depth %d", p.max)
	} else {
		children, closed := p.block(depth + 1)
		n.Children = children
		if !closed {
			p.diags.Add(diag.StructuralMismatch, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
				"#%s is not closed", name)
		}
	}
	if p.pos < len(p.lines) {
		if _, mk, ok := meta.Trailing(strings.TrimSpace(p.lines[p.pos])); ok {
			if env := mk.Value(meta.TypeKey); env != "" {
				n.Env = env
			}
		}
		p.pos++
	}
	if id != "" {
		p.define(id, n.Env, title, start)
	}
	return n
}

// skipBody consumes a theorem body without parsing it, up to the matching
// closing line, and returns it verbatim.
func (p *parser) skipBody() string {
	depth := 0
	var body []string
	for p.pos < len(p.lines) {
		t := strings.TrimSpace(p.lines[p.pos])
		switch {
		case theoremOpen.MatchString(t):
			depth++
		case strings.HasPrefix(t, "]") && depth == 0:
			return strings.Join(body, "\n")
		case strings.HasPrefix(t, "]"):
			depth--
		}
		body = append(body, t)
		p.pos++
	}
	return strings.Join(body, "\n")
}

func (p *parser) displayMath() *ast.Node {
	start := p.pos
	p.pos++
	var body []string
	for p.pos < len(p.lines) {
		t := strings.TrimSpace(p.lines[p.pos])
		if strings.HasPrefix(t, "$") {
			p.pos++
			before, m, _ := meta.Trailing(t)
			label := ""
			if lm := trailingTag.FindStringSubmatch(before); lm != nil {
				label = lm[1]
			}
			kind := ast.MathKind(m.Value("formula"))
			switch kind {
			case ast.Display, ast.Align, ast.AlignStar:
			default:
				kind = ast.Display
			}
			labelList := m.Value("labels")
			if labelList == "" {
				labelList = label
			}
			return p.math(kind, strings.Join(body, "\n"), m, labelList, start)
		}
		body = append(body, t)
		p.pos++
	}
	p.diags.Add(diag.StructuralMismatch, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
		"display math is not closed")
	return p.math(ast.Display, strings.Join(body, "\n"), nil, "", start)
}

// inlineMath reads $...$ starting at the current line. The body may span
// lines when it carries command markers.
func (p *parser) inlineMath() *ast.Node {
	start := p.pos
	var b strings.Builder
	first := true
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		from := 0
		if first {
			from = 1
		} else {
			b.WriteByte('\n')
		}
		first = false
		if end := closingMathDollar(line, from); end >= 0 {
			b.WriteString(line[from:end])
			p.pos++
			var m meta.Marker
			if rest := strings.TrimSpace(line[end+1:]); rest != "" {
				m, _ = meta.Parse(rest)
			}
			return p.math(ast.Inline, b.String(), m, m.Value("labels"), start)
		}
		b.WriteString(line[from:])
		p.pos++
	}
	p.diags.Add(diag.StructuralMismatch, diag.Ranging{From: p.offset(start), To: p.offset(p.pos)},
		"inline math is not closed")
	return p.math(ast.Inline, b.String(), nil, "", start)
}

// closingMathDollar finds the $ ending math on a line, skipping escapes,
// strings and comments.
func closingMathDollar(line string, from int) int {
	inString := false
	for i := from; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return -1
		case c == '$':
			return i
		}
	}
	return -1
}

func (p *parser) math(kind ast.MathKind, body string, m meta.Marker, labelList string, line int) *ast.Node {
	sizes := strings.Fields(m.Value("sizes"))
	texMath := MathToTeX(body, sizes)
	n, diags := tex.BuildMath(kind, texMath, p.reg, p.max)
	pos := p.offset(line)
	p.diags.Append(diags.Shift(pos))
	n.SetAttr(ast.AttrDelim, m.Value("delim"))
	n.SetAttr(ast.AttrLabels, labelList)
	for _, l := range strings.Fields(labelList) {
		p.define(l, "equation", "", line)
	}
	return n
}

func (p *parser) reference(t string) *ast.Node {
	p.pos++
	before, m, _ := meta.Trailing(t)
	kind := ast.RefKind(m.Value("ref"))
	switch kind {
	case ast.RefPlain, ast.RefEq, ast.RefCite:
	default:
		kind = ast.RefPlain
	}
	var keys []string
	supp := ""
	for _, item := range refItem.FindAllStringSubmatch(before, -1) {
		keys = append(keys, item[1])
		if item[2] != "" {
			supp = item[2]
		}
	}
	for _, k := range keys {
		if kind == ast.RefCite {
			p.reg.Cite(k)
		} else {
			p.reg.Reference(k)
		}
	}
	n := ast.NewReference(kind, strings.Join(keys, ","))
	n.SetAttr(ast.AttrSupplement, supp)
	return n
}

func (p *parser) define(label, kind, title string, line int) {
	err := p.reg.Define(label, kind, title)
	if err == nil {
		return
	}
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		d.Range = diag.PointRanging(p.offset(line))
		p.diags = append(p.diags, *d)
	}
}
