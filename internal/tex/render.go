// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/symbols"
)

// Render turns a document tree into TeX. It undoes the preprocessor:
// commented-out lines are restored and Unicode symbols become commands
// again.
func Render(doc *ast.Node) string {
	var parts []string
	for _, c := range doc.Children {
		parts = append(parts, renderNode(c))
	}
	return UnsubstituteSymbols(strings.Join(parts, "\n")) + "\n"
}

func renderNode(n *ast.Node) string {
	switch n.Kind {
	case ast.Document:
		return Render(n)
	case ast.Section:
		var b strings.Builder
		b.WriteString(`\` + strings.Repeat("sub", n.Level-1) + "section")
		if n.Attr(ast.AttrStarred) != "" {
			b.WriteByte('*')
		}
		b.WriteString("{" + n.Title + "}")
		if n.Label != "" {
			b.WriteString(`\label{` + n.Label + "}")
		}
		return b.String()
	case ast.Theorem:
		return renderTheorem(n)
	case ast.Math:
		return renderMath(n)
	case ast.Reference:
		s := `\` + string(n.RefKind)
		if supp := n.Attr(ast.AttrSupplement); supp != "" {
			s += "[" + supp + "]"
		}
		return s + "{" + n.Target + "}"
	case ast.Norm:
		open, close := SizedDelimiters(n.Size, n.CloseSize, `\|`)
		s := open + innerOf(n) + close
		if n.Subscript != "" {
			s += "_{" + n.Subscript + "}"
		}
		return s
	case ast.Abs:
		open, close := SizedDelimiters(n.Size, n.CloseSize, "|")
		return open + innerOf(n) + close
	case ast.Text:
		return uncomment(n.Content)
	case ast.Unknown:
		return n.Original
	default:
		panic(fmt.Sprintf("tex: unhandled node kind %v", n.Kind))
	}
}

func renderTheorem(n *ast.Node) string {
	var b strings.Builder
	b.WriteString(`\begin{` + n.Env + "}")
	if n.Title != "" {
		b.WriteString("[" + n.Title + "]")
	}
	if n.Label != "" {
		b.WriteString(`\label{` + n.Label + "}")
	}
	b.WriteByte('\n')
	if len(n.Children) > 0 {
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = renderNode(c)
		}
		b.WriteString(strings.Join(parts, "\n"))
	} else {
		b.WriteString(n.Content)
	}
	b.WriteString("\n" + `\end{` + n.Env + "}")
	return b.String()
}

// MathBody returns the TeX content of a Math node, rendering its Norm and
// Abs children when present.
func MathBody(n *ast.Node) string {
	if len(n.Children) == 0 {
		return n.Content
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(renderNode(c))
	}
	return b.String()
}

func renderMath(n *ast.Node) string {
	body := MathBody(n)
	if ls := n.Attr(ast.AttrLabels); ls != "" {
		for _, l := range strings.Fields(ls) {
			body += ` \label{` + l + "}"
		}
	}
	delim := n.Attr(ast.AttrDelim)
	switch n.MathKind {
	case ast.Inline:
		if delim == `\(` {
			return `\(` + body + `\)`
		}
		return "$" + body + "$"
	case ast.Display:
		if delim == "$$" {
			return "$$\n" + body + "\n$$"
		}
		return "\\[\n" + body + "\n\\]"
	case ast.Align, ast.AlignStar:
		env := string(n.MathKind)
		return `\begin{` + env + "}\n" + body + "\n" + `\end{` + env + "}"
	}
	return "$" + body + "$"
}

func innerOf(n *ast.Node) string {
	if len(n.Children) == 0 {
		return n.Content
	}
	var b strings.Builder
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(renderNode(c))
	}
	return b.String()
}

// SizedDelimiters returns the opening and closing TeX delimiters for the
// sizing commands of each side, bare where a command is empty.
func SizedDelimiters(open, close, delim string) (string, string) {
	return sizedDelim(open, delim), sizedDelim(close, delim)
}

func sizedDelim(size, delim string) string {
	if size == "" {
		return delim
	}
	return `\` + size + delim
}

// ImpliedClose returns the closing sizing command that conventionally
// pairs with an opening one: \left with \right, \bigl with \bigr and a
// symmetric command with itself.
func ImpliedClose(open string) string {
	switch {
	case open == "left":
		return "right"
	case strings.HasSuffix(open, "l"):
		return strings.TrimSuffix(open, "l") + "r"
	}
	return open
}

// FormatSizes encodes the sizing commands of a delimiter pair as one
// marker entry: "-" when bare, the opening command when the closing one is
// implied, otherwise "open/close" with "-" for a bare side.
func FormatSizes(open, close string) string {
	switch {
	case open == "" && close == "":
		return "-"
	case close == ImpliedClose(open):
		return open
	}
	dash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	return dash(open) + "/" + dash(close)
}

// ParseSizes decodes an entry written by FormatSizes.
func ParseSizes(entry string) (open, close string) {
	undash := func(s string) string {
		if s == "-" {
			return ""
		}
		return s
	}
	if o, c, ok := strings.Cut(entry, "/"); ok {
		return undash(o), undash(c)
	}
	open = undash(entry)
	return open, ImpliedClose(open)
}

// uncomment restores lines the preprocessor commented out.
func uncomment(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		t := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(t, "// ") {
			lines[i] = t[3:]
		}
	}
	return strings.Join(lines, "\n")
}

// UnsubstituteSymbols replaces Unicode symbols by the TeX commands that
// produce them. A space is inserted when a command would otherwise run
// into a following letter.
func UnsubstituteSymbols(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		cmd, ok := symbols.ToTeX(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteString(cmd)
		if last := cmd[len(cmd)-1]; isLetter(last) && i < len(s) {
			next, _ := utf8.DecodeRuneInString(s[i:])
			if unicode.IsLetter(next) || unicode.IsDigit(next) {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
