// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"regexp"
	"strings"
)

// proseCommands maps TeX text commands to the Typst markup wrapping their
// argument.
var proseCommands = []struct {
	name       string
	open, shut string
	verbatim   bool
}{
	{"emph", "_", "_", false},
	{"textbf", "*", "*", false},
	{"texttt", "`", "`", true},
	{"url", `#link("`, `")`, true},
	{"footnote", "#footnote[", "]", false},
}

var (
	enumStart   = regexp.MustCompile(`^(\d+)\. `)
	enumEscaped = regexp.MustCompile(`^(\d+)\\\. `)
)

// markupSpecial are characters that start markup in Typst but are plain
// in TeX text.
const markupSpecial = "*@`<[]"

// proseToTypst converts TeX text into Typst markup. Lines commented out
// by the preprocessor pass through, since they are Typst comments too.
// Inline $..$ math is transformed.
func proseToTypst(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimLeft(l, " \t"), "//") {
			continue
		}
		lines[i] = escapeLineStart(inlineToTypst(l))
	}
	return strings.Join(lines, "\n")
}

func escapeLineStart(l string) string {
	trimmed := strings.TrimLeft(l, " \t")
	indent := l[:len(l)-len(trimmed)]
	switch {
	case trimmed == "":
		return l
	case strings.ContainsRune("=-+/", rune(trimmed[0])):
		return indent + `\` + trimmed
	case enumStart.MatchString(trimmed):
		return indent + enumStart.ReplaceAllString(trimmed, `$1\. `)
	}
	return l
}

// inlineToTypst handles one line: markup commands, escapes and math.
func inlineToTypst(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '$':
			end := closingDollar(s, i+1)
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString("$" + Transform(s[i+1:end]) + "$")
			i = end + 1
		case c == '\\':
			if n, out, ok := proseCommand(s, i); ok {
				b.WriteString(out)
				i += n
				continue
			}
			b.WriteByte(c)
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
			}
			i += 2
		case strings.IndexByte(markupSpecial, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func closingDollar(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '$':
			return i
		}
	}
	return -1
}

// proseCommand converts a markup command at s[i]. n is the number of
// bytes consumed.
func proseCommand(s string, i int) (n int, out string, ok bool) {
	for _, pc := range proseCommands {
		head := `\` + pc.name + "{"
		if !strings.HasPrefix(s[i:], head) {
			continue
		}
		open := i + len(head) - 1
		end := matchingBrace(s, open)
		if end < 0 {
			return 0, "", false
		}
		inner := s[open+1 : end]
		if !pc.verbatim {
			inner = inlineToTypst(inner)
		}
		return end + 1 - i, pc.open + inner + pc.shut, true
	}
	return 0, "", false
}

func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// proseToTeX is the inverse of proseToTypst.
func proseToTeX(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimLeft(l, " \t"), "//") {
			continue
		}
		lines[i] = inlineToTeX(unescapeLineStart(l))
	}
	return strings.Join(lines, "\n")
}

func unescapeLineStart(l string) string {
	trimmed := strings.TrimLeft(l, " \t")
	indent := l[:len(l)-len(trimmed)]
	switch {
	case len(trimmed) > 1 && trimmed[0] == '\\' && strings.ContainsRune("=-+/", rune(trimmed[1])):
		return indent + trimmed[1:]
	case enumEscaped.MatchString(trimmed):
		return indent + enumEscaped.ReplaceAllString(trimmed, "$1. ")
	}
	return l
}

func inlineToTeX(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			if strings.IndexByte(markupSpecial, s[i+1]) >= 0 {
				b.WriteByte(s[i+1])
			} else {
				b.WriteString(s[i : i+2])
			}
			i += 2
		case c == '$':
			end := closingDollar(s, i+1)
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString("$" + strings.TrimSpace(MathToTeX(s[i+1:end], nil)) + "$")
			i = end + 1
		case c == '_' || c == '*' || c == '`':
			end := closingMark(s, i+1, c)
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			inner := s[i+1 : end]
			switch c {
			case '_':
				b.WriteString(`\emph{` + inlineToTeX(inner) + "}")
			case '*':
				b.WriteString(`\textbf{` + inlineToTeX(inner) + "}")
			default:
				b.WriteString(`\texttt{` + inner + "}")
			}
			i = end + 1
		case strings.HasPrefix(s[i:], `#link("`):
			end := strings.Index(s[i:], `")`)
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteString(`\url{` + s[i+len(`#link("`):i+end] + "}")
			i += end + 2
		case strings.HasPrefix(s[i:], "#footnote["):
			open := i + len("#footnote[") - 1
			end := matchingBracket(s, open)
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteString(`\footnote{` + inlineToTeX(s[open+1:end]) + "}")
			i = end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// closingMark finds the next unescaped mark character.
func closingMark(s string, from int, mark byte) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case mark:
			return i
		}
	}
	return -1
}

func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
