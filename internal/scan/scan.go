// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan extracts norm (\|...\|) and absolute value (|...|)
// sub-expressions from TeX math content. Matching is balanced: a closing
// norm token only counts outside braces and parentheses.
package scan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/symbols"
)

// NotFound is returned by FindNormEnd when no closing token exists.
const NotFound = -1

// DefaultMaxDepth bounds brace nesting of scanned content.
const DefaultMaxDepth = 64

// absSizes is the priority order for sized absolute values, largest first.
var absSizes = []string{"Bigg", "bigg", "Big", "big"}

// DepthError reports content nested deeper than the scanner accepts.
type DepthError struct {
	Depth int
	Max   int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("math nested %d levels deep, limit is %d", e.Depth, e.Max)
}

// Scanner extracts Norm and Abs nodes. The zero value uses DefaultMaxDepth.
type Scanner struct {
	MaxDepth int
}

// normMatch describes one matched norm.
type normMatch struct {
	openEnd    int
	closeStart int
	closeEnd   int
	end        int
	openSize   string
	closeSize  string
	sub        string
}

// matchNormToken reports whether a norm token (optionally preceded by a
// sizing command) starts at i, returning the sizing command name and the
// token length.
func matchNormToken(text string, i int) (size string, n int, ok bool) {
	if strings.HasPrefix(text[i:], `\|`) {
		return "", 2, true
	}
	name, end := controlWord(text, i)
	if name == "" || !symbols.IsSizing(name) {
		return "", 0, false
	}
	if strings.HasPrefix(text[end:], `\|`) {
		return name, end + 2 - i, true
	}
	return "", 0, false
}

// controlWord returns the letters of a control word at i and the offset
// after it, or "" when text[i:] is not a control word.
func controlWord(text string, i int) (string, int) {
	if i >= len(text) || text[i] != '\\' {
		return "", i
	}
	j := i + 1
	for j < len(text) && isLetter(text[j]) {
		j++
	}
	return text[i+1 : j], j
}

// skipControl returns the offset after the control sequence at i.
func skipControl(text string, i int) int {
	name, end := controlWord(text, i)
	if name != "" {
		return end
	}
	if i+1 >= len(text) {
		return i + 1
	}
	_, n := utf8.DecodeRuneInString(text[i+1:])
	return i + 1 + n
}

// FindNormEnd returns the offset just past the norm whose opening token
// starts at openPos, including an optional trailing subscript, or NotFound.
func FindNormEnd(text string, openPos int) int {
	m, ok := findNorm(text, openPos)
	if !ok {
		return NotFound
	}
	return m.end
}

func findNorm(text string, openPos int) (normMatch, bool) {
	if openPos < 0 || openPos >= len(text) {
		return normMatch{}, false
	}
	size, n, ok := matchNormToken(text, openPos)
	if !ok {
		return normMatch{}, false
	}
	m := normMatch{openEnd: openPos + n, openSize: size}

	braces, parens := 0, 0
	inSub, subDepth := false, 0
	for i := m.openEnd; i < len(text); {
		c := text[i]
		if c == '\\' {
			if braces == 0 && parens == 0 && !inSub {
				if size, n, ok := matchNormToken(text, i); ok {
					m.closeStart, m.closeEnd = i, i+n
					m.closeSize = size
					m.end = m.closeEnd
					m.sub, m.end = subscript(text, m.closeEnd)
					return m, true
				}
			}
			i = skipControl(text, i)
			continue
		}
		if inSub {
			switch c {
			case '{':
				subDepth++
			case '}':
				subDepth--
				if subDepth == 0 {
					inSub = false
				}
			}
			i++
			continue
		}
		switch c {
		case '_':
			if i+1 < len(text) && text[i+1] == '{' {
				inSub = true
			}
		case '{':
			braces++
		case '}':
			if braces == 0 {
				// The norm would have to close outside its enclosing group.
				return normMatch{}, false
			}
			braces--
		case '(':
			parens++
		case ')':
			if parens > 0 {
				parens--
			}
		}
		i++
	}
	return normMatch{}, false
}

// subscript consumes an optional subscript starting at pos: a braced
// group or a single alphanumeric rune. It returns the subscript and the
// offset after everything consumed.
func subscript(text string, pos int) (string, int) {
	j := skipSpaces(text, pos)
	if j >= len(text) || text[j] != '_' {
		return "", pos
	}
	k := skipSpaces(text, j+1)
	if k >= len(text) {
		return "", pos
	}
	if text[k] == '{' {
		depth := 0
		for i := k; i < len(text); {
			switch text[i] {
			case '\\':
				i = skipControl(text, i)
				continue
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return text[k+1 : i], i + 1
				}
			}
			i++
		}
		return "", pos
	}
	r, n := utf8.DecodeRuneInString(text[k:])
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return string(r), k + n
	}
	return "", pos
}

func skipSpaces(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n') {
		i++
	}
	return i
}

// nextNormOpen returns the offset of the next opening norm token at or
// after from, or NotFound.
func nextNormOpen(text string, from int) int {
	for i := from; i < len(text); {
		if text[i] != '\\' {
			i++
			continue
		}
		if _, _, ok := matchNormToken(text, i); ok {
			return i
		}
		i = skipControl(text, i)
	}
	return NotFound
}

// ParseNorm splits text into a flat list of Text and Norm nodes. Norm
// contents are searched for one absolute value; norms are never nested.
func ParseNorm(text string) []*ast.Node {
	var out []*ast.Node
	rest := text
	for rest != "" {
		idx := nextNormOpen(rest, 0)
		if idx == NotFound {
			out = append(out, ast.NewText(rest))
			break
		}
		m, ok := findNorm(rest, idx)
		if !ok {
			out = append(out, ast.NewText(rest))
			break
		}
		if idx > 0 {
			out = append(out, ast.NewText(rest[:idx]))
		}
		inner := rest[m.openEnd:m.closeStart]
		norm := ast.NewNorm(strings.TrimSpace(inner), m.sub)
		norm.Size, norm.CloseSize = m.openSize, m.closeSize
		norm.Provenance = rest[idx:m.openEnd]
		if before, abs, after, ok := ParseAbs(inner); ok {
			appendNonBlank(norm, before)
			norm.Append(abs)
			appendNonBlank(norm, after)
		}
		out = append(out, norm)
		rest = rest[m.end:]
	}
	return out
}

func appendNonBlank(parent *ast.Node, s string) {
	if strings.TrimSpace(s) != "" {
		parent.Append(ast.NewText(strings.TrimSpace(s)))
	}
}

// ParseAbs finds the first absolute value in text. Sized variants are
// tried from the largest size down, then \left|...\right|, then a bare
// |...| pair. At most one Abs is returned; callers re-invoke on after to
// find more.
func ParseAbs(text string) (before string, abs *ast.Node, after string, ok bool) {
	for _, size := range absSizes {
		if b, a, rest, found := sizedAbs(text,
			[]string{`\` + size + `|`, `\` + size + `l|`},
			[]string{`\` + size + `|`, `\` + size + `r|`}); found {
			return b, a, rest, true
		}
	}
	if b, a, rest, found := sizedAbs(text, []string{`\left|`}, []string{`\right|`}); found {
		return b, a, rest, true
	}
	return bareAbs(text)
}

func sizedAbs(text string, opens, closes []string) (string, *ast.Node, string, bool) {
	start, openTok := firstOf(text, 0, opens)
	if start < 0 {
		return "", nil, "", false
	}
	innerStart := start + len(openTok)
	end, closeTok := firstOf(text, innerStart, closes)
	if end < 0 {
		return "", nil, "", false
	}
	abs := ast.NewAbs(strings.TrimSpace(text[innerStart:end]))
	abs.Size, abs.CloseSize = sizeOf(openTok), sizeOf(closeTok)
	abs.Provenance = openTok
	return text[:start], abs, text[end+len(closeTok):], true
}

// sizeOf returns the sizing command of a sized bar token such as \bigl|.
func sizeOf(tok string) string {
	return strings.TrimSuffix(strings.TrimPrefix(tok, `\`), "|")
}

// firstOf returns the earliest occurrence at or after from of any of the
// tokens that is not merely the prefix of a longer control word.
func firstOf(text string, from int, toks []string) (int, string) {
	best, bestTok := -1, ""
	for _, tok := range toks {
		for i := from; i < len(text); {
			j := strings.Index(text[i:], tok)
			if j < 0 {
				break
			}
			pos := i + j
			if pos > 0 && text[pos-1] == '\\' {
				i = pos + 1
				continue
			}
			if best < 0 || pos < best {
				best, bestTok = pos, tok
			}
			break
		}
	}
	return best, bestTok
}

// bareAbs finds the first pair of bare bars, skipping bars that belong to
// control sequences (\| or a sizing command). Both bars must sit at the
// same group depth, so the bars of set-builder notation such as
// \{ x | P(x) \} never pair across groups.
func bareAbs(text string) (string, *ast.Node, string, bool) {
	for from := 0; ; {
		first := nextBar(text, from)
		if first < 0 {
			return "", nil, "", false
		}
		if second := matchingBar(text, first+1); second >= 0 {
			abs := ast.NewAbs(strings.TrimSpace(text[first+1 : second]))
			abs.Provenance = "|"
			return text[:first], abs, text[second+1:], true
		}
		from = first + 1
	}
}

// matchingBar returns the next bare bar at or after from at the depth of
// from, or -1 when the enclosing group closes first.
func matchingBar(text string, from int) int {
	depth := 0
	for i := from; i < len(text); {
		switch text[i] {
		case '\':
			if i+1 < len(text) {
				switch text[i+1] {
				case '{':
					depth++
				case '}':
					if depth == 0 {
						return -1
					}
					depth--
				}
			}
			name, end := controlWord(text, i)
			if name != "" && symbols.IsSizing(name) && end < len(text) && text[end] == '|' {
				i = end + 1
				continue
			}
			i = skipControl(text, i)
			continue
		case '{', '(':
			depth++
		case '}', ')':
			if depth == 0 {
				return -1
			}
			depth--
		case '|':
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

func nextBar(text string, from int) int {
	for i := from; i < len(text); {
		switch text[i] {
		case '\\':
			name, end := controlWord(text, i)
			if name != "" && symbols.IsSizing(name) && end < len(text) && text[end] == '|' {
				i = end + 1
				continue
			}
			i = skipControl(text, i)
			continue
		case '|':
			return i
		}
		i++
	}
	return -1
}

// Parse extracts Norm nodes and then Abs nodes from the text between them.
// It returns nil when the content has neither. Content nested deeper than
// the limit yields a *DepthError.
func (s Scanner) Parse(text string) ([]*ast.Node, error) {
	max := s.MaxDepth
	if max <= 0 {
		max = DefaultMaxDepth
	}
	if d := braceDepth(text); d > max {
		return nil, &DepthError{Depth: d, Max: max}
	}

	var out []*ast.Node
	found := false
	for _, n := range ParseNorm(text) {
		if n.Kind != ast.Text {
			found = true
			out = append(out, n)
			continue
		}
		rest := n.Content
		for {
			before, abs, after, ok := ParseAbs(rest)
			if !ok {
				if rest != "" {
					out = append(out, ast.NewText(rest))
				}
				break
			}
			found = true
			if before != "" {
				out = append(out, ast.NewText(before))
			}
			out = append(out, abs)
			rest = after
		}
	}
	if !found {
		return nil, nil
	}
	return out, nil
}

// braceDepth returns the maximum nesting of unescaped braces.
func braceDepth(text string) int {
	depth, max := 0, 0
	for i := 0; i < len(text); {
		switch text[i] {
		case '\\':
			i = skipControl(text, i)
			continue
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
		i++
	}
	return max
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
