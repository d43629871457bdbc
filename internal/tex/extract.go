// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/tyx/internal/ast"
	"github.com/pdiddy/tyx/internal/diag"
)

// ElementKind classifies an extracted span.
type ElementKind int

const (
	ElemText ElementKind = iota
	ElemTheorem
	ElemSection
	ElemMath
	ElemRef
	ElemUnknown
)

// Element is one span of preprocessed text. Offsets are byte positions in
// the text passed to Extract.
type Element struct {
	Kind       ElementKind
	Start, End int
	Text       string

	// Theorem and Unknown: environment name as written.
	Env string
	// Theorem: text between the begin and end tags.
	Body      string
	BodyStart int

	// Section.
	Level   int
	Title   string
	Label   string
	Starred bool

	// Math: delimiters removed.
	MathKind   ast.MathKind
	Inner      string
	InnerStart int
	Delim      string

	// Ref.
	RefKind    ast.RefKind
	Target     string
	Supplement string

	// Problem is set when the span was recovered from malformed input.
	Problem *diag.Diagnostic
}

// theoremNames are the theorem-like environments, matched in any casing.
var theoremNames = map[string]bool{
	"theorem":     true,
	"lemma":       true,
	"proposition": true,
	"corollary":   true,
	"definition":  true,
	"remark":      true,
	"example":     true,
	"proof":       true,
}

// structuralEnvs are handled by the preprocessor or the math pass and are
// never reported as unknown.
var structuralEnvs = map[string]bool{
	"document": true,
	"abstract": true,
	"align":    true,
	"align*":   true,
}

var (
	beginEnv   = regexp.MustCompile(`\\begin\{([A-Za-z]+\*?)\}`)
	headingCmd = regexp.MustCompile(`\\(section|subsection|subsubsection)(\*?)\s*\{`)
	labelAfter = regexp.MustCompile(`^\s*\\label\{([^}]*)\}`)
	refCmd     = regexp.MustCompile(`\\(ref|eqref|cite)(?:\[([^\]]*)\])?\{([^}]*)\}`)
)

var sectionLevels = map[string]int{
	"section":       1,
	"subsection":    2,
	"subsubsection": 3,
}

// IsTheoremEnv reports whether name is a theorem-like environment.
func IsTheoremEnv(name string) bool {
	return theoremNames[strings.ToLower(name)]
}

// Extract finds the structural spans of text, resolves overlaps by
// accepting spans in start order and dropping any span that intersects an
// already accepted one, and fills the gaps with Text elements.
func Extract(text string) []Element {
	comments := commentLines(text)
	var pool []Element
	for _, pass := range [][]Element{
		theoremSpans(text),
		headingSpans(text),
		mathSpans(text, comments),
		refSpans(text),
		unknownSpans(text),
	} {
		for _, e := range pass {
			if !comments.contains(e.Start) {
				pool = append(pool, e)
			}
		}
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Start < pool[j].Start })

	var out []Element
	claimed := 0
	for _, e := range pool {
		if e.Start < claimed {
			continue
		}
		if gap := textElement(text, claimed, e.Start); gap != nil {
			out = append(out, *gap)
		}
		out = append(out, e)
		claimed = e.End
	}
	if gap := textElement(text, claimed, len(text)); gap != nil {
		out = append(out, *gap)
	}
	return out
}

func textElement(text string, start, end int) *Element {
	if start >= end {
		return nil
	}
	raw := text[start:end]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	lead := strings.Index(raw, trimmed)
	return &Element{
		Kind:  ElemText,
		Start: start + lead,
		End:   start + lead + len(trimmed),
		Text:  trimmed,
	}
}

// matchEnv finds the \end{name} closing the environment whose body starts
// at from, counting nested environments of the same name. It returns the
// offset of the closing tag or -1.
func matchEnv(text, name string, from int) int {
	open := `\begin{` + name + `}`
	close := `\end{` + name + `}`
	depth := 1
	for i := from; i < len(text); {
		nextOpen := strings.Index(text[i:], open)
		nextClose := strings.Index(text[i:], close)
		if nextClose < 0 {
			return -1
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			i += nextOpen + len(open)
			continue
		}
		depth--
		if depth == 0 {
			return i + nextClose
		}
		i += nextClose + len(close)
	}
	return -1
}

// envSpan builds the span of an environment starting at the match m of
// beginEnv. Unclosed environments extend to the end of the text.
func envSpan(text string, m []int, kind ElementKind) Element {
	name := text[m[2]:m[3]]
	bodyStart := m[1]
	e := Element{Kind: kind, Start: m[0], Env: name, BodyStart: bodyStart}
	if end := matchEnv(text, name, bodyStart); end >= 0 {
		e.Body = text[bodyStart:end]
		e.End = end + len(`\end{`+name+`}`)
	} else {
		e.Body = text[bodyStart:]
		e.End = len(text)
		e.Problem = &diag.Diagnostic{
			Kind:    diag.StructuralMismatch,
			Message: `missing \end{` + name + `}`,
			Range:   diag.Ranging{From: m[0], To: len(text)},
		}
	}
	e.Text = text[e.Start:e.End]
	return e
}

func theoremSpans(text string) []Element {
	var out []Element
	for _, m := range beginEnv.FindAllStringSubmatchIndex(text, -1) {
		if IsTheoremEnv(text[m[2]:m[3]]) {
			out = append(out, envSpan(text, m, ElemTheorem))
		}
	}
	return out
}

func unknownSpans(text string) []Element {
	var out []Element
	for _, m := range beginEnv.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if IsTheoremEnv(name) || structuralEnvs[name] {
			continue
		}
		out = append(out, envSpan(text, m, ElemUnknown))
	}
	return out
}

func headingSpans(text string) []Element {
	var out []Element
	for _, m := range headingCmd.FindAllStringSubmatchIndex(text, -1) {
		open := m[1] - 1
		close := matchBrace(text, open)
		if close < 0 {
			continue
		}
		e := Element{
			Kind:    ElemSection,
			Start:   m[0],
			End:     close + 1,
			Level:   sectionLevels[text[m[2]:m[3]]],
			Starred: m[5] > m[4],
			Title:   strings.TrimSpace(text[open+1 : close]),
		}
		if lm := labelAfter.FindStringSubmatchIndex(text[e.End:]); lm != nil {
			e.Label = strings.TrimSpace(text[e.End+lm[2] : e.End+lm[3]])
			e.End += lm[1]
		}
		e.Text = text[e.Start:e.End]
		out = append(out, e)
	}
	return out
}

// matchBrace returns the offset of the brace closing the one at open, or
// -1. Escaped braces are skipped.
func matchBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
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

// mathSpans scans left to right for math delimiters, skipping comment
// lines. Regions never nest: scanning resumes after each closing delimiter.
func mathSpans(text string, comments spans) []Element {
	var out []Element
	for i := 0; i < len(text); {
		if end, ok := comments.at(i); ok {
			i = end
			continue
		}
		switch {
		case strings.HasPrefix(text[i:], `\begin{align*}`):
			e := delimited(text, i, `\begin{align*}`, `\end{align*}`, ast.AlignStar, "")
			out = append(out, e)
			i = e.End
		case strings.HasPrefix(text[i:], `\begin{align}`):
			e := delimited(text, i, `\begin{align}`, `\end{align}`, ast.Align, "")
			out = append(out, e)
			i = e.End
		case strings.HasPrefix(text[i:], `\[`):
			e := delimited(text, i, `\[`, `\]`, ast.Display, "")
			out = append(out, e)
			i = e.End
		case strings.HasPrefix(text[i:], `\(`):
			e := delimited(text, i, `\(`, `\)`, ast.Inline, `\(`)
			out = append(out, e)
			i = e.End
		case text[i] == '\\':
			i += 2
		case strings.HasPrefix(text[i:], "$$"):
			e := delimited(text, i, "$$", "$$", ast.Display, "$$")
			out = append(out, e)
			i = e.End
		case text[i] == '$':
			e := delimited(text, i, "$", "$", ast.Inline, "")
			out = append(out, e)
			i = e.End
		default:
			i++
		}
	}
	return out
}

// delimited builds a math span opened at start. The closing delimiter is
// searched outside escapes; a missing one extends the span to the end.
func delimited(text string, start int, open, close string, kind ast.MathKind, delim string) Element {
	innerStart := start + len(open)
	e := Element{
		Kind:       ElemMath,
		Start:      start,
		MathKind:   kind,
		InnerStart: innerStart,
		Delim:      delim,
	}
	end := findUnescaped(text, innerStart, close)
	if end < 0 {
		e.Inner = text[innerStart:]
		e.End = len(text)
		e.Problem = &diag.Diagnostic{
			Kind:    diag.StructuralMismatch,
			Message: "math opened with " + open + " is never closed",
			Range:   diag.Ranging{From: start, To: len(text)},
		}
	} else {
		e.Inner = text[innerStart:end]
		e.End = end + len(close)
	}
	e.Text = text[e.Start:e.End]
	return e
}

// findUnescaped returns the first occurrence of tok at or after from that
// does not start inside a control symbol.
func findUnescaped(text string, from int, tok string) int {
	for i := from; i < len(text); {
		if strings.HasPrefix(text[i:], tok) {
			return i
		}
		if text[i] == '\\' {
			i += 2
			continue
		}
		i++
	}
	return -1
}

// spans is a sorted list of [from, to) ranges.
type spans [][2]int

// commentLines returns the ranges of lines commented out by the
// preprocessor, which never contribute structure.
func commentLines(text string) spans {
	var out spans
	for start := 0; start < len(text); {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		if strings.HasPrefix(strings.TrimLeft(text[start:end], " \t"), "//") {
			out = append(out, [2]int{start, end})
		}
		start = end + 1
	}
	return out
}

// at returns the end of the range containing pos.
func (s spans) at(pos int) (int, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i][1] > pos })
	if i < len(s) && s[i][0] <= pos {
		return s[i][1], true
	}
	return 0, false
}

func (s spans) contains(pos int) bool {
	_, ok := s.at(pos)
	return ok
}

func refSpans(text string) []Element {
	var out []Element
	for _, m := range refCmd.FindAllStringSubmatchIndex(text, -1) {
		e := Element{
			Kind:    ElemRef,
			Start:   m[0],
			End:     m[1],
			Text:    text[m[0]:m[1]],
			RefKind: ast.RefKind(text[m[2]:m[3]]),
			Target:  normalizeKeys(text[m[6]:m[7]]),
		}
		if m[4] >= 0 {
			e.Supplement = text[m[4]:m[5]]
		}
		out = append(out, e)
	}
	return out
}

func normalizeKeys(s string) string {
	parts := strings.Split(s, ",")
	keys := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return strings.Join(keys, ",")
}
