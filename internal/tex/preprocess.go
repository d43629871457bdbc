// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"regexp"
	"strings"

	"github.com/pdiddy/tyx/internal/symbols"
)

// state is the preprocessor line state.
type state int

const (
	statePreamble state = iota
	stateBody
	stateAbstract
	stateMultiline
)

var (
	// preambleCommands are commented out before \begin{document}.
	preambleCommands = []string{
		`\documentclass`, `\usepackage`, `\mathtoolsset`, `\newtheorem`,
		`\title`, `\author`, `\address`, `\email`, `\subjclass`, `\keywords`,
		`\maketitle`, `\date`,
	}
	// metadataCommands are commented out in the body, possibly spanning
	// several lines.
	metadataCommands = []string{
		`\title`, `\author`, `\address`, `\email`, `\subjclass`, `\keywords`,
		`\maketitle`, `\date`, `\thanks`,
	}

	beginDocument = regexp.MustCompile(`^\s*\\begin\{document\}`)
	endDocument   = regexp.MustCompile(`^\s*\\end\{document\}`)
	beginAbstract = regexp.MustCompile(`^\s*\\begin\{abstract\}`)
	endAbstract   = regexp.MustCompile(`\\end\{abstract\}`)

	// alphabetArg matches the argument of \mathbb and friends: a braced or
	// bare letter.
	alphabetArg = regexp.MustCompile(`^\s*(?:\{\s*([A-Za-z])\s*\}|([A-Za-z]))`)
)

// Preprocess isolates the preamble, metadata and abstract as comments and
// substitutes symbol commands by their Unicode code points. Input without a
// \begin{document} line is treated as a body fragment.
func Preprocess(src string) string {
	lines := strings.Split(src, "\n")
	st := statePreamble
	if !hasBeginDocument(lines) {
		st = stateBody
	}
	depth := 0

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch st {
		case statePreamble:
			switch {
			case beginDocument.MatchString(line):
				out = append(out, commentOut(line))
				st = stateBody
			case strings.HasPrefix(trimmed, "%"):
				out = append(out, convertComment(line))
			case hasCommandPrefix(trimmed, preambleCommands):
				out = append(out, commentOut(line))
			default:
				out = append(out, line)
			}

		case stateMultiline:
			out = append(out, commentOut(line))
			depth += braceBalance(line)
			if depth <= 0 {
				st = stateBody
			}

		case stateAbstract:
			out = append(out, commentOut(line))
			if endAbstract.MatchString(line) {
				st = stateBody
			}

		case stateBody:
			switch {
			case beginAbstract.MatchString(line):
				out = append(out, commentOut(line))
				if !endAbstract.MatchString(line) {
					st = stateAbstract
				}
			case endDocument.MatchString(line):
				out = append(out, commentOut(line))
			case hasCommandPrefix(trimmed, metadataCommands):
				out = append(out, commentOut(line))
				if d := braceBalance(line); d > 0 {
					depth = d
					st = stateMultiline
				}
			case strings.HasPrefix(trimmed, "%"):
				out = append(out, convertComment(line))
			default:
				out = append(out, stripTrailingComment(line))
			}
		}
	}
	return SubstituteSymbols(strings.Join(out, "\n"))
}

func hasBeginDocument(lines []string) bool {
	for _, l := range lines {
		if beginDocument.MatchString(l) {
			return true
		}
	}
	return false
}

// hasCommandPrefix reports whether line starts with one of the commands as
// a whole control word.
func hasCommandPrefix(line string, commands []string) bool {
	for _, c := range commands {
		if !strings.HasPrefix(line, c) {
			continue
		}
		rest := line[len(c):]
		if rest == "" || !isLetter(rest[0]) {
			return true
		}
	}
	return false
}

// commentOut turns a line into a Typst comment, normalizing \\ to \.
func commentOut(line string) string {
	return "// " + strings.ReplaceAll(strings.TrimSpace(line), `\\`, `\`)
}

// convertComment rewrites a full-line % comment as // %.
func convertComment(line string) string {
	return "// " + strings.TrimSpace(line)
}

// stripTrailingComment removes an inline comment starting at the first
// unescaped %.
func stripTrailingComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

// braceBalance returns opened minus closed unescaped braces.
func braceBalance(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '{':
			n++
		case '}':
			n--
		}
	}
	return n
}

// SubstituteSymbols replaces symbol commands by Unicode. Commands are read
// as maximal letter runs, so \in is never found inside \int, and commands
// without a table entry are left untouched.
func SubstituteSymbols(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '\\' {
			b.WriteString(`\\`)
			i += 2
			continue
		}
		j := i + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		name := s[i+1 : j]
		if name == "" {
			b.WriteByte('\\')
			i++
			continue
		}

		if name == "not" {
			if r, n, ok := negation(s[j:]); ok {
				b.WriteString(r)
				i = j + n
				continue
			}
		}
		if _, ok := symbols.Font(name); ok {
			if m := alphabetArg.FindStringSubmatchIndex(s[j:]); m != nil {
				letter := groupText(s[j:], m)
				if r, ok := symbols.Alphabet(name, rune(letter[0])); ok {
					b.WriteString(r)
					i = j + m[1]
					continue
				}
			}
		}
		if r, ok := symbols.Symbol(name); ok {
			b.WriteString(r)
			i = j
			continue
		}
		b.WriteString(s[i:j])
		i = j
	}
	return b.String()
}

// negation matches the operand after \not.
func negation(rest string) (string, int, bool) {
	trimmed := strings.TrimLeft(rest, " ")
	skipped := len(rest) - len(trimmed)
	if strings.HasPrefix(trimmed, "=") {
		r, _ := symbols.Negated("=")
		return r, skipped + 1, true
	}
	if !strings.HasPrefix(trimmed, `\`) {
		return "", 0, false
	}
	j := 1
	for j < len(trimmed) && isLetter(trimmed[j]) {
		j++
	}
	if r, ok := symbols.Negated(trimmed[:j]); ok {
		return r, skipped + j, true
	}
	return "", 0, false
}

func groupText(s string, m []int) string {
	if m[2] >= 0 {
		return s[m[2]:m[3]]
	}
	return s[m[4]:m[5]]
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
