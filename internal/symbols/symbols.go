// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package symbols holds the static tables that map TeX commands to Unicode
// code points and Typst names, and back. Every table is built once at
// package initialization and is read-only afterwards, so lookups are safe
// from any number of goroutines.
package symbols

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// forward merges greek, operators and arrows.
	forward map[string]string
	// reverse maps a code point to the TeX source that produces it.
	reverse map[rune]string

	functionSet = toSet(functions)
	sizingSet   = toSet(sizing)
	silentSet   = toSet(silent)

	accentReverse  = invert(accents, accentAliases)
	fontReverse    = invert(fonts, fontAliases)
	spacingReverse = invert(spacing, nil)
)

func init() {
	forward = make(map[string]string, len(greek)+len(operators)+len(arrows))
	for _, table := range []map[string]string{greek, operators, arrows} {
		for k, v := range table {
			forward[k] = v
		}
	}

	reverse = make(map[rune]string)
	for _, name := range sortedKeys(forward) {
		if _, alias := aliases[name]; alias {
			continue
		}
		r, _ := utf8.DecodeRuneInString(forward[name])
		reverse[r] = `\` + name
	}
	for _, operand := range sortedKeys(negated) {
		r, _ := utf8.DecodeRuneInString(negated[operand])
		if _, ok := reverse[r]; !ok {
			reverse[r] = `\not` + operand
		}
	}
	for _, font := range []string{"mathbb", "mathfrak", "mathcal"} {
		for c := 'A'; c <= 'Z'; c++ {
			addAlphabet(font, c)
		}
		for c := 'a'; c <= 'z'; c++ {
			addAlphabet(font, c)
		}
	}
}

func addAlphabet(font string, c rune) {
	s, ok := Alphabet(font, c)
	if !ok {
		return
	}
	r, _ := utf8.DecodeRuneInString(s)
	if _, taken := reverse[r]; !taken {
		reverse[r] = `\` + font + "{" + string(c) + "}"
	}
}

// Symbol returns the Unicode replacement for a command name without the
// backslash.
func Symbol(name string) (string, bool) {
	s, ok := forward[name]
	return s, ok
}

// Canonical returns the command a name is an alias of, or name itself.
func Canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// Negated returns the code point for \not followed by operand, where
// operand is written as in the source (`\in`, `=`).
func Negated(operand string) (string, bool) {
	s, ok := negated[operand]
	return s, ok
}

// Alphabet returns the styled letter for \mathbb, \mathfrak or \mathcal
// applied to c.
func Alphabet(font string, c rune) (string, bool) {
	a, ok := alphabets[font]
	if !ok {
		return "", false
	}
	if h, ok := a.holes[c]; ok {
		return string(h), true
	}
	switch {
	case c >= 'A' && c <= 'Z':
		return string(a.upper + (c - 'A')), true
	case c >= 'a' && c <= 'z' && a.lower != 0:
		return string(a.lower + (c - 'a')), true
	}
	return "", false
}

// ToTeX returns the TeX source producing r, for example `\alpha` or
// `\mathbb{R}`.
func ToTeX(r rune) (string, bool) {
	s, ok := reverse[r]
	return s, ok
}

// IsFunction reports whether name is an upright operator name such as sin.
func IsFunction(name string) bool {
	return functionSet[name]
}

// Accent returns the Typst accent function for an accent command.
func Accent(name string) (string, bool) {
	s, ok := accents[name]
	return s, ok
}

// AccentCommand returns the canonical accent command for a Typst accent.
func AccentCommand(typst string) (string, bool) {
	s, ok := accentReverse[typst]
	return s, ok
}

// Font returns the Typst style function for a math font command.
func Font(name string) (string, bool) {
	s, ok := fonts[name]
	return s, ok
}

// FontCommand returns the canonical font command for a Typst style.
func FontCommand(typst string) (string, bool) {
	s, ok := fontReverse[typst]
	return s, ok
}

// Spacing returns the Typst spacing name for a spacing command.
func Spacing(name string) (string, bool) {
	s, ok := spacing[name]
	return s, ok
}

// SpacingCommand returns the spacing command for a Typst spacing name.
func SpacingCommand(typst string) (string, bool) {
	s, ok := spacingReverse[typst]
	return s, ok
}

// IsSizing reports whether name is a delimiter sizing command.
func IsSizing(name string) bool {
	return sizingSet[name]
}

// Delimiter returns the Typst rendering of a delimiter following a sizing
// command.
func Delimiter(tex string) (string, bool) {
	s, ok := delimiters[tex]
	return s, ok
}

// DelimiterTeX returns the TeX delimiter for a Typst delimiter.
func DelimiterTeX(typst string) (string, bool) {
	s, ok := delimiterCanonical[typst]
	return s, ok
}

// IsSilent reports whether name renders to nothing in Typst.
func IsSilent(name string) bool {
	return silentSet[name]
}

// IsTextCommand reports whether name wraps upright text.
func IsTextCommand(name string) bool {
	return textCommands[name]
}

// NFC returns s in Unicode normalization form C, so composed and
// decomposed input produce the same output.
func NFC(s string) string {
	return norm.NFC.String(s)
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// invert builds the reverse of a name table, skipping aliases so the
// result is deterministic.
func invert(m map[string]string, skip map[string]bool) map[string]string {
	out := make(map[string]string, len(m))
	for _, k := range sortedKeys(m) {
		if skip[k] {
			continue
		}
		out[m[k]] = k
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
