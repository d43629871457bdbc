// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texmath splits TeX math content into tokens and groups them into
// a brace tree. The Typst emitter walks that tree instead of applying
// ordered string rewrites.
package texmath

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	// Command is a control word (\alpha) or control symbol (\|, \\, \,).
	// Text holds the name without the backslash.
	Command Kind = iota
	Open
	Close
	Sub
	Sup
	Align
	// Space is a run of whitespace, kept verbatim.
	Space
	// Char is any other single rune.
	Char
)

// Token is one lexical unit of math content.
type Token struct {
	Kind Kind
	Text string
	// Pos is the byte offset of the token in the tokenized string.
	Pos int
}

// Source returns the token as it appeared in the input.
func (t Token) Source() string {
	switch t.Kind {
	case Command:
		return `\` + t.Text
	case Open:
		return "{"
	case Close:
		return "}"
	case Sub:
		return "_"
	case Sup:
		return "^"
	case Align:
		return "&"
	}
	return t.Text
}

// Is reports whether t is the command name.
func (t Token) Is(name string) bool {
	return t.Kind == Command && t.Text == name
}

// IsChar reports whether t is the single character c.
func (t Token) IsChar(c string) bool {
	return t.Kind == Char && t.Text == c
}

// Tokenize splits s into tokens. It never fails: a trailing lone backslash
// becomes a Char.
func Tokenize(s string) []Token {
	var toks []Token
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\\':
			if i+1 >= len(s) {
				toks = append(toks, Token{Char, `\`, i})
				i++
				continue
			}
			j := i + 1
			for j < len(s) && isASCIILetter(s[j]) {
				j++
			}
			if j == i+1 {
				_, n := utf8.DecodeRuneInString(s[j:])
				j += n
			}
			toks = append(toks, Token{Command, s[i+1 : j], i})
			i = j
		case r == '{':
			toks = append(toks, Token{Open, "{", i})
			i++
		case r == '}':
			toks = append(toks, Token{Close, "}", i})
			i++
		case r == '_':
			toks = append(toks, Token{Sub, "_", i})
			i++
		case r == '^':
			toks = append(toks, Token{Sup, "^", i})
			i++
		case r == '&':
			toks = append(toks, Token{Align, "&", i})
			i++
		case unicode.IsSpace(r):
			j := i
			for j < len(s) {
				r2, n := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += n
			}
			toks = append(toks, Token{Space, s[i:j], i})
			i = j
		default:
			toks = append(toks, Token{Char, s[i : i+size], i})
			i += size
		}
	}
	return toks
}

// Join returns the source text of toks.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Source())
	}
	return b.String()
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
