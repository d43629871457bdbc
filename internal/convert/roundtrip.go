// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/internal/meta"
	"github.com/pdiddy/tyx/internal/symbols"
	"github.com/pdiddy/tyx/internal/tex"
	"github.com/pdiddy/tyx/pkg/types"
)

// RoundTripResult compares a source with its conversion there and back.
type RoundTripResult struct {
	Equal bool
	// Diff is a unified diff of the normalized texts, empty when Equal.
	Diff string
	// Intermediate is the text in the other format.
	Intermediate string
	// Final is the text converted back into the source format.
	Final       string
	Diagnostics diag.List
}

// singleScript matches a one-character script group, which both formats
// may write without its braces or parentheses.
var singleScript = regexp.MustCompile(`([_^])[{(]([^{}()\\])[})]`)

// RoundTrip converts src in direction dir and back again. The two texts in
// the source format are compared after normalization: markers and all
// whitespace are removed, and TeX symbol commands are read as their
// Unicode symbols so aliases compare equal.
func (c *Converter) RoundTrip(src string, dir types.Direction) (RoundTripResult, error) {
	there, err := c.Convert(src, dir)
	if err != nil {
		return RoundTripResult{}, err
	}
	back, err := c.Convert(there.Output, dir.Reverse())
	if err != nil {
		return RoundTripResult{}, err
	}

	res := RoundTripResult{
		Intermediate: there.Output,
		Final:        back.Output,
		Diagnostics:  append(append(diag.List(nil), there.Diagnostics...), back.Diagnostics...),
	}
	res.Equal, res.Diff, err = compare(canonical(src, dir), canonical(back.Output, dir))
	if err != nil {
		return res, err
	}
	return res, nil
}

// compare reports whether a and b are equal once whitespace is removed,
// with a unified diff of their lines when they are not.
func compare(a, b string) (bool, string, error) {
	if squash(a) == squash(b) {
		return true, "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        byLine(a),
		B:        byLine(b),
		FromFile: "source",
		ToFile:   "roundtrip",
		Context:  2,
	})
	if err != nil {
		return false, "", fmt.Errorf("computing diff: %w", err)
	}
	return false, diff, nil
}

// canonical brings a text in the source format of dir into a comparable
// form without removing whitespace.
func canonical(s string, dir types.Direction) string {
	s = symbols.NFC(s)
	if dir == types.TeXToTypst {
		s = tex.Preprocess(s)
	}
	return meta.Strip(s)
}

func squash(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return singleScript.ReplaceAllString(s, "$1$2")
}

// byLine returns the non-blank lines of s, each squashed, for diffing.
func byLine(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = squash(l); l != "" {
			out = append(out, l+"\n")
		}
	}
	return out
}
