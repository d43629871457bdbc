// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diag defines the diagnostics produced while converting a document.
// No diagnostic is fatal: every conversion returns best-effort output plus
// the diagnostics collected along the way.
package diag

import (
	"fmt"
	"sort"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// StructuralMismatch reports an unbalanced delimiter, an unclosed
	// environment, a missing closing tag or an exceeded nesting bound.
	StructuralMismatch Kind = "StructuralMismatch"
	// LabelConflict reports a label defined more than once.
	LabelConflict Kind = "LabelConflict"
	// UnresolvedReference reports a reference to a label never defined.
	UnresolvedReference Kind = "UnresolvedReference"
	// UnknownConstruct reports a construct outside the supported set that
	// was preserved verbatim.
	UnknownConstruct Kind = "UnknownConstruct"
)

// Ranging represents a byte range [From, To) within the source text.
type Ranging struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// PointRanging returns a zero-width Ranging at p.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// Diagnostic is a single non-fatal finding.
type Diagnostic struct {
	Kind    Kind    `json:"kind" yaml:"kind"`
	Message string  `json:"message" yaml:"message"`
	Range   Ranging `json:"range" yaml:"range"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d-%d: %s", d.Kind, d.Range.From, d.Range.To, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic with a formatted message.
func (l *List) Add(kind Kind, r Ranging, format string, args ...any) {
	*l = append(*l, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Range: r})
}

// Append adds the diagnostics of other to l.
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// Count returns the number of diagnostics of the given kind.
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// ByKind groups diagnostics by kind, keeping their relative order.
func (l List) ByKind() map[Kind]List {
	m := make(map[Kind]List)
	for _, d := range l {
		m[d.Kind] = append(m[d.Kind], d)
	}
	return m
}

// Kinds returns the kinds present in l in a stable order.
func (l List) Kinds() []Kind {
	seen := make(map[Kind]bool)
	var out []Kind
	for _, d := range l {
		if !seen[d.Kind] {
			seen[d.Kind] = true
			out = append(out, d.Kind)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Shift returns a copy of l with every range moved by offset. Builders use
// it to report positions of nested constructs relative to the whole input.
func (l List) Shift(offset int) List {
	if offset == 0 || len(l) == 0 {
		return l
	}
	out := make(List, len(l))
	for i, d := range l {
		d.Range.From += offset
		d.Range.To += offset
		out[i] = d
	}
	return out
}
