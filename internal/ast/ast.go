// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ast defines the document tree shared by both conversion
// directions. Every node is a single tagged variant: Kind selects which of
// the variant fields are meaningful. String payloads always hold
// preprocessed TeX (Unicode symbols, "// " comment lines), so a tree built
// from Typst input has the same shape as one built from TeX.
package ast

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a Node.
type Kind int

const (
	Document Kind = iota
	Section
	Theorem
	Math
	Reference
	Norm
	Abs
	Text
	Unknown
)

var kindNames = [...]string{
	Document:  "Document",
	Section:   "Section",
	Theorem:   "Theorem",
	Math:      "Math",
	Reference: "Reference",
	Norm:      "Norm",
	Abs:       "Abs",
	Text:      "Text",
	Unknown:   "Unknown",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MathKind distinguishes the math delimiter families.
type MathKind string

const (
	Inline    MathKind = "inline"
	Display   MathKind = "display"
	Align     MathKind = "align"
	AlignStar MathKind = "align*"
)

// Block reports whether the math is typeset on its own lines.
func (k MathKind) Block() bool {
	return k != Inline
}

// RefKind is the cross-reference command family.
type RefKind string

const (
	RefPlain RefKind = "ref"
	RefEq    RefKind = "eqref"
	RefCite  RefKind = "cite"
)

// Attribute keys used across packages.
const (
	AttrStarred    = "starred"
	AttrLabels     = "labels"
	AttrDelim      = "delim"
	AttrSupplement = "supplement"
	AttrEnv        = "env"
	AttrImport     = "import"
)

// Node is one element of the document tree. Children are owned exclusively
// by their parent.
type Node struct {
	Kind       Kind
	Content    string
	Children   []*Node
	Attributes map[string]string
	// Provenance is the original syntax a node was built from, kept only
	// for round-trip reconstruction.
	Provenance string

	// Section: Level 1-3 and Title. Theorem: Title.
	Level int
	Title string
	// Label is the label attached to a Section or Theorem.
	Label string
	// Env is the theorem environment name with its original casing.
	Env string

	MathKind MathKind

	RefKind RefKind
	// Target holds the referenced key, or comma-separated keys for a
	// multi-key citation.
	Target string

	// Subscript is the optional subscript of a Norm.
	Subscript string
	// Size is the sizing command (without backslash) of a Norm or Abs
	// opening token, empty for bare delimiters.
	Size string
	// CloseSize is the sizing command of the closing token.
	CloseSize string

	// Original is the verbatim source of an Unknown construct.
	Original string
}

// NewDocument returns an empty document node.
func NewDocument(children ...*Node) *Node {
	return &Node{Kind: Document, Children: children}
}

// NewSection returns a section heading of the given level.
func NewSection(level int, title string) *Node {
	return &Node{Kind: Section, Level: level, Title: title}
}

// NewTheorem returns a theorem-like environment node.
func NewTheorem(env, title, label string, children ...*Node) *Node {
	return &Node{Kind: Theorem, Env: env, Title: title, Label: label, Children: children}
}

// NewMath returns a math node holding raw content.
func NewMath(kind MathKind, content string) *Node {
	return &Node{Kind: Math, MathKind: kind, Content: content}
}

// NewReference returns a cross-reference node.
func NewReference(kind RefKind, target string) *Node {
	return &Node{Kind: Reference, RefKind: kind, Target: target}
}

// NewNorm returns a norm node.
func NewNorm(content, subscript string) *Node {
	return &Node{Kind: Norm, Content: content, Subscript: subscript}
}

// NewAbs returns an absolute-value node.
func NewAbs(content string) *Node {
	return &Node{Kind: Abs, Content: content}
}

// NewText returns a text node.
func NewText(content string) *Node {
	return &Node{Kind: Text, Content: content}
}

// NewUnknown returns a node preserving unsupported source verbatim.
func NewUnknown(original string) *Node {
	return &Node{Kind: Unknown, Original: original}
}

// Attr returns the attribute value for key, "" when absent.
func (n *Node) Attr(key string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[key]
}

// SetAttr sets an attribute. Empty values delete the key.
func (n *Node) SetAttr(key, value string) {
	if value == "" {
		delete(n.Attributes, key)
		return
	}
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[key] = value
}

// Append adds children to n.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// HasStructure reports whether a Math node's content was split into
// Norm/Abs children.
func (n *Node) HasStructure() bool {
	return n.Kind == Math && len(n.Children) > 0
}

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes of kind k in the tree rooted at n.
func Count(n *Node, k Kind) int {
	total := 0
	Walk(n, func(x *Node) bool {
		if x.Kind == k {
			total++
		}
		return true
	})
	return total
}

// Dump renders a compact indented description of the tree for tests and
// debugging output.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case Document:
	case Section:
		fmt.Fprintf(b, " %d %q", n.Level, n.Title)
	case Theorem:
		fmt.Fprintf(b, " %s title=%q label=%q", n.Env, n.Title, n.Label)
	case Math:
		fmt.Fprintf(b, " %s %q", n.MathKind, n.Content)
	case Reference:
		fmt.Fprintf(b, " %s %q", n.RefKind, n.Target)
	case Norm:
		fmt.Fprintf(b, " %q sub=%q", n.Content, n.Subscript)
	case Abs, Text:
		fmt.Fprintf(b, " %q", n.Content)
	case Unknown:
		fmt.Fprintf(b, " %q", n.Original)
	default:
		panic(fmt.Sprintf("ast: unhandled kind %v", n.Kind))
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		dump(b, c, depth+1)
	}
}
