// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texmath

import "strings"

// Node is either a single token or a brace group.
type Node struct {
	// Group is true for a {...} group; Children then holds its contents.
	Group    bool
	Tok      Token
	Children []*Node
	// Closed is false for a group whose closing brace was missing.
	Closed bool
}

// Parse groups tokens into a forest of brace trees. Unmatched closing
// braces are kept as Char tokens so nothing is lost. Nesting is tracked on
// an explicit stack, so deeply nested input cannot exhaust the call stack.
func Parse(toks []Token) []*Node {
	root := &Node{Group: true, Closed: true}
	stack := []*Node{root}
	for _, t := range toks {
		top := stack[len(stack)-1]
		switch t.Kind {
		case Open:
			g := &Node{Group: true, Tok: t}
			top.Children = append(top.Children, g)
			stack = append(stack, g)
		case Close:
			if len(stack) == 1 {
				top.Children = append(top.Children, &Node{Tok: Token{Char, "}", t.Pos}})
				continue
			}
			top.Closed = true
			stack = stack[:len(stack)-1]
		default:
			top.Children = append(top.Children, &Node{Tok: t})
		}
	}
	return root.Children
}

// ParseString tokenizes and parses s.
func ParseString(s string) []*Node {
	return Parse(Tokenize(s))
}

// Source returns the TeX text of n, braces included.
func (n *Node) Source() string {
	if !n.Group {
		return n.Tok.Source()
	}
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(SourceOf(n.Children))
	if n.Closed {
		b.WriteByte('}')
	}
	return b.String()
}

// SourceOf returns the TeX text of a node list.
func SourceOf(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.Source())
	}
	return b.String()
}

// IsSpace reports whether n is a whitespace token.
func (n *Node) IsSpace() bool {
	return !n.Group && n.Tok.Kind == Space
}

// Depth returns the maximum brace nesting depth of a forest.
func Depth(nodes []*Node) int {
	max := 0
	type frame struct {
		nodes []*Node
		depth int
	}
	stack := []frame{{nodes, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > max {
			max = f.depth
		}
		for _, n := range f.nodes {
			if n.Group {
				stack = append(stack, frame{n.Children, f.depth + 1})
			}
		}
	}
	return max
}

// Split cuts a node list at every top-level node for which sep returns
// true. Separators are dropped.
func Split(nodes []*Node, sep func(*Node) bool) [][]*Node {
	parts := [][]*Node{nil}
	for _, n := range nodes {
		if sep(n) {
			parts = append(parts, nil)
			continue
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], n)
	}
	return parts
}

// Trim drops leading and trailing whitespace nodes.
func Trim(nodes []*Node) []*Node {
	for len(nodes) > 0 && nodes[0].IsSpace() {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].IsSpace() {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}
