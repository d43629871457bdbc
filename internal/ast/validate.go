// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ast

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a tree: no node reachable
// twice, Math never carrying both content and children, Norm holding at most
// one Abs child, section levels within 1-3 and only Document at the root.
func Validate(root *Node) error {
	if root == nil {
		return errors.New("nil tree")
	}
	seen := make(map[*Node]bool)
	var errs []error
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if seen[n] {
			errs = append(errs, fmt.Errorf("%v node reachable more than once", n.Kind))
			return
		}
		seen[n] = true
		if depth > 0 && n.Kind == Document {
			errs = append(errs, errors.New("nested Document node"))
		}
		switch n.Kind {
		case Math:
			if n.Content != "" && len(n.Children) > 0 {
				errs = append(errs, errors.New("Math node has both content and children"))
			}
		case Norm:
			if abs := countKind(n.Children, Abs); abs > 1 {
				errs = append(errs, fmt.Errorf("Norm node has %d Abs children", abs))
			}
		case Section:
			if n.Level < 1 || n.Level > 3 {
				errs = append(errs, fmt.Errorf("Section level %d out of range", n.Level))
			}
		case Document, Theorem, Reference, Abs, Text, Unknown:
		default:
			errs = append(errs, fmt.Errorf("unknown node kind %v", n.Kind))
		}
		for _, c := range n.Children {
			if c == nil {
				errs = append(errs, fmt.Errorf("%v node has a nil child", n.Kind))
				continue
			}
			visit(c, depth+1)
		}
	}
	visit(root, 0)
	return errors.Join(errs...)
}

func countKind(nodes []*Node, k Kind) int {
	n := 0
	for _, c := range nodes {
		if c != nil && c.Kind == k {
			n++
		}
	}
	return n
}
