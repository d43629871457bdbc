// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import "strings"

const indentUnit = "  "

type block int

const (
	blockTheorem block = iota
	blockMath
	blockParen
)

// normalizeIndent re-indents emitted Typst by block nesting: theorem
// bodies, display math and multi-line calls such as cases(. Raw blocks
// keep their lines untouched.
func normalizeIndent(src string) string {
	lines := strings.Split(src, "\n")
	var stack []block
	top := func() (block, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		return stack[len(stack)-1], true
	}
	inRaw := false
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if inRaw {
			if strings.HasPrefix(t, "```") {
				inRaw = false
			}
			continue
		}
		if strings.HasPrefix(t, "```") {
			lines[i] = line
			inRaw = !closesRaw(t)
			continue
		}

		b, ok := top()
		switch {
		case ok && b == blockTheorem && strings.HasPrefix(t, "]"):
			stack = stack[:len(stack)-1]
		case ok && b == blockMath && strings.HasPrefix(t, "$"):
			stack = stack[:len(stack)-1]
		case ok && b == blockParen && strings.HasPrefix(t, ")") && !strings.HasPrefix(t, ") //[command:"):
			stack = stack[:len(stack)-1]
		}

		if t == "" {
			lines[i] = ""
		} else {
			lines[i] = strings.Repeat(indentUnit, len(stack)) + t
		}

		b, ok = top()
		switch {
		case isTheoremOpen(t) && !(ok && b == blockMath):
			stack = append(stack, blockTheorem)
		case t == "$" && !(ok && b == blockMath):
			stack = append(stack, blockMath)
		case strings.HasSuffix(t, "(") && ok && (b == blockMath || b == blockParen):
			stack = append(stack, blockParen)
		}
	}
	return strings.Join(lines, "\n")
}

// closesRaw reports whether a fence line also closes its block, as in
// ```tex x```.
func closesRaw(t string) bool {
	return len(t) > 3 && strings.Contains(t[3:], "```")
}

func isTheoremOpen(t string) bool {
	return theoremOpen.MatchString(t)
}
