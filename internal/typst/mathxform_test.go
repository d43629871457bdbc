// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fraction", `\frac{a}{b}`, "frac(a, b)"},
		{"fraction without braces", `x\frac12`, "x frac(1, 2)"},
		{"square root", `\sqrt{x}`, "sqrt(x)"},
		{"nth root", `\sqrt[3]{x}`, "root(3, x)"},
		{"accents", `\hat{x} \ddot{y} \vec{v} \bar{z}`, "hat(x) dot.double(y) arrow(v) macron(z)"},
		{"single rune script", `x_{i}`, "x_i"},
		{"letters in script", `x_{ij}`, "x_(i j)"},
		{"digits then letter", `x^{2n}`, "x^(2n)"},
		{"big operator", `∑_{i=1}^{n} a_i`, "∑_(i=1)^n a_i"},
		{"letters separated", `ab + x2`, "a b + x 2"},
		{"after bare script", `x_1y`, "x_1 y"},
		{"blackboard digit", `\mathbb{1}`, "bb(1)"},
		{"upright word", `\mathrm{max}`, `upright("max")`},
		{"bold letter", `\mathbf{x}`, "bold(x)"},
		{"text", `\text{if } x`, `"if " x`},
		{"operator name", `\operatorname{rank} A`, `op("rank") A`},
		{"function", `\sin x`, "sin x"},
		{"spacing", `a\,b\quad c`, "a thin b quad c"},
		{"slash", `a/b`, `a\/b`},
		{"braces", `\{ x \}`, `\{ x \}`},
		{"lone norm bar", `\|x`, "‖x"},
		{"unknown command", `\foo x`, `\foo x`},
		{"sized delimiters", `\left( x \right)`, "( //[command:left]\nx ) //[command:right]\n"},
		{"empty delimiter", `\left. x \right|`, "//[command:left,delim:none]\nx | //[command:right]\n"},
		{"silent command", `a \nonumber`, "a //[command:nonumber]\n"},
		{
			"cases",
			`f = \begin{cases} 1 & x > 0, y \\ 0 & \text{else} \end{cases}`,
			"f = cases(\n1 & x > 0\\, y,\n0 & \"else\"\n)",
		},
		{"matrix", `\begin{pmatrix} a & b \\ c & d \end{pmatrix}`, `mat(delim: "(", a, b; c, d)`},
		{"plain matrix", `\begin{matrix} 1 \end{matrix}`, `mat(delim: #none, 1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transform(tt.in))
		})
	}
}

func TestTransformAlign(t *testing.T) {
	assert.Equal(t, "a & = b \\\nc & = d", transformAlign(`a &= b \\ c &= d`))
	assert.Equal(t, "a & = b", transformAlign(`a &= b \\`))
}

func TestEscapeArg(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a, b", `a\, b`},
		{"(a, b)", "(a, b)"},
		{`"x, y"`, `"x, y"`},
		{"a; b", `a\; b`},
		{`a\, b`, `a\, b`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeArg(tt.in), tt.in)
	}
}
