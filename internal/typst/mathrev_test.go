// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMathToTeX(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		sizes []string
		want  string
	}{
		{"fraction", "frac(a, b)", nil, `\frac{a}{b}`},
		{"root", "root(3, x)", nil, `\sqrt[3]{x}`},
		{"square root", "sqrt(x)", nil, `\sqrt{x}`},
		{"accents", "hat(x) dot.double(y)", nil, `\hat{x} \ddot{y}`},
		{"fonts", `bb(1) upright("max")`, nil, `\mathbb{1} \mathrm{max}`},
		{"operator name", `op("rank") A`, nil, `\operatorname{rank} A`},
		{"string", `"if " x`, nil, `\text{if } x`},
		{"function", "sin x", nil, `\sin x`},
		{"spacing", "a thin b", nil, `a \, b`},
		{"scripts", "x_i y^(2n)", nil, "x_i y^{2n}"},
		{"line break", "a & = b \\\nc & = d", nil, `a & = b \\ c & = d`},
		{"norm with subscript", "norm(x)_(2)", nil, `\|x\|_{2}`},
		{"sized norm and abs", "norm(abs(y))", []string{"-", "bigg"}, `\|\bigg|y\bigg|\|`},
		{"sized left norm", "norm(x)", []string{"left"}, `\left\|x\right\|`},
		{"bigl abs", "abs(x)", []string{"bigl"}, `\bigl|x\bigr|`},
		{"mixed norm sizes", "norm(x)", []string{"left/big"}, `\left\|x\big\|`},
		{"bare closing size", "norm(x)", []string{"Big/-"}, `\Big\|x\|`},
		{"sized delimiters", "( //[command:left]\nx ) //[command:right]\n", nil, `\left( x \right)`},
		{"empty delimiter", "//[command:left,delim:none]\nx | //[command:right]\n", nil, `\left. x \right|`},
		{"silent command", "a //[command:nonumber]\n", nil, `a \nonumber`},
		{
			"cases",
			"cases(\n1 & x > 0\\, y,\n0 & \"else\"\n)",
			nil,
			`\begin{cases}1 & x > 0, y \\ 0 & \text{else}\end{cases}`,
		},
		{"matrix", `mat(delim: "(", a, b; c, d)`, nil, `\begin{pmatrix}a & b \\ c & d\end{pmatrix}`},
		{"bracket matrix", `mat(delim: "[", 1)`, nil, `\begin{bmatrix}1\end{bmatrix}`},
		{"escapes", `a\/b \# ‖x`, nil, `a/b \# \|x`},
		{"unknown command", `\foo x`, nil, `\foo x`},
		{"unicode kept", "α ≤ ∑_(i=1)^n", nil, "α ≤ ∑_{i=1}^n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MathToTeX(tt.in, tt.sizes))
		})
	}
}

func TestMathRoundTrip(t *testing.T) {
	inputs := []string{
		`\frac{a}{b} + \sqrt[3]{x}`,
		`\hat{x} = \mathbb{1}`,
		`\sin x \leq \operatorname{rank} A`,
		`\left( x \right)`,
		`\bigl( x \bigr)`,
		`\left. x \right|`,
		`a \nonumber`,
		`\begin{cases}1 & x > 0 \\ 0 & \text{else}\end{cases}`,
		`\begin{bmatrix}a & b \\ c & d\end{bmatrix}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, MathToTeX(Transform(in), nil))
		})
	}
}
