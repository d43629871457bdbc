// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symbols

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreekOneToOne(t *testing.T) {
	tests := map[string]rune{
		"alpha":      'α',
		"beta":       'β',
		"gamma":      'γ',
		"epsilon":    'ϵ',
		"varepsilon": 'ε',
		"phi":        'ϕ',
		"varphi":     'φ',
		"Omega":      'Ω',
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := Symbol(name)
			require.True(t, ok)
			assert.Equal(t, string(want), got)
		})
	}
}

func TestReverseIsCanonical(t *testing.T) {
	for name, s := range forward {
		r, size := utf8.DecodeRuneInString(s)
		require.Equal(t, len(s), size, "%s maps to more than one rune", name)
		tex, ok := ToTeX(r)
		require.True(t, ok, "no reverse for %s", name)
		assert.Equal(t, `\`+Canonical(name), tex, "reverse of %q", s)
	}
}

func TestAliasesResolveToForwardEntries(t *testing.T) {
	for alias, canonical := range aliases {
		a, ok := Symbol(alias)
		require.True(t, ok, alias)
		c, ok := Symbol(canonical)
		require.True(t, ok, canonical)
		assert.Equal(t, c, a, "%s and %s must agree", alias, canonical)
	}
}

func TestAlphabet(t *testing.T) {
	tests := []struct {
		font string
		c    rune
		want string
	}{
		{"mathbb", 'R', "ℝ"},
		{"mathbb", 'N', "ℕ"},
		{"mathbb", 'A', "𝔸"},
		{"mathbb", 'k', "𝕜"},
		{"mathfrak", 'g', "𝔤"},
		{"mathfrak", 'H', "ℌ"},
		{"mathcal", 'L', "ℒ"},
		{"mathcal", 'A', "𝒜"},
	}
	for _, tt := range tests {
		t.Run(tt.font+string(tt.c), func(t *testing.T) {
			got, ok := Alphabet(tt.font, tt.c)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Alphabet("mathcal", 'a')
	assert.False(t, ok)
	_, ok = Alphabet("mathbb", '1')
	assert.False(t, ok)

	tex, ok := ToTeX('ℝ')
	require.True(t, ok)
	assert.Equal(t, `\mathbb{R}`, tex)
	tex, _ = ToTeX('ℜ')
	assert.Equal(t, `\Re`, tex, "letterlike symbols prefer the named command")
}

func TestNegated(t *testing.T) {
	s, ok := Negated(`\equiv`)
	require.True(t, ok)
	assert.Equal(t, "≢", s)
	tex, _ := ToTeX('≢')
	assert.Equal(t, `\not\equiv`, tex)
	tex, _ = ToTeX('∉')
	assert.Equal(t, `\notin`, tex)
}

func TestNameTables(t *testing.T) {
	assert.True(t, IsFunction("sin"))
	assert.False(t, IsFunction("alpha"))
	assert.True(t, IsSizing("bigg"))
	assert.True(t, IsSilent("nonumber"))
	assert.True(t, IsTextCommand("text"))

	a, _ := Accent("ddot")
	assert.Equal(t, "dot.double", a)
	c, _ := AccentCommand("hat")
	assert.Equal(t, "hat", c)
	f, _ := FontCommand("bold")
	assert.Equal(t, "mathbf", f)
	sp, _ := Spacing(",")
	assert.Equal(t, "thin", sp)
	cmd, _ := SpacingCommand("wide")
	assert.Equal(t, "qquad", cmd)

	d, _ := Delimiter(`\langle`)
	assert.Equal(t, "⟨", d)
	back, _ := DelimiterTeX("⟨")
	assert.Equal(t, `\langle`, back)
}

func TestNFC(t *testing.T) {
	assert.Equal(t, "\u00e9", NFC("e\u0301"))
}
